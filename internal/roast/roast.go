// Package roast turns a user's Douban records into a generated critique.
package roast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kaptinlin/jsonschema"

	"github.com/mlorentedev/roastmydouban/internal/adapter"
	"github.com/mlorentedev/roastmydouban/internal/credential"
	"github.com/mlorentedev/roastmydouban/internal/douban"
	"github.com/mlorentedev/roastmydouban/internal/metrics"
	"github.com/mlorentedev/roastmydouban/internal/normalize"
	"github.com/mlorentedev/roastmydouban/internal/router"
)

var (
	ErrNoProvider = errors.New("no LLM provider configured")
	ErrGeneration = errors.New("generation failed")
	ErrUnparsable = errors.New("model response could not be parsed")
)

// Generator produces raw model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, overrides credential.Set) (adapter.Outcome, error)
}

// Result is a normalized model answer plus the display name of the model that wrote it.
// A non-object answer is kept under the "result" field.
type Result struct {
	Fields map[string]any
	Model  string
}

// Service builds prompts and runs them through the generator.
type Service struct {
	gen    Generator
	schema *jsonschema.Schema
}

func NewService(gen Generator) (*Service, error) {
	raw, err := promptFS.ReadFile("prompts/result.schema.json")
	if err != nil {
		return nil, fmt.Errorf("roast: read schema: %w", err)
	}
	schema, err := jsonschema.NewCompiler().Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("roast: compile schema: %w", err)
	}
	return &Service{gen: gen, schema: schema}, nil
}

// Roast generates a critique of items.
func (s *Service) Roast(ctx context.Context, items []douban.Interest, overrides credential.Set) (Result, error) {
	prompt, err := RoastPrompt(items)
	if err != nil {
		return Result{}, err
	}
	return s.run(ctx, "roast", prompt, overrides)
}

// Compliment generates deadpan praise of items. A caller who brings their own
// key gets the longer variant.
func (s *Service) Compliment(ctx context.Context, items []douban.Interest, overrides credential.Set) (Result, error) {
	prompt, err := ComplimentPrompt(items, overrides.Len() > 0)
	if err != nil {
		return Result{}, err
	}
	return s.run(ctx, "compliment", prompt, overrides)
}

func (s *Service) run(ctx context.Context, kind, prompt string, overrides credential.Set) (Result, error) {
	out, err := s.gen.Generate(ctx, prompt, overrides)
	if err != nil {
		if errors.Is(err, router.ErrNoProviderAvailable) {
			return Result{}, fmt.Errorf("%w: %w", ErrNoProvider, err)
		}
		return Result{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	v, err := normalize.Normalize(out.Text)
	if err != nil {
		slog.Error("roast: unparsable response", "kind", kind, "model", out.Model, "error", err)
		return Result{}, fmt.Errorf("%w: %w", ErrUnparsable, err)
	}

	fields, ok := v.(map[string]any)
	if !ok {
		fields = map[string]any{"result": v}
	}
	s.checkShape(kind, out.Model, v)

	slog.Info("roast: generated", "kind", kind, "model", out.Model)
	return Result{Fields: fields, Model: out.Model}, nil
}

// checkShape logs results that lack the fields the browser renders. It never fails the request.
func (s *Service) checkShape(kind, model string, v any) {
	res := s.schema.Validate(v)
	if res.IsValid() {
		return
	}
	metrics.ShapeMismatches.WithLabelValues(kind).Inc()
	slog.Warn("roast: unexpected result shape", "kind", kind, "model", model, "errors", res.Errors)
}
