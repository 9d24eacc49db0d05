package adapter

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingCredential is returned by an adapter invoked without a secret.
var ErrMissingCredential = errors.New("missing credential")

// Provider defines the contract for LLM vendors.
// Name is the stable id used for credential lookup; DisplayName is shown to users.
type Provider interface {
	Name() string
	DisplayName() string
	Invoke(ctx context.Context, prompt, credential string) (Outcome, error)
}

// Outcome is the raw text of one successful invocation.
type Outcome struct {
	Text  string
	Model string
}

// ProviderError wraps every adapter failure. Status is the HTTP status when the
// vendor answered with a non-success code, zero otherwise.
type ProviderError struct {
	Provider string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.Status)
	default:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	}
}

func (e *ProviderError) Unwrap() error { return e.Err }

func providerErr(provider string, status int, format string, args ...any) *ProviderError {
	return &ProviderError{Provider: provider, Status: status, Err: fmt.Errorf(format, args...)}
}

// ModelInfo is exposed via GET /api/models.
type ModelInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Info describes a provider for the models endpoint.
func Info(p Provider) ModelInfo {
	return ModelInfo{ID: p.Name(), Name: p.DisplayName(), Provider: p.Name()}
}
