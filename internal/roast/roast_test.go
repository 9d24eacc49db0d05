package roast

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlorentedev/roastmydouban/internal/adapter"
	"github.com/mlorentedev/roastmydouban/internal/credential"
	"github.com/mlorentedev/roastmydouban/internal/douban"
	"github.com/mlorentedev/roastmydouban/internal/metrics"
	"github.com/mlorentedev/roastmydouban/internal/router"
)

type scripted struct {
	name    string
	text    string
	err     error
	calls   int
	prompts []string
}

func (s *scripted) Name() string        { return s.name }
func (s *scripted) DisplayName() string { return strings.ToUpper(s.name) }
func (s *scripted) Invoke(_ context.Context, prompt, _ string) (adapter.Outcome, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return adapter.Outcome{}, s.err
	}
	return adapter.Outcome{Text: s.text, Model: s.DisplayName()}, nil
}

var sample = []douban.Interest{
	{Title: "霸王别姬", Rating: 5, Tags: []string{"经典"}, Comment: "不疯魔不成活", Type: "movie"},
	{Title: "小时代", Rating: 1, Tags: []string{}, Type: "movie"},
}

const goodJSON = `{"archetype":"午夜心碎鉴赏家","roast":"太矫情了","tags":["泪失禁体质"]}`

func newService(t *testing.T, gen Generator) *Service {
	t.Helper()
	s, err := NewService(gen)
	require.NoError(t, err)
	return s
}

func TestRoastBackupSucceeds(t *testing.T) {
	a := &scripted{name: "gemini", err: &adapter.ProviderError{Provider: "gemini", Status: 503}}
	b := &scripted{name: "deepseek", text: "```json\n" + goodJSON + "\n```"}
	r := router.New([]adapter.Provider{a, b}, credential.Set{"gemini": "g", "deepseek": "d"}, router.Sequence(0, 0))

	res, err := newService(t, r).Roast(context.Background(), sample, nil)

	require.NoError(t, err)
	assert.Equal(t, "DEEPSEEK", res.Model)
	assert.Equal(t, "午夜心碎鉴赏家", res.Fields["archetype"])
	assert.Equal(t, 2, a.calls+b.calls)
}

func TestRoastNoProvider(t *testing.T) {
	a := &scripted{name: "gemini", text: goodJSON}
	r := router.New([]adapter.Provider{a}, nil, nil)

	_, err := newService(t, r).Roast(context.Background(), sample, nil)

	require.ErrorIs(t, err, ErrNoProvider)
	assert.Zero(t, a.calls)
}

func TestRoastAllProvidersFail(t *testing.T) {
	a := &scripted{name: "gemini", err: errors.New("boom")}
	b := &scripted{name: "qwen", err: errors.New("boom")}
	r := router.New([]adapter.Provider{a, b}, credential.Set{"gemini": "g", "qwen": "q"}, router.Sequence(1, 0))

	_, err := newService(t, r).Roast(context.Background(), sample, nil)

	require.ErrorIs(t, err, ErrGeneration)
	var perr *adapter.ProviderError
	assert.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, a.calls+b.calls)
}

func TestRoastUnparsable(t *testing.T) {
	a := &scripted{name: "gemini", text: "```json\n```"}
	r := router.New([]adapter.Provider{a}, credential.Set{"gemini": "g"}, nil)

	_, err := newService(t, r).Roast(context.Background(), sample, nil)

	assert.ErrorIs(t, err, ErrUnparsable)
}

func TestRoastShapeMismatchIsNotFatal(t *testing.T) {
	a := &scripted{name: "gemini", text: `{"verdict": "meh"}`}
	r := router.New([]adapter.Provider{a}, credential.Set{"gemini": "g"}, nil)
	before := testutil.ToFloat64(metrics.ShapeMismatches.WithLabelValues("roast"))

	res, err := newService(t, r).Roast(context.Background(), sample, nil)

	require.NoError(t, err)
	assert.Equal(t, "meh", res.Fields["verdict"])
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ShapeMismatches.WithLabelValues("roast")))
}

func TestRoastNonObjectResult(t *testing.T) {
	a := &scripted{name: "gemini", text: `[1, 2]`}
	r := router.New([]adapter.Provider{a}, credential.Set{"gemini": "g"}, nil)

	res, err := newService(t, r).Roast(context.Background(), sample, nil)

	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, res.Fields["result"])
}

func TestComplimentOverridesRestrictPool(t *testing.T) {
	a := &scripted{name: "gemini", text: goodJSON}
	b := &scripted{name: "qwen", text: goodJSON}
	r := router.New([]adapter.Provider{a, b}, credential.Set{"gemini": "g"}, router.Sequence(0))

	res, err := newService(t, r).Compliment(context.Background(), sample, credential.Set{"qwen": "user"})

	require.NoError(t, err)
	assert.Equal(t, "QWEN", res.Model)
	assert.Zero(t, a.calls)
	require.Len(t, b.prompts, 1)
	assert.Contains(t, b.prompts[0], "1000+")
}

func TestRoastPrompt(t *testing.T) {
	p, err := RoastPrompt(sample)
	require.NoError(t, err)
	assert.Contains(t, p, "Douban movie history")
	assert.Contains(t, p, "霸王别姬")
	assert.Contains(t, p, "文艺复兴守门员")

	p, err = RoastPrompt(nil)
	require.NoError(t, err)
	assert.Contains(t, p, "Douban interests history")
}

func TestComplimentPrompt(t *testing.T) {
	p, err := ComplimentPrompt(sample, false)
	require.NoError(t, err)
	assert.Contains(t, p, "500+")
	assert.Contains(t, p, "不疯魔不成活")
	assert.NotContains(t, p, "经典", "tags are not sent")

	p, err = ComplimentPrompt(sample, true)
	require.NoError(t, err)
	assert.Contains(t, p, "1000+")
	assert.Contains(t, p, "50 items")
}
