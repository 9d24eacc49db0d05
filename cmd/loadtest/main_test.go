package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKeys(t *testing.T) {
	assert.Equal(t, map[string]string{"gemini": "g-key", "qwen": "q-key"}, parseKeys("gemini=g-key, qwen = q-key,broken"))
	assert.Nil(t, parseKeys(""), "empty input should give nil")
}

func TestPercentile(t *testing.T) {
	sorted := []int64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	tests := []struct {
		p    int
		want int64
	}{
		{50, 50},
		{95, 100},
		{0, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, percentile(sorted, tt.p), "p%d", tt.p)
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch r.URL.Path {
		case "/api/roast":
			json.NewEncoder(w).Encode(map[string]any{"archetype": "x", "_model": "Qwen Plus"})
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer srv.Close()

	sample := Samples[0]
	r := generate(srv.Client(), srv.URL, "roast", nil, sample, 1)
	assert.Empty(t, r.Error)
	assert.Equal(t, "Qwen Plus", r.Model)
	assert.Equal(t, len(sample.Interests), r.Items)

	r = generate(srv.Client(), srv.URL, "compliment", nil, sample, 1)
	assert.Equal(t, http.StatusTooManyRequests, r.Status)
	assert.NotEmpty(t, r.Error)
}

func TestSamplesHaveUniqueTitles(t *testing.T) {
	for _, s := range Samples {
		seen := make(map[string]bool)
		for _, it := range s.Interests {
			assert.False(t, seen[it.Title], "%s: duplicate title %q", s.Name, it.Title)
			seen[it.Title] = true
		}
	}
}
