package collection

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlorentedev/roastmydouban/internal/cache"
	"github.com/mlorentedev/roastmydouban/internal/douban"
)

type memStore struct {
	data map[string][]byte
	sets int
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.sets++
	m.data[key] = value
	return nil
}

type fakeFetcher struct {
	n     int
	err   error
	calls int
}

func (f *fakeFetcher) FetchAll(_ context.Context, _, category string) (douban.Collection, error) {
	f.calls++
	if f.err != nil {
		return douban.Collection{}, f.err
	}
	items := make([]douban.Interest, f.n)
	for i := range items {
		items[i] = douban.Interest{Title: fmt.Sprintf("t%d", i), Rating: 3, Tags: []string{}, Type: category}
	}
	return douban.Collection{Count: f.n, Interests: items}, nil
}

func TestLoadSkipsCacheBelowThreshold(t *testing.T) {
	st := &memStore{data: map[string][]byte{}}
	f := &fakeFetcher{n: 25}
	s := NewService(f, cache.New(st))

	got, err := s.Load(context.Background(), "ahbei", "movie")
	require.NoError(t, err)
	assert.Equal(t, 25, got.Count)
	assert.Zero(t, st.sets, "sparse results are not cached")

	_, err = s.Load(context.Background(), "ahbei", "movie")
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls)
}

func TestLoadCachesAtThreshold(t *testing.T) {
	st := &memStore{data: map[string][]byte{}}
	f := &fakeFetcher{n: MinCacheable}
	s := NewService(f, cache.New(st))

	first, err := s.Load(context.Background(), "ahbei", "book")
	require.NoError(t, err)
	assert.Equal(t, 1, st.sets)

	second, err := s.Load(context.Background(), "ahbei", "book")
	require.NoError(t, err)
	assert.Equal(t, 1, f.calls, "second load is served from cache")
	assert.Equal(t, first, second)

	_, err = s.Load(context.Background(), "ahbei", "music")
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls, "category is part of the key")
}

func TestLoadPropagatesUpstreamErrors(t *testing.T) {
	st := &memStore{data: map[string][]byte{}}
	s := NewService(&fakeFetcher{err: douban.ErrNotFound}, cache.New(st))

	_, err := s.Load(context.Background(), "ghost", "movie")
	assert.ErrorIs(t, err, douban.ErrNotFound)
	assert.Zero(t, st.sets)
}

func TestLoadWithoutCache(t *testing.T) {
	f := &fakeFetcher{n: 40}
	s := NewService(f, nil)

	got, err := s.Load(context.Background(), "ahbei", "movie")
	require.NoError(t, err)
	assert.Equal(t, 40, got.Count)
}
