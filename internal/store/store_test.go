// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litbridge/pkg/types"
)

// fakeNow is a settable clock.
type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }

func testStore(t *testing.T, maxEntries int, expiry time.Duration) (*Store, *fakeNow) {
	t.Helper()
	s, err := Open(types.CacheConfig{
		Path:       filepath.Join(t.TempDir(), "cache", "litbridge.db"),
		MaxEntries: maxEntries,
		Expiry:     expiry,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := &fakeNow{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.now = clock.now
	return s, clock
}

func sampleEntry(query string) Entry {
	return Entry{
		Request:  types.SearchRequest{PubMedQuery: query, DateStart: "2020-01-01"},
		Coverage: types.Coverage{PubMedResults: 3, SemanticScholarResults: 2, DuplicateCount: 1},
		Papers: []types.Paper{
			{PMID: "1", Title: "One", Authors: []string{"A", "B"}, Year: 2021, Sources: []string{"pubmed"}},
			{ScholarID: "s2", Title: "Two", CitationCount: 9, Sources: []string{"semantic_scholar"}},
		},
		Warnings: []string{"pubmed: phrase ignored: the"},
	}
}

func TestAddAndGet(t *testing.T) {
	s, clock := testStore(t, 0, 0)
	ctx := context.Background()

	id, err := s.Add(ctx, sampleEntry("cancer"))
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "identifiers are UUIDs")

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.True(t, got.CreatedAt.Equal(clock.t))
	assert.Equal(t, "cancer", got.Request.PubMedQuery)
	assert.Equal(t, 1, got.Coverage.DuplicateCount)
	require.Len(t, got.Papers, 2)
	assert.Equal(t, []string{"A", "B"}, got.Papers[0].Authors)
	assert.Equal(t, 9, got.Papers[1].CitationCount)
	assert.Equal(t, []string{"pubmed: phrase ignored: the"}, got.Warnings)

	resp := got.Response()
	assert.Equal(t, id, resp.SearchID)
	assert.Len(t, resp.Papers, 2)
}

func TestGetUnknown(t *testing.T) {
	s, _ := testStore(t, 0, 0)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetExpired(t *testing.T) {
	s, clock := testStore(t, 0, time.Hour)
	ctx := context.Background()

	id, err := s.Add(ctx, sampleEntry("x"))
	require.NoError(t, err)

	clock.t = clock.t.Add(59 * time.Minute)
	_, err = s.Get(ctx, id)
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrExpired)

	// Expired entries are removed on first access.
	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddEvictsOldest(t *testing.T) {
	s, clock := testStore(t, 3, 0)
	ctx := context.Background()

	var ids []string
	for _, q := range []string{"a", "b", "c", "d", "e"} {
		id, err := s.Add(ctx, sampleEntry(q))
		require.NoError(t, err)
		ids = append(ids, id)
		clock.t = clock.t.Add(time.Second)
	}

	for _, id := range ids[:2] {
		_, err := s.Get(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	for _, id := range ids[2:] {
		_, err := s.Get(ctx, id)
		assert.NoError(t, err)
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "e", list[0].PubMedQuery, "newest first")
	assert.Equal(t, 2, list[0].Papers)
}

func TestAddEvictsWithinSameInstant(t *testing.T) {
	s, _ := testStore(t, 2, 0)
	ctx := context.Background()

	first, err := s.Add(ctx, sampleEntry("a"))
	require.NoError(t, err)
	_, err = s.Add(ctx, sampleEntry("b"))
	require.NoError(t, err)
	_, err = s.Add(ctx, sampleEntry("c"))
	require.NoError(t, err)

	_, err = s.Get(ctx, first)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCleanupAndListSkipExpired(t *testing.T) {
	s, clock := testStore(t, 0, time.Hour)
	ctx := context.Background()

	_, err := s.Add(ctx, sampleEntry("old"))
	require.NoError(t, err)
	clock.t = clock.t.Add(90 * time.Minute)
	_, err = s.Add(ctx, sampleEntry("new"))
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].PubMedQuery)

	clock.t = clock.t.Add(2 * time.Hour)
	n, err := s.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "litbridge.db")
	cfg := types.CacheConfig{Path: path}

	s, err := Open(cfg)
	require.NoError(t, err)
	id, err := s.Add(context.Background(), sampleEntry("persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(cfg)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Request.PubMedQuery)
}

func TestAddKeepsExplicitID(t *testing.T) {
	s, _ := testStore(t, 0, 0)
	e := sampleEntry("x")
	e.ID = "fixed-id"
	id, err := s.Add(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", id)

	_, err = s.Add(context.Background(), e)
	assert.Error(t, err, "identifiers are unique")
}
