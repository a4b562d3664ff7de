// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litbridge/internal/search"
	"github.com/pdiddy/litbridge/internal/suggest"
	"github.com/pdiddy/litbridge/pkg/types"
)

// stepClock fires the most recently armed timer on demand.
type stepClock struct {
	fns []func()
}

type stepTimer struct{}

func (stepTimer) Stop() bool { return true }

func (c *stepClock) AfterFunc(_ time.Duration, f func()) suggest.Timer {
	c.fns = append(c.fns, f)
	return stepTimer{}
}

func (c *stepClock) fireLast() { c.fns[len(c.fns)-1]() }

type fakeSearcher struct {
	out search.Output
	err error
	got types.SearchRequest
}

func (f *fakeSearcher) Search(_ context.Context, req types.SearchRequest) (search.Output, error) {
	f.got = req
	return f.out, f.err
}

func newModel(t *testing.T, s Searcher) (*Model, *stepClock) {
	t.Helper()
	clock := &stepClock{}
	p := suggest.New(suggest.Options{Clock: clock})
	t.Cleanup(p.Close)
	return New(context.Background(), p, s), clock
}

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func TestTypingShowsSuggestion(t *testing.T) {
	m, _ := newModel(t, nil)
	assert.Equal(t, suggest.Hidden, m.snap.State)

	typeText(m, "cancer[Title/Abstract] AND (2020/1/1:2024/12/31[pdat])")
	assert.Equal(t, suggest.Visible, m.snap.State)
	assert.Equal(t, "cancer", m.snap.Suggestion)

	view := m.View()
	assert.Contains(t, view, "suggestion: ")
	assert.Contains(t, view, "2020-01-01 to 2024-12-31")
}

func TestAcceptCopiesAndHighlights(t *testing.T) {
	m, clock := newModel(t, nil)
	typeText(m, "a AND b")

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, "a + b", m.semantic.Value())
	assert.Equal(t, suggest.Highlighted, m.snap.State)
	assert.Contains(t, m.View(), "copied: a + b")

	clock.fireLast()
	m.Update(presenterChangedMsg{})
	assert.Equal(t, suggest.Visible, m.snap.State)
	assert.NotContains(t, m.View(), "copied:")
}

func TestAcceptWithoutSuggestion(t *testing.T) {
	m, clock := newModel(t, nil)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Empty(t, m.semantic.Value())
	assert.Empty(t, clock.fns)
}

func TestTabSwitchesField(t *testing.T) {
	m, _ := newModel(t, nil)
	typeText(m, "x AND y")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldSemantic, m.focus)
	assert.True(t, m.semantic.Focused())
	assert.False(t, m.pubmed.Focused())

	typeText(m, "manual")
	assert.Equal(t, "manual", m.semantic.Value())
	assert.Equal(t, "x + y", m.snap.Suggestion, "editing the target leaves the suggestion alone")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, fieldPubMed, m.focus)
}

func TestSearch(t *testing.T) {
	fs := &fakeSearcher{out: search.Output{
		Coverage: types.Coverage{PubMedResults: 1, SemanticScholarResults: 1, DuplicateCount: 1},
		Papers:   []types.Paper{{Title: "Shared paper", Year: 2021}},
		Warnings: []string{"pubmed: phrase not found: zzz"},
	}}
	m, _ := newModel(t, fs)
	typeText(m, "cancer AND (2020/1/1:2024/12/31[pdat])")
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "searching...")

	_, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, again, "no second search while one is running")

	m.Update(cmd())
	assert.Equal(t, types.SearchRequest{
		PubMedQuery:   "cancer AND (2020/1/1:2024/12/31[pdat])",
		SemanticQuery: "cancer",
		DateStart:     "2020-01-01",
		DateEnd:       "2024-12-31",
	}, fs.got)

	view := m.View()
	assert.Contains(t, view, "1. 2021  Shared paper")
	assert.Contains(t, view, "duplicates 1")
	assert.Contains(t, view, "warning: pubmed: phrase not found: zzz")
}

func TestSearchError(t *testing.T) {
	m, _ := newModel(t, &fakeSearcher{err: errors.New("upstream provider failed")})
	typeText(m, "x")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Contains(t, m.View(), "error: upstream provider failed")
}

func TestSearchNeedsSearcherAndQuery(t *testing.T) {
	m, _ := newModel(t, nil)
	typeText(m, "x")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m, _ = newModel(t, &fakeSearcher{})
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "empty form")
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestWindowResize(t *testing.T) {
	m, _ := newModel(t, nil)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 112, m.pubmed.Width)
	m.Update(tea.WindowSizeMsg{Width: 10, Height: 40})
	assert.Equal(t, 20, m.semantic.Width)
}
