// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tui is an interactive terminal form for building a search: the
// PubMed query is translated as it is typed and the suggestion can be
// copied into the Semantic Scholar field with one key.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/litbridge/internal/search"
	"github.com/pdiddy/litbridge/internal/suggest"
	"github.com/pdiddy/litbridge/pkg/types"
)

// Searcher runs a reconciled search.
type Searcher interface {
	Search(ctx context.Context, req types.SearchRequest) (search.Output, error)
}

// Key bindings.
const (
	keyAccept = "ctrl+t"
	keyFocus  = "tab"
	keySearch = "enter"
	keyQuit   = "ctrl+c"
)

// maxListed bounds the result titles drawn under the form.
const maxListed = 10

type field int

const (
	fieldPubMed field = iota
	fieldSemantic
)

// presenterChangedMsg tells the update loop to re-read the presenter, for
// example after its highlight timer fired.
type presenterChangedMsg struct{}

type searchDoneMsg struct {
	out search.Output
	err error
}

// Model is the bubbletea model for the search form.
type Model struct {
	ctx       context.Context
	styles    Styles
	presenter *suggest.Presenter
	searcher  Searcher

	pubmed   textinput.Model
	semantic textinput.Model
	focus    field

	snap      suggest.Snapshot
	searching bool
	out       *search.Output
	err       error
	width     int
}

// New returns a model backed by presenter. searcher may be nil, in which
// case the form only translates.
func New(ctx context.Context, presenter *suggest.Presenter, searcher Searcher) *Model {
	pm := textinput.New()
	pm.Placeholder = `cancer[Title/Abstract] AND (2020/1/1:2024/12/31[pdat])`
	pm.CharLimit = 4096
	pm.Width = 70
	pm.Focus()

	ss := textinput.New()
	ss.Placeholder = "Semantic Scholar query"
	ss.CharLimit = 4096
	ss.Width = 70

	return &Model{
		ctx:       ctx,
		styles:    DefaultStyles(),
		presenter: presenter,
		searcher:  searcher,
		pubmed:    pm,
		semantic:  ss,
		width:     80,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := max(msg.Width-8, 20)
		m.pubmed.Width = w
		m.semantic.Width = w
		return m, nil

	case presenterChangedMsg:
		m.snap = m.presenter.Snapshot()
		return m, nil

	case searchDoneMsg:
		m.searching = false
		m.err = msg.err
		if msg.err == nil {
			out := msg.out
			m.out = &out
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	if m.focus == fieldPubMed {
		m.pubmed, cmd = m.pubmed.Update(msg)
	} else {
		m.semantic, cmd = m.semantic.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, "esc":
		m.presenter.Close()
		return m, tea.Quit

	case keyFocus:
		return m, m.toggleFocus()

	case keyAccept:
		if text, ok := m.presenter.Accept(); ok {
			m.semantic.SetValue(text)
			m.semantic.CursorEnd()
			m.snap = m.presenter.Snapshot()
		}
		return m, nil

	case keySearch:
		return m, m.startSearch()
	}

	var cmd tea.Cmd
	if m.focus == fieldPubMed {
		before := m.pubmed.Value()
		m.pubmed, cmd = m.pubmed.Update(msg)
		if v := m.pubmed.Value(); v != before {
			m.snap = m.presenter.SetSource(v)
		}
	} else {
		m.semantic, cmd = m.semantic.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == fieldPubMed {
		m.focus = fieldSemantic
		m.pubmed.Blur()
		return m.semantic.Focus()
	}
	m.focus = fieldPubMed
	m.semantic.Blur()
	return m.pubmed.Focus()
}

// Request builds the search request the form currently describes.
func (m *Model) Request() types.SearchRequest {
	return types.SearchRequest{
		PubMedQuery:   strings.TrimSpace(m.pubmed.Value()),
		SemanticQuery: strings.TrimSpace(m.semantic.Value()),
		DateStart:     m.snap.DateStart,
		DateEnd:       m.snap.DateEnd,
	}
}

func (m *Model) startSearch() tea.Cmd {
	if m.searcher == nil || m.searching {
		return nil
	}
	req := m.Request()
	if req.PubMedQuery == "" && req.SemanticQuery == "" {
		return nil
	}
	m.searching = true
	m.err = nil
	ctx, s := m.ctx, m.searcher
	return func() tea.Msg {
		out, err := s.Search(ctx, req)
		return searchDoneMsg{out: out, err: err}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("litbridge"))
	b.WriteString("\n\n")

	b.WriteString(s.Label.Render("PubMed"))
	b.WriteString("\n")
	b.WriteString(m.fieldStyle(fieldPubMed).Render(m.pubmed.View()))
	b.WriteString("\n")
	b.WriteString(m.suggestionLine())
	b.WriteString("\n\n")

	b.WriteString(s.Label.Render("Semantic Scholar"))
	b.WriteString("\n")
	b.WriteString(m.fieldStyle(fieldSemantic).Render(m.semantic.View()))
	b.WriteString("\n")

	if m.snap.DateStart != "" || m.snap.DateEnd != "" {
		b.WriteString(s.Muted.Render(fmt.Sprintf("dates: %s to %s", dash(m.snap.DateStart), dash(m.snap.DateEnd))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.searching:
		b.WriteString(s.Muted.Render("searching..."))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(s.Error.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	case m.out != nil:
		b.WriteString(m.results())
	}

	help := keyAccept + " use suggestion  " + keyFocus + " switch field  " + keySearch + " search  esc quit"
	if m.searcher == nil {
		help = keyAccept + " use suggestion  " + keyFocus + " switch field  esc quit"
	}
	b.WriteString("\n")
	b.WriteString(s.Muted.Render(help))
	return b.String()
}

func (m *Model) fieldStyle(f field) lipgloss.Style {
	switch {
	case f == fieldSemantic && m.snap.State == suggest.Highlighted:
		return m.styles.FieldFlash
	case f == m.focus:
		return m.styles.FieldFocus
	default:
		return m.styles.Field
	}
}

func (m *Model) suggestionLine() string {
	switch m.snap.State {
	case suggest.Visible:
		return m.styles.Muted.Render("suggestion: ") + m.styles.Suggestion.Render(m.snap.Suggestion)
	case suggest.Highlighted:
		return m.styles.Accepted.Render("copied: " + m.snap.Accepted)
	default:
		return ""
	}
}

func (m *Model) results() string {
	c := m.out.Coverage
	var b strings.Builder
	fmt.Fprintf(&b, "PubMed %d  Semantic Scholar %d  unique PubMed %d  unique S2 %d  duplicates %d\n",
		c.PubMedResults, c.SemanticScholarResults, c.UniqueToPubMed, c.UniqueToSemantic, c.DuplicateCount)
	for i, p := range m.out.Papers {
		if i == maxListed {
			b.WriteString(m.styles.Muted.Render(fmt.Sprintf("... %d more", len(m.out.Papers)-maxListed)))
			b.WriteString("\n")
			break
		}
		year := "----"
		if p.Year > 0 {
			year = fmt.Sprint(p.Year)
		}
		fmt.Fprintf(&b, "%2d. %s  %s\n", i+1, year, p.Title)
	}
	for _, w := range m.out.Warnings {
		b.WriteString(m.styles.Muted.Render("warning: " + w))
		b.WriteString("\n")
	}
	return b.String()
}

func dash(s string) string {
	if s == "" {
		return "open"
	}
	return s
}
