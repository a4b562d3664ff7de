// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdiddy/litbridge/internal/suggest"
)

// Run starts the interactive form and blocks until the user quits or ctx
// is cancelled. highlight sets how long an accepted suggestion stays
// highlighted; zero selects suggest.DefaultHighlight.
func Run(ctx context.Context, searcher Searcher, highlight time.Duration) error {
	var prog *tea.Program
	presenter := suggest.New(suggest.Options{
		Highlight: highlight,
		// Send blocks until the event loop receives, and the presenter
		// also reports changes made from inside Update.
		OnChange: func(suggest.Snapshot) {
			go prog.Send(presenterChangedMsg{})
		},
	})
	defer presenter.Close()

	prog = tea.NewProgram(New(ctx, presenter, searcher), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := prog.Run()
	return err
}
