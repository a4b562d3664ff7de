// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the view.
type Styles struct {
	Title      lipgloss.Style
	Label      lipgloss.Style
	Muted      lipgloss.Style
	Suggestion lipgloss.Style
	Accepted   lipgloss.Style
	Field      lipgloss.Style
	FieldFocus lipgloss.Style
	FieldFlash lipgloss.Style
	Error      lipgloss.Style
}

// DefaultStyles returns the default palette.
func DefaultStyles() Styles {
	var (
		primary = lipgloss.Color("#7C3AED")
		accent  = lipgloss.Color("#06B6D4")
		muted   = lipgloss.Color("#6C7086")
		success = lipgloss.Color("#A6E3A1")
		failure = lipgloss.Color("#F38BA8")
		border  = lipgloss.Color("#45475A")
	)
	field := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border).Padding(0, 1)
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(primary),
		Label:      lipgloss.NewStyle().Bold(true),
		Muted:      lipgloss.NewStyle().Foreground(muted),
		Suggestion: lipgloss.NewStyle().Foreground(accent),
		Accepted:   lipgloss.NewStyle().Bold(true).Foreground(success),
		Field:      field,
		FieldFocus: field.BorderForeground(primary),
		FieldFlash: field.BorderForeground(success),
		Error:      lipgloss.NewStyle().Foreground(failure),
	}
}
