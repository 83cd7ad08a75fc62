// Package tui implements the Bubble Tea chat screen for parley.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/styles"
)

var (
	// Board name when there is something unread.
	unreadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorBlue)

	// Board name when everything is read.
	readStyle = lipgloss.NewStyle().
			Foreground(styles.ColorWhite)

	notifyIconStyle = lipgloss.NewStyle().
			Foreground(styles.ColorMint)

	watchIconStyle = lipgloss.NewStyle().
			Foreground(styles.ColorCyan)

	plainIconStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	descriptionStyle = lipgloss.NewStyle().
				Foreground(styles.ColorGray).
				Italic(true)

	authorStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue).
			Bold(true)

	ownAuthorStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGreen).
			Bold(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	inFlightStyle = lipgloss.NewStyle().
			Foreground(styles.ColorYellow).
			Italic(true)

	emptyStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			PaddingLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.ColorRed).
			PaddingLeft(1)

	controlLabelStyle = lipgloss.NewStyle().
				Foreground(styles.ColorYellow).
				Bold(true)

	controlDestructiveLabelStyle = lipgloss.NewStyle().
					Foreground(styles.ColorRed).
					Bold(true)

	controlReadoutStyle = lipgloss.NewStyle().
				Foreground(styles.ColorWhite)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(styles.ColorYellow)

	composerFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(styles.ColorBlue)

	composerBlurredStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(styles.ColorPanel)

	helpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)
)

// boardNameStyle picks the name style for a board's read status.
func boardNameStyle(b chat.Board) lipgloss.Style {
	if b.Status == chat.StatusUnread {
		return unreadStyle
	}
	return readStyle
}

// boardIconStyle picks the icon color for a board's subscription type.
func boardIconStyle(b chat.Board) lipgloss.Style {
	switch {
	case b.Type.IsNotify():
		return notifyIconStyle
	case b.Type.IsWatch():
		return watchIconStyle
	default:
		return plainIconStyle
	}
}
