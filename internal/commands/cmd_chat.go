package commands

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/tui"
)

type ChatCmd struct {
	flags *Flags
	board string
}

// NewChatCmd creates a new chat command
func NewChatCmd(flags *Flags) *ChatCmd {
	return &ChatCmd{flags: flags}
}

// Flags returns the chat flags for registration on the root command
func (cmd *ChatCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "board",
			Aliases:     []string{"b"},
			Usage:       "board ID to open (prompts when omitted)",
			Sources:     cli.EnvVars("PARLEY_BOARD"),
			Destination: &cmd.board,
		},
	}
}

// Register adds the chat command to the application
func (cmd *ChatCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "chat",
		Usage:     "Open the chat screen for a board",
		UsageText: "parley chat [--board ID]",
		Description: `Opens the interactive chat screen.

Messages are sent with enter and can be taken back with ctrl+z until the
countdown under the message list runs out. Without --board, a picker lists
the existing boards.`,
		Flags:  cmd.Flags(),
		Action: cmd.run,
	})

	return app
}

// Run executes the chat screen. Exported for use as default command.
func (cmd *ChatCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *ChatCmd) run(ctx context.Context, _ *cli.Command) error {
	board, err := cmd.pickBoard(ctx)
	if err != nil {
		return err
	}

	m := tui.New(cmd.flags.Service, cmd.flags.Config, board, tui.Options{
		WatchPath: cmd.flags.Config.RecordsPath(),
		Logger:    log.With().Str("component", "tui").Logger(),
	})
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}

func (cmd *ChatCmd) pickBoard(ctx context.Context) (chat.Board, error) {
	if cmd.board != "" {
		b, err := cmd.flags.Service.GetBoard(ctx, cmd.board)
		if err != nil {
			return chat.Board{}, fmt.Errorf("open board: %w", err)
		}
		return b, nil
	}

	boards, err := cmd.flags.Service.ListBoards(ctx)
	if err != nil {
		return chat.Board{}, fmt.Errorf("list boards: %w", err)
	}

	b, err := tui.NewBoardPicker(boards, "").Run()
	switch {
	case errors.Is(err, tui.ErrNoBoards):
		return chat.Board{}, errors.New("no boards yet\n\nCreate one with: parley board new --name general")
	case errors.Is(err, huh.ErrUserAborted):
		return chat.Board{}, cli.Exit("", 130)
	case err != nil:
		return chat.Board{}, fmt.Errorf("pick board: %w", err)
	}
	return b, nil
}
