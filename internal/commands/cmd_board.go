package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/parley"
	"github.com/hay-kot/parley/internal/printer"
	"github.com/hay-kot/parley/internal/tui"
)

type BoardCmd struct {
	flags *Flags

	// new flags
	newName        string
	newDescription string
	newID          string

	// ls flags
	lsMatch  string
	lsSearch string

	// rm flags
	rmYes bool
}

// NewBoardCmd creates a new board command.
func NewBoardCmd(flags *Flags) *BoardCmd {
	return &BoardCmd{flags: flags}
}

// Register adds the board command to the application.
func (cmd *BoardCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "board",
		Usage: "Create, list and remove boards",
		Description: `Board commands manage the chat boards in the record store.

Removing a board removes its messages with it.`,
		Commands: []*cli.Command{
			cmd.newCmd(),
			cmd.lsCmd(),
			cmd.rmCmd(),
		},
	})

	return app
}

func (cmd *BoardCmd) newCmd() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a board",
		UsageText: "parley board new [--name NAME] [--description TEXT]",
		Description: `Creates a board owned by the configured user.

When --name is omitted and stdin is a terminal, a form asks for the name
and description.

Examples:
  parley board new --name general
  parley board new --name ops --description "pager chatter"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "name",
				Aliases:     []string{"n"},
				Usage:       "board name",
				Destination: &cmd.newName,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "board description",
				Destination: &cmd.newDescription,
			},
			&cli.StringFlag{
				Name:        "id",
				Usage:       "board ID (generated when omitted)",
				Destination: &cmd.newID,
			},
		},
		Action: cmd.runNew,
	}
}

func (cmd *BoardCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List boards",
		UsageText: "parley board ls [--match GLOB] [--search TEXT]",
		Description: `Displays a table of boards with their message counts.

--match filters board names with a glob pattern (e.g. "team-*").
--search keeps boards whose name or description contains the text,
ignoring case and accents.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "match",
				Aliases:     []string{"m"},
				Usage:       "glob pattern for board names",
				Destination: &cmd.lsMatch,
			},
			&cli.StringFlag{
				Name:        "search",
				Aliases:     []string{"s"},
				Usage:       "text to search in names and descriptions",
				Destination: &cmd.lsSearch,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *BoardCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Remove a board and its messages",
		UsageText: "parley board rm [--yes] <id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.rmYes,
			},
		},
		Action: cmd.runRm,
	}
}

func (cmd *BoardCmd) runNew(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	opts := parley.CreateBoardOptions{
		Name:        cmd.newName,
		Description: cmd.newDescription,
		ID:          cmd.newID,
	}

	if opts.Name == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("board name required\n\nUsage: parley board new --name NAME")
		}

		res, err := cmd.promptBoard(ctx)
		if err != nil {
			return err
		}
		opts.Name = res.Name
		opts.Description = res.Description
	}

	b, err := cmd.flags.Service.CreateBoard(ctx, opts)
	if err != nil {
		return fmt.Errorf("create board: %w", err)
	}

	p.Success("Board created", fmt.Sprintf("%s (%s)", b.Name, b.ID))
	return nil
}

func (cmd *BoardCmd) promptBoard(ctx context.Context) (tui.BoardFormResult, error) {
	boards, err := cmd.flags.Service.ListBoards(ctx)
	if err != nil {
		return tui.BoardFormResult{}, fmt.Errorf("list boards: %w", err)
	}

	existing := make(map[string]bool, len(boards))
	for _, b := range boards {
		existing[b.Name] = true
	}

	res, err := tui.NewBoardForm(existing).Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return tui.BoardFormResult{}, cli.Exit("", 130)
	}
	return res, err
}

func (cmd *BoardCmd) runLs(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	var (
		boards []chat.Board
		err    error
	)
	switch {
	case cmd.lsMatch != "":
		boards, err = cmd.flags.Service.MatchBoards(ctx, cmd.lsMatch)
		if err == nil && cmd.lsSearch != "" {
			boards = filterBoards(boards, cmd.lsSearch)
		}
	case cmd.lsSearch != "":
		boards, err = cmd.flags.Service.SearchBoards(ctx, cmd.lsSearch)
	default:
		boards, err = cmd.flags.Service.ListBoards(ctx)
	}
	if err != nil {
		return fmt.Errorf("list boards: %w", err)
	}

	if len(boards) == 0 {
		p.Infof("No boards found")
		return nil
	}

	w := tabwriter.NewWriter(c.Root().Writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tMESSAGES\tLAST\tDESCRIPTION")

	for _, b := range boards {
		last := "-"
		if b.LastMessage != nil {
			last = preview(b.LastMessage.Text, 32)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s %s\t%d\t%s\t%s\n", b.ID, b.Icon(), b.Name, b.MessagesCount, last, b.Description)
	}

	return w.Flush()
}

func (cmd *BoardCmd) runRm(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id := c.Args().First()
	if id == "" {
		return errors.New("board ID required\n\nUsage: parley board rm <id>")
	}

	b, err := cmd.flags.Service.GetBoard(ctx, id)
	if err != nil {
		return fmt.Errorf("remove board: %w", err)
	}

	if !cmd.rmYes && term.IsTerminal(int(os.Stdin.Fd())) {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Remove %q and its %d message(s)?", b.Name, b.MessagesCount)).
			Value(&confirmed).
			Run()
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			p.Infof("Nothing removed")
			return nil
		}
	}

	if err := cmd.flags.Service.DeleteBoard(ctx, id); err != nil {
		return fmt.Errorf("remove board: %w", err)
	}

	p.Successf("Removed %s and %d message(s)", b.Name, b.MessagesCount)
	return nil
}

// filterBoards keeps boards containing q in their name or description.
func filterBoards(boards []chat.Board, q string) []chat.Board {
	out := make([]chat.Board, 0, len(boards))
	for _, b := range boards {
		if b.Contains(q) {
			out = append(out, b)
		}
	}
	return out
}

// preview flattens text to a single line of at most n runes.
func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > n {
		return string(runes[:n-1]) + "…"
	}
	return text
}
