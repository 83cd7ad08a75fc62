package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/core/clock"
	"github.com/hay-kot/parley/internal/core/composer"
	"github.com/hay-kot/parley/internal/parley"
	"github.com/hay-kot/parley/internal/printer"
	"github.com/hay-kot/parley/pkg/tmpl"
)

type MsgCmd struct {
	flags *Flags

	// send flags
	sendBoard string
	sendFile  string
	sendDelay time.Duration

	// ls flags
	lsBoard    string
	lsSort     string
	lsAsc      bool
	lsLast     int
	lsFormat   string
	lsTemplate string
}

// NewMsgCmd creates a new msg command.
func NewMsgCmd(flags *Flags) *MsgCmd {
	return &MsgCmd{flags: flags}
}

// Register adds the msg command to the application.
func (cmd *MsgCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "msg",
		Usage: "Send and list board messages",
		Description: `Message commands post to and read from a board.

A sent message is saved right away and can be cancelled with ctrl+c while
the countdown runs. Cancelling removes it from the board again.`,
		Commands: []*cli.Command{
			cmd.sendCmd(),
			cmd.lsCmd(),
		},
	})

	return app
}

func (cmd *MsgCmd) sendCmd() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Send a message to a board",
		UsageText: "parley msg send --board ID [message]",
		Description: `Sends a message to the given board.

The message can be provided as:
- A command-line argument
- From a file with -f/--file
- From stdin if no argument is provided

Examples:
  parley msg send --board general "deploy is done"
  echo "hello" | parley msg send --board general
  parley msg send --board general --delay 0 "no take-backs"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "board",
				Aliases:     []string{"b"},
				Usage:       "board ID to post to",
				Required:    true,
				Sources:     cli.EnvVars("PARLEY_BOARD"),
				Destination: &cmd.sendBoard,
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "read message from file",
				Destination: &cmd.sendFile,
			},
			&cli.DurationFlag{
				Name:        "delay",
				Usage:       "how long the send can be cancelled (default: composer.cancel_delay)",
				Value:       -1,
				Destination: &cmd.sendDelay,
			},
		},
		Action: cmd.runSend,
	}
}

func (cmd *MsgCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List the messages on a board",
		UsageText: "parley msg ls --board ID [--sort KEY] [--asc] [--last N]",
		Description: `Lists messages, newest first.

--sort orders by a message field (user, text) instead of the creation date.

Examples:
  parley msg ls --board general
  parley msg ls --board general --last 10
  parley msg ls --board general --sort user --asc --format json
  parley msg ls --board general --template '{{ .User }}: {{ oneline .Text | trunc 60 }}'

--template renders each message with a Go template over ID, User, Text and
CreatedAt. The functions oneline, trunc N and when LAYOUT are available.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "board",
				Aliases:     []string{"b"},
				Usage:       "board ID to read",
				Required:    true,
				Sources:     cli.EnvVars("PARLEY_BOARD"),
				Destination: &cmd.lsBoard,
			},
			&cli.StringFlag{
				Name:        "sort",
				Usage:       "sort key (creationDate, user, text)",
				Destination: &cmd.lsSort,
			},
			&cli.BoolFlag{
				Name:        "asc",
				Usage:       "sort ascending",
				Destination: &cmd.lsAsc,
			},
			&cli.IntFlag{
				Name:        "last",
				Aliases:     []string{"n"},
				Usage:       "return at most N messages",
				Destination: &cmd.lsLast,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.lsFormat,
			},
			&cli.StringFlag{
				Name:        "template",
				Aliases:     []string{"t"},
				Usage:       "render each message with a Go template",
				Destination: &cmd.lsTemplate,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *MsgCmd) runSend(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	text, err := cmd.readText(c)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("message is empty")
	}

	board, err := cmd.flags.Service.GetBoard(ctx, cmd.sendBoard)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	delay := cmd.sendDelay
	if delay < 0 {
		delay = cmd.flags.Config.Composer.CancelDelay
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	s := &sender{
		service: cmd.flags.Service,
		board:   board,
		delay:   delay,
		printer: p,
		preview: preview(text, 40),
	}

	out, err := s.send(ctx, text, sigs)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	if out.cancelled {
		p.Warnf("Cancelled, message removed from %s", board.Name)
		return nil
	}

	p.Success("Message sent", fmt.Sprintf("%s (%s)", board.Name, out.id))
	return nil
}

func (cmd *MsgCmd) readText(c *cli.Command) (string, error) {
	switch {
	case c.NArg() >= 1:
		return strings.Join(c.Args().Slice(), " "), nil
	case cmd.sendFile != "":
		data, err := os.ReadFile(cmd.sendFile)
		if err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
}

// sendOutcome is how a send ended.
type sendOutcome struct {
	id        string
	cancelled bool
}

// sender runs one submission through a composer on an event loop, so the
// countdown ticks, the interrupt handler and the store calls never overlap.
type sender struct {
	service *parley.Service
	board   chat.Board
	delay   time.Duration
	printer *printer.Printer
	preview string
}

func (s *sender) send(ctx context.Context, text string, interrupts <-chan os.Signal) (sendOutcome, error) {
	loop := clock.NewLoop()
	loopCtx, stop := context.WithCancel(ctx)
	defer stop()
	go loop.Run(loopCtx)

	type result struct {
		out sendOutcome
		err error
	}

	var (
		comp    *composer.Composer
		out     sendOutcome
		offered bool
		done    = make(chan result, 1)
		finish  = func(r result) {
			select {
			case done <- r:
			default:
			}
		}
	)

	logger := log.With().Str("component", "composer").Logger()

	loop.Post(func() {
		comp = composer.New(loop, composer.Options{
			CancelDelay: s.delay,
			OnSend: func(text string) {
				m, err := chat.NewMessage(s.service.User(), text)
				if err == nil {
					m, err = s.service.PostMessage(ctx, s.board.ID, m)
				}
				if err != nil {
					finish(result{err: err})
					return
				}
				out.id = m.ID
			},
			OnCancel: func() {
				out.cancelled = true
				if err := s.service.RetractMessage(ctx, out.id); err != nil {
					finish(result{err: err})
				}
			},
			OnChange: func(st composer.State) {
				if sending, ok := st.(composer.Sending); ok {
					offered = true
					s.printer.Pending(s.preview, sending.Window.Remaining())
					return
				}
				if offered {
					s.printer.ClearLine()
					finish(result{out: out})
				}
			},
			OnTick: func(int) {
				if w := comp.Offered(); w != nil {
					s.printer.Pending(s.preview, w.Remaining())
				}
			},
			Logger: &logger,
		})

		comp.Edit(text)
		comp.Submit()

		if !offered {
			// Zero delay: committed during Submit.
			finish(result{out: out})
		}
	})

	for {
		select {
		case r := <-done:
			return r.out, r.err
		case <-interrupts:
			loop.Post(func() {
				if comp != nil && !comp.Cancel() {
					log.Debug().Msg("interrupt after the cancel window closed")
				}
			})
		case <-ctx.Done():
			return sendOutcome{}, ctx.Err()
		}
	}
}

func (cmd *MsgCmd) runLs(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	msgs, err := cmd.flags.Service.ListMessages(ctx, cmd.lsBoard, parley.ListMessagesOptions{
		SortKey:   cmd.lsSort,
		Ascending: cmd.lsAsc,
		Limit:     cmd.lsLast,
	})
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}

	if cmd.lsTemplate != "" {
		return printMessagesTemplate(c.Root().Writer, cmd.lsTemplate, msgs)
	}
	if cmd.lsFormat == "json" {
		return printMessagesJSON(c.Root().Writer, msgs)
	}

	if len(msgs) == 0 {
		p.Infof("No messages")
		return nil
	}

	out := printer.New(c.Root().Writer)
	for _, m := range msgs {
		when := ""
		if m.CreationDate != nil {
			when = m.CreationDate.Local().Format(time.DateTime)
		}
		out.Message(m.User, when, m.Text)
	}
	return nil
}

// messageJSON is the JSON line form of a message.
type messageJSON struct {
	ID        string     `json:"id"`
	User      string     `json:"user"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

func printMessagesTemplate(w io.Writer, text string, msgs []chat.Message) error {
	t, err := tmpl.Parse(text)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		line, err := t.Execute(messageJSON{ID: m.ID, User: m.User, Text: m.Text, CreatedAt: m.CreationDate})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func printMessagesJSON(w io.Writer, msgs []chat.Message) error {
	enc := json.NewEncoder(w)
	for _, m := range msgs {
		if err := enc.Encode(messageJSON{ID: m.ID, User: m.User, Text: m.Text, CreatedAt: m.CreationDate}); err != nil {
			return err
		}
	}
	return nil
}
