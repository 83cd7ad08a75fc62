// Package parley orchestrates boards and messages over a record database.
package parley

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/hay-kot/parley/internal/core/chat"
	"github.com/hay-kot/parley/internal/core/record"
)

// ErrBoardNotFound is returned when a board does not exist.
var ErrBoardNotFound = errors.New("board not found")

// CreateBoardOptions configures board creation.
type CreateBoardOptions struct {
	Name        string
	Description string
	ID          string // generated when empty
}

// ListMessagesOptions configures message listing.
type ListMessagesOptions struct {
	SortKey   string // record.SortCreationDate when empty
	Ascending bool
	Limit     int
}

// Service orchestrates parley operations.
type Service struct {
	db   record.Database
	user string
	log  zerolog.Logger
}

// New creates a new Service acting as user.
func New(db record.Database, user string, log zerolog.Logger) *Service {
	return &Service{
		db:   db,
		user: user,
		log:  log,
	}
}

// User returns the name messages and boards are created under.
func (s *Service) User() string {
	return s.user
}

// CreateBoard validates and stores a new board owned by the current user.
func (s *Service) CreateBoard(ctx context.Context, opts CreateBoardOptions) (chat.Board, error) {
	var bopts []chat.BoardOption
	if opts.ID != "" {
		bopts = append(bopts, chat.WithBoardID(opts.ID))
	}

	b, err := chat.NewBoard(s.user, opts.Name, opts.Description, bopts...)
	if err != nil {
		return chat.Board{}, err
	}

	if _, err := s.db.Save(ctx, b.Record()); err != nil {
		return chat.Board{}, fmt.Errorf("save board: %w", err)
	}

	s.log.Info().Str("board_id", b.ID).Str("name", b.Name).Msg("board created")
	return b, nil
}

// GetBoard returns a board with its message count and last message filled
// in.
func (s *Service) GetBoard(ctx context.Context, id string) (chat.Board, error) {
	r, err := s.db.Fetch(ctx, chat.BoardRecordType, id)
	if err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return chat.Board{}, fmt.Errorf("%w: %s", ErrBoardNotFound, id)
		}
		return chat.Board{}, fmt.Errorf("fetch board: %w", err)
	}

	b, err := chat.BoardFromRecord(r)
	if err != nil {
		return chat.Board{}, fmt.Errorf("decode board %s: %w", id, err)
	}

	return s.withSummary(ctx, b)
}

// ListBoards returns every board sorted by name.
func (s *Service) ListBoards(ctx context.Context) ([]chat.Board, error) {
	records, err := s.db.Query(ctx, record.Query{
		Type: chat.BoardRecordType,
		Sort: record.Sort{Key: chat.KeyName, Ascending: true},
	})
	if err != nil {
		return nil, fmt.Errorf("query boards: %w", err)
	}

	boards := make([]chat.Board, 0, len(records))
	for _, r := range records {
		b, err := chat.BoardFromRecord(r)
		if err != nil {
			s.log.Warn().Err(err).Str("record", r.Name).Msg("skipping undecodable board")
			continue
		}

		b, err = s.withSummary(ctx, b)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}

	return boards, nil
}

// DeleteBoard removes a board and, by cascade, its messages.
func (s *Service) DeleteBoard(ctx context.Context, id string) error {
	if _, err := s.db.Fetch(ctx, chat.BoardRecordType, id); err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrBoardNotFound, id)
		}
		return fmt.Errorf("fetch board: %w", err)
	}

	if err := s.db.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete board: %w", err)
	}

	s.log.Info().Str("board_id", id).Msg("board deleted")
	return nil
}

// PostMessage stores m on a board and returns it as saved, with its creation
// date set.
func (s *Service) PostMessage(ctx context.Context, boardID string, m chat.Message) (chat.Message, error) {
	if err := m.Validate(); err != nil {
		return chat.Message{}, err
	}

	if _, err := s.db.Fetch(ctx, chat.BoardRecordType, boardID); err != nil {
		if errors.Is(err, record.ErrNotFound) {
			return chat.Message{}, fmt.Errorf("%w: %s", ErrBoardNotFound, boardID)
		}
		return chat.Message{}, fmt.Errorf("fetch board: %w", err)
	}

	saved, err := s.db.Save(ctx, m.Record(boardID))
	if err != nil {
		return chat.Message{}, fmt.Errorf("save message: %w", err)
	}

	out, err := chat.MessageFromRecord(saved)
	if err != nil {
		return chat.Message{}, fmt.Errorf("decode message: %w", err)
	}

	s.log.Debug().Str("board_id", boardID).Str("message_id", out.ID).Msg("message saved")
	return out, nil
}

// RetractMessage deletes a message, rolling back an optimistic send.
func (s *Service) RetractMessage(ctx context.Context, id string) error {
	if err := s.db.Delete(ctx, id); err != nil {
		return fmt.Errorf("retract message %s: %w", id, err)
	}

	s.log.Debug().Str("message_id", id).Msg("message retracted")
	return nil
}

// ListMessages returns the messages on a board, newest first by default.
func (s *Service) ListMessages(ctx context.Context, boardID string, opts ListMessagesOptions) ([]chat.Message, error) {
	q := chat.MessageQuery(boardID, opts.SortKey, opts.Ascending)
	q.Limit = opts.Limit

	records, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}

	msgs := make([]chat.Message, 0, len(records))
	for _, r := range records {
		m, err := chat.MessageFromRecord(r)
		if err != nil {
			s.log.Warn().Err(err).Str("record", r.Name).Msg("skipping undecodable message")
			continue
		}
		msgs = append(msgs, m)
	}

	return msgs, nil
}

// SearchBoards returns boards whose name or description contains q, ignoring
// case and diacritics.
func (s *Service) SearchBoards(ctx context.Context, q string) ([]chat.Board, error) {
	boards, err := s.ListBoards(ctx)
	if err != nil {
		return nil, err
	}

	out := boards[:0]
	for _, b := range boards {
		if b.Contains(q) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Service) withSummary(ctx context.Context, b chat.Board) (chat.Board, error) {
	msgs, err := s.ListMessages(ctx, b.ID, ListMessagesOptions{})
	if err != nil {
		return chat.Board{}, err
	}

	b.MessagesCount = len(msgs)
	if len(msgs) > 0 {
		last := msgs[0]
		b.LastMessage = &last
	}
	return b, nil
}

// sortBoards orders boards by name, then ID.
func sortBoards(boards []chat.Board) {
	sort.SliceStable(boards, func(i, j int) bool {
		if boards[i].Name != boards[j].Name {
			return boards[i].Name < boards[j].Name
		}
		return boards[i].ID < boards[j].ID
	})
}
