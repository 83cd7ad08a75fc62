package parley

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/hay-kot/parley/internal/core/chat"
)

// matchBoardPattern checks if name matches the glob pattern.
// Empty pattern matches all boards.
func matchBoardPattern(pattern, name string) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	return doublestar.Match(pattern, name)
}

// MatchBoards returns boards whose name matches a glob pattern such as
// "team-*" or "{ops,infra}-**".
func (s *Service) MatchBoards(ctx context.Context, pattern string) ([]chat.Board, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	boards, err := s.ListBoards(ctx)
	if err != nil {
		return nil, err
	}

	var out []chat.Board
	for _, b := range boards {
		ok, err := matchBoardPattern(pattern, b.Name)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}
		if ok {
			out = append(out, b)
		}
	}

	sortBoards(out)
	return out, nil
}
