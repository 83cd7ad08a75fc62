package parley

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchBoardPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		board   string
		want    bool
		wantErr bool
	}{
		{name: "empty pattern matches all", pattern: "", board: "general", want: true},
		{name: "exact match", pattern: "general", board: "general", want: true},
		{name: "star", pattern: "team-*", board: "team-ops", want: true},
		{name: "star no match", pattern: "team-*", board: "ops-team", want: false},
		{name: "alternation", pattern: "{ops,infra}-*", board: "infra-alerts", want: true},
		{name: "character class", pattern: "room-[0-9]", board: "room-7", want: true},
		{name: "invalid pattern", pattern: "room-[", board: "room-7", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := matchBoardPattern(tt.pattern, tt.board)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_MatchBoards(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	mustBoard(t, svc, "b1", "team-ops")
	mustBoard(t, svc, "b2", "team-dev")
	mustBoard(t, svc, "b3", "random")

	boards, err := svc.MatchBoards(ctx, "team-*")
	require.NoError(t, err)
	require.Len(t, boards, 2)
	assert.Equal(t, "team-dev", boards[0].Name)
	assert.Equal(t, "team-ops", boards[1].Name)

	_, err = svc.MatchBoards(ctx, "team-[")
	assert.Error(t, err)
}
