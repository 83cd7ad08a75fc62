package tui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreWatcher_Relevant(t *testing.T) {
	sw := &StoreWatcher{prefix: "records.json"}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"records write", fsnotify.Event{Name: "/d/records.json", Op: fsnotify.Write}, true},
		{"rename target", fsnotify.Event{Name: "/d/records.json", Op: fsnotify.Create}, true},
		{"temp file write", fsnotify.Event{Name: "/d/records.json.tmp", Op: fsnotify.Write}, false},
		{"temp file rename", fsnotify.Event{Name: "/d/records.json.tmp", Op: fsnotify.Rename}, false},
		{"lock file", fsnotify.Event{Name: "/d/records.json.lock", Op: fsnotify.Write}, false},
		{"other file", fsnotify.Event{Name: "/d/config.yaml", Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: "/d/records.json", Op: fsnotify.Chmod}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sw.relevant(tt.event))
		})
	}
}

func TestStoreWatcher_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.json")

	sw, err := WatchStore(path, zerolog.Nop())
	require.NoError(t, err)
	defer func() { _ = sw.Close() }()

	require.NoError(t, os.WriteFile(path, []byte(`{"records":[]}`), 0o644))

	got := make(chan any, 1)
	go func() { got <- sw.Listen()() }()

	select {
	case msg := <-got:
		assert.IsType(t, storeChangedMsg{}, msg)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}
