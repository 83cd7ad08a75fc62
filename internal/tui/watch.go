package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// storeChangedMsg is sent when the records file changes on disk.
type storeChangedMsg struct{}

// StoreWatcher reports changes to the records file made by any process.
// Bursts of events collapse into a single pending notification.
type StoreWatcher struct {
	watcher *fsnotify.Watcher
	prefix  string
	changed chan struct{}
	cancel  context.CancelFunc
	log     zerolog.Logger
}

// WatchStore watches the directory holding path. Events for path and its
// siblings sharing its name (journal, WAL and lock files) count as changes.
func WatchStore(path string, log zerolog.Logger) (*StoreWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sw := &StoreWatcher{
		watcher: w,
		prefix:  filepath.Base(path),
		changed: make(chan struct{}, 1),
		cancel:  cancel,
		log:     log,
	}

	go sw.processEvents(ctx)
	return sw, nil
}

func (sw *StoreWatcher) processEvents(ctx context.Context) {
	defer close(sw.changed)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !sw.relevant(event) {
				continue
			}
			select {
			case sw.changed <- struct{}{}:
			default:
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Warn().Err(err).Msg("store watcher error")
		}
	}
}

func (sw *StoreWatcher) relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if !strings.HasPrefix(name, sw.prefix) {
		return false
	}
	// The lock file and the temp file written before the atomic rename carry
	// no new content; the rename shows up as a create of the store itself.
	if strings.HasSuffix(name, ".lock") || strings.HasSuffix(name, ".tmp") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}

// Listen waits for the next change.
func (sw *StoreWatcher) Listen() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-sw.changed; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

// Close stops watching.
func (sw *StoreWatcher) Close() error {
	sw.cancel()
	return sw.watcher.Close()
}
