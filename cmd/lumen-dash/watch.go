package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// debounceWindow coalesces bursts of writes (sqlite touches the db and its
// WAL file together) into a single refresh.
const debounceWindow = 250 * time.Millisecond

// watchStoreFile returns a tea.Cmd that waits for the local store file to
// change and then emits one fsChangeMsg. Returns nil if the file's directory
// doesn't exist or watcher creation fails; the dashboard falls back to
// tick-based polling. Re-arm by calling again after handling the message.
func watchStoreFile(dbPath string) tea.Cmd {
	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); err != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("fsnotify: failed to create watcher: %v (falling back to polling)", err)
		return nil
	}
	// Watch the directory: sqlite replaces WAL/journal files alongside the db.
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close() // Best effort close
		log.Printf("fsnotify: failed to watch %s: %v (falling back to polling)", dir, err)
		return nil
	}

	base := filepath.Base(dbPath)
	return func() tea.Msg {
		defer watcher.Close() //nolint:errcheck // best-effort close

		var debounce <-chan time.Time
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !relatedToStore(event.Name, base) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				debounce = time.After(debounceWindow)

			case <-debounce:
				return fsChangeMsg{}

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				log.Printf("fsnotify: watch error: %v", err)
			}
		}
	}
}

// relatedToStore reports whether a changed path belongs to the store file or
// its sqlite sidecars (-wal, -shm, -journal).
func relatedToStore(changed, base string) bool {
	name := filepath.Base(changed)
	if name == base {
		return true
	}
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		if name == base+suffix {
			return true
		}
	}
	return false
}
