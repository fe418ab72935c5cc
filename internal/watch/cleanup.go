package watch

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"git.home.luguber.info/inful/pacpan/internal/logfields"
)

// Cleanup stops a running session and removes its temporary files.
type Cleanup struct {
	cancel context.CancelFunc
	done   chan struct{}
	paths  []string
	exit   func(int)
	once   sync.Once
}

// Close stops the session loop, waits for it to finish and removes the
// temporary bundle and the entry-adjacent temp file. Removal errors are
// ignored. Close is safe to call more than once.
func (c *Cleanup) Close() error {
	c.once.Do(func() {
		c.cancel()
		<-c.done
		for _, p := range c.paths {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				slog.Debug("Temp file not removed", logfields.Path(p), logfields.Error(err))
			}
		}
	})
	return nil
}

// Exit runs Close and terminates the process with status 0.
func (c *Cleanup) Exit() {
	_ = c.Close()
	c.exit(0)
}
