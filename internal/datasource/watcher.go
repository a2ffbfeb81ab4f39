package datasource

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/phuslu/log"
)

// Watcher reports changes to ticker documents in a FileSource directory.
// Cached documents are invalidated before the callback runs.
type Watcher struct {
	source   *FileSource
	onChange func(ticker string)
}

// NewWatcher creates a watcher for source. onChange may be nil.
func NewWatcher(source *FileSource, onChange func(ticker string)) *Watcher {
	return &Watcher{source: source, onChange: onChange}
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.source.Dir()); err != nil {
		return fmt.Errorf("watch %s: %w", w.source.Dir(), err)
	}
	log.Info().Str("dir", w.source.Dir()).Msg("watching statement documents")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	ticker, _, ok := TickerFromPath(filepath.Base(ev.Name))
	if !ok {
		return
	}
	w.source.Invalidate(ticker)
	log.Debug().Str("ticker", ticker).Str("op", ev.Op.String()).Msg("document changed")
	if w.onChange != nil {
		w.onChange(ticker)
	}
}
