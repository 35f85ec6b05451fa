package main

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
)

const reloadDebounce = 100 * time.Millisecond

// reloader watches the data file and hands every good revision to apply.
// The directory is watched so editors that replace the file on save are
// still seen.
type reloader struct {
	path    string
	apply   func(graph.Document)
	watcher *fsnotify.Watcher
}

func newReloader(path string, apply func(graph.Document)) (*reloader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}
	return &reloader{path: abs, apply: apply, watcher: watcher}, nil
}

// Close stops watching
func (r *reloader) Close() error {
	return r.watcher.Close()
}

func (r *reloader) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != r.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Run reloads after each burst of changes until ctx is done
func (r *reloader) Run(ctx context.Context) {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if r.relevant(event) {
				debounce.Reset(reloadDebounce)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			log.Println(color.RedString("watcher error:"), err)

		case <-debounce.C:
			r.reload()
		}
	}
}

func (r *reloader) reload() {
	doc, err := graph.LoadDocument(r.path)
	if err != nil {
		// keep serving the last good document
		log.Println(color.RedString("reload failed:"), err)
		return
	}
	r.apply(doc)
}
