package content

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// scriptQuietWindow is how long a script file must stay untouched before
// its change is reported. Editor saves land as short bursts of writes
// and renames; the window folds each burst into one notification.
const scriptQuietWindow = 100 * time.Millisecond

// ScriptWatcher reports settled changes to on-disk script files so a
// runner can recompile mob types without restarting.
type ScriptWatcher struct {
	fs      *fsnotify.Watcher
	Changed chan string
	Errors  chan error
	done    chan struct{}
	once    sync.Once
}

// WatchScripts starts watching the given directories for yaml changes.
func WatchScripts(dirs ...string) (*ScriptWatcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if err := fs.Add(dir); err != nil {
			_ = fs.Close()
			return nil, err
		}
	}

	sw := &ScriptWatcher{
		fs:      fs,
		Changed: make(chan string, 16),
		Errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}
	go sw.run()
	return sw, nil
}

func (sw *ScriptWatcher) Close() error {
	var err error
	sw.once.Do(func() {
		close(sw.done)
		err = sw.fs.Close()
		close(sw.Changed)
		close(sw.Errors)
	})
	return err
}

func (sw *ScriptWatcher) run() {
	pending := make(map[string]struct{})
	var flush <-chan time.Time

	for {
		select {
		case ev, ok := <-sw.fs.Events:
			if !ok {
				return
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
				!ev.Op.Has(fsnotify.Rename) && !ev.Op.Has(fsnotify.Remove) {
				continue
			}
			if ext := strings.ToLower(filepath.Ext(ev.Name)); ext != ".yaml" && ext != ".yml" {
				continue
			}
			pending[ev.Name] = struct{}{}
			flush = time.After(scriptQuietWindow)

		case <-flush:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
				delete(pending, p)
			}
			sort.Strings(paths)
			for _, p := range paths {
				select {
				case sw.Changed <- p:
				case <-sw.done:
					return
				}
			}
			flush = nil

		case err, ok := <-sw.fs.Errors:
			if !ok {
				return
			}
			sw.Errors <- err

		case <-sw.done:
			return
		}
	}
}
