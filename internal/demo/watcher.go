package demo

import (
	"fmt"
	"path/filepath"

	"implot3d/internal/logger"
	"implot3d/internal/util"
	"implot3d/pkg/config"

	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reloads the configuration file whenever it changes on disk
// and hands valid results to the render loop. It never touches GL.
type ConfigWatcher struct {
	path    string
	log     *logger.Logger
	watcher *fsnotify.Watcher
	updates chan *config.Config
	done    chan struct{}
}

// WatchConfig starts watching path. The directory is watched rather than the
// file so that editors which replace the file on save are still seen.
func WatchConfig(path string, log *logger.Logger) (*ConfigWatcher, error) {
	if !util.FileExists(path) {
		return nil, fmt.Errorf("config file %s does not exist", path)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	cw := &ConfigWatcher{
		path:    abs,
		log:     log.With("config"),
		watcher: w,
		updates: make(chan *config.Config, 1),
		done:    make(chan struct{}),
	}
	go cw.loop()
	return cw, nil
}

// Updates delivers reloaded configurations. Only the newest pending one is
// kept.
func (cw *ConfigWatcher) Updates() <-chan *config.Config { return cw.updates }

// Close stops the watcher goroutine.
func (cw *ConfigWatcher) Close() error {
	select {
	case <-cw.done:
		return nil
	default:
	}
	close(cw.done)
	return cw.watcher.Close()
}

func (cw *ConfigWatcher) loop() {
	for {
		select {
		case <-cw.done:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cw.reload()
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.log.Warnf("watch error: %v", err)
		}
	}
}

func (cw *ConfigWatcher) reload() {
	cfg, err := config.LoadConfig(cw.path)
	if err != nil {
		cw.log.Warnf("ignoring %s: %v", cw.path, err)
		return
	}
	cw.log.Infof("reloaded %s", cw.path)

	// Replace a pending update that the loop has not picked up yet
	select {
	case <-cw.updates:
	default:
	}
	select {
	case cw.updates <- cfg:
	case <-cw.done:
	}
}
