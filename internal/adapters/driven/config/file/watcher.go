package file

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/HerbCaudill/journal-calendar/internal/core/domain"
)

// Watch reloads the config file on change and invokes onChange with
// the new configuration. Wire onChange to Session.Reconfigure so a
// config edit re-evaluates the auth state without a restart.
//
// Watch blocks until ctx is cancelled.
func (s *ConfigStore) Watch(ctx context.Context, log *zap.Logger, onChange func(domain.OAuthConfig)) error {
	if log == nil {
		log = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on
	// save, which would drop a file-level watch.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := s.Load(); err != nil {
				log.Warn("config reload failed", zap.Error(err))
				continue
			}
			log.Info("configuration reloaded", zap.String("path", s.path))
			onChange(s.OAuthConfig())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", zap.Error(err))
		}
	}
}
