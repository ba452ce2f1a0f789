package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cjnuk/dskit/pkg/logger"
	"github.com/cjnuk/dskit/pkg/presenter"
)

var skillsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch skill and agent directories, rebuilding the registry on changes",
	Long: `Continuously monitors the skill and agent directories and rebuilds the
registry whenever a definition changes, reporting validation results and
trigger collisions as they appear. Intended for plugin authoring.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigCh
			presenter.Info("stopping watch")
			cancel()
		}()

		debounce, _ := cmd.Flags().GetInt("debounce")
		if debounce < 0 {
			return errors.Errorf("debounce time cannot be negative: %d", debounce)
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return errors.Wrap(err, "failed to create file watcher")
		}
		defer watcher.Close()

		watched, err := addWatchDirs(watcher)
		if err != nil {
			return err
		}
		if watched == 0 {
			return errors.New("no skill or agent directories exist to watch")
		}

		rebuild := func() {
			registry, _, err := buildRegistry(ctx)
			if err != nil {
				presenter.Error(err, "registry rebuild failed")
				return
			}
			presenter.Success(fmt.Sprintf("registry rebuilt: %d skills", len(registry.Skills())))
			printCollisions(registry)
		}
		rebuild()

		var timer *time.Timer
		timerCh := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				return nil
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				logger.G(ctx).WithField("path", event.Name).WithField("op", event.Op.String()).Debug("change detected")
				// New skill directories need a watch of their own.
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
					}
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(time.Duration(debounce)*time.Millisecond, func() {
					select {
					case timerCh <- struct{}{}:
					default:
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.G(ctx).WithError(err).Warn("watcher error")
			case <-timerCh:
				rebuild()
			}
		}
	},
}

// addWatchDirs registers the skill and agent directories under both roots,
// plus each existing skill directory (SKILL.md lives one level down).
func addWatchDirs(watcher *fsnotify.Watcher) (int, error) {
	root, err := pluginRoot()
	if err != nil {
		return 0, err
	}
	wd, err := workingDir()
	if err != nil {
		return 0, err
	}

	dirs := []string{
		filepath.Join(wd, ".dskit", "skills"),
		filepath.Join(root, "skills"),
		filepath.Join(wd, ".dskit", "agents"),
		filepath.Join(root, "agents"),
	}

	watched := 0
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return watched, errors.Wrapf(err, "failed to watch %s", dir)
		}
		watched++

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				_ = watcher.Add(filepath.Join(dir, entry.Name()))
			}
		}
	}
	return watched, nil
}

func init() {
	skillsWatchCmd.Flags().Int("debounce", 500, "debounce time in milliseconds before rebuilding")
}
