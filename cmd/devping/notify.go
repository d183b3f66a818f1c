package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Vibe-Marketer/devping/internal/audio"
	"github.com/Vibe-Marketer/devping/internal/config"
	"github.com/Vibe-Marketer/devping/internal/display"
	"github.com/Vibe-Marketer/devping/internal/editor"
	"github.com/Vibe-Marketer/devping/internal/event"
	"github.com/Vibe-Marketer/devping/internal/slot"
)

var notifyOpts struct {
	kind    string
	runtime string
	message string
	noSound bool
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Show a notification panel (invoked by assistant hooks)",
	Long: `Show a notification panel for a hook event.

The hook payload is read from stdin when piped; otherwise the event is
built from the --kind and --message flags. The command blocks until
the panel is dismissed, so the assistant hook should not wait on it.`,
	RunE: runNotify,
}

func init() {
	notifyCmd.Flags().StringVar(&notifyOpts.kind, "kind", "completion",
		"Event kind when stdin carries no payload (completion or permission)")
	notifyCmd.Flags().StringVar(&notifyOpts.runtime, "runtime", "claude",
		"Assistant runtime name shown on the panel")
	notifyCmd.Flags().StringVar(&notifyOpts.message, "message", "",
		"Detail line shown on the panel")
	notifyCmd.Flags().BoolVar(&notifyOpts.noSound, "no-sound", false,
		"Skip the notification sound")
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	ev, err := buildEvent()
	if err != nil {
		return err
	}
	logger.Debug("notify", "id", ev.ID, "kind", ev.Kind, "project", ev.Project)

	// The hook process is a descendant of the editor that hosts the
	// assistant, so the ancestry walk finds which editor to focus.
	ed, err := editor.Detect()
	if err != nil {
		logger.Debug("no editor detected in ancestry", "error", err)
	}

	focus := editor.NewFocusChecker(logger)
	if cfg.Behavior.SkipWhenFocused && ed != nil && focus.Focused(ed) {
		logger.Info("editor focused, skipping notification", "editor", ed.Name)
		return nil
	}

	if !notifyOpts.noSound {
		sounds := audio.NewManager(cfg, logger)
		defer sounds.Close()
		go func() {
			if err := sounds.PlayForKind(ev.Kind); err != nil {
				logger.Debug("failed to play sound", "kind", ev.Kind, "error", err)
			}
		}()
	}

	timeout := cfg.TimeoutForKind(string(ev.Kind))

	if !display.Supported() {
		return notifyFallback(ev, timeout)
	}

	dir, err := slot.DefaultDir()
	if err != nil {
		logger.Warn("failed to resolve slot directory", "error", err)
	}
	registry := slot.NewRegistry(dir, logger)
	index := registry.Claim()

	watcher := slot.NewWatcher(registry, index, logger)
	manager := display.NewManager(cfg, logger)
	watcher.SetReassignCallback(manager.MoveTo)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sigDone := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, dismissing panel", "signal", sig)
			manager.Dismiss(display.DismissSignal)
		case <-sigDone:
		}
	}()

	reason, err := manager.Run(ev, display.RunOptions{
		Slot:    index,
		Timeout: timeout,
		OnShown: func(p *display.Panel) {
			watcher.Start()
		},
		OnClick: func() {
			handleClick(focus, ed)
		},
	})

	// Teardown order matters: the watcher must stop before the slot is
	// released so a late tick cannot re-claim it.
	close(sigDone)
	signal.Stop(sigCh)
	watcher.Stop()
	registry.Release(watcher.Current())

	if err != nil {
		return err
	}
	logger.Debug("panel dismissed", "reason", reason)
	return nil
}

// buildEvent parses the hook payload from stdin when piped, falling
// back to the flag values for manual invocation.
func buildEvent() (*event.Event, error) {
	stat, err := os.Stdin.Stat()
	piped := err == nil && (stat.Mode()&os.ModeCharDevice) == 0

	if piped {
		ev, err := event.ParseHook(os.Stdin, notifyOpts.runtime)
		if err == nil {
			if notifyOpts.message != "" {
				ev.Message = notifyOpts.message
			}
			return ev, nil
		}
		logger.Debug("failed to parse hook payload, using flags", "error", err)
	}

	kind, err := event.ParseKind(notifyOpts.kind)
	if err != nil {
		return nil, err
	}

	ev, err := event.New(kind, notifyOpts.runtime)
	if err != nil {
		return nil, err
	}
	ev.Message = notifyOpts.message
	if cwd, err := os.Getwd(); err == nil {
		ev.CWD = cwd
		ev.Project = event.ProjectName(cwd)
	}
	return ev, nil
}

// handleClick runs the configured click action.
func handleClick(focus *editor.FocusChecker, ed *editor.Editor) {
	switch config.ClickAction(cfg.Behavior.ClickAction) {
	case config.ClickActionFocusEditor:
		if ed != nil {
			focus.Focus(ed)
		}
	case config.ClickActionNone, config.ClickActionDismiss:
		// Dismissal happens in the panel regardless.
	}
}

// notifyFallback routes the event through the session's notification
// daemon when the compositor has no layer-shell support.
func notifyFallback(ev *event.Event, timeout time.Duration) error {
	notifier, err := display.NewFallbackNotifier(logger)
	if err != nil {
		return fmt.Errorf("no layer-shell support and no session bus: %w", err)
	}
	defer notifier.Close()

	logger.Info("layer-shell unsupported, using freedesktop notification")
	return notifier.Notify(ev, timeout)
}
