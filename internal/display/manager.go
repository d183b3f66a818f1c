package display

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/Vibe-Marketer/devping/internal/config"
	"github.com/Vibe-Marketer/devping/internal/event"
	"github.com/Vibe-Marketer/devping/internal/theme"
)

const appID = "dev.devping.notify"

// RunOptions controls how a panel is presented.
type RunOptions struct {
	// Slot is the stacking position the panel starts in.
	Slot int

	// Timeout auto-dismisses the panel; zero keeps it until clicked.
	Timeout time.Duration

	// OnShown fires on the GTK main thread once the panel is visible.
	OnShown func(p *Panel)

	// OnClick fires when the user clicks the panel, before dismissal.
	OnClick func()
}

// Manager owns the GTK application lifecycle for one notification.
// Each hook invocation is its own process, so the manager runs a
// single panel to completion and exits.
type Manager struct {
	config *config.Config
	logger *slog.Logger
	loader *theme.Loader

	mu     sync.Mutex
	panel  *Panel
	reason DismissReason
}

// NewManager creates a display manager.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		config: cfg,
		logger: logger,
		loader: theme.NewLoader(logger),
	}
}

// Supported reports whether the compositor speaks the layer-shell
// protocol. When false, callers should use FallbackNotifier instead.
func Supported() bool {
	return layershell.IsSupported()
}

// Run presents a panel for the event and blocks until it is
// dismissed, returning the reason.
func (m *Manager) Run(ev *event.Event, opts RunOptions) (DismissReason, error) {
	app := adw.NewApplication(appID, gio.ApplicationFlagsNonUnique)

	app.ConnectActivate(func() {
		if err := m.loader.LoadTheme(m.config.Theme.Name); err != nil {
			m.logger.Warn("failed to load theme", "error", err)
		}
		m.loader.Apply(nil)
		m.loader.StartHotReload()

		panel := NewPanel(&app.Application, ev, m.config, m.logger)
		if opts.OnClick != nil {
			panel.OnClick(opts.OnClick)
		}
		panel.OnDismiss(func(reason DismissReason) {
			m.mu.Lock()
			m.reason = reason
			m.mu.Unlock()
			app.Quit()
		})

		m.mu.Lock()
		m.panel = panel
		m.mu.Unlock()

		panel.Show(opts.Slot)
		panel.StartTimeout(opts.Timeout)

		if opts.OnShown != nil {
			opts.OnShown(panel)
		}
	})

	code := app.Run(nil)
	m.loader.StopHotReload()

	m.mu.Lock()
	reason := m.reason
	m.mu.Unlock()

	if reason == "" {
		return "", fmt.Errorf("display loop exited without dismissal (code %d)", code)
	}
	return reason, nil
}

// MoveTo reslots the live panel. Safe from any goroutine; no-op
// before the panel exists.
func (m *Manager) MoveTo(slot int) {
	m.mu.Lock()
	panel := m.panel
	m.mu.Unlock()

	if panel != nil {
		panel.MoveTo(slot)
	}
}

// Dismiss tears down the live panel from outside the GTK thread,
// e.g. on SIGTERM.
func (m *Manager) Dismiss(reason DismissReason) {
	m.mu.Lock()
	panel := m.panel
	m.mu.Unlock()

	if panel == nil {
		return
	}
	glib.IdleAdd(func() {
		panel.Dismiss(reason)
	})
}
