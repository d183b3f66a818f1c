package display

import (
	"log/slog"
	"sync"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/dustin/go-humanize"

	"github.com/Vibe-Marketer/devping/internal/config"
	"github.com/Vibe-Marketer/devping/internal/event"
)

// DismissReason records which path tore a panel down.
type DismissReason string

const (
	DismissClick   DismissReason = "click"
	DismissTimeout DismissReason = "timeout"
	DismissSignal  DismissReason = "signal"
)

// Panel is a single notification surface for one event.
type Panel struct {
	window *gtk.Window
	box    *gtk.Box

	event  *event.Event
	config *config.Config
	logger *slog.Logger

	timeLbl *gtk.Label

	mu        sync.Mutex
	slot      int
	dismissed bool
	onDismiss func(reason DismissReason)
	onClick   func()
	timer     *time.Timer
}

// NewPanel builds the panel window for an event. Must run on the GTK
// main thread.
func NewPanel(app *gtk.Application, ev *event.Event, cfg *config.Config, logger *slog.Logger) *Panel {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Panel{
		event:  ev,
		config: cfg,
		logger: logger,
	}

	p.window = gtk.NewWindow()
	p.window.SetApplication(app)
	p.window.SetDecorated(false)
	p.window.SetResizable(false)
	p.window.SetDefaultSize(cfg.Display.Width, -1)
	p.window.SetSizeRequest(cfg.Display.Width, cfg.Display.Height)

	layershell.InitForWindow(p.window)
	layershell.SetLayer(p.window, layershell.LayerShellLayerTop)
	layershell.SetExclusiveZone(p.window, 0) // Don't reserve space
	layershell.SetKeyboardMode(p.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(p.window, "devping")

	p.buildUI()
	p.connectSignals()

	return p
}

// buildUI constructs the widget hierarchy.
func (p *Panel) buildUI() {
	p.box = gtk.NewBox(gtk.OrientationVertical, 4)
	p.box.AddCSSClass("devping-panel")
	p.box.AddCSSClass("kind-" + string(p.event.Kind))
	p.box.AddCSSClass(p.colorSchemeClass())
	p.box.SetMarginTop(8)
	p.box.SetMarginBottom(8)
	p.box.SetMarginStart(12)
	p.box.SetMarginEnd(12)

	header := gtk.NewBox(gtk.OrientationHorizontal, 8)

	title := gtk.NewLabel(p.event.Title())
	title.AddCSSClass("devping-title")
	title.SetXAlign(0)
	title.SetHExpand(true)
	header.Append(title)

	p.timeLbl = gtk.NewLabel(humanize.Time(p.event.ReceivedAtTime()))
	p.timeLbl.AddCSSClass("devping-time")
	p.timeLbl.SetXAlign(1)
	header.Append(p.timeLbl)

	p.box.Append(header)

	subtitle := gtk.NewLabel(p.event.Subtitle())
	subtitle.AddCSSClass("devping-subtitle")
	subtitle.SetXAlign(0)
	subtitle.SetEllipsize(3) // PANGO_ELLIPSIZE_END
	p.box.Append(subtitle)

	if p.event.Message != "" {
		message := gtk.NewLabel(p.event.Message)
		message.AddCSSClass("devping-message")
		message.SetXAlign(0)
		message.SetWrap(true)
		message.SetWrapMode(2) // PANGO_WRAP_WORD_CHAR
		message.SetMaxWidthChars(50)
		p.box.Append(message)
	}

	p.window.SetChild(p.box)
}

// connectSignals wires the click handler.
func (p *Panel) connectSignals() {
	clickCtrl := gtk.NewGestureClick()
	clickCtrl.SetButton(1) // Left button
	clickCtrl.ConnectReleased(func(nPress int, x, y float64) {
		p.mu.Lock()
		onClick := p.onClick
		p.mu.Unlock()
		if onClick != nil {
			onClick()
		}
		p.Dismiss(DismissClick)
	})
	p.window.AddController(clickCtrl)
}

// OnDismiss sets the callback fired exactly once when the panel is
// torn down.
func (p *Panel) OnDismiss(cb func(reason DismissReason)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDismiss = cb
}

// OnClick sets the callback fired on left click, before the dismiss
// callback.
func (p *Panel) OnClick(cb func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onClick = cb
}

// Show presents the panel at the given slot.
func (p *Panel) Show(slot int) {
	p.mu.Lock()
	p.slot = slot
	p.mu.Unlock()

	p.applyPlacement(slot)
	p.window.Present()
	p.logger.Debug("panel shown", "slot", slot, "kind", p.event.Kind)
}

// MoveTo slides the panel to a new slot. Safe to call from any
// goroutine; the move runs on the GTK main thread.
func (p *Panel) MoveTo(slot int) {
	glib.IdleAdd(func() {
		p.mu.Lock()
		if p.dismissed || p.slot == slot {
			p.mu.Unlock()
			return
		}
		p.slot = slot
		p.mu.Unlock()

		p.applyPlacement(slot)
		p.logger.Debug("panel moved", "slot", slot)
	})
}

// StartTimeout schedules auto-dismissal. Zero or negative means the
// panel stays until dismissed.
func (p *Panel) StartTimeout(d time.Duration) {
	if d <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.timer = time.AfterFunc(d, func() {
		glib.IdleAdd(func() {
			p.Dismiss(DismissTimeout)
		})
	})
}

// Dismiss tears the panel down and fires the dismiss callback.
// Idempotent; only the first reason wins.
func (p *Panel) Dismiss(reason DismissReason) {
	p.mu.Lock()
	if p.dismissed {
		p.mu.Unlock()
		return
	}
	p.dismissed = true
	onDismiss := p.onDismiss
	timer := p.timer
	p.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}

	p.window.Close()
	p.logger.Debug("panel dismissed", "reason", reason)

	if onDismiss != nil {
		onDismiss(reason)
	}
}

// applyPlacement sets the layer-shell anchors and margins for a slot.
func (p *Panel) applyPlacement(slot int) {
	placement := CalculatePlacement(p.config.Display, slot)

	layershell.SetAnchor(p.window, layershell.LayerShellEdgeTop, placement.AnchorTop)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeBottom, placement.AnchorBottom)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeLeft, placement.AnchorLeft)
	layershell.SetAnchor(p.window, layershell.LayerShellEdgeRight, placement.AnchorRight)

	if placement.AnchorTop {
		layershell.SetMargin(p.window, layershell.LayerShellEdgeTop, placement.MarginY)
	}
	if placement.AnchorBottom {
		layershell.SetMargin(p.window, layershell.LayerShellEdgeBottom, placement.MarginY)
	}
	if placement.AnchorLeft {
		layershell.SetMargin(p.window, layershell.LayerShellEdgeLeft, placement.MarginX)
	}
	if placement.AnchorRight {
		layershell.SetMargin(p.window, layershell.LayerShellEdgeRight, placement.MarginX)
	}
}

// colorSchemeClass returns "light" or "dark" from config or the
// system preference via libadwaita.
func (p *Panel) colorSchemeClass() string {
	switch config.ColorScheme(p.config.Theme.ColorScheme) {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		if adw.StyleManagerGetDefault().Dark() {
			return "dark"
		}
		return "light"
	}
}
