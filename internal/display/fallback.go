package display

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/Vibe-Marketer/devping/internal/event"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
)

// FallbackNotifier delivers an event through the session's existing
// notification daemon when no layer-shell compositor is available.
type FallbackNotifier struct {
	conn   *dbus.Conn
	logger *slog.Logger
}

// NewFallbackNotifier connects to the session bus.
func NewFallbackNotifier(logger *slog.Logger) (*FallbackNotifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return &FallbackNotifier{
		conn:   conn,
		logger: logger,
	}, nil
}

// Notify sends the event as a freedesktop notification. The timeout
// follows the event kind; zero means the notification never expires.
func (n *FallbackNotifier) Notify(ev *event.Event, timeout time.Duration) error {
	body := ev.Subtitle()
	if ev.Message != "" {
		body = ev.Subtitle() + "\n" + ev.Message
	}

	expire := int32(-1) // Server default
	if timeout > 0 {
		expire = int32(timeout.Milliseconds())
	} else if timeout == 0 {
		expire = 0 // Never expire
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgencyForKind(ev.Kind)),
	}

	// Notify(app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout)
	call := n.conn.Object(notifyDest, notifyPath).Call(
		notifyMethod,
		0,
		"devping",
		uint32(0),
		"",
		ev.Title(),
		body,
		[]string{},
		hints,
		expire,
	)
	if call.Err != nil {
		return fmt.Errorf("failed to send notification: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("failed to read notification id: %w", err)
	}

	n.logger.Debug("sent fallback notification", "id", id, "kind", ev.Kind)
	return nil
}

// Close closes the bus connection.
func (n *FallbackNotifier) Close() error {
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

// urgencyForKind maps event kinds onto freedesktop urgency levels.
// Permission prompts block the assistant, so they ride critical.
func urgencyForKind(kind event.Kind) byte {
	if kind == event.KindPermission {
		return 2 // Critical
	}
	return 1 // Normal
}
