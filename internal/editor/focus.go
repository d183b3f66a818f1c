package editor

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// probeTimeout bounds how long a focus check may block the notify
// path.
const probeTimeout = 500 * time.Millisecond

// FocusChecker reports whether a detected editor currently has the
// active window. The zero answer is "not focused": a failed probe
// must never suppress a notification.
type FocusChecker struct {
	logger *slog.Logger

	// run executes a command and returns its stdout. Injectable for
	// tests.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewFocusChecker creates a FocusChecker.
func NewFocusChecker(logger *slog.Logger) *FocusChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &FocusChecker{
		logger: logger,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// Focused reports whether the editor's window is the active one.
func (f *FocusChecker) Focused(ed *Editor) bool {
	if ed == nil || ed.Class == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		out, err := f.run(ctx, "hyprctl", "activewindow", "-j")
		if err != nil {
			f.logger.Debug("hyprctl probe failed", "error", err)
			return false
		}
		return classMatches(ParseHyprActiveClass(out), ed.Class)
	}

	if os.Getenv("SWAYSOCK") != "" {
		out, err := f.run(ctx, "swaymsg", "-t", "get_tree")
		if err != nil {
			f.logger.Debug("swaymsg probe failed", "error", err)
			return false
		}
		return classMatches(ParseSwayFocusedAppID(out), ed.Class)
	}

	// X11 fallback.
	out, err := f.run(ctx, "xdotool", "getactivewindow", "getwindowclassname")
	if err != nil {
		f.logger.Debug("xdotool probe failed", "error", err)
		return false
	}
	return classMatches(strings.TrimSpace(string(out)), ed.Class)
}

// Focus raises the editor's window. Best effort: a compositor that
// does not support it just leaves focus where it is.
func (f *FocusChecker) Focus(ed *Editor) {
	if ed == nil || ed.Class == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	var err error
	switch {
	case os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "":
		_, err = f.run(ctx, "hyprctl", "dispatch", "focuswindow", "class:"+ed.Class)
	case os.Getenv("SWAYSOCK") != "":
		_, err = f.run(ctx, "swaymsg", "[app_id=\""+ed.Class+"\"]", "focus")
	default:
		_, err = f.run(ctx, "wmctrl", "-x", "-a", ed.Class)
	}
	if err != nil {
		f.logger.Debug("focus request failed", "class", ed.Class, "error", err)
	}
}

// ParseHyprActiveClass extracts the window class from hyprctl
// activewindow -j output.
func ParseHyprActiveClass(data []byte) string {
	var win struct {
		Class string `json:"class"`
	}
	if err := json.Unmarshal(data, &win); err != nil {
		return ""
	}
	return win.Class
}

// swayNode is the subset of the sway tree needed to find the focused
// window.
type swayNode struct {
	Focused bool   `json:"focused"`
	AppID   string `json:"app_id"`
	WindowProperties struct {
		Class string `json:"class"`
	} `json:"window_properties"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

// ParseSwayFocusedAppID extracts the focused window's app_id (or X11
// class for XWayland windows) from swaymsg -t get_tree output.
func ParseSwayFocusedAppID(data []byte) string {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return ""
	}
	return findFocused(&root)
}

func findFocused(node *swayNode) string {
	if node.Focused {
		if node.AppID != "" {
			return node.AppID
		}
		return node.WindowProperties.Class
	}
	for i := range node.Nodes {
		if id := findFocused(&node.Nodes[i]); id != "" {
			return id
		}
	}
	for i := range node.FloatingNodes {
		if id := findFocused(&node.FloatingNodes[i]); id != "" {
			return id
		}
	}
	return ""
}

func classMatches(active, want string) bool {
	if active == "" || want == "" {
		return false
	}
	return strings.EqualFold(active, want)
}
