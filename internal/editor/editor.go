// Package editor identifies the editor or terminal hosting the
// assistant session and checks whether it currently has focus.
package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Editor describes a detected host application.
type Editor struct {
	Name  string // display name, e.g. "VS Code"
	Comm  string // process name the detection matched
	PID   int
	Class string // window class used for focus checks
}

// knownEditors maps process names to the applications devping can
// recognize. Terminals count too since many sessions run there.
var knownEditors = map[string]Editor{
	"code":           {Name: "VS Code", Class: "Code"},
	"code-insiders":  {Name: "VS Code Insiders", Class: "Code - Insiders"},
	"cursor":         {Name: "Cursor", Class: "Cursor"},
	"zed":            {Name: "Zed", Class: "dev.zed.Zed"},
	"nvim":           {Name: "Neovim", Class: ""},
	"vim":            {Name: "Vim", Class: ""},
	"emacs":          {Name: "Emacs", Class: "Emacs"},
	"idea":           {Name: "IntelliJ IDEA", Class: "jetbrains-idea"},
	"goland":         {Name: "GoLand", Class: "jetbrains-goland"},
	"kitty":          {Name: "kitty", Class: "kitty"},
	"alacritty":      {Name: "Alacritty", Class: "Alacritty"},
	"foot":           {Name: "foot", Class: "foot"},
	"wezterm-gui":    {Name: "WezTerm", Class: "org.wezfurlong.wezterm"},
	"gnome-terminal": {Name: "GNOME Terminal", Class: "gnome-terminal-server"},
	"konsole":        {Name: "Konsole", Class: "org.kde.konsole"},
	"ghostty":        {Name: "Ghostty", Class: "com.mitchellh.ghostty"},
}

// maxAncestors bounds the parent walk so a cyclic or hostile proc
// tree cannot loop forever.
const maxAncestors = 20

// Detect walks the process ancestry starting at the current process
// and returns the first known editor or terminal it finds.
func Detect() (*Editor, error) {
	return DetectFrom(os.Getpid())
}

// DetectFrom walks the ancestry of the given pid.
func DetectFrom(pid int) (*Editor, error) {
	for i := 0; i < maxAncestors && pid > 1; i++ {
		comm, err := processComm(pid)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect pid %d: %w", pid, err)
		}

		if ed, ok := MatchComm(comm); ok {
			ed.PID = pid
			return &ed, nil
		}

		parent, err := processParent(pid)
		if err != nil {
			return nil, fmt.Errorf("failed to find parent of pid %d: %w", pid, err)
		}
		pid = parent
	}
	return nil, fmt.Errorf("no known editor in process ancestry")
}

// MatchComm looks up a process name in the known editor table.
func MatchComm(comm string) (Editor, bool) {
	comm = strings.ToLower(strings.TrimSpace(comm))
	ed, ok := knownEditors[comm]
	if !ok {
		return Editor{}, false
	}
	ed.Comm = comm
	return ed, true
}

// processComm reads the short process name from /proc.
func processComm(pid int) (string, error) {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "comm"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// processParent reads the parent pid from /proc/<pid>/status.
func processParent(pid int) (int, error) {
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "status"))
	if err != nil {
		return 0, err
	}
	ppid, ok := ParseStatusPPid(data)
	if !ok {
		return 0, fmt.Errorf("no PPid line in status of pid %d", pid)
	}
	return ppid, nil
}

// ParseStatusPPid extracts the PPid field from /proc/<pid>/status
// content.
func ParseStatusPPid(data []byte) (int, bool) {
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "PPid:") {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, "PPid:"))
		ppid, err := strconv.Atoi(value)
		if err != nil {
			return 0, false
		}
		return ppid, true
	}
	return 0, false
}
