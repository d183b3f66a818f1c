// Package event defines the normalized notification event and the
// parsing of assistant hook payloads into it.
package event

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind classifies what the assistant is telling the user.
type Kind string

const (
	// KindCompletion means the assistant finished its task and is
	// idle.
	KindCompletion Kind = "completion"
	// KindPermission means the assistant is blocked waiting for the
	// user to approve a tool use.
	KindPermission Kind = "permission"
)

// ParseKind returns the Kind for a string, or an error for anything
// else.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCompletion, KindPermission:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown event kind %q (want %q or %q)", s, KindCompletion, KindPermission)
}

// Event is the normalized format all panels and sounds are driven
// from, regardless of which assistant runtime produced it.
type Event struct {
	// ID uniquely identifies this event instance.
	ID string `json:"id"`

	Kind    Kind   `json:"kind"`
	Runtime string `json:"runtime"` // e.g. "claude"

	// Project is the workspace the event came from, derived from the
	// hook's working directory.
	Project string `json:"project"`
	CWD     string `json:"cwd,omitempty"`

	SessionID string `json:"session_id,omitempty"`

	// Message is the assistant-provided detail line, may be empty.
	Message string `json:"message,omitempty"`

	ReceivedAt int64 `json:"received_at"`
}

// Validation errors.
var (
	ErrEmptyID     = errors.New("event id cannot be empty")
	ErrInvalidKind = errors.New("event kind must be completion or permission")
)

// New creates an Event with a generated ULID and the current time.
func New(kind Kind, runtime string) (*Event, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &Event{
		ID:         id.String(),
		Kind:       kind,
		Runtime:    runtime,
		ReceivedAt: time.Now().Unix(),
	}, nil
}

// Validate checks that the event has all required fields.
func (e *Event) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	switch e.Kind {
	case KindCompletion, KindPermission:
	default:
		return ErrInvalidKind
	}
	return nil
}

// Title returns the headline shown on the panel.
func (e *Event) Title() string {
	switch e.Kind {
	case KindPermission:
		return "Permission needed"
	default:
		return "Task complete"
	}
}

// Subtitle returns the project line shown under the title.
func (e *Event) Subtitle() string {
	if e.Project == "" {
		return e.Runtime
	}
	if e.Runtime == "" {
		return e.Project
	}
	return e.Project + " · " + e.Runtime
}

// ReceivedAtTime returns the receive timestamp as a time.Time.
func (e *Event) ReceivedAtTime() time.Time {
	return time.Unix(e.ReceivedAt, 0)
}

// hookPayload is the JSON an assistant runtime writes to the hook's
// stdin. Field names follow the Claude Code hook contract; other
// runtimes map onto the same shape.
type hookPayload struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	CWD            string `json:"cwd"`
	HookEventName  string `json:"hook_event_name"`
	Message        string `json:"message"`
}

// Hook event names as delivered by the runtime.
const (
	hookEventNotification = "Notification"
	hookEventStop         = "Stop"
)

// ParseHook reads a hook payload from r and normalizes it into an
// Event. Notification hooks become permission events, Stop hooks
// become completion events.
func ParseHook(r io.Reader, runtime string) (*Event, error) {
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read hook payload: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("empty hook payload")
	}

	var payload hookPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse hook payload: %w", err)
	}

	var kind Kind
	switch payload.HookEventName {
	case hookEventNotification:
		kind = KindPermission
	case hookEventStop, "":
		// Stop, or a payload with no event name at all, reads as a
		// completion so a misconfigured hook still pings.
		kind = KindCompletion
	default:
		return nil, fmt.Errorf("unhandled hook event %q", payload.HookEventName)
	}

	ev, err := New(kind, runtime)
	if err != nil {
		return nil, err
	}

	ev.SessionID = payload.SessionID
	ev.CWD = payload.CWD
	ev.Project = ProjectName(payload.CWD)
	ev.Message = sanitize(payload.Message)

	return ev, nil
}

// ProjectName derives a display name for a workspace path. Empty or
// root-ish paths yield "".
func ProjectName(cwd string) string {
	if cwd == "" {
		return ""
	}
	base := filepath.Base(filepath.Clean(cwd))
	if base == "/" || base == "." {
		return ""
	}
	return base
}

// sanitize collapses control characters and trims whitespace so a
// hostile payload cannot smuggle escape sequences onto the panel.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
