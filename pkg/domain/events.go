package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventScreenEnter  EventType = "screen_enter"
	EventScreenLeave  EventType = "screen_leave"
	EventSandboxReset EventType = "sandbox_reset"
	EventScriptError  EventType = "script_error"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
}

// ScreenEvent represents entry into or exit from a screen.
type ScreenEvent struct {
	EventBase
	ScreenID string `json:"screen_id"`
	Language string `json:"language"`
}

// ScriptEvent represents a failed screen script. Phase is "compile" or "runtime".
type ScriptEvent struct {
	EventBase
	ScreenID string `json:"screen_id"`
	Phase    string `json:"phase"`
	Err      error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnScreenEnter  func(context.Context, *ScreenEvent)
	OnScreenLeave  func(context.Context, *ScreenEvent)
	OnSandboxReset func(context.Context, *ScreenEvent)
	OnScriptError  func(context.Context, *ScriptEvent)
}
