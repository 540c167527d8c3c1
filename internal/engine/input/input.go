// Package input turns SDL2 events into viewer events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event is one translated input event. Only the fields of its type are set.
type Event struct {
	Type EventType

	Key     sdl.Scancode
	KeyName string // SDL scancode name, e.g. "W", "Left", "F12"
	Repeat  bool   // auto-repeat of a held key
	Shift   bool

	Width  int
	Height int

	MouseX int
	MouseY int
	WheelY int
	Button uint8
}

// Input collects the events of one poll.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update drains the SDL queue. It returns true once a quit event arrives;
// events after it stay queued.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		ev, ok := translate(event)
		if !ok {
			continue
		}
		i.events = append(i.events, ev)
		if ev.Type == EventQuit {
			return true
		}
	}
	return false
}

// translate converts the SDL events the viewer cares about.
func translate(event sdl.Event) (Event, bool) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		return Event{Type: EventQuit}, true

	case *sdl.WindowEvent:
		if e.Event != sdl.WINDOWEVENT_RESIZED && e.Event != sdl.WINDOWEVENT_SIZE_CHANGED {
			return Event{}, false
		}
		return Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)}, true

	case *sdl.KeyboardEvent:
		t := EventKeyUp
		if e.Type == sdl.KEYDOWN {
			t = EventKeyDown
		}
		return Event{
			Type:    t,
			Key:     e.Keysym.Scancode,
			KeyName: sdl.GetScancodeName(e.Keysym.Scancode),
			Repeat:  e.Repeat != 0,
			Shift:   e.Keysym.Mod&sdl.KMOD_SHIFT != 0,
		}, true

	case *sdl.MouseMotionEvent:
		return Event{Type: EventMouseMove, MouseX: int(e.X), MouseY: int(e.Y)}, true

	case *sdl.MouseButtonEvent:
		t := EventMouseUp
		if e.Type == sdl.MOUSEBUTTONDOWN {
			t = EventMouseDown
		}
		return Event{Type: t, MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}, true

	case *sdl.MouseWheelEvent:
		return Event{Type: EventMouseWheel, WheelY: int(e.Y)}, true
	}
	return Event{}, false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}
