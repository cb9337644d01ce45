package overlay

import "fmt"

// OutputID identifies one display output for as long as it exists.
type OutputID string

// EventKind tags an Event.
type EventKind int

const (
	// OutputAdded reports a new output. It starts hidden with no size.
	OutputAdded EventKind = iota
	// OutputRemoved reports that an output is gone.
	OutputRemoved
	// OutputConfigured announces an output's current size.
	OutputConfigured
	// Tick is the toggle timer firing.
	Tick
	// Shutdown is sent once before the process exits.
	Shutdown

	// The display layer reports these, but the overlay has nothing to do
	// for them.
	OutputUpdated
	ScaleChanged
	TransformChanged
	FrameDone
	SurfaceEnter
	SurfaceLeave
	SurfaceClosed
)

var kindNames = map[EventKind]string{
	OutputAdded:      "output-added",
	OutputRemoved:    "output-removed",
	OutputConfigured: "output-configured",
	Tick:             "tick",
	Shutdown:         "shutdown",
	OutputUpdated:    "output-updated",
	ScaleChanged:     "scale-changed",
	TransformChanged: "transform-changed",
	FrameDone:        "frame-done",
	SurfaceEnter:     "surface-enter",
	SurfaceLeave:     "surface-leave",
	SurfaceClosed:    "surface-closed",
}

func (k EventKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is one notification for the controller. Output is set for every
// kind except Tick and Shutdown; Width and Height only for OutputConfigured.
type Event struct {
	Kind   EventKind
	Output OutputID
	Width  uint32
	Height uint32
}

// Added returns an OutputAdded event.
func Added(id OutputID) Event {
	return Event{Kind: OutputAdded, Output: id}
}

// Removed returns an OutputRemoved event.
func Removed(id OutputID) Event {
	return Event{Kind: OutputRemoved, Output: id}
}

// Configured returns an OutputConfigured event.
func Configured(id OutputID, width, height uint32) Event {
	return Event{Kind: OutputConfigured, Output: id, Width: width, Height: height}
}
