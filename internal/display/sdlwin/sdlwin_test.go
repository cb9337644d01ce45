package sdlwin

import (
	"testing"

	"github.com/phinze/jumpscare/internal/overlay"
	"github.com/veandco/go-sdl2/sdl"
)

func TestWindowEvent(t *testing.T) {
	const id = overlay.OutputID("sdl-0")

	tests := []struct {
		name   string
		kind   uint8
		d1, d2 int32
		want   overlay.Event
		ok     bool
	}{
		{"resize", sdl.WINDOWEVENT_SIZE_CHANGED, 1280, 720, overlay.Configured(id, 1280, 720), true},
		{"negative size", sdl.WINDOWEVENT_SIZE_CHANGED, -1, 5, overlay.Configured(id, 0, 0), true},
		{"close", sdl.WINDOWEVENT_CLOSE, 0, 0, overlay.Event{Kind: overlay.SurfaceClosed, Output: id}, true},
		{"enter", sdl.WINDOWEVENT_ENTER, 0, 0, overlay.Event{Kind: overlay.SurfaceEnter, Output: id}, true},
		{"leave", sdl.WINDOWEVENT_LEAVE, 0, 0, overlay.Event{Kind: overlay.SurfaceLeave, Output: id}, true},
		{"moved", sdl.WINDOWEVENT_MOVED, 10, 10, overlay.Event{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := windowEvent(id, tt.kind, tt.d1, tt.d2)
			if ok != tt.ok || got != tt.want {
				t.Errorf("windowEvent = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
