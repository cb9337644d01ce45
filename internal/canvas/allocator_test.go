package canvas

import (
	"errors"
	"testing"
)

func TestNewAllocatorStartsAtInitial(t *testing.T) {
	a := NewAllocator(DefaultCapacity, 0)
	if got := a.Capacity(); got != 1920*1080*4 {
		t.Errorf("Capacity() = %d, want %d", got, 1920*1080*4)
	}
}

func TestNewAllocatorClampsInitialToMax(t *testing.T) {
	a := NewAllocator(DefaultCapacity, 1024)
	if got := a.Capacity(); got != 1024 {
		t.Errorf("Capacity() = %d, want 1024", got)
	}
}

func TestEnsureCapacity(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		wantCapacity  int
	}{
		{"smaller keeps size", 800, 600, DefaultCapacity},
		{"exact keeps size", 1920, 1080, DefaultCapacity},
		{"larger grows", 2560, 1440, 2560 * 1440 * 4},
		{"zero keeps size", 0, 0, DefaultCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(DefaultCapacity, 0)
			if err := a.EnsureCapacity(tt.width, tt.height); err != nil {
				t.Fatalf("EnsureCapacity: %v", err)
			}
			if got := a.Capacity(); got != tt.wantCapacity {
				t.Errorf("Capacity() = %d, want %d", got, tt.wantCapacity)
			}
		})
	}
}

func TestEnsureCapacityNeverShrinks(t *testing.T) {
	a := NewAllocator(16, 0)
	if err := a.EnsureCapacity(100, 100); err != nil {
		t.Fatal(err)
	}
	if err := a.EnsureCapacity(1, 1); err != nil {
		t.Fatal(err)
	}
	if got := a.Capacity(); got != 100*100*4 {
		t.Errorf("Capacity() = %d after smaller request, want %d", got, 100*100*4)
	}
}

func TestEnsureCapacityRejectsOverCeiling(t *testing.T) {
	a := NewAllocator(16, 64*64*4)

	err := a.EnsureCapacity(65, 64)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("EnsureCapacity(65, 64) = %v, want ErrTooLarge", err)
	}
	if got := a.Capacity(); got != 16 {
		t.Errorf("Capacity() = %d after failed grow, want 16", got)
	}
	if err := a.EnsureCapacity(64, 64); err != nil {
		t.Errorf("EnsureCapacity at the ceiling: %v", err)
	}
}

func TestViewSize(t *testing.T) {
	a := NewAllocator(DefaultCapacity, 0)

	for _, dims := range [][2]uint32{{800, 600}, {3840, 2160}, {120, 120}, {0, 0}} {
		v, err := a.View(dims[0], dims[1])
		if err != nil {
			t.Fatalf("View(%d, %d): %v", dims[0], dims[1], err)
		}
		if err := v.Validate(); err != nil {
			t.Errorf("View(%d, %d): %v", dims[0], dims[1], err)
		}
	}
	if got := a.Capacity(); got != 3840*2160*4 {
		t.Errorf("Capacity() = %d, want the largest view %d", got, 3840*2160*4)
	}
}

func TestViewError(t *testing.T) {
	a := NewAllocator(16, 16)
	if _, err := a.View(3, 3); !errors.Is(err, ErrTooLarge) {
		t.Errorf("View over ceiling = %v, want ErrTooLarge", err)
	}
}
