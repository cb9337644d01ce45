package compositor

import (
	"bytes"
	"testing"
)

// solid returns a w×h buffer where every pixel is the given BGRA value.
func solid(w, h uint32, b, g, r, a uint8) Buffer {
	buf := NewBuffer(w, h)
	for i := 0; i < len(buf.Pix); i += BytesPerPixel {
		buf.Pix[i+0] = b
		buf.Pix[i+1] = g
		buf.Pix[i+2] = r
		buf.Pix[i+3] = a
	}
	return buf
}

func pixelAt(buf Buffer, x, y int) [4]byte {
	i := (y*int(buf.Width) + x) * BytesPerPixel
	return [4]byte{buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2], buf.Pix[i+3]}
}

var backdropPixel = [4]byte{Backdrop.B, Backdrop.G, Backdrop.R, Backdrop.A}

func TestBackdropIsTranslucentGray(t *testing.T) {
	if Backdrop != (Color{R: 128, G: 128, B: 128, A: 196}) {
		t.Errorf("Backdrop = %+v, want gray 128 at alpha 196", Backdrop)
	}
}

func TestOffsets(t *testing.T) {
	tests := []struct {
		name             string
		canvasW, canvasH uint32
		fgW, fgH         uint32
		wantX, wantY     int
	}{
		{"half size", 100, 100, 50, 50, 25, 25},
		{"same size", 100, 100, 100, 100, 0, 0},
		{"odd difference rounds down", 101, 100, 50, 50, 25, 25},
		{"one pixel wider", 100, 100, 101, 100, 0, 0},
		{"much wider", 100, 100, 140, 100, -20, 0},
		{"much taller", 100, 100, 50, 160, 25, -30},
		{"800x600", 800, 600, 400, 300, 200, 150},
		{"1920x1080", 1920, 1080, 400, 300, 760, 390},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := Offsets(tt.canvasW, tt.canvasH, tt.fgW, tt.fgH)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("Offsets(%d, %d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.canvasW, tt.canvasH, tt.fgW, tt.fgH, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestFill(t *testing.T) {
	canvas := NewBuffer(3, 2)
	Fill(canvas, Color{R: 1, G: 2, B: 3, A: 4})

	for i := 0; i < len(canvas.Pix); i += BytesPerPixel {
		got := [4]byte{canvas.Pix[i], canvas.Pix[i+1], canvas.Pix[i+2], canvas.Pix[i+3]}
		if got != [4]byte{3, 2, 1, 4} {
			t.Fatalf("pixel %d = %v, want BGRA [3 2 1 4]", i/BytesPerPixel, got)
		}
	}
}

func TestBlendPixel(t *testing.T) {
	tests := []struct {
		name string
		src  [4]byte // BGRA
		want [4]byte // BGRA
	}{
		{"opaque replaces color", [4]byte{10, 20, 200, 255}, [4]byte{10, 20, 200, 255}},
		{"opaque black", [4]byte{0, 0, 0, 255}, [4]byte{0, 0, 0, 255}},
		{"transparent keeps backdrop", [4]byte{255, 255, 255, 0}, backdropPixel},
		{"half red over backdrop", [4]byte{0, 0, 255, 128}, [4]byte{55, 55, 200, 225}},
		{"barely visible truncates", [4]byte{10, 20, 30, 1}, [4]byte{127, 127, 127, 196}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas := NewBuffer(1, 1)
			fg := solid(1, 1, tt.src[0], tt.src[1], tt.src[2], tt.src[3])

			Blend(canvas, Backdrop, fg)

			if got := pixelAt(canvas, 0, 0); got != tt.want {
				t.Errorf("Blend(%v) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestBlendIsDeterministic(t *testing.T) {
	fg := NewBuffer(7, 5)
	for i := range fg.Pix {
		fg.Pix[i] = byte(i * 37)
	}

	first := NewBuffer(20, 11)
	second := NewBuffer(20, 11)
	Blend(first, Backdrop, fg)
	Blend(second, Backdrop, fg)

	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatal("two blends of the same inputs differ")
	}

	// Blending again over an already painted canvas starts from a fresh
	// backdrop, so the bytes do not drift.
	Blend(first, Backdrop, fg)
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Fatal("re-blending onto a used canvas changed the result")
	}
}

func TestBlendCentersOpaqueImage(t *testing.T) {
	tests := []struct {
		name             string
		canvasW, canvasH uint32
		minX, minY       int
		maxX, maxY       int
	}{
		{"800x600", 800, 600, 200, 150, 600, 450},
		{"1920x1080", 1920, 1080, 760, 390, 1160, 690},
	}

	fg := solid(400, 300, 1, 2, 3, 255)
	inside := [4]byte{1, 2, 3, 255}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas := NewBuffer(tt.canvasW, tt.canvasH)
			Blend(canvas, Backdrop, fg)

			for y := 0; y < int(tt.canvasH); y++ {
				for x := 0; x < int(tt.canvasW); x++ {
					want := backdropPixel
					if x >= tt.minX && x < tt.maxX && y >= tt.minY && y < tt.maxY {
						want = inside
					}
					if got := pixelAt(canvas, x, y); got != want {
						t.Fatalf("pixel (%d, %d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestBlendClipsOversizedForeground(t *testing.T) {
	tests := []struct {
		name     string
		fgW, fgH uint32
	}{
		{"one pixel wider", 101, 100},
		{"wider and taller", 150, 130},
		{"single huge row", 1000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas := NewBuffer(100, 100)
			fg := solid(tt.fgW, tt.fgH, 9, 9, 9, 255)

			Blend(canvas, Backdrop, fg)

			if len(canvas.Pix) != Size(100, 100) {
				t.Fatalf("canvas resized to %d bytes", len(canvas.Pix))
			}
			x, y := Offsets(100, 100, tt.fgW, tt.fgH)
			cx := max(x, 0)
			cy := max(y, 0)
			if got := pixelAt(canvas, cx, cy); got != [4]byte{9, 9, 9, 255} {
				t.Errorf("first covered pixel (%d, %d) = %v, want foreground", cx, cy, got)
			}
		})
	}
}

func TestBlendTransparentForegroundLeavesBackdrop(t *testing.T) {
	canvas := NewBuffer(10, 10)
	fg := solid(4, 4, 200, 100, 50, 0)

	Blend(canvas, Backdrop, fg)

	want := NewBuffer(10, 10)
	Fill(want, Backdrop)
	if !bytes.Equal(canvas.Pix, want.Pix) {
		t.Error("fully transparent foreground changed the canvas")
	}
}

func TestBlendSkipsShortForeground(t *testing.T) {
	canvas := NewBuffer(4, 4)
	fg := Buffer{Pix: make([]byte, 7), Width: 2, Height: 2}

	Blend(canvas, Backdrop, fg)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if got := pixelAt(canvas, x, y); got != backdropPixel {
				t.Fatalf("pixel (%d,%d) = %v, want backdrop", x, y, got)
			}
		}
	}
}

func TestBufferValidate(t *testing.T) {
	if err := NewBuffer(4, 3).Validate(); err != nil {
		t.Errorf("Validate() on fresh buffer: %v", err)
	}
	bad := Buffer{Pix: make([]byte, 10), Width: 4, Height: 3}
	if err := bad.Validate(); err == nil {
		t.Error("Validate() accepted a short buffer")
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		name         string
		fgW, fgH     uint32
		maxW, maxH   uint32
		wantW, wantH uint32
		pixel        [4]byte
	}{
		{"already fits", 50, 40, 100, 100, 50, 40, [4]byte{40, 80, 120, 255}},
		{"wide image", 400, 200, 100, 100, 100, 50, [4]byte{40, 80, 120, 255}},
		{"tall image", 200, 400, 100, 100, 50, 100, [4]byte{40, 80, 120, 255}},
		{"key sized target", 400, 300, 120, 120, 120, 90, [4]byte{40, 80, 120, 255}},
		{"translucent fill", 40, 40, 10, 10, 10, 10, [4]byte{200, 220, 250, 64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fg := solid(tt.fgW, tt.fgH, tt.pixel[0], tt.pixel[1], tt.pixel[2], tt.pixel[3])
			got := Fit(fg, tt.maxW, tt.maxH)

			if got.Width != tt.wantW || got.Height != tt.wantH {
				t.Fatalf("Fit = %dx%d, want %dx%d", got.Width, got.Height, tt.wantW, tt.wantH)
			}
			if err := got.Validate(); err != nil {
				t.Fatal(err)
			}
			p := pixelAt(got, int(got.Width)/2, int(got.Height)/2)
			for c := range p {
				if absDiff(p[c], tt.pixel[c]) > 1 {
					t.Errorf("center pixel = %v, want about %v", p, tt.pixel)
					break
				}
			}
		})
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
