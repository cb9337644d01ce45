package compositor

import (
	"image"

	"golang.org/x/image/draw"
)

// Fit returns fg scaled down so that it fits within maxW×maxH, keeping its
// aspect ratio. A foreground that already fits is returned unchanged.
func Fit(fg Buffer, maxW, maxH uint32) Buffer {
	if fg.Width <= maxW && fg.Height <= maxH {
		return fg
	}
	if fg.Width == 0 || fg.Height == 0 || maxW == 0 || maxH == 0 {
		return Buffer{}
	}

	// Pick the tighter axis and derive the other one from it.
	w, h := maxW, uint32(uint64(fg.Height)*uint64(maxW)/uint64(fg.Width))
	if h > maxH {
		w, h = uint32(uint64(fg.Width)*uint64(maxH)/uint64(fg.Height)), maxH
	}
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}

	// Buffers hold straight alpha, so they ride through NRGBA images. The
	// scaler treats the three color channels alike, so the BGRA order is kept.
	src := &image.NRGBA{
		Pix:    fg.Pix,
		Stride: int(fg.Width) * BytesPerPixel,
		Rect:   image.Rect(0, 0, int(fg.Width), int(fg.Height)),
	}
	dst := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return Buffer{Pix: dst.Pix, Width: w, Height: h}
}
