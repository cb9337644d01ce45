package main

import (
	"flag"
	"image"
	"image/png"
	"os"

	"github.com/charmbracelet/log"
	"github.com/phinze/jumpscare/internal/asset"
	"github.com/phinze/jumpscare/internal/compositor"
)

func main() {
	imagePath := flag.String("image", "", "Image to composite (required)")
	width := flag.Uint("width", 1920, "Output width")
	height := flag.Uint("height", 1080, "Output height")
	out := flag.String("out", "preview.png", "PNG file to write")
	fit := flag.Bool("fit", false, "Scale the image down to fit the output")
	flag.Parse()

	if *imagePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	fg, err := asset.NewImageDecoder().Decode(*imagePath)
	if err != nil {
		log.Fatal("Failed to decode image", "path", *imagePath, "err", err)
	}
	if err := fg.Validate(); err != nil {
		log.Fatal("Decoded image is unusable", "path", *imagePath, "err", err)
	}

	w, h := uint32(*width), uint32(*height)
	if *fit {
		fg = compositor.Fit(fg, w, h)
	}

	frame := compositor.NewBuffer(w, h)
	compositor.Blend(frame, compositor.Backdrop, fg)

	if err := writePNG(*out, frame); err != nil {
		log.Fatal("Failed to write preview", "path", *out, "err", err)
	}

	x, y := compositor.Offsets(w, h, fg.Width, fg.Height)
	log.Info("Wrote preview", "path", *out, "size", image.Pt(int(w), int(h)),
		"image", image.Pt(int(fg.Width), int(fg.Height)), "offset", image.Pt(x, y))
}

// writePNG stores the straight-alpha frame as NRGBA so the translucent
// backdrop survives.
func writePNG(path string, frame compositor.Buffer) error {
	img := image.NewNRGBA(image.Rect(0, 0, int(frame.Width), int(frame.Height)))
	for i := 0; i < len(frame.Pix); i += compositor.BytesPerPixel {
		img.Pix[i+0] = frame.Pix[i+2]
		img.Pix[i+1] = frame.Pix[i+1]
		img.Pix[i+2] = frame.Pix[i+0]
		img.Pix[i+3] = frame.Pix[i+3]
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
