package asset

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/phinze/jumpscare/internal/compositor"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultSVGSize is the raster size for SVG files without a usable viewBox.
const DefaultSVGSize = 512

// ImageDecoder loads image files as straight-alpha BGRA buffers.
type ImageDecoder struct{}

// NewImageDecoder returns an ImageDecoder.
func NewImageDecoder() *ImageDecoder {
	return &ImageDecoder{}
}

// Decode reads the image at path. SVG files are rasterized at their viewBox
// size; everything else goes through the registered image codecs.
func (d *ImageDecoder) Decode(path string) (compositor.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return compositor.Buffer{}, err
	}
	defer f.Close()

	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		img, err = rasterizeSVG(f)
	} else {
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return compositor.Buffer{}, err
	}

	return ToBuffer(img), nil
}

// rasterizeSVG parses an SVG document with oksvg and fills it with a
// rasterx scanner.
func rasterizeSVG(r io.Reader) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, err
	}

	w := int(math.Ceil(icon.ViewBox.W))
	h := int(math.Ceil(icon.ViewBox.H))
	if w <= 0 || h <= 0 {
		w, h = DefaultSVGSize, DefaultSVGSize
	}

	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	return img, nil
}

// ToBuffer converts any image to a straight-alpha BGRA buffer whose origin
// is the image's top-left corner.
func ToBuffer(img image.Image) compositor.Buffer {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) || nrgba.Stride != b.Dx()*4 {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	buf := compositor.NewBuffer(uint32(b.Dx()), uint32(b.Dy()))
	for i := 0; i < len(buf.Pix); i += compositor.BytesPerPixel {
		buf.Pix[i+0] = nrgba.Pix[i+2]
		buf.Pix[i+1] = nrgba.Pix[i+1]
		buf.Pix[i+2] = nrgba.Pix[i+0]
		buf.Pix[i+3] = nrgba.Pix[i+3]
	}
	return buf
}
