// Package export renders saved drawings into downloadable formats.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	xdraw "golang.org/x/image/draw"
)

// Thumbnail bounds.
const (
	ThumbWidth  = 160
	ThumbHeight = 120
)

// ErrEmptyImage is returned when there is nothing to export.
var ErrEmptyImage = errors.New("export: empty image")

// PDFOptions controls PDF export. Units are points.
type PDFOptions struct {
	Title   string
	Author  string
	Created time.Time
	// Margin around the drawing on every side.
	Margin float64
}

// PDF writes a single-page PDF that holds the PNG drawing at its native
// pixel size, one point per pixel, surrounded by the margin.
func PDF(w io.Writer, pngData []byte, opt PDFOptions) error {
	if len(pngData) == 0 {
		return ErrEmptyImage
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(pngData))
	if err != nil {
		return fmt.Errorf("read png header: %w", err)
	}

	imgW := float64(cfg.Width)
	imgH := float64(cfg.Height)
	pageW := imgW + 2*opt.Margin
	pageH := imgH + 2*opt.Margin

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	if opt.Title != "" {
		pdf.SetTitle(opt.Title, true)
	}
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	pdf.SetCreator("aircanvas", false)
	if !opt.Created.IsZero() {
		pdf.SetCreationDate(opt.Created)
	}
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	const name = "drawing"
	info := pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(pngData))
	if info == nil || pdf.Err() {
		return fmt.Errorf("register image: %w", pdf.Error())
	}
	pdf.ImageOptions(name, opt.Margin, opt.Margin, imgW, imgH, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// Thumbnail returns a PNG of the drawing scaled to fit within maxW x maxH,
// keeping its aspect ratio. Images already inside the bounds are not enlarged.
func Thumbnail(pngData []byte, maxW, maxH int) ([]byte, error) {
	if len(pngData) == 0 {
		return nil, ErrEmptyImage
	}
	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}

	size := FitSize(src.Bounds().Dx(), src.Bounds().Dy(), maxW, maxH)
	dst := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// FitSize scales w x h down to fit maxW x maxH. Each side is at least 1.
func FitSize(w, h, maxW, maxH int) image.Point {
	if w <= 0 || h <= 0 {
		return image.Pt(1, 1)
	}
	if w <= maxW && h <= maxH {
		return image.Pt(w, h)
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return image.Pt(max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale)))
}
