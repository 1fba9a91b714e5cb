package host

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// minVectorSide is the long-side pixel length SVG documents are rasterised
// to when their view box is smaller.
const minVectorSide = 1024

// Session is a file-backed Host. Documents are opened from disk and the most
// recently opened one is active. A new session starts in inches, so callers
// that read dimensions must switch to pixels first.
type Session struct {
	docs   []*Image
	units  Units
	filter string
}

// NewSession returns an empty session that resizes with the named filter.
func NewSession(filter string) *Session {
	if filter == "" {
		filter = DefaultFilter
	}
	return &Session{units: Inches, filter: filter}
}

// Open loads the image at path and makes it the active document.
func (s *Session) Open(path string) (*Image, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	var img *image.NRGBA
	if strings.EqualFold(filepath.Ext(abs), ".svg") {
		img, err = loadSVG(abs)
	} else {
		img, err = loadRaster(abs)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	doc := &Image{path: abs, img: img, ppi: DefaultResolution, session: s}
	s.docs = append(s.docs, doc)
	return doc, nil
}

// Documents returns the number of open documents.
func (s *Session) Documents() int { return len(s.docs) }

// Active returns the most recently opened document.
func (s *Session) Active() (Document, error) {
	if len(s.docs) == 0 {
		return nil, ErrNoDocument
	}
	return s.docs[len(s.docs)-1], nil
}

func (s *Session) SetRulerUnits(u Units) { s.units = u }

func loadRaster(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return imaging.Clone(img), nil
}

func loadSVG(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	icon, err := oksvg.ReadIconStream(f)
	if err != nil {
		return nil, err
	}
	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svg has an empty view box")
	}
	scale := 1.0
	if long := max(w, h); long < minVectorSide {
		scale = minVectorSide / long
	}
	pw, ph := int(w*scale+0.5), int(h*scale+0.5)
	icon.SetTarget(0, 0, float64(pw), float64(ph))

	rgba := image.NewRGBA(image.Rect(0, 0, pw, ph))
	scanner := rasterx.NewScannerGV(pw, ph, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(pw, ph, scanner), 1)
	return imaging.Clone(rgba), nil
}

// Image is a Document held in memory by a Session.
type Image struct {
	path    string
	img     *image.NRGBA
	ppi     float64
	session *Session
}

func (d *Image) Name() string { return filepath.Base(d.path) }
func (d *Image) Dir() string  { return filepath.Dir(d.path) }

// Pixels returns the current size in pixels, independent of ruler units.
func (d *Image) Pixels() (int, int) {
	b := d.img.Bounds()
	return b.Dx(), b.Dy()
}

func (d *Image) Width() float64 {
	w, _ := d.Pixels()
	return FromPixels(float64(w), d.ppi, d.session.units)
}

func (d *Image) Height() float64 {
	_, h := d.Pixels()
	return FromPixels(float64(h), d.ppi, d.session.units)
}

// Resize replaces the in-memory pixels with a resampled copy. It is
// destructive: later resizes start from the already reduced image.
func (d *Image) Resize(width, height int) error {
	out, err := Resample(d.img, width, height, d.session.filter)
	if err != nil {
		return err
	}
	d.img = out
	return nil
}

// ExportPNG writes the current pixels as a full-colour PNG at maximum
// compression. No palette reduction is applied.
func (d *Image) ExportPNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := imaging.Encode(f, d.img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
