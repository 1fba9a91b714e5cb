package host

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// Fake is an in-memory Host for tests. It never touches the filesystem
// unless a FakeDocument has WriteFiles set.
type Fake struct {
	Docs      []*FakeDocument
	Units     Units
	UnitCalls int
}

// NewFake returns a Fake in inches with the given documents open; the last
// one is active.
func NewFake(docs ...*FakeDocument) *Fake {
	f := &Fake{Units: Inches}
	for _, d := range docs {
		d.host = f
		f.Docs = append(f.Docs, d)
	}
	return f
}

func (f *Fake) Documents() int { return len(f.Docs) }

func (f *Fake) Active() (Document, error) {
	if len(f.Docs) == 0 {
		return nil, ErrNoDocument
	}
	return f.Docs[len(f.Docs)-1], nil
}

func (f *Fake) SetRulerUnits(u Units) {
	f.Units = u
	f.UnitCalls++
}

// FakeDocument records every Resize and ExportPNG call in Calls.
type FakeDocument struct {
	Path string // e.g. "/art/logo.psd"
	W, H int    // current size in pixels
	PPI  float64

	// WriteFiles makes ExportPNG write a blank PNG of the current size.
	WriteFiles bool
	// FailExport makes the n-th ExportPNG call (1-based) return ExportErr.
	FailExport int
	ExportErr  error

	Calls   []string
	exports int
	host    *Fake
}

func (d *FakeDocument) Name() string { return filepath.Base(d.Path) }
func (d *FakeDocument) Dir() string  { return filepath.Dir(d.Path) }

func (d *FakeDocument) units() Units {
	if d.host == nil {
		return Pixels
	}
	return d.host.Units
}

func (d *FakeDocument) Width() float64  { return FromPixels(float64(d.W), d.PPI, d.units()) }
func (d *FakeDocument) Height() float64 { return FromPixels(float64(d.H), d.PPI, d.units()) }

func (d *FakeDocument) Resize(width, height int) error {
	d.Calls = append(d.Calls, fmt.Sprintf("resize %dx%d", width, height))
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize to %dx%d: dimensions must be positive", width, height)
	}
	d.W, d.H = width, height
	return nil
}

func (d *FakeDocument) ExportPNG(path string) error {
	d.exports++
	d.Calls = append(d.Calls, "export "+path)
	if d.FailExport > 0 && d.exports == d.FailExport {
		if d.ExportErr != nil {
			return d.ExportErr
		}
		return fmt.Errorf("export %s failed", filepath.Base(path))
	}
	if !d.WriteFiles {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, d.W, d.H))); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
