package host

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestFromPixels(t *testing.T) {
	tests := []struct {
		px   float64
		u    Units
		want float64
	}{
		{144, Pixels, 144},
		{144, Inches, 2},
		{72, Centimeters, 2.54},
		{72, Millimeters, 25.4},
		{144, Points, 144},
	}
	for _, tt := range tests {
		got := FromPixels(tt.px, 72, tt.u)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("FromPixels(%v, 72, %v) = %v, want %v", tt.px, tt.u, got, tt.want)
		}
	}
}

func TestFromPixelsZeroResolution(t *testing.T) {
	if got := FromPixels(72, 0, Inches); got != 1 {
		t.Errorf("FromPixels with ppi=0 = %v, want 1 (default resolution)", got)
	}
}

func TestSessionNoDocument(t *testing.T) {
	s := NewSession("")
	if s.Documents() != 0 {
		t.Fatalf("Documents() = %d, want 0", s.Documents())
	}
	if _, err := s.Active(); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("Active() err = %v, want ErrNoDocument", err)
	}
}

func TestSessionOpenResizeExport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "logo.png")
	writePNG(t, src, 144, 72)

	s := NewSession("lanczos")
	doc, err := s.Open(src)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Name() != "logo.png" || doc.Dir() != dir {
		t.Errorf("Name/Dir = %q %q", doc.Name(), doc.Dir())
	}

	// New sessions start in inches.
	if doc.Width() != 2 || doc.Height() != 1 {
		t.Errorf("inches = %v x %v, want 2 x 1", doc.Width(), doc.Height())
	}
	s.SetRulerUnits(Pixels)
	if doc.Width() != 144 || doc.Height() != 72 {
		t.Errorf("pixels = %v x %v, want 144 x 72", doc.Width(), doc.Height())
	}

	if err := doc.Resize(32, 32); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.png")
	if err := doc.ExportPNG(out); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 32 || cfg.Height != 32 {
		t.Errorf("exported %dx%d, want 32x32", cfg.Width, cfg.Height)
	}
	if _, ok := cfg.ColorModel.(color.Palette); ok {
		t.Error("exported PNG uses a palette, want full colour")
	}
}

func TestSessionOpenSVG(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "mark.svg")
	svg := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 32" width="64" height="32">
<rect x="0" y="0" width="64" height="32" fill="#ff0000"/></svg>`
	if err := os.WriteFile(src, []byte(svg), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewSession("")
	doc, err := s.Open(src)
	if err != nil {
		t.Fatal(err)
	}
	w, h := doc.Pixels()
	if w != 1024 || h != 512 {
		t.Errorf("rasterised to %dx%d, want 1024x512", w, h)
	}
}

func TestSessionOpenMissingFile(t *testing.T) {
	s := NewSession("")
	if _, err := s.Open(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if s.Documents() != 0 {
		t.Error("failed open should not add a document")
	}
}

func TestResampleFilters(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for _, name := range Filters() {
		out, err := Resample(src, 10, 10, name)
		if err != nil {
			t.Errorf("Resample(%s): %v", name, err)
			continue
		}
		if b := out.Bounds(); b.Dx() != 10 || b.Dy() != 10 {
			t.Errorf("Resample(%s) = %v, want 10x10", name, b)
		}
	}
	if _, err := Resample(src, 10, 10, "sinc-ish"); err == nil {
		t.Error("expected error for unknown filter")
	}
	if _, err := Resample(src, 0, 10, ""); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestFakeRecordsCalls(t *testing.T) {
	doc := &FakeDocument{Path: "/art/logo.psd", W: 100, H: 100, FailExport: 2}
	f := NewFake(doc)
	f.SetRulerUnits(Pixels)
	if doc.Width() != 100 {
		t.Errorf("Width = %v, want 100", doc.Width())
	}
	_ = doc.Resize(50, 50)
	if err := doc.ExportPNG("/tmp/a.png"); err != nil {
		t.Fatal(err)
	}
	if err := doc.ExportPNG("/tmp/b.png"); err == nil {
		t.Fatal("expected second export to fail")
	}
	want := []string{"resize 50x50", "export /tmp/a.png", "export /tmp/b.png"}
	if len(doc.Calls) != len(want) {
		t.Fatalf("Calls = %v, want %v", doc.Calls, want)
	}
	for i := range want {
		if doc.Calls[i] != want[i] {
			t.Errorf("Calls[%d] = %q, want %q", i, doc.Calls[i], want[i])
		}
	}
}
