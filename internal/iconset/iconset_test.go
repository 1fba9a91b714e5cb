package iconset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Mavwarf/mkicns/internal/host"
)

func TestSpecsTable(t *testing.T) {
	if err := Validate(Specs); err != nil {
		t.Fatal(err)
	}
	wantNames := []string{
		"icon_512x512@2x.png",
		"icon_512x512.png",
		"icon_256x256@2x.png",
		"icon_256x256.png",
		"icon_128x128@2x.png",
		"icon_128x128.png",
		"icon_32x32@2x.png",
		"icon_32x32.png",
		"icon_16x16@2x.png",
		"icon_16x16.png",
	}
	wantSizes := []int{1024, 512, 512, 256, 256, 128, 64, 32, 32, 16}
	if len(Specs) != 10 {
		t.Fatalf("len(Specs) = %d, want 10", len(Specs))
	}
	for i, s := range Specs {
		if s.Name != wantNames[i] || s.Size != wantSizes[i] {
			t.Errorf("Specs[%d] = %+v, want {%s %d}", i, s, wantNames[i], wantSizes[i])
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		specs []Spec
	}{
		{"empty", nil},
		{"increasing", []Spec{{"a.png", 16}, {"b.png", 32}}},
		{"duplicate", []Spec{{"a.png", 32}, {"a.png", 16}}},
		{"zero", []Spec{{"a.png", 0}}},
	}
	for _, tt := range tests {
		if err := Validate(tt.specs); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"logo.psd", "logo"},
		{"logo.final.png", "logo.final"},
		{"logo", "logo"},
		{".hidden", ".hidden"},
		{"my logo (2).png", "my logo (2)"},
	}
	for _, tt := range tests {
		if got := BaseName(tt.in); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFolderAndIcnsPath(t *testing.T) {
	doc := &host.FakeDocument{Path: "/Users/me/Art/App Icon.v2.psd"}
	folder := FolderPath(doc)
	if folder != "/Users/me/Art/App Icon.v2.iconset" {
		t.Errorf("FolderPath = %q", folder)
	}
	if got := IcnsPath(folder); got != "/Users/me/Art/App Icon.v2.icns" {
		t.Errorf("IcnsPath = %q", got)
	}
}

func TestEnsureFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logo.iconset")
	if err := EnsureFolder(dir); err != nil {
		t.Fatal(err)
	}
	keep := filepath.Join(dir, "keep.txt")
	if err := os.WriteFile(keep, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureFolder(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("existing content removed: %v", err)
	}

	file := filepath.Join(t.TempDir(), "file.iconset")
	os.WriteFile(file, nil, 0644)
	if err := EnsureFolder(file); err == nil {
		t.Error("expected error when path is a file")
	}
}

func TestExportWritesTenFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	doc := &host.FakeDocument{Path: filepath.Join(dir, "logo.png"), W: 1024, H: 1024, WriteFiles: true}
	host.NewFake(doc)

	var seen []string
	written, err := Export(doc, dir, Specs, func(s Spec, _ string) { seen = append(seen, s.Name) })
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 10 || len(seen) != 10 {
		t.Fatalf("written %d files, progress %d", len(written), len(seen))
	}
	for i, s := range Specs {
		if filepath.Base(written[i]) != s.Name {
			t.Errorf("written[%d] = %s, want %s", i, written[i], s.Name)
		}
		if _, err := os.Stat(written[i]); err != nil {
			t.Errorf("missing %s: %v", s.Name, err)
		}
	}

	// Calls alternate resize/export in descending size order.
	if len(doc.Calls) != 20 {
		t.Fatalf("calls = %d, want 20", len(doc.Calls))
	}
	if doc.Calls[0] != "resize 1024x1024" || doc.Calls[18] != "resize 16x16" {
		t.Errorf("unexpected call order: %v", doc.Calls)
	}
}

func TestExportStopsOnFailure(t *testing.T) {
	boom := errors.New("disk full")
	doc := &host.FakeDocument{Path: "/art/logo.png", W: 1024, H: 1024, FailExport: 4, ExportErr: boom}
	host.NewFake(doc)

	written, err := Export(doc, "/out", Specs, nil)
	var ee *ExportError
	if !errors.As(err, &ee) {
		t.Fatalf("err = %v, want *ExportError", err)
	}
	if ee.Index != 3 || ee.Spec.Name != "icon_256x256.png" {
		t.Errorf("ExportError = %+v", ee)
	}
	if !errors.Is(err, boom) {
		t.Error("ExportError should unwrap to the export error")
	}
	if len(written) != 3 {
		t.Errorf("written = %d, want 3", len(written))
	}
	// The document stays at the size of the failed step.
	if doc.W != 256 || doc.H != 256 {
		t.Errorf("document left at %dx%d, want 256x256", doc.W, doc.H)
	}
}
