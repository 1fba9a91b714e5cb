// Package host models the image document host: the set of open documents,
// the active document, and the process-wide ruler unit preference.
package host

import (
	"errors"
	"fmt"
)

// ErrNoDocument is returned when an operation needs an active document but
// none is open.
var ErrNoDocument = errors.New("no open document")

// Units is the ruler unit preference used when reading document dimensions.
type Units int

const (
	Pixels Units = iota
	Inches
	Centimeters
	Millimeters
	Points
)

// DefaultResolution is the pixels-per-inch used when a document carries no
// resolution of its own.
const DefaultResolution = 72.0

var unitNames = map[Units]string{
	Pixels:      "px",
	Inches:      "in",
	Centimeters: "cm",
	Millimeters: "mm",
	Points:      "pt",
}

func (u Units) String() string {
	if s, ok := unitNames[u]; ok {
		return s
	}
	return fmt.Sprintf("Units(%d)", int(u))
}

// FromPixels converts a pixel length into u at the given resolution (ppi).
func FromPixels(px, ppi float64, u Units) float64 {
	if ppi <= 0 {
		ppi = DefaultResolution
	}
	inches := px / ppi
	switch u {
	case Inches:
		return inches
	case Centimeters:
		return inches * 2.54
	case Millimeters:
		return inches * 25.4
	case Points:
		return inches * 72
	default:
		return px
	}
}

// Document is the active image document. Width and Height are reported in
// the host's current ruler units; Resize always takes pixels.
type Document interface {
	Name() string
	Dir() string
	Width() float64
	Height() float64
	Resize(width, height int) error
	ExportPNG(path string) error
}

// Host is the capability set the conversion pipeline needs from the image
// host. SetRulerUnits is a process-wide preference: it outlives a single run
// and is never restored.
type Host interface {
	Documents() int
	Active() (Document, error)
	SetRulerUnits(u Units)
}
