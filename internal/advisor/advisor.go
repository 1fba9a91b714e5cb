// Package advisor decides whether a document's dimensions are likely to
// produce a distorted or pixelated icon, and asks before continuing.
package advisor

import (
	"errors"
	"fmt"

	"github.com/Mavwarf/mkicns/internal/prompt"
)

// DefaultThreshold is the pixel length of the largest icon in the set.
const DefaultThreshold = 1024

// ErrCancelled is returned when the user declines a warning.
var ErrCancelled = errors.New("cancelled by user")

// Kind identifies a warning category.
type Kind int

const (
	Distortion Kind = iota + 1
	WidthShort
	HeightShort
	BothShort
)

func (k Kind) String() string {
	switch k {
	case Distortion:
		return "distortion"
	case WidthShort:
		return "width-short"
	case HeightShort:
		return "height-short"
	case BothShort:
		return "both-short"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Warning is one question put to the user.
type Warning struct {
	Kind Kind
	Text string
}

// Classify returns the warnings for a w×h document, in the order they must
// be asked. The distortion check and the size check are independent, so a
// document can produce two warnings.
func Classify(w, h float64, threshold int) []Warning {
	t := float64(threshold)
	var out []Warning
	if w != h {
		out = append(out, Warning{Distortion,
			"The current document's width and height are unequal. This script may lead to some image distortion. Continue?"})
	}
	switch {
	case w < t && h >= t:
		out = append(out, Warning{WidthShort,
			fmt.Sprintf("The current document's width is below %dpx. Some pixelation might occur. Continue?", threshold)})
	case w >= t && h < t:
		out = append(out, Warning{HeightShort,
			fmt.Sprintf("The current document's height is below %dpx. Some pixelation might occur. Continue?", threshold)})
	case w < t && h < t:
		out = append(out, Warning{BothShort,
			fmt.Sprintf("The current document's width and height is below %dpx x %dpx. Some pixelation might occur. Continue?", threshold, threshold)})
	}
	return out
}

// Advise asks about each warning in turn. The first "no" stops and returns
// ErrCancelled; every warning answered so far is returned either way.
func Advise(w, h float64, threshold int, c prompt.Confirmer) ([]Warning, error) {
	warnings := Classify(w, h, threshold)
	for i, warn := range warnings {
		ok, err := c.Confirm(warn.Text)
		if err != nil {
			return warnings[:i+1], err
		}
		if !ok {
			return warnings[:i+1], ErrCancelled
		}
	}
	return warnings, nil
}
