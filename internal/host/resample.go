package host

import (
	"fmt"
	"image"
	"sort"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
)

// DefaultFilter is the resampling filter used when none is configured.
const DefaultFilter = "lanczos"

var imagingFilters = map[string]imaging.ResampleFilter{
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"linear":     imaging.Linear,
	"box":        imaging.Box,
	"nearest":    imaging.NearestNeighbor,
}

// xdrawFilters are served by golang.org/x/image/draw instead of imaging.
var xdrawFilters = map[string]xdraw.Scaler{
	"catmullrom-x": xdraw.CatmullRom,
	"bilinear-x":   xdraw.BiLinear,
}

// Filters returns the sorted names of all supported resampling filters.
func Filters() []string {
	names := make([]string, 0, len(imagingFilters)+len(xdrawFilters))
	for n := range imagingFilters {
		names = append(names, n)
	}
	for n := range xdrawFilters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ValidFilter reports whether name is a supported resampling filter.
func ValidFilter(name string) bool {
	_, a := imagingFilters[name]
	_, b := xdrawFilters[name]
	return a || b
}

// Resample scales src to exactly width×height pixels.
func Resample(src image.Image, width, height int, filter string) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("resize to %dx%d: dimensions must be positive", width, height)
	}
	if filter == "" {
		filter = DefaultFilter
	}
	if f, ok := imagingFilters[filter]; ok {
		return imaging.Resize(src, width, height, f), nil
	}
	if s, ok := xdrawFilters[filter]; ok {
		dst := image.NewNRGBA(image.Rect(0, 0, width, height))
		s.Scale(dst, dst.Rect, src, src.Bounds(), xdraw.Src, nil)
		return dst, nil
	}
	return nil, fmt.Errorf("unknown resample filter %q", filter)
}
