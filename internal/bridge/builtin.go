package bridge

import (
	"fmt"
	"image/png"
	"os"

	"github.com/jackmordaunt/icns/v3"
)

// EncodeICNS writes an .icns file from a single PNG without iconutil. The
// encoder derives the smaller resolutions itself, so src should be the
// largest image of the set.
func EncodeICNS(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("icns: %w", err)
	}
	defer in.Close()

	img, err := png.Decode(in)
	if err != nil {
		return fmt.Errorf("icns: decoding %s: %w", src, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("icns: %w", err)
	}
	if err := icns.Encode(out, img); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("icns: encoding: %w", err)
	}
	return out.Close()
}
