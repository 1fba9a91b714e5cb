package bridge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Mavwarf/mkicns/internal/iconset"
	"github.com/Mavwarf/mkicns/internal/shell"
)

// Encoder selects how the .icns file is produced.
type Encoder string

const (
	EncoderIconutil Encoder = "iconutil"
	EncoderBuiltin  Encoder = "builtin"
	EncoderAuto     Encoder = "auto"
)

// Cleanup decides when the iconset folder is removed after conversion.
type Cleanup string

const (
	CleanupAlways    Cleanup = "always"
	CleanupOnSuccess Cleanup = "on-success"
	CleanupNever     Cleanup = "never"
)

// ParseEncoder validates an encoder name.
func ParseEncoder(s string) (Encoder, error) {
	switch e := Encoder(s); e {
	case EncoderIconutil, EncoderBuiltin, EncoderAuto:
		return e, nil
	}
	return "", fmt.Errorf("unknown encoder %q (want iconutil, builtin or auto)", s)
}

// ParseCleanup validates a cleanup policy name.
func ParseCleanup(s string) (Cleanup, error) {
	switch c := Cleanup(s); c {
	case CleanupAlways, CleanupOnSuccess, CleanupNever:
		return c, nil
	}
	return "", fmt.Errorf("unknown cleanup policy %q (want always, on-success or never)", s)
}

// ShouldRemove reports whether the folder is removed given the conversion
// error (nil on success).
func (c Cleanup) ShouldRemove(convertErr error) bool {
	switch c {
	case CleanupNever:
		return false
	case CleanupOnSuccess:
		return convertErr == nil
	default:
		return true
	}
}

// Resolve turns EncoderAuto into a concrete encoder: iconutil when lookPath
// finds it, builtin otherwise.
func (e Encoder) Resolve(lookPath func(string) (string, error)) Encoder {
	if e != EncoderAuto {
		return e
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath("iconutil"); err == nil {
		return EncoderIconutil
	}
	return EncoderBuiltin
}

// Bridge converts an iconset folder and cleans it up.
type Bridge struct {
	Runner  Runner
	Encoder Encoder
	Cleanup Cleanup
	// LookPath resolves EncoderAuto; nil uses exec.LookPath.
	LookPath func(string) (string, error)
	// Source is the PNG inside the folder that the builtin encoder reads,
	// normally the largest of the set. Empty means iconset.Specs[0].
	Source string
}

// Outcome describes what Finish did.
type Outcome struct {
	Encoder  Encoder
	IcnsPath string
	Convert  *Result
	Remove   *Result
	Removed  bool
}

// Finish produces <folder without .iconset>.icns and then removes folder
// according to the cleanup policy. Conversion and removal failures are
// both returned; a failed conversion does not prevent cleanup under
// CleanupAlways.
func (b Bridge) Finish(ctx context.Context, folder string) (Outcome, error) {
	enc := b.Encoder
	if enc == "" {
		enc = EncoderIconutil
	}
	out := Outcome{Encoder: enc.Resolve(b.LookPath), IcnsPath: iconset.IcnsPath(folder)}
	escaped := shell.Escape(folder)

	var convertErr error
	if out.Encoder == EncoderBuiltin {
		convertErr = EncodeICNS(filepath.Join(folder, b.source()), out.IcnsPath)
	} else {
		res, err := Convert(ctx, b.Runner, escaped)
		out.Convert = &res
		convertErr = err
	}

	if !b.Cleanup.ShouldRemove(convertErr) {
		return out, convertErr
	}

	var removeErr error
	if out.Encoder == EncoderBuiltin {
		removeErr = os.RemoveAll(folder)
	} else {
		res, err := Remove(ctx, b.Runner, escaped)
		out.Remove = &res
		removeErr = err
	}
	out.Removed = removeErr == nil
	return out, errors.Join(convertErr, removeErr)
}

func (b Bridge) source() string {
	if b.Source != "" {
		return b.Source
	}
	return iconset.Specs[0].Name
}
