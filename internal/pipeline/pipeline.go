// Package pipeline runs one conversion: check for a document, normalise
// ruler units, advise on dimensions, export the iconset and hand it to the
// bridge.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Mavwarf/mkicns/internal/advisor"
	"github.com/Mavwarf/mkicns/internal/bridge"
	"github.com/Mavwarf/mkicns/internal/host"
	"github.com/Mavwarf/mkicns/internal/iconset"
	"github.com/Mavwarf/mkicns/internal/prompt"
	"github.com/Mavwarf/mkicns/internal/shell"
)

// Options configures a run. Host, Confirm and Bridge.Runner are required.
type Options struct {
	Host      host.Host
	Confirm   prompt.Confirmer
	Bridge    bridge.Bridge
	Threshold int
	// Specs overrides iconset.Specs.
	Specs []iconset.Spec
	// DryRun stops after the advisor and lists the actions a real run takes.
	DryRun   bool
	Progress func(spec iconset.Spec, path string)
}

// Result describes a run, complete or not.
type Result struct {
	Document string
	Width    float64
	Height   float64
	Warnings []advisor.Warning
	Folder   string
	Files    []string
	Outcome  bridge.Outcome
	Planned  []string
}

// Run executes the pipeline. The returned Result is filled in as far as
// the run got. If an export fails the document is left at the size of the
// failed step.
func Run(ctx context.Context, opts Options) (Result, error) {
	var res Result

	if opts.Host.Documents() == 0 {
		return res, ExitError{Code: CodeNoDocument}
	}
	opts.Host.SetRulerUnits(host.Pixels)

	doc, err := opts.Host.Active()
	if err != nil {
		return res, fmt.Errorf("active document: %w", err)
	}
	res.Document = filepath.Join(doc.Dir(), doc.Name())
	res.Width, res.Height = doc.Width(), doc.Height()

	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = advisor.DefaultThreshold
	}
	res.Warnings, err = advisor.Advise(res.Width, res.Height, threshold, opts.Confirm)
	if errors.Is(err, advisor.ErrCancelled) {
		return res, ExitError{Code: CodeCancelled}
	}
	if err != nil {
		return res, err
	}

	specs := opts.Specs
	if specs == nil {
		specs = iconset.Specs
	}
	if err := iconset.Validate(specs); err != nil {
		return res, err
	}

	res.Folder = iconset.FolderPath(doc)
	if opts.DryRun {
		res.Planned = plan(res.Folder, specs, opts.Bridge)
		return res, nil
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if err := iconset.EnsureFolder(res.Folder); err != nil {
		return res, err
	}
	res.Files, err = iconset.Export(doc, res.Folder, specs, opts.Progress)
	if err != nil {
		return res, err
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	b := opts.Bridge
	b.Source = specs[0].Name
	res.Outcome, err = b.Finish(ctx, res.Folder)
	return res, err
}

func plan(folder string, specs []iconset.Spec, b bridge.Bridge) []string {
	steps := []string{"mkdir " + folder}
	for _, s := range specs {
		steps = append(steps, fmt.Sprintf("resize %dx%d, export %s", s.Size, s.Size, filepath.Join(folder, s.Name)))
	}
	escaped := shell.Escape(folder)
	enc := b.Encoder
	if enc == "" {
		enc = bridge.EncoderIconutil
	}
	enc = enc.Resolve(b.LookPath)
	if enc == bridge.EncoderBuiltin {
		steps = append(steps, fmt.Sprintf("encode %s from %s", iconset.IcnsPath(folder), specs[0].Name))
		if b.Cleanup.ShouldRemove(nil) {
			steps = append(steps, "remove "+folder)
		}
		return steps
	}
	steps = append(steps, bridge.ConvertCommand(escaped))
	if b.Cleanup.ShouldRemove(nil) {
		steps = append(steps, bridge.RemoveCommand(escaped))
	}
	return steps
}
