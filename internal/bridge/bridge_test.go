package bridge

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/Mavwarf/mkicns/internal/iconset"
	"github.com/Mavwarf/mkicns/internal/shell"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

func TestSystemRunSuccess(t *testing.T) {
	skipWithoutShell(t)
	res := System{}.Run(context.Background(), "true")
	if !res.OK() {
		t.Fatalf("result = %+v, want OK", res)
	}
	if err := Check(res); err != nil {
		t.Fatal(err)
	}
}

func TestSystemRunExitStatus(t *testing.T) {
	skipWithoutShell(t)
	res := System{}.Run(context.Background(), "echo broken >&2; exit 3")
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if res.Stderr != "broken" {
		t.Errorf("Stderr = %q, want %q", res.Stderr, "broken")
	}
	err := Check(res)
	if !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("err = %v, want ErrCommandFailed", err)
	}
	if !strings.Contains(err.Error(), "exit status 3") || !strings.Contains(err.Error(), "broken") {
		t.Errorf("error text = %q", err.Error())
	}
}

func TestSystemRunTimeout(t *testing.T) {
	skipWithoutShell(t)
	start := time.Now()
	res := System{Timeout: 100 * time.Millisecond}.Run(context.Background(), "sleep 5; echo done")
	if res.OK() || res.Err == nil {
		t.Fatalf("result = %+v, want killed", res)
	}
	if !errors.Is(res.Err, context.DeadlineExceeded) {
		t.Errorf("Err = %v, want deadline exceeded", res.Err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("timeout did not kill the command promptly")
	}
}

func TestConvertMissingIconutil(t *testing.T) {
	skipWithoutShell(t)
	if _, err := exec.LookPath("iconutil"); err == nil {
		t.Skip("iconutil is installed, skipping missing-iconutil test")
	}
	_, err := Convert(context.Background(), System{}, shell.Escape(t.TempDir()+"/x.iconset"))
	if !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("err = %v, want ErrCommandFailed", err)
	}
}

func TestCommandsUseEscapedPath(t *testing.T) {
	escaped := shell.Escape("/Users/me/My Icons/logo (1).iconset")
	if got := ConvertCommand(escaped); got != `iconutil -c icns /Users/me/My\ Icons/logo\ \(1\)\.iconset` {
		t.Errorf("ConvertCommand = %q", got)
	}
	if got := RemoveCommand(escaped); got != `rm -rf /Users/me/My\ Icons/logo\ \(1\)\.iconset` {
		t.Errorf("RemoveCommand = %q", got)
	}
}

func TestParseEncoderAndCleanup(t *testing.T) {
	for _, s := range []string{"iconutil", "builtin", "auto"} {
		if _, err := ParseEncoder(s); err != nil {
			t.Errorf("ParseEncoder(%q): %v", s, err)
		}
	}
	if _, err := ParseEncoder("sips"); err == nil {
		t.Error("expected error for unknown encoder")
	}
	for _, s := range []string{"always", "on-success", "never"} {
		if _, err := ParseCleanup(s); err != nil {
			t.Errorf("ParseCleanup(%q): %v", s, err)
		}
	}
	if _, err := ParseCleanup("sometimes"); err == nil {
		t.Error("expected error for unknown cleanup policy")
	}
}

func TestCleanupShouldRemove(t *testing.T) {
	failed := errors.New("convert failed")
	tests := []struct {
		c    Cleanup
		err  error
		want bool
	}{
		{CleanupAlways, nil, true},
		{CleanupAlways, failed, true},
		{CleanupOnSuccess, nil, true},
		{CleanupOnSuccess, failed, false},
		{CleanupNever, nil, false},
		{"", failed, true},
	}
	for _, tt := range tests {
		if got := tt.c.ShouldRemove(tt.err); got != tt.want {
			t.Errorf("%q.ShouldRemove(%v) = %v, want %v", tt.c, tt.err, got, tt.want)
		}
	}
}

func TestEncoderResolve(t *testing.T) {
	found := func(string) (string, error) { return "/usr/bin/iconutil", nil }
	missing := func(string) (string, error) { return "", exec.ErrNotFound }
	if got := EncoderAuto.Resolve(found); got != EncoderIconutil {
		t.Errorf("auto with iconutil = %s", got)
	}
	if got := EncoderAuto.Resolve(missing); got != EncoderBuiltin {
		t.Errorf("auto without iconutil = %s", got)
	}
	if got := EncoderIconutil.Resolve(missing); got != EncoderIconutil {
		t.Errorf("explicit iconutil = %s", got)
	}
}

func makeIconset(t *testing.T) string {
	t.Helper()
	return makeIconsetWith(t, iconset.Specs[0].Name)
}

func makeIconsetWith(t *testing.T, name string) string {
	t.Helper()
	folder := filepath.Join(t.TempDir(), "My Logo.iconset")
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(filepath.Join(folder, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 256, 256))); err != nil {
		t.Fatal(err)
	}
	return folder
}

func TestFinishIconutilSuccess(t *testing.T) {
	folder := makeIconset(t)
	runner := &FakeRunner{Simulate: true}
	b := Bridge{Runner: runner, Encoder: EncoderIconutil, Cleanup: CleanupAlways}

	out, err := b.Finish(context.Background(), folder)
	if err != nil {
		t.Fatal(err)
	}
	if len(runner.Commands) != 2 {
		t.Fatalf("commands = %q", runner.Commands)
	}
	if runner.Commands[0] != ConvertCommand(shell.Escape(folder)) ||
		runner.Commands[1] != RemoveCommand(shell.Escape(folder)) {
		t.Errorf("commands = %q", runner.Commands)
	}
	if !out.Removed {
		t.Error("expected folder removed")
	}
	if _, err := os.Stat(folder); !os.IsNotExist(err) {
		t.Error("iconset folder still exists")
	}
	if _, err := os.Stat(out.IcnsPath); err != nil {
		t.Errorf("icns missing: %v", err)
	}
}

func TestFinishConvertFailureAlwaysRemoves(t *testing.T) {
	folder := makeIconset(t)
	runner := &FakeRunner{
		Simulate: true,
		Results:  map[string]Result{"iconutil": {ExitCode: 1, Stderr: "invalid iconset"}},
	}
	b := Bridge{Runner: runner, Cleanup: CleanupAlways}

	out, err := b.Finish(context.Background(), folder)
	var ce *CommandError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want *CommandError", err)
	}
	if ce.Result.ExitCode != 1 || ce.Result.Stderr != "invalid iconset" {
		t.Errorf("CommandError = %+v", ce.Result)
	}
	if !out.Removed || len(runner.Commands) != 2 {
		t.Errorf("cleanup under always should still run: %q", runner.Commands)
	}
}

func TestFinishConvertFailureOnSuccessKeeps(t *testing.T) {
	folder := makeIconset(t)
	runner := &FakeRunner{
		Simulate: true,
		Results:  map[string]Result{"iconutil": {ExitCode: 1}},
	}
	b := Bridge{Runner: runner, Cleanup: CleanupOnSuccess}

	out, err := b.Finish(context.Background(), folder)
	if !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("err = %v, want ErrCommandFailed", err)
	}
	if out.Removed || len(runner.Commands) != 1 {
		t.Errorf("folder should be kept: %q", runner.Commands)
	}
	if _, err := os.Stat(folder); err != nil {
		t.Errorf("folder removed: %v", err)
	}
}

func TestFinishRemoveFailureReported(t *testing.T) {
	folder := makeIconset(t)
	runner := &FakeRunner{Results: map[string]Result{"rm": {ExitCode: 1, Stderr: "permission denied"}}}
	b := Bridge{Runner: runner, Cleanup: CleanupAlways}

	out, err := b.Finish(context.Background(), folder)
	if !errors.Is(err, ErrCommandFailed) || !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("err = %v", err)
	}
	if out.Removed {
		t.Error("Removed should be false when rm fails")
	}
}

func TestFinishBuiltin(t *testing.T) {
	folder := makeIconset(t)
	runner := &FakeRunner{}
	b := Bridge{Runner: runner, Encoder: EncoderBuiltin, Cleanup: CleanupAlways}

	out, err := b.Finish(context.Background(), folder)
	if err != nil {
		t.Fatal(err)
	}
	if len(runner.Commands) != 0 {
		t.Errorf("builtin encoder ran shell commands: %q", runner.Commands)
	}
	data, err := os.ReadFile(out.IcnsPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 8 || string(data[:4]) != "icns" {
		t.Errorf("output is not an icns file (%d bytes)", len(data))
	}
	if _, err := os.Stat(folder); !os.IsNotExist(err) {
		t.Error("iconset folder still exists")
	}
}

func TestFinishBuiltinCustomSource(t *testing.T) {
	folder := makeIconsetWith(t, "icon_256x256.png")
	b := Bridge{Runner: &FakeRunner{}, Encoder: EncoderBuiltin, Cleanup: CleanupNever, Source: "icon_256x256.png"}

	out, err := b.Finish(context.Background(), folder)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if _, err := os.Stat(out.IcnsPath); err != nil {
		t.Errorf("icns missing: %v", err)
	}

	// Without Source the default table's largest entry is expected.
	b.Source = ""
	if _, err := b.Finish(context.Background(), folder); err == nil {
		t.Error("expected error when the default source is absent")
	}
}

func TestFakeRunnerRejectsUnparsableCommand(t *testing.T) {
	runner := &FakeRunner{}
	res := runner.Run(context.Background(), `iconutil -c icns "unterminated`)
	if res.OK() || res.Err == nil {
		t.Errorf("result = %+v, want a parse failure", res)
	}
}

func TestFakeRunnerSimulatesEscapedPath(t *testing.T) {
	folder := makeIconset(t)
	runner := &FakeRunner{Simulate: true}
	if res := runner.Run(context.Background(), RemoveCommand(shell.Escape(folder))); !res.OK() {
		t.Fatalf("rm: %+v", res)
	}
	if _, err := os.Stat(folder); !os.IsNotExist(err) {
		t.Error("folder with spaces was not removed")
	}
}

func TestEncodeICNSMissingSource(t *testing.T) {
	dir := t.TempDir()
	if err := EncodeICNS(filepath.Join(dir, "nope.png"), filepath.Join(dir, "out.icns")); err == nil {
		t.Fatal("expected error for missing source")
	}
}
