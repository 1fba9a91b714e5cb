package bridge

import (
	"context"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/Mavwarf/mkicns/internal/iconset"
)

// FakeRunner records commands instead of running them. Results maps a
// program name ("iconutil", "rm") to the result it returns; unknown
// programs succeed. With Simulate set, successful iconutil and rm commands
// are applied to the filesystem.
type FakeRunner struct {
	Results  map[string]Result
	Simulate bool
	Commands []string
}

func (f *FakeRunner) Run(_ context.Context, command string) Result {
	f.Commands = append(f.Commands, command)
	words, err := shellquote.Split(command)
	if err != nil {
		return Result{Command: command, ExitCode: 2, Err: err}
	}
	res := Result{Command: command}
	if len(words) > 0 {
		if r, ok := f.Results[words[0]]; ok {
			res = r
			res.Command = command
		}
	}
	if !res.OK() || !f.Simulate || len(words) == 0 {
		return res
	}
	target := words[len(words)-1]
	switch words[0] {
	case "iconutil":
		if strings.HasSuffix(target, iconset.Ext) {
			os.WriteFile(iconset.IcnsPath(target), []byte("icns"), 0644)
		}
	case "rm":
		os.RemoveAll(target)
	}
	return res
}
