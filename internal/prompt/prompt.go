// Package prompt asks the user yes/no questions before a run continues.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotInteractive is returned by Terminal when stdin is not a terminal.
// Use --yes or --no (or config "assume") for scripted runs.
var ErrNotInteractive = errors.New("cannot prompt: stdin is not a terminal (use --yes or --no)")

// Confirmer answers a single yes/no question. A false answer means the
// user declined; an error means no answer could be obtained.
type Confirmer interface {
	Confirm(text string) (bool, error)
}

// Always answers every question the same way without asking.
type Always bool

func (a Always) Confirm(string) (bool, error) { return bool(a), nil }

// Terminal asks on a line-oriented terminal. An empty answer or EOF counts
// as "no".
type Terminal struct {
	In  io.Reader
	Out io.Writer
	// Force skips the terminal check, for piped input.
	Force bool

	scanner *bufio.Scanner
}

// NewTerminal returns a Terminal reading stdin and writing to stderr.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

func (t *Terminal) Confirm(text string) (bool, error) {
	if !t.Force && !isTerminal(t.In) {
		return false, ErrNotInteractive
	}
	if t.scanner == nil {
		t.scanner = bufio.NewScanner(t.In)
	}
	fmt.Fprintf(t.Out, "%s [y/N] ", text)
	if !t.scanner.Scan() {
		fmt.Fprintln(t.Out)
		return false, t.scanner.Err()
	}
	answer := strings.TrimSpace(strings.ToLower(t.scanner.Text()))
	return answer == "y" || answer == "yes", nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Recorder forwards to Next and keeps every question asked, in order.
type Recorder struct {
	Next  Confirmer
	Asked []string
}

func (r *Recorder) Confirm(text string) (bool, error) {
	r.Asked = append(r.Asked, text)
	return r.Next.Confirm(text)
}

// Script answers from a fixed list, one answer per question. Running out of
// answers is an error.
type Script []bool

func (s *Script) Confirm(text string) (bool, error) {
	if len(*s) == 0 {
		return false, fmt.Errorf("unexpected prompt: %q", text)
	}
	ans := (*s)[0]
	*s = (*s)[1:]
	return ans, nil
}
