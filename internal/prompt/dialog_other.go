//go:build !darwin

package prompt

import "errors"

// Dialog is only available on macOS.
type Dialog struct{}

func (Dialog) Confirm(string) (bool, error) {
	return false, errors.New("dialog prompts are only supported on macOS")
}
