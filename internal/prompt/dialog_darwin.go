//go:build darwin

package prompt

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/Mavwarf/mkicns/internal/shell"
)

// Dialog shows a modal Yes/No dialog through osascript.
type Dialog struct{}

func (Dialog) Confirm(text string) (bool, error) {
	script := fmt.Sprintf(`display dialog "%s" buttons {"No", "Yes"} default button "Yes" cancel button "No" with icon caution`,
		shell.EscapeAppleScript(text))
	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		// -128 is "User canceled", reported when the cancel button is hit.
		if strings.Contains(string(out), "-128") {
			return false, nil
		}
		return false, fmt.Errorf("dialog failed: %w\n%s", err, out)
	}
	return strings.Contains(string(out), "button returned:Yes"), nil
}
