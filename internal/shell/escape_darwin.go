//go:build darwin

package shell

import "strings"

var appleScriptReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// EscapeAppleScript escapes backslashes and double quotes for safe
// embedding inside AppleScript string literals.
func EscapeAppleScript(s string) string {
	return appleScriptReplacer.Replace(s)
}
