package shell

import "regexp"

// specialRe matches every character that must be backslash-escaped before a
// path is interpolated into a /bin/sh command line.
var specialRe = regexp.MustCompile(`[-\[\]{}()*+?.,\\^$|#\s]`)

// Escape prefixes each shell-special character and each whitespace
// character in s with a backslash. Only use the result in command strings;
// filesystem calls take the raw path.
func Escape(s string) string {
	return specialRe.ReplaceAllString(s, `\$0`)
}
