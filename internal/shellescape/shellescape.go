// Package shellescape quotes arbitrary strings for safe embedding inside a
// POSIX shell command line, as used when compiling flow step SQL into the
// generated docker task args.
package shellescape

import "strings"

// replacer escapes the characters that remain special inside a
// double-quoted POSIX shell string: backslash, double quote, backtick and
// dollar sign (the characters that would otherwise terminate the quoted
// string or trigger expansion).
var replacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"`", "\\`",
	`$`, `\$`,
)

// Quote escapes s for embedding inside a double-quoted shell argument, e.g.
// `fmt.Sprintf("echo \"%s\"", Quote(s))`. It does not add the surrounding
// quotes itself.
func Quote(s string) string {
	return replacer.Replace(s)
}
