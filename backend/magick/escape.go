package magick

import (
	"strings"
)

// Escape returns the label text for code-point r in the form expected by
// a shell command line: the character in single quotes. An apostrophe cannot
// be single-quoted and is backslash-escaped instead. A backslash is escaped
// within the quotes.
//
//	Escape('A')  == `'A'`
//	Escape('\'') == `\'`
//	Escape('\\') == `'\\'`
func Escape(r rune) string {
	switch r {
	case '\'':
		return `\'`
	case '\\':
		return `'\\'`
	}
	return "'" + string(r) + "'"
}

// LabelArgument returns the label text for code-point r as passed to
// ImageMagick in an argument vector. No shell quoting is applied, but
// ImageMagick's own escapes are: percent signs would start a property
// expansion, backslashes an escape sequence and a leading '@' would read the
// label from a file.
func LabelArgument(r rune) string {
	s := string(r)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", "%%")
	if strings.HasPrefix(s, "@") {
		s = `\` + s
	}
	return s
}
