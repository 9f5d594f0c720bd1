// Command line flag usage formatting, shared by cmd/flightsim.

package flightsched_internal

import (
	"bytes"
	"strings"
)

const (
	// DefaultFlagUsageWidth is the help usage message line wraparound width.
	DefaultFlagUsageWidth = 58
)

// FormatFlagUsageWidth reformats usage by wrapping words around width,
// discarding the original line breaks and indentation. Example:
//
//	var configFlag = flag.String(
//		name,
//		value,
//		FormatFlagUsageWidth(`
//		This usage message will be reformatted to the given width, discarding
//		the current line breaks and line prefixing spaces.
//		`, 40),
//	)
func FormatFlagUsageWidth(usage string, width int) string {
	buf := &bytes.Buffer{}
	lineLen := 0
	for i, word := range strings.Fields(strings.TrimSpace(usage)) {
		if i > 0 {
			if lineLen+len(word)+1 > width {
				buf.WriteByte('\n')
				lineLen = 0
			} else {
				buf.WriteByte(' ')
				lineLen++
			}
		}
		n, err := buf.WriteString(word)
		if err != nil {
			return usage
		}
		lineLen += n
	}
	return buf.String()
}

func FormatFlagUsage(usage string) string {
	return FormatFlagUsageWidth(usage, DefaultFlagUsageWidth)
}
