package headlines

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// SplitLines splits a block of text into trimmed, non-blank lines.
// Line endings may be LF, CRLF or a bare CR.
func SplitLines(block string) []string {
	if block == "" {
		return nil
	}

	block = strings.ReplaceAll(block, "\r\n", "\n")
	block = strings.ReplaceAll(block, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// DecodeText decodes raw file content as UTF-8, dropping a leading byte order mark.
func DecodeText(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", &DecodeError{Message: "file is not valid UTF-8 text"}
	}

	decoded, err := unicode.UTF8BOM.NewDecoder().Bytes(raw)
	if err != nil {
		return "", &DecodeError{Message: "failed to decode UTF-8", Cause: err}
	}
	return string(decoded), nil
}
