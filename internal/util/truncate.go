// Package util holds the output-shaping helpers shared by tools and the
// agent: size capping for tool payloads and secret redaction.
package util

import "strings"

// TruncateBytes caps a string at maxBytes. The second return reports
// whether anything was cut. maxBytes <= 0 means unlimited.
func TruncateBytes(input string, maxBytes int) (string, bool) {
	if maxBytes <= 0 || len(input) <= maxBytes {
		return input, false
	}
	return input[:maxBytes], true
}

// TruncateLinesAndBytes keeps lines until either the line or byte limit
// would be exceeded. A limit <= 0 is unlimited. byteCount is the size of
// the kept lines joined with newlines.
func TruncateLinesAndBytes(lines []string, maxLines int, maxBytes int) (out []string, truncated bool, byteCount int) {
	if maxLines <= 0 && maxBytes <= 0 {
		return lines, false, len(strings.Join(lines, "\n"))
	}
	for i, line := range lines {
		next := byteCount + len(line)
		if i > 0 {
			next++ // joining newline
		}
		lineLimitHit := maxLines > 0 && len(out) >= maxLines
		byteLimitHit := maxBytes > 0 && next > maxBytes
		if lineLimitHit || byteLimitHit {
			truncated = true
			return out, truncated, byteCount
		}
		out = append(out, line)
		byteCount = next
	}
	return out, truncated, byteCount
}

// Preview returns a short display form of text for event previews. When
// the text is cut, an ellipsis line marks it.
func Preview(text string, maxLines int, maxBytes int) string {
	if text == "" {
		return ""
	}
	kept, truncated, _ := TruncateLinesAndBytes(strings.Split(text, "\n"), maxLines, maxBytes)
	if truncated {
		kept = append(kept, "…")
	}
	return strings.Join(kept, "\n")
}
