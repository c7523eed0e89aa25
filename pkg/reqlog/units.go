package reqlog

import "unicode/utf16"

// UTF16Len returns the length of s in UTF-16 code units, the unit log
// ingestion limits are expressed in. Invalid UTF-8 bytes count as one unit
// each, as they decode to U+FFFD.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// TruncateUTF16 returns the longest prefix of s that fits in limit UTF-16 code
// units. A surrogate pair is never split.
func TruncateUTF16(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	n := 0
	for i, r := range s {
		n += utf16.RuneLen(r)
		if n > limit {
			return s[:i]
		}
	}
	return s
}
