package redact

import "regexp"

// SignaturePlaceholder replaces the signature segment of a JWT.
const SignaturePlaceholder = "<sig>"

// tokenPattern matches base64url JWT header and payload segments followed by
// a signature segment. Group 1 is header.payload.
var tokenPattern = regexp.MustCompile(`(?i)(eyJ[a-zA-Z0-9_-]{5,}\.eyJ[a-zA-Z0-9_-]{5,})\.[a-zA-Z0-9_-]*`)

// ContainsToken reports whether s embeds a JWT-shaped token.
func ContainsToken(s string) bool {
	return tokenPattern.MatchString(s)
}

// TruncateTokens keeps the header and payload of every JWT-shaped token in
// text and replaces the signature with SignaturePlaceholder.
func TruncateTokens(text string) string {
	return tokenPattern.ReplaceAllString(text, "${1}."+SignaturePlaceholder)
}

// HasTokenSignature reports whether s embeds a JWT-shaped token whose
// signature segment is still present.
func HasTokenSignature(s string) bool {
	for _, m := range tokenPattern.FindAllStringSubmatchIndex(s, -1) {
		// m[1] is the match end, m[3] the end of header.payload.
		if m[1] > m[3]+1 {
			return true
		}
	}
	return false
}
