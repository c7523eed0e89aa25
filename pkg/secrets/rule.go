package secrets

import "github.com/fyrsmithlabs/reqlog/pkg/redact"

// RuleName names the rule returned by Scanner.Rule.
const RuleName = "embedded-secret"

// Rule returns a redaction rule that scrubs secrets out of string values.
// Values without findings are kept. Append it after redact.DefaultRules so
// key based rules still win.
func (s *Scanner) Rule() redact.Rule {
	return redact.Rule{
		Name: RuleName,
		Match: func(_ string, value any) bool {
			text, ok := value.(string)
			return ok && len(text) >= MinScanLength
		},
		Apply: func(_ string, value any) redact.Result {
			scrubbed, findings := s.Scrub(value.(string))
			if len(findings) == 0 {
				return redact.Keep()
			}
			return redact.ReplaceWith(scrubbed)
		},
	}
}
