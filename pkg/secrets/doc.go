// Package secrets finds credentials embedded in free text using the Gitleaks
// rule set and scrubs them.
//
// The key based rules in package redact only catch secrets stored under
// telling member names. A Scanner catches the rest: API keys pasted into a
// query string, a connection URL in an error message, a token in a log line.
// Scanner.Rule plugs it into a redact.Redactor:
//
//	scanner, err := secrets.NewScanner(allowlist)
//	if err != nil {
//		return err
//	}
//	r := redact.New(append(redact.DefaultRules(), scanner.Rule())...)
//
// Each match is replaced with a [REDACTED:rule-id] marker so readers can
// still tell what kind of value was removed.
package secrets
