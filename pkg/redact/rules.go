package redact

import (
	"encoding/json"
	"math"
	"strings"
)

// Replacement values written by the default rules.
const (
	AuthorizationPlaceholder = "{AUTHORIZATION}"
	SecretPlaceholder        = "{SECRET}"
	IdentityPlaceholder      = "{-}"
	HTMLPlaceholder          = "<HTML DOCUMENT></HTML>"
)

// Action tells the traversal what to do with a member after a rule ran.
type Action int

const (
	// ActionKeep leaves the value as it was.
	ActionKeep Action = iota
	// ActionReplace substitutes Result.Value.
	ActionReplace
	// ActionOmit drops the member from its parent object.
	ActionOmit
)

// Result is the outcome of applying a Rule.
type Result struct {
	Action Action
	Value  any
}

// Keep leaves the value unchanged.
func Keep() Result { return Result{Action: ActionKeep} }

// ReplaceWith substitutes v for the value.
func ReplaceWith(v any) Result { return Result{Action: ActionReplace, Value: v} }

// Omit drops the member.
func Omit() Result { return Result{Action: ActionOmit} }

// Rule pairs a predicate on a key/value pair with a transform. The traversal
// applies the first rule whose Match returns true, then descends into the
// resulting value so nested members are still subject to every rule.
type Rule struct {
	Name  string
	Match func(key string, value any) bool
	Apply func(key string, value any) Result
}

var droppedHeaders = map[string]struct{}{
	"accept-language":   {},
	"content-length":    {},
	"content-type":      {},
	"x-forwarded-for":   {},
	"x-forwarded-port":  {},
	"x-forwarded-proto": {},
	"accept":            {},
	"accept-encoding":   {},
}

// BodyJSON parses string bodies so their content is redacted member by
// member. Unparsable bodies are kept verbatim.
var BodyJSON = Rule{
	Name: "body-json",
	Match: func(key string, value any) bool {
		_, ok := value.(string)
		return key == "body" && ok
	},
	Apply: func(_ string, value any) Result {
		parsed, err := Parse([]byte(value.(string)))
		if err != nil {
			return Keep()
		}
		return ReplaceWith(parsed)
	},
}

// Authorization redacts auth header values and bearer strings that do not
// carry a JWT. JWTs are left for TruncateTokens.
var Authorization = Rule{
	Name: "authorization",
	Match: func(key string, value any) bool {
		s, ok := value.(string)
		if !ok || s == "" || key == "" {
			return false
		}
		if !IsAuthorizationKey(key) && !hasFoldPrefix(s, "bearer") {
			return false
		}
		return !ContainsToken(s)
	},
	Apply: func(string, any) Result {
		return ReplaceWith(AuthorizationPlaceholder)
	},
}

// Secret redacts any truthy value under a secret or signature key.
var Secret = Rule{
	Name: "secret",
	Match: func(key string, value any) bool {
		return key != "" && IsSecretKey(key) && Truthy(value)
	},
	Apply: func(string, any) Result {
		return ReplaceWith(SecretPlaceholder)
	},
}

// Identity collapses Cognito identity blocks.
var Identity = Rule{
	Name: "identity",
	Match: func(key string, value any) bool {
		obj, ok := value.(*Object)
		return ok && obj != nil && strings.Contains(key, "identity") && obj.Has("cognitoIdentityPoolId")
	},
	Apply: func(string, any) Result {
		return ReplaceWith(IdentityPlaceholder)
	},
}

// Headers drops low-information headers. Remaining header values are visited
// by the traversal like any other member.
var Headers = Rule{
	Name: "headers",
	Match: func(key string, value any) bool {
		obj, ok := value.(*Object)
		return key == "headers" && ok && obj != nil
	},
	Apply: func(_ string, value any) Result {
		headers := value.(*Object)
		kept := newObjectSize(headers.Len())
		for _, name := range headers.keys {
			if _, drop := droppedHeaders[strings.ToLower(name)]; drop {
				continue
			}
			kept.Set(name, headers.values[name])
		}
		return ReplaceWith(kept)
	},
}

// MultiValueHeaders drops the duplicate header map API gateways attach.
var MultiValueHeaders = Rule{
	Name: "multi-value-headers",
	Match: func(key string, _ any) bool {
		return key == "multiValueHeaders"
	},
	Apply: func(string, any) Result {
		return Omit()
	},
}

// HTMLDocument replaces rendered HTML pages.
var HTMLDocument = Rule{
	Name: "html-document",
	Match: func(_ string, value any) bool {
		s, ok := value.(string)
		return ok && strings.HasPrefix(s, "<!DOCTYPE html>")
	},
	Apply: func(string, any) Result {
		return ReplaceWith(HTMLPlaceholder)
	},
}

// DefaultRules returns the rule list in priority order.
func DefaultRules() []Rule {
	return []Rule{
		BodyJSON,
		Authorization,
		Secret,
		Identity,
		Headers,
		MultiValueHeaders,
		HTMLDocument,
	}
}

// IsAuthorizationKey reports whether key contains "authorization" (any case)
// at an occurrence not immediately followed by "result".
func IsAuthorizationKey(key string) bool {
	lower := strings.ToLower(key)
	const word = "authorization"
	for offset := 0; offset < len(lower); {
		i := strings.Index(lower[offset:], word)
		if i < 0 {
			return false
		}
		end := offset + i + len(word)
		if !strings.HasPrefix(lower[end:], "result") {
			return true
		}
		offset += i + 1
	}
	return false
}

// IsSecretKey reports whether key contains "secret" or "signature" (any case).
func IsSecretKey(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "secret") || strings.Contains(lower, "signature")
}

// Truthy applies JavaScript truthiness to a canonical value.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int64:
		return t != 0
	case uint64:
		return t != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	}
	return true
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
