package redact

import "strconv"

// Redactor applies an ordered rule list to value trees.
type Redactor struct {
	rules []Rule
}

// New returns a Redactor using rules in the given order. With no rules it
// uses DefaultRules.
func New(rules ...Rule) *Redactor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Redactor{rules: rules}
}

var defaultRedactor = New()

// Redact canonicalizes value and returns the redacted tree.
func (r *Redactor) Redact(value any) any {
	out, ok := r.visit("", Canonicalize(value))
	if !ok {
		return nil
	}
	return out
}

// RedactMember applies the rules to one key/value pair and descends into the
// result. It returns false when the member is omitted.
func (r *Redactor) RedactMember(key string, value any) (any, bool) {
	return r.visit(key, Canonicalize(value))
}

// Serialize redacts value and encodes it with indent spaces per level
// (0 for compact output). It never panics.
func (r *Redactor) Serialize(value any, indent int) (out string) {
	defer func() {
		if recover() != nil {
			out = encode(UnserializablePlaceholder, 0)
		}
	}()
	return encode(r.Redact(value), indent)
}

// SerializeTruncated is Serialize followed by TruncateTokens.
func (r *Redactor) SerializeTruncated(value any, indent int) string {
	return TruncateTokens(r.Serialize(value, indent))
}

// apply runs the first matching rule. It returns false when the member
// should be omitted.
func (r *Redactor) apply(key string, value any) (any, bool) {
	for _, rule := range r.rules {
		if !rule.Match(key, value) {
			continue
		}
		res := rule.Apply(key, value)
		switch res.Action {
		case ActionOmit:
			return nil, false
		case ActionReplace:
			return Canonicalize(res.Value), true
		}
		return value, true
	}
	return value, true
}

// visit rewrites one member then descends into the value it produced.
func (r *Redactor) visit(key string, value any) (any, bool) {
	value, ok := r.apply(key, value)
	if !ok {
		return nil, false
	}

	switch t := value.(type) {
	case *Object:
		if t == nil {
			return nil, true
		}
		out := newObjectSize(t.Len())
		for _, k := range t.keys {
			if v, ok := r.visit(k, t.values[k]); ok {
				out.Set(k, v)
			}
		}
		return out, true
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			if v, ok := r.visit(strconv.Itoa(i), item); ok {
				out[i] = v
			}
		}
		return out, true
	}
	return value, true
}

// Redact applies DefaultRules to value.
func Redact(value any) any {
	return defaultRedactor.Redact(value)
}

// RedactMember applies DefaultRules to one key/value pair.
func RedactMember(key string, value any) (any, bool) {
	return defaultRedactor.RedactMember(key, value)
}

// Serialize applies DefaultRules to value and encodes the result.
func Serialize(value any, indent int) string {
	return defaultRedactor.Serialize(value, indent)
}

// SerializeTruncated applies DefaultRules, encodes, then truncates tokens.
func SerializeTruncated(value any, indent int) string {
	return defaultRedactor.SerializeTruncated(value, indent)
}
