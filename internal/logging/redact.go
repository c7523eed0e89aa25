package logging

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/reqlog/internal/config"
	"github.com/fyrsmithlabs/reqlog/pkg/redact"
)

const redactedField = "[REDACTED]"

// Secret creates a field for a config.Secret that records only its length.
func Secret(key string, val config.Secret) zap.Field {
	return RedactedString(key, val.Value())
}

// RedactedString creates a field with the value replaced by its length.
func RedactedString(key, val string) zap.Field {
	return zap.String(key, "[REDACTED:"+strconv.Itoa(len(val))+"]")
}

// RedactingEncoder wraps a zapcore.Encoder and applies the payload
// redaction rules to diagnostics: authorization and secret keys, bearer
// values, JWT signatures, plus any configured key names. Reflected values
// are redacted member by member.
type RedactingEncoder struct {
	zapcore.Encoder
	enabled bool
	fields  map[string]bool
}

// NewRedactingEncoder wraps an encoder with redaction rules.
func NewRedactingEncoder(base zapcore.Encoder, cfg RedactionConfig) *RedactingEncoder {
	fields := make(map[string]bool, len(cfg.Fields))
	for _, f := range cfg.Fields {
		fields[strings.ToLower(f)] = true
	}
	return &RedactingEncoder{
		Encoder: base,
		enabled: cfg.Enabled,
		fields:  fields,
	}
}

// configuredKey reports whether key was listed in RedactionConfig.Fields.
func (e *RedactingEncoder) configuredKey(key string) bool {
	return e.enabled && e.fields[strings.ToLower(key)]
}

// member runs the rule list on one value. ok is false when the rules omit
// the member.
func (e *RedactingEncoder) member(key string, val any) (any, bool) {
	return redact.RedactMember(key, val)
}

// AddString redacts sensitive keys and values and truncates token
// signatures.
func (e *RedactingEncoder) AddString(key, val string) {
	if !e.enabled {
		e.Encoder.AddString(key, val)
		return
	}
	if e.configuredKey(key) {
		e.Encoder.AddString(key, redactedField)
		return
	}
	out, ok := e.member(key, val)
	if !ok {
		return
	}
	if s, isString := out.(string); isString {
		e.Encoder.AddString(key, redact.TruncateTokens(s))
		return
	}
	_ = e.Encoder.AddReflected(key, out)
}

// AddByteString treats the bytes as a string value.
func (e *RedactingEncoder) AddByteString(key string, val []byte) {
	if !e.enabled {
		e.Encoder.AddByteString(key, val)
		return
	}
	e.AddString(key, string(val))
}

// AddBinary redacts configured and sensitive keys.
func (e *RedactingEncoder) AddBinary(key string, val []byte) {
	if e.configuredKey(key) || (e.enabled && sensitiveKey(key)) {
		e.Encoder.AddString(key, redactedField)
		return
	}
	e.Encoder.AddBinary(key, val)
}

// AddReflected redacts the value member by member before encoding it.
func (e *RedactingEncoder) AddReflected(key string, val interface{}) error {
	if !e.enabled {
		return e.Encoder.AddReflected(key, val)
	}
	if e.configuredKey(key) {
		e.Encoder.AddString(key, redactedField)
		return nil
	}
	out, ok := e.member(key, val)
	if !ok {
		return nil
	}
	if s, isString := out.(string); isString {
		e.Encoder.AddString(key, redact.TruncateTokens(s))
		return nil
	}
	return e.Encoder.AddReflected(key, out)
}

// AddArray redacts configured and sensitive keys.
func (e *RedactingEncoder) AddArray(key string, arr zapcore.ArrayMarshaler) error {
	if e.configuredKey(key) || (e.enabled && sensitiveKey(key)) {
		e.Encoder.AddString(key, redactedField)
		return nil
	}
	return e.Encoder.AddArray(key, arr)
}

// AddObject redacts configured and sensitive keys.
func (e *RedactingEncoder) AddObject(key string, obj zapcore.ObjectMarshaler) error {
	if e.configuredKey(key) || (e.enabled && sensitiveKey(key)) {
		e.Encoder.AddString(key, redactedField)
		return nil
	}
	return e.Encoder.AddObject(key, obj)
}

// Clone creates a copy of the encoder.
func (e *RedactingEncoder) Clone() zapcore.Encoder {
	return &RedactingEncoder{
		Encoder: e.Encoder.Clone(),
		enabled: e.enabled,
		fields:  e.fields,
	}
}

// EncodeEntry routes per-entry fields through the redacting methods; the
// wrapped encoder would otherwise add them to itself directly.
func (e *RedactingEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	if !e.enabled {
		return e.Encoder.EncodeEntry(ent, fields)
	}
	clone := e.Clone().(*RedactingEncoder)
	for _, f := range fields {
		f.AddTo(clone)
	}
	ent.Message = redact.TruncateTokens(ent.Message)
	return clone.Encoder.EncodeEntry(ent, nil)
}

func sensitiveKey(key string) bool {
	return redact.IsAuthorizationKey(key) || redact.IsSecretKey(key)
}
