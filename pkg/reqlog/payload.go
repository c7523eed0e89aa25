package reqlog

import (
	"errors"

	"github.com/fyrsmithlabs/reqlog/pkg/invocation"
	"github.com/fyrsmithlabs/reqlog/pkg/redact"
)

// Size limits, in UTF-16 code units.
const (
	// MaxPayloadUnits is the first payload length that triggers a summary.
	MaxPayloadUnits = 131072

	// TruncatedPayloadUnits caps the compact payload prefix in a summary.
	TruncatedPayloadUnits = 40000
)

// Message members the Logger reads or stamps.
const (
	TitleKey        = "title"
	LevelKey        = "level"
	InvocationIDKey = "invocationId"

	DefaultLevel = "INFO"
	DebugLevel   = "DEBUG"

	SummaryTitle = "Payload too large"
	SummaryLevel = "ERROR"

	// DefaultRuntimeKey names the runtime version member of metadata.
	DefaultRuntimeKey = "go"

	serializeIndent = 2
)

// Rejection errors. Their text is the diagnostics message.
var (
	ErrEmptyString        = errors.New("empty message string")
	ErrEmptyObject        = errors.New("empty message object")
	ErrUnsupportedMessage = errors.New("unsupported message type")
)

// normalize copies message into a fresh object. Strings become {title}.
func normalize(message any) (*redact.Object, error) {
	if message == nil {
		return nil, ErrEmptyString
	}
	switch v := redact.Canonicalize(message).(type) {
	case string:
		if v == "" {
			return nil, ErrEmptyString
		}
		event := redact.NewObject()
		event.Set(TitleKey, v)
		return event, nil
	case *redact.Object:
		if v.Len() == 0 {
			return nil, ErrEmptyObject
		}
		return v, nil
	case nil:
		return nil, ErrEmptyObject
	}
	return nil, ErrUnsupportedMessage
}

// levelOf defaults a missing or falsy level and returns the effective value.
func levelOf(event *redact.Object) any {
	level, _ := event.Get(LevelKey)
	if !redact.Truthy(level) {
		event.Set(LevelKey, DefaultLevel)
		return DefaultLevel
	}
	return level
}

func buildPayload(event *redact.Object, metadata *redact.Object) *redact.Object {
	payload := redact.NewObject()
	payload.Set("message", event)
	payload.Set("metadata", metadata)
	return payload
}

// summarize builds the replacement for an oversized payload. The title is
// left out when the original message had none.
func summarize(r *redact.Redactor, inv *invocation.Context, event, payload *redact.Object, truncatedUnits int) *redact.Object {
	info := redact.NewObject()
	level, _ := event.Get(LevelKey)
	info.Set(LevelKey, level)
	if title, ok := event.Get(TitleKey); ok {
		info.Set(TitleKey, title)
	}
	keys := event.Keys()
	fields := make([]any, len(keys))
	for i, k := range keys {
		fields[i] = k
	}
	info.Set("fields", fields)

	compact := r.SerializeTruncated(payload, 0)

	msg := redact.NewObject()
	msg.Set(TitleKey, SummaryTitle)
	msg.Set(LevelKey, SummaryLevel)
	msg.Set("originalInfo", info)
	msg.Set("truncatedPayload", TruncateUTF16(compact, truncatedUnits))

	summary := redact.NewObject()
	summary.Set(InvocationIDKey, inv.InvocationID())
	summary.Set("message", msg)
	return summary
}
