package invocation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fyrsmithlabs/reqlog/pkg/redact"
)

// ErrNoInvocation is returned when a checkpoint is recorded before an
// invocation was started.
var ErrNoInvocation = errors.New("no active invocation")

const (
	// TrackingKey is the metadata member holding the checkpoints.
	TrackingKey = "tracking"

	// StartLabel labels the first checkpoint of every invocation.
	StartLabel = "Start"

	// isoLayout matches JavaScript's Date.toISOString.
	isoLayout = "2006-01-02T15:04:05.000Z"
)

// TrackingPoint is one {label: value} checkpoint. The start point carries
// an ISO-8601 timestamp; later points carry elapsed milliseconds.
type TrackingPoint struct {
	Label string
	Value any
}

// MarshalJSON renders the point as a single-member object.
func (p TrackingPoint) MarshalJSON() ([]byte, error) {
	return p.object().MarshalJSON()
}

func (p TrackingPoint) object() *redact.Object {
	o := redact.NewObject()
	o.Set(p.Label, p.Value)
	return o
}

// Context is the state of one invocation. It is safe for concurrent use.
type Context struct {
	ID        string
	StartTime time.Time

	mu       sync.Mutex
	tracking []TrackingPoint
	fields   map[string]any
	clock    Clock
}

// Start begins a new invocation. metadata is copied; a "tracking" member in
// it is replaced by the generated checkpoint list.
func Start(clock Clock, ids IDSource, metadata map[string]any) *Context {
	if clock == nil {
		clock = SystemClock{}
	}
	if ids == nil {
		ids = IDFunc(ShortID)
	}

	now := clock.Now()
	fields := make(map[string]any, len(metadata))
	for k, v := range metadata {
		if k == TrackingKey {
			continue
		}
		fields[k] = v
	}

	return &Context{
		ID:        ids.NewID(),
		StartTime: now,
		tracking: []TrackingPoint{
			{Label: StartLabel, Value: FormatISO(now)},
		},
		fields: fields,
		clock:  clock,
	}
}

// FormatISO renders t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// TrackPoint appends {label: elapsed milliseconds since start}.
func (c *Context) TrackPoint(label string) error {
	if c == nil {
		return ErrNoInvocation
	}
	elapsed := c.clock.Now().Sub(c.StartTime).Milliseconds()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracking = append(c.tracking, TrackingPoint{Label: label, Value: elapsed})
	return nil
}

// Tracking returns a copy of the checkpoints in insertion order.
func (c *Context) Tracking() []TrackingPoint {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]TrackingPoint, len(c.tracking))
	copy(out, c.tracking)
	return out
}

// Fields returns a copy of the caller metadata.
func (c *Context) Fields() map[string]any {
	out := make(map[string]any)
	if c == nil {
		return out
	}
	for k, v := range c.fields {
		out[k] = v
	}
	return out
}

// InvocationID returns the identifier, or nil when c is nil so that it
// serializes as JSON null.
func (c *Context) InvocationID() any {
	if c == nil {
		return nil
	}
	return c.ID
}

// Metadata builds the payload metadata block:
// {runtimeKey: runtimeValue, tracking: [...], ...fields}. Caller fields are
// added in key order and may overwrite the runtime member.
func (c *Context) Metadata(runtimeKey string, runtimeValue any) *redact.Object {
	md := redact.NewObject()
	md.Set(runtimeKey, runtimeValue)

	points := c.Tracking()
	tracking := make([]any, 0, len(points))
	for _, p := range points {
		tracking = append(tracking, p.object())
	}
	md.Set(TrackingKey, tracking)

	if c == nil {
		return md
	}
	keys := make([]string, 0, len(c.fields))
	for k := range c.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		md.Set(k, c.fields[k])
	}
	return md
}

// Manager owns a single current invocation. Starting a new invocation
// replaces the previous one; the last writer wins.
type Manager struct {
	clock Clock
	ids   IDSource

	mu      sync.RWMutex
	current *Context
}

// NewManager returns a Manager. Nil arguments select SystemClock and ShortID.
func NewManager(clock Clock, ids IDSource) *Manager {
	if clock == nil {
		clock = SystemClock{}
	}
	if ids == nil {
		ids = IDFunc(ShortID)
	}
	return &Manager{clock: clock, ids: ids}
}

// New returns an invocation built with the manager's clock and IDs without
// making it current.
func (m *Manager) New(metadata map[string]any) *Context {
	return Start(m.clock, m.ids, metadata)
}

// Start replaces the current invocation with a new one.
func (m *Manager) Start(metadata map[string]any) *Context {
	inv := m.New(metadata)
	m.mu.Lock()
	m.current = inv
	m.mu.Unlock()
	return inv
}

// Current returns the active invocation, or nil.
func (m *Manager) Current() *Context {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// TrackPoint records a checkpoint on the current invocation.
func (m *Manager) TrackPoint(label string) error {
	return m.Current().TrackPoint(label)
}

type ctxKey struct{}

// WithContext stores inv in ctx.
func WithContext(ctx context.Context, inv *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, inv)
}

// FromContext returns the invocation stored in ctx, or nil.
func FromContext(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	if inv, ok := ctx.Value(ctxKey{}).(*Context); ok {
		return inv
	}
	return nil
}
