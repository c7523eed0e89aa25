// Package sink delivers serialized log payloads.
//
// A Sink receives one finished payload per call. Implementations cover local
// writers and files, a NATS publisher for shipping payloads to a collector,
// and an OpenTelemetry log bridge. Multi fans a payload out to several sinks
// and Instrumented records Prometheus metrics around any sink.
package sink
