// Package redact turns arbitrary event values into JSON that is safe to ship
// to a log sink.
//
// # Pipeline
//
// Serialize runs three stages:
//  1. Canonicalize converts Go values (maps, slices, structs, pointers,
//     json.Marshaler implementations) into an ordered tree, replacing
//     reference cycles with "[Circular]".
//  2. The Redactor walks the tree depth-first and applies the first matching
//     Rule at every key/value pair, then descends into the result.
//  3. The tree is encoded as JSON with the requested indentation.
//
// SerializeTruncated additionally rewrites every JWT-shaped token so only its
// header and payload survive:
//
//	eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0In0.abc -> eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0In0.<sig>
//
// # Rules
//
// DefaultRules, in priority order:
//   - body-json: string "body" members are parsed as JSON
//   - authorization: non-JWT auth values become {AUTHORIZATION}
//   - secret: truthy secret/signature members become {SECRET}
//   - identity: Cognito identity blocks become {-}
//   - headers: low-information headers are dropped
//   - multi-value-headers: the member is dropped
//   - html-document: HTML pages become <HTML DOCUMENT></HTML>
//
// Rules are plain values and can be tested or recombined with New.
package redact
