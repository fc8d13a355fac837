// Package segment defines the request side of the segmentation contract:
// decoding inbound image payloads, resolving tuning parameters against
// documented defaults and ranges, and the error kinds every failure is
// reported under.
//
// # Request Validation
//
// An inbound payload is arbitrary bytes with a caller-declared MIME type and
// an untyped parameter map. Decode accepts the bytes only if the MIME type is
// a supported image encoding and the bytes actually decode as that format.
// ResolveParams validates each recognized parameter against a table of
// (type, min, max, default) entries; unrecognized keys are ignored so newer
// callers can send fields this version does not know about.
//
// # Error Kinds
//
// Every rejection carries a Kind so the messaging layer can report a stable
// error category alongside the human-readable reason. Use IsKind to test a
// wrapped error chain for a specific kind.
package segment
