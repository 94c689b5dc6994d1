// Package vision is the client for the video analysis service.
//
// The service takes the URI of a stored video and answers with the items a hand put
// into (added) or took out of (removed) the frame. It is treated as an opaque remote
// call: one POST per event, a configurable timeout and no retry.
//
// # Wire Format
//
// Request: POST {endpoint}/analyze_movement with {"gcsPath": "gs://bucket/object"}.
// Response: {"added": [...], "removed": [...], "error": "..."}. Items are objects
// {"name", "category"} or bare name strings, which get the default category. A
// non-empty error field is a failure.
//
// # Authentication
//
// NewTokenSource builds an oauth2.TokenSource once at start: a Google ID token source
// for Cloud Run style services, a static bearer token, or nothing. The client sets
// the Authorization header from it on every call.
package vision
