// Package devtools forwards named state transitions to an external inspector.
//
// The middleware is strictly an observer: it never alters committed state,
// and a failing or unreachable inspector degrades to a pass-through instead
// of surfacing into the caller's update. Disable forwarding entirely in
// production builds with WithEnabled(false).
//
// CaptureInspector records transitions for assertions in tests; the usersink
// subpackage adapts transitions to a go-users activity sink.
package devtools
