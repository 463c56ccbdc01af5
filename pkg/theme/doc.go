// Package theme implements a persisted theme-preference store.
//
// The persisted choice is light, dark, or system; Resolved is always a
// concrete value, derived when hydration completes and kept current through
// an injected Environment rather than ambient globals, so resolution is
// deterministic under test.
package theme
