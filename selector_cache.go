package store

// ProgramCache stores compiled selector programs keyed by expression strings.
// Share one cache across stores to compile each expression once.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}
