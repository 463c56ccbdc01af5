package store

// Combine builds an initializer from a plain initial state and an actions
// factory. The produced shape is the union of both: fields the factory leaves
// at their zero value fall back to the initial state, so callers declare data
// once and attach action closures without restating it.
func Combine[S any](initial S, actions Initializer[S]) Initializer[S] {
	return func(set SetFunc[S], get GetFunc[S], api *Store[S]) S {
		if actions == nil {
			return initial
		}
		return mergeTop(actions(set, get, api), initial)
	}
}
