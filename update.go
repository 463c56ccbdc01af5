package store

import "reflect"

// Merge returns an update that shallow-merges partial over the current state.
// Fields set (non-zero) in partial replace their counterparts; every other
// field keeps reference identity with its value in the current state. For
// non-struct state types Merge degrades to replacement.
func Merge[S any](partial S) Update[S] {
	return Update[S]{apply: func(current S) S {
		return mergeTop(partial, current)
	}}
}

// MergeFunc returns an update computing a partial from the current state and
// shallow-merging the result, like Merge.
func MergeFunc[S any](fn func(current S) S) Update[S] {
	if fn == nil {
		return Update[S]{}
	}
	return Update[S]{apply: func(current S) S {
		return mergeTop(fn(current), current)
	}}
}

// Swap returns an update replacing the whole state with next.
func Swap[S any](next S) Update[S] {
	return Update[S]{apply: func(S) S { return next }}
}

// SwapFunc returns an update replacing the whole state with fn(current).
func SwapFunc[S any](fn func(current S) S) Update[S] {
	if fn == nil {
		return Update[S]{}
	}
	return Update[S]{apply: fn}
}

// mergeTop composes strong over weak at the top level only: the result starts
// as weak, then every settable non-zero field of strong overrides. Untouched
// fields are plain copies of weak's fields, so reference-typed values keep
// identity.
func mergeTop[S any](strong, weak S) S {
	sv := reflect.ValueOf(strong)
	if sv.Kind() != reflect.Struct {
		return strong
	}

	out := reflect.New(sv.Type()).Elem()
	out.Set(reflect.ValueOf(weak))
	for i := 0; i < sv.NumField(); i++ {
		field := sv.Field(i)
		target := out.Field(i)
		if !target.CanSet() {
			continue
		}
		if field.IsZero() {
			continue
		}
		target.Set(field)
	}
	return out.Interface().(S)
}
