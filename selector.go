package store

import (
	"reflect"
	"strings"
)

// Selector projects a narrowed value out of a full state. Implementations are
// expression-backed (expr, CEL, JS) and safe for concurrent use.
type Selector interface {
	Select(state any) (any, error)
}

// SelectorFunc adapts a function to Selector.
type SelectorFunc func(state any) (any, error)

// Select implements Selector.
func (f SelectorFunc) Select(state any) (any, error) {
	if f == nil {
		return nil, nil
	}
	return f(state)
}

// SubscribeSelector registers an expression-backed selector subscription on
// st. A failed selection is reported to the store's transition logger and
// yields nil for that pass instead of firing the listener with a bogus value.
func SubscribeSelector[S any](st *Store[S], selector Selector, fn func(value, prev any), opts ...SubscribeOption[any]) func() {
	if st == nil || selector == nil || fn == nil {
		return func() {}
	}
	project := func(state S) any {
		value, err := selector.Select(state)
		if err != nil {
			st.logger().LogTransition(TransitionEvent{Label: "selector", Err: err})
			return nil
		}
		return value
	}
	return Subscribe(st, project, fn, opts...)
}

// stateBinding projects a state value into a name-to-value environment for
// selector engines. Maps are used as-is; structs contribute their exported
// non-func fields keyed by json tag name when one is present.
func stateBinding(state any) map[string]any {
	if state == nil {
		return map[string]any{}
	}
	if m, ok := state.(map[string]any); ok {
		return m
	}

	rv := reflect.ValueOf(state)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return map[string]any{}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return map[string]any{"state": state}
	}

	binding := make(map[string]any, rv.NumField())
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		switch field.Type.Kind() {
		case reflect.Func, reflect.Chan:
			continue
		}
		name := fieldKey(field)
		if name == "" {
			continue
		}
		binding[name] = rv.Field(i).Interface()
	}
	return binding
}

func fieldKey(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}
	name := strings.Split(tag, ",")[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
