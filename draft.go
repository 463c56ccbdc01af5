package store

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Draft records field-path writes against a base state. Writes are collected,
// not applied; materialization produces a new state where every subtree not on
// a written path keeps reference identity with the base.
type Draft[S any] struct {
	base    S
	writes  []draftWrite
	replace *S
}

type draftWrite struct {
	path  []string
	value any
}

// Mutate returns an update that runs fn against a draft of the current state
// and materializes the recorded writes into a new immutable state. A draft
// function may instead call Return to replace the state wholesale; doing both
// in one call is ambiguous and panics.
func Mutate[S any](fn func(d *Draft[S])) Update[S] {
	if fn == nil {
		return Update[S]{}
	}
	return Update[S]{apply: func(current S) S {
		d := &Draft[S]{base: current}
		fn(d)
		return d.materialize()
	}}
}

// State returns the base state the draft was opened over.
func (d *Draft[S]) State() S {
	return d.base
}

// Set records a write at a dot-separated field path, e.g. "Items" or
// "Profile.Name". Struct segments name exported Go fields, slice segments are
// indices, map segments are keys. Unknown paths panic at materialization.
func (d *Draft[S]) Set(path string, value any) {
	d.writes = append(d.writes, draftWrite{path: strings.Split(path, "."), value: value})
}

// Return replaces the draft's accumulated writes with a complete state value.
func (d *Draft[S]) Return(next S) {
	d.replace = &next
}

func (d *Draft[S]) materialize() S {
	if d.replace != nil {
		if len(d.writes) > 0 {
			panic("store: mutation both wrote to the draft and returned a value")
		}
		return *d.replace
	}
	if len(d.writes) == 0 {
		return d.base
	}

	rv := reflect.ValueOf(d.base)
	out := reflect.New(rv.Type()).Elem()
	out.Set(rv)
	for _, write := range d.writes {
		setPath(out, write.path, write.value)
	}
	return out.Interface().(S)
}

// setPath walks v along path, cloning every reference container it traverses
// so the write never mutates state shared with the base, then sets the leaf.
func setPath(v reflect.Value, path []string, value any) {
	if len(path) == 0 {
		v.Set(coerceValue(value, v.Type()))
		return
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		} else {
			clone := reflect.New(v.Type().Elem())
			clone.Elem().Set(v.Elem())
			v.Set(clone)
		}
		setPath(v.Elem(), path, value)
	case reflect.Interface:
		if v.IsNil() {
			panic(fmt.Sprintf("store: draft path %q descends into nil interface", strings.Join(path, ".")))
		}
		elem := v.Elem()
		clone := reflect.New(elem.Type()).Elem()
		clone.Set(elem)
		setPath(clone, path, value)
		v.Set(clone)
	case reflect.Struct:
		field := v.FieldByName(path[0])
		if !field.IsValid() || !field.CanSet() {
			panic(fmt.Sprintf("store: draft path segment %q does not name a settable field of %s", path[0], v.Type()))
		}
		setPath(field, path[1:], value)
	case reflect.Map:
		keyType := v.Type().Key()
		elemType := v.Type().Elem()
		key := coerceValue(path[0], keyType)
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		if !v.IsNil() {
			iter := v.MapRange()
			for iter.Next() {
				clone.SetMapIndex(iter.Key(), iter.Value())
			}
		}
		if len(path) == 1 {
			clone.SetMapIndex(key, coerceValue(value, elemType))
		} else {
			entry := reflect.New(elemType).Elem()
			if existing := clone.MapIndex(key); existing.IsValid() {
				entry.Set(existing)
			}
			setPath(entry, path[1:], value)
			clone.SetMapIndex(key, entry)
		}
		v.Set(clone)
	case reflect.Slice:
		index, err := strconv.Atoi(path[0])
		if err != nil || index < 0 || index >= v.Len() {
			panic(fmt.Sprintf("store: draft path segment %q is not a valid index into %s of length %d", path[0], v.Type(), v.Len()))
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(clone, v)
		setPath(clone.Index(index), path[1:], value)
		v.Set(clone)
	case reflect.Array:
		index, err := strconv.Atoi(path[0])
		if err != nil || index < 0 || index >= v.Len() {
			panic(fmt.Sprintf("store: draft path segment %q is not a valid index into %s", path[0], v.Type()))
		}
		setPath(v.Index(index), path[1:], value)
	default:
		panic(fmt.Sprintf("store: draft path %q descends into %s", strings.Join(path, "."), v.Kind()))
	}
}

func coerceValue(value any, target reflect.Type) reflect.Value {
	if value == nil {
		return reflect.Zero(target)
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(target) {
		return rv
	}
	if rv.Type().ConvertibleTo(target) {
		return rv.Convert(target)
	}
	panic(fmt.Sprintf("store: cannot assign %s to %s", rv.Type(), target))
}
