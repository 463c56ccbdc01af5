package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PreHook lets callers rewrite the persisted payload before it is merged,
// e.g. to migrate records written by an older version.
type PreHook func(map[string]any) (map[string]any, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder merges persisted payloads onto a typed base state. Only keys
// present in the payload override the base; everything else keeps the base
// value, which is what deferred hydration needs: defaults first, persisted
// fields layered on top.
type Decoder[T any] struct {
	preHooks     []PreHook
	configureDec []func(*json.Decoder)
}

// WithPreHook applies hook to the payload prior to merging.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithDecoderConfig allows callers to configure the json.Decoder directly.
func WithDecoderConfig[T any](configure func(*json.Decoder)) DecoderOption[T] {
	return func(d *Decoder[T]) {
		if configure != nil {
			d.configureDec = append(d.configureDec, configure)
		}
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Merge overlays payload's top-level keys onto base and decodes the result
// back into T.
func (d *Decoder[T]) Merge(base T, payload map[string]any) (T, error) {
	var zero T

	if payload == nil {
		return zero, fmt.Errorf("hydrate: payload is nil")
	}

	current := payload
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook failed: %w", err)
		}
		if next != nil {
			current = next
		}
	}

	baseMap, err := toMap(base)
	if err != nil {
		return zero, fmt.Errorf("hydrate: encode base state: %w", err)
	}
	for key, value := range current {
		baseMap[key] = value
	}

	buffer, err := json.Marshal(baseMap)
	if err != nil {
		return zero, fmt.Errorf("hydrate: marshal merged payload: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(buffer))
	for _, configure := range d.configureDec {
		if configure != nil {
			configure(decoder)
		}
	}

	// Decode over a copy of base so fields the JSON codec cannot express
	// (actions, injected collaborators) survive hydration untouched.
	result := base
	if err := decoder.Decode(&result); err != nil {
		return zero, fmt.Errorf("hydrate: decode merged payload: %w", err)
	}
	return result, nil
}

func toMap(value any) (map[string]any, error) {
	buffer, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(buffer, &out); err != nil {
		return nil, err
	}
	return out, nil
}
