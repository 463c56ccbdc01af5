package store

import (
	"encoding/json"
	"fmt"
	"sync"

	celgo "github.com/google/cel-go/cel"
)

// CELSelectorOption configures the CEL selector.
type CELSelectorOption func(*celSelector)

// CELWithProgramCache wires a ProgramCache into the CEL selector.
func CELWithProgramCache(cache ProgramCache) CELSelectorOption {
	return func(s *celSelector) {
		s.cache = cache
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

// celSelector evaluates selection expressions using cel-go. Programs compile
// lazily on first selection because CEL declarations depend on the state's
// field names.
type celSelector struct {
	cache      ProgramCache
	expression string

	mu       sync.Mutex
	compiled *celProgram
}

// NewCELSelector constructs a Selector backed by cel-go.
func NewCELSelector(expression string, opts ...CELSelectorOption) (Selector, error) {
	if expression == "" {
		return nil, wrapSelectorError("cel", fmt.Errorf("expression must not be empty"))
	}
	s := &celSelector{expression: expression}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Select evaluates the expression against state's field binding.
func (s *celSelector) Select(state any) (any, error) {
	activation, err := celActivation(stateBinding(state))
	if err != nil {
		return nil, wrapSelectionError("cel", s.expression, err)
	}
	program, err := s.loadOrCompile(activation)
	if err != nil {
		return nil, err
	}
	out, _, err := program.program.Eval(activation)
	if err != nil {
		return nil, wrapSelectionError("cel", s.expression, err)
	}
	return out.Value(), nil
}

func (s *celSelector) loadOrCompile(activation map[string]any) (*celProgram, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.compiled != nil {
		return s.compiled, nil
	}
	if s.cache != nil {
		if cached, ok := s.cache.Get(s.expression); ok {
			if program, ok := cached.(*celProgram); ok {
				s.compiled = program
				return program, nil
			}
		}
	}

	opts := make([]celgo.EnvOption, 0, len(activation))
	for key := range activation {
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	env, err := celgo.NewEnv(opts...)
	if err != nil {
		return nil, wrapSelectionError("cel", s.expression, err)
	}
	ast, issues := env.Parse(s.expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapSelectionError("cel", s.expression, issues.Err())
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, wrapSelectionError("cel", s.expression, issues.Err())
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, wrapSelectionError("cel", s.expression, err)
	}

	bundle := &celProgram{env: env, program: prg}
	if s.cache != nil {
		s.cache.Set(s.expression, bundle)
	}
	s.compiled = bundle
	return bundle, nil
}

// celActivation converts binding values into CEL-native maps and primitives
// via a JSON round-trip, since state structs are opaque to a Dyn-typed env.
func celActivation(binding map[string]any) (map[string]any, error) {
	activation := make(map[string]any, len(binding))
	for key, value := range binding {
		switch value.(type) {
		case nil, bool, string, int, int64, uint64, float64, []any, map[string]any:
			activation[key] = value
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		var plain any
		if err := json.Unmarshal(raw, &plain); err != nil {
			return nil, err
		}
		activation[key] = plain
	}
	return activation, nil
}
