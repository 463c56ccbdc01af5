//go:build js_select

package store

import (
	"fmt"

	"github.com/dop251/goja"
)

// jsSelector evaluates selection expressions using goja. Each selection runs
// in a fresh runtime; the compiled program is shared.
type jsSelector struct {
	cache      ProgramCache
	expression string
	program    *goja.Program
}

// NewJSSelector constructs a Selector backed by goja.
func NewJSSelector(expression string, opts ...JSSelectorOption) (Selector, error) {
	if expression == "" {
		return nil, wrapSelectorError("js", fmt.Errorf("expression must not be empty"))
	}
	cfg := applyJSSelectorOptions(opts)
	s := &jsSelector{cache: cfg.cache, expression: expression}
	program, err := s.loadOrCompile()
	if err != nil {
		return nil, err
	}
	s.program = program
	return s, nil
}

func (s *jsSelector) Select(state any) (any, error) {
	vm := goja.New()
	for key, value := range stateBinding(state) {
		vm.Set(key, value)
	}
	value, err := vm.RunProgram(s.program)
	if err != nil {
		return nil, wrapSelectionError("js", s.expression, err)
	}
	return value.Export(), nil
}

func (s *jsSelector) loadOrCompile() (*goja.Program, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(s.expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", s.wrapExpression(), false)
	if err != nil {
		return nil, wrapSelectionError("js", s.expression, err)
	}
	if s.cache != nil {
		s.cache.Set(s.expression, program)
	}
	return program, nil
}

func (s *jsSelector) wrapExpression() string {
	return fmt.Sprintf("(function(){ return (%s); })()", s.expression)
}

func jsSelectorAvailable() bool {
	return true
}
