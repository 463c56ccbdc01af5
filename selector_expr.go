package store

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprSelectorOption configures an expr selector instance.
type ExprSelectorOption func(*exprSelector)

// ExprWithProgramCache wires a ProgramCache into the expr selector.
func ExprWithProgramCache(cache ProgramCache) ExprSelectorOption {
	return func(s *exprSelector) {
		s.cache = cache
	}
}

// exprSelector evaluates selection expressions using github.com/expr-lang/expr.
type exprSelector struct {
	cache      ProgramCache
	expression string
	program    *exprvm.Program
}

// NewExprSelector compiles expression into a Selector backed by
// expr-lang/expr. The expression is evaluated against the state's field
// binding, so `items` or `profile.Name` style expressions select directly.
func NewExprSelector(expression string, opts ...ExprSelectorOption) (Selector, error) {
	if expression == "" {
		return nil, wrapSelectorError("expr", fmt.Errorf("expression must not be empty"))
	}
	s := &exprSelector{expression: expression}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	program, err := s.loadOrCompile()
	if err != nil {
		return nil, err
	}
	s.program = program
	return s, nil
}

// Select runs the compiled expression against state.
func (s *exprSelector) Select(state any) (any, error) {
	env := stateBinding(state)
	result, err := exprlang.Run(s.program, env)
	if err != nil {
		return nil, wrapSelectionError("expr", s.expression, err)
	}
	return result, nil
}

func (s *exprSelector) loadOrCompile() (*exprvm.Program, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(s.expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	program, err := exprlang.Compile(s.expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, wrapSelectionError("expr", s.expression, err)
	}
	if s.cache != nil {
		s.cache.Set(s.expression, program)
	}
	return program, nil
}
