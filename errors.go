package store

import (
	"errors"
	"fmt"
	"strings"
)

// SelectionError captures selector engine metadata alongside the originating
// error.
type SelectionError struct {
	Engine string
	Expr   string
	Err    error
}

func (e *SelectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("store: %s selector %s: %v", e.Engine, describeExpression(e.Expr), e.Err)
}

func (e *SelectionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapSelectorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var selErr *SelectionError
	if errors.As(err, &selErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "store:") {
		return err
	}
	return fmt.Errorf("store: %s selector: %w", engine, err)
}

func wrapSelectionError(engine, expr string, err error) error {
	if err == nil {
		return nil
	}

	var selErr *SelectionError
	if errors.As(err, &selErr) {
		if selErr.Engine == "" {
			selErr.Engine = engine
		}
		if selErr.Expr == "" {
			selErr.Expr = expr
		}
		return selErr
	}

	return &SelectionError{
		Engine: engine,
		Expr:   expr,
		Err:    err,
	}
}
