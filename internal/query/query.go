// Package query evaluates JSONPath expressions against a configuration.
package query

import (
	"fmt"

	"github.com/ohler55/ojg/jp"

	"github.com/jbweber/kiln/internal/document"
)

// Expr is a parsed JSONPath expression.
type Expr struct {
	src string
	x   jp.Expr
}

// Parse compiles a JSONPath expression such as $.machines[*].name.
func Parse(expr string) (*Expr, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}
	return &Expr{src: expr, x: x}, nil
}

// String returns the expression as written.
func (e *Expr) String() string {
	return e.src
}

// Get returns every value the expression selects from doc, in document
// order. Values are plain: map[string]any, []any and scalars.
func (e *Expr) Get(doc document.Value) []any {
	return e.x.Get(document.Plain(doc))
}

// First returns the first selected value.
func (e *Expr) First(doc document.Value) (any, bool) {
	results := e.Get(doc)
	if len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

// Eval parses expr and applies it to doc.
func Eval(doc document.Value, expr string) ([]any, error) {
	e, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return e.Get(doc), nil
}
