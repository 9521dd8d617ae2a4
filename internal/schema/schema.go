// Package schema checks a merged configuration against the CUE schema of
// kiln configurations before it is decoded into typed structs.
package schema

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/jbweber/kiln/internal/document"
)

//go:embed kiln.cue
var source string

// ConfigDefinition is the schema definition a whole configuration must satisfy.
const ConfigDefinition = "#Config"

// Issue is one schema violation.
type Issue struct {
	// Path is the dotted location of the offending value, e.g.
	// machines.0.provisions.1.kind.
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// SchemaError lists every violation found in a configuration.
type SchemaError struct {
	Issues []Issue
}

func (e *SchemaError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return "configuration does not match schema: " + strings.Join(parts, "; ")
}

// Validator holds the compiled schema. It is not safe for concurrent use.
type Validator struct {
	ctx *cue.Context
	def cue.Value
}

// New compiles the built-in schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(source, cue.Filename("kiln.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	def := v.LookupPath(cue.ParsePath(ConfigDefinition))
	if !def.Exists() {
		return nil, fmt.Errorf("schema has no %s definition", ConfigDefinition)
	}
	return &Validator{ctx: ctx, def: def}, nil
}

// Validate returns a *SchemaError when doc does not satisfy the schema.
// A null machines key is treated as absent.
func (v *Validator) Validate(doc *document.Map) error {
	if m, ok := doc.Get("machines"); ok {
		if s, ok := m.(document.Scalar); ok && s.V == nil {
			doc = doc.Without("machines")
		}
	}

	data := v.ctx.Encode(document.Plain(doc))
	if err := data.Err(); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}

	unified := v.def.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{Issues: issues(err)}
	}
	return nil
}

// issues flattens a CUE error list into sorted, de-duplicated issues.
func issues(err error) []Issue {
	seen := make(map[Issue]bool)
	var out []Issue
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		issue := Issue{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		if seen[issue] {
			continue
		}
		seen[issue] = true
		out = append(out, issue)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})
	return out
}
