package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jbweber/kiln/internal/document"
)

const config = `
project: demo
machines:
  - name: web
    autostart: true
    provisions:
      - kind: shell
        inline: echo web
  - name: db
    autostart: false
`

func TestEval(t *testing.T) {
	doc, err := document.ParseYAML([]byte(config))
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}

	tests := []struct {
		name string
		expr string
		want []any
	}{
		{name: "all names", expr: "$.machines[*].name", want: []any{"web", "db"}},
		{name: "project", expr: "$.project", want: []any{"demo"}},
		{name: "nested", expr: "$.machines[0].provisions[0].kind", want: []any{"shell"}},
		{name: "filter", expr: "$.machines[?(@.autostart == true)].name", want: []any{"web"}},
		{name: "no match", expr: "$.missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(doc, tt.expr)
			if err != nil {
				t.Fatalf("Eval() error = %v", err)
			}
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Eval() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse("$.machines[?("); err == nil {
		t.Error("Parse() expected error")
	}
}

func TestFirst(t *testing.T) {
	doc, err := document.ParseYAML([]byte(config))
	if err != nil {
		t.Fatal(err)
	}
	e, err := Parse("$.machines[*].name")
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := e.First(doc); !ok || got != "web" {
		t.Errorf("First() = %v, %v", got, ok)
	}
	if e.String() != "$.machines[*].name" {
		t.Errorf("String() = %s", e.String())
	}
	if _, ok := e.First(document.NewMap()); ok {
		t.Error("First() on an empty document should find nothing")
	}
}
