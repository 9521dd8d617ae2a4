package provision

import (
	"sort"
	"strings"

	"github.com/jbweber/kiln/api/v1alpha1"
)

// Quote wraps s in double quotes for a POSIX shell. An embedded double quote
// closes the string, is emitted escaped and reopens it. Backslash, dollar and
// backtick keep their literal meaning.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`"\""`)
		case '\\', '$', '`':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ArgString renders script arguments. A raw string passes through untouched;
// a list is quoted element by element and space-joined.
func ArgString(args v1alpha1.Args) string {
	if !args.IsList() {
		return args.Raw
	}
	quoted := make([]string, len(args.List))
	for i, a := range args.List {
		quoted[i] = Quote(a)
	}
	return strings.Join(quoted, " ")
}

// CommandLine builds the shell command that runs script. sudo is prefixed
// when non-empty.
func CommandLine(sudo, script string, args v1alpha1.Args) string {
	var parts []string
	if sudo != "" {
		parts = append(parts, sudo)
	}
	parts = append(parts, Quote(script))
	if a := ArgString(args); a != "" {
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Environ returns base extended with env as KEY=VALUE entries, sorted by key.
func Environ(base []string, env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(base)+len(keys))
	out = append(out, base...)
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
