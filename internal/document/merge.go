package document

// Merge combines base with over and returns the result:
//   - two maps merge key by key, recursively
//   - two sequences concatenate, base first
//   - anything else resolves to over
//
// Merge is not commutative. Neither input is modified.
func Merge(base, over Value) Value {
	switch b := base.(type) {
	case *Map:
		if o, ok := over.(*Map); ok {
			return MergeMaps(b, o)
		}
	case Sequence:
		if o, ok := over.(Sequence); ok {
			out := make(Sequence, 0, len(b)+len(o))
			out = append(out, b...)
			return append(out, o...)
		}
	}
	return over
}

// MergeMaps is Merge specialised to maps. Keys keep the position of their
// first appearance; keys new in over are appended.
func MergeMaps(base, over *Map) *Map {
	out := NewMap()
	for _, k := range base.Keys() {
		out.Set(k, base.values[k])
	}
	for _, k := range over.Keys() {
		if existing, ok := out.values[k]; ok {
			out.Set(k, Merge(existing, over.values[k]))
			continue
		}
		out.Set(k, over.values[k])
	}
	return out
}

// Fold merges docs left to right into an initially empty map.
func Fold(docs ...*Map) *Map {
	out := NewMap()
	for _, d := range docs {
		out = MergeMaps(out, d)
	}
	return out
}
