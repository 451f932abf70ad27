// Package constant canonicalizes constant values.
//
// Two constant expressions that evaluate to equal values of the same runtime
// type must yield the same object. Table.Intern gives every value a
// canonical key built from its runtime type and the ids of its fields or
// elements, and returns the first value ever interned under that key.
package constant

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/rtype/internal/core"
	"github.com/roach88/rtype/internal/meta"
	"github.com/roach88/rtype/internal/object"
	"github.com/roach88/rtype/internal/types"
)

// Table is the canonical constant table of one runtime.
type Table struct {
	lib *core.Library

	strings   map[string]int
	typeIDs   map[types.Type]int
	stamps    map[any]string
	canonical map[string]any
}

// New creates an empty table.
func New(lib *core.Library) *Table {
	return &Table{
		lib:       lib,
		strings:   make(map[string]int),
		typeIDs:   make(map[types.Type]int),
		stamps:    make(map[any]string),
		canonical: make(map[string]any),
	}
}

// Len returns the number of canonical values.
func (t *Table) Len() int { return len(t.canonical) }

// ID returns the canonical id of v.
//
// nil is "", booleans are b0 and b1, numbers are n<number> with doubles
// always carrying a fraction, and strings get a per-table counter id.
// Arrays and lists are the ids of their elements. Any other object must
// have been interned first; asking for the id of one that was not is an
// internal consistency failure.
func (t *Table) ID(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case bool:
		if val {
			return "b1", nil
		}
		return "b0", nil
	case int:
		return "n" + strconv.Itoa(val), nil
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "n" + strconv.FormatInt(toInt64(val), 10), nil
	case float32:
		return "n" + formatDouble(float64(val)), nil
	case float64:
		return "n" + formatDouble(val), nil
	case string:
		id, ok := t.strings[val]
		if !ok {
			id = len(t.strings)
			t.strings[val] = id
		}
		return "s" + strconv.Itoa(id), nil
	case []any:
		return t.elementsID(val)
	case *types.Class:
		return "t" + strconv.Itoa(t.typeID(val)), nil
	case *object.List:
		if id, ok := t.stamps[val]; ok {
			return id, nil
		}
		elems, err := t.elementsID(val.Items)
		if err != nil {
			return "", err
		}
		return "t" + strconv.Itoa(t.typeID(val.Class)) + elems, nil
	case *object.Instance:
		if id, ok := t.stamps[val]; ok {
			return id, nil
		}
		return "", meta.NewInternalError("canonicalId", val.Class.String(), "value was never interned")
	}
	return "", meta.NewInternalError("canonicalId", types.Name(t.lib.TypeOf(v)), "value of type %T was never interned", v)
}

// elementsID joins element ids from the end, so every id is followed by a
// separator and an empty array differs from an array holding "".
func (t *Table) elementsID(items []any) (string, error) {
	var b strings.Builder
	ids := make([]string, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		id, err := t.ID(items[i])
		if err != nil {
			return "", err
		}
		ids[i] = id
	}
	b.WriteByte('[')
	for _, id := range ids {
		b.WriteString(id)
		b.WriteByte(',')
	}
	b.WriteByte(']')
	return b.String(), nil
}

// Intern returns the canonical instance equal to v.
//
// The key is v's runtime type plus the ids of its fields (instances) or
// elements (lists); typeArgs, when given, are appended so equal shapes of
// different instantiations stay apart. Host arrays are keyed by their
// element ids. On a miss v itself is stamped with the key, stored, and
// returned. Primitive values are their own canonical form and are returned
// as is.
func (t *Table) Intern(v any, typeArgs ...types.Type) (any, error) {
	var key string
	switch val := v.(type) {
	case *object.Instance:
		if id, ok := t.stamps[val]; ok && len(typeArgs) == 0 {
			return t.canonical[id], nil
		}
		k, err := t.instanceKey(val)
		if err != nil {
			return nil, err
		}
		key = k
	case *object.List:
		if id, ok := t.stamps[val]; ok && len(typeArgs) == 0 {
			return t.canonical[id], nil
		}
		k, err := t.ID(val)
		if err != nil {
			return nil, err
		}
		key = k
	case []any:
		k, err := t.elementsID(val)
		if err != nil {
			return nil, err
		}
		key = k
	default:
		if _, err := t.ID(v); err != nil {
			return nil, err
		}
		return v, nil
	}

	if len(typeArgs) > 0 {
		parts := make([]string, len(typeArgs))
		for i, a := range typeArgs {
			parts[i] = "t" + strconv.Itoa(t.typeID(a))
		}
		key += "<" + strings.Join(parts, ",") + ">"
	}

	if existing, ok := t.canonical[key]; ok {
		return existing, nil
	}
	// Host arrays are not comparable; their ids are structural anyway.
	if _, array := v.([]any); !array {
		t.stamps[v] = key
	}
	t.canonical[key] = v
	return v, nil
}

func (t *Table) instanceKey(inst *object.Instance) (string, error) {
	names := make([]string, 0, len(inst.Fields))
	for name := range inst.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("t")
	b.WriteString(strconv.Itoa(t.typeID(inst.Class)))
	b.WriteByte('{')
	for _, name := range names {
		id, err := t.ID(inst.Fields[name])
		if err != nil {
			return "", err
		}
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(id)
		b.WriteByte(';')
	}
	b.WriteByte('}')
	return b.String(), nil
}

func (t *Table) typeID(ty types.Type) int {
	if id, ok := t.typeIDs[ty]; ok {
		return id
	}
	id := len(t.typeIDs)
	t.typeIDs[ty] = id
	return id
}

func formatDouble(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	}
	return 0
}
