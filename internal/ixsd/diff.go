package ixsd

import (
	"fmt"
	"reflect"
)

// Version-diff engine. Given two independently parsed snapshots of the same
// logical document, Compare produces an aligned side-by-side view: headers
// pair by name, rows pair by position, fields pair by key. Positional row
// pairing is a deliberate simplification, not an LCS diff — both versions are
// assumed to preserve row order for unchanged rows, and the server-side
// counterpart expects the same positional alignment. Content-based row
// matching would silently disagree with it.

// TruncateLimit is the display length beyond which DisplayValue shortens a
// scalar. Truncation is presentation only; the diff decision always compares
// full values.
const TruncateLimit = 100

// FieldDiff pairs one field across the two versions. A nil side means the
// field exists only in the other version.
type FieldDiff struct {
	Key     string
	Left    *Field
	Right   *Field
	Changed bool
}

// RowDiff pairs the rows at one position. A nil side means the row exists
// only in the other version.
type RowDiff struct {
	Index  int
	Left   *Row
	Right  *Row
	Fields []FieldDiff
}

// HeaderDiff pairs two versions of one header. A header present in only one
// version keeps a nil counterpart and renders against an empty pane.
type HeaderDiff struct {
	Name   string
	Label  string
	Left   *Header
	Right  *Header
	Rows   []RowDiff
}

// Changed reports whether any field anywhere in the header pair differs.
func (d *HeaderDiff) Changed() bool {
	for i := range d.Rows {
		for j := range d.Rows[i].Fields {
			if d.Rows[i].Fields[j].Changed {
				return true
			}
		}
	}
	return false
}

// Compare aligns two parsed snapshots. Output order follows the left
// version's header order, with right-only headers appended in their own
// order. Both inputs are read-only; the result shares no mutable state with
// either beyond pointers into cloned copies.
func Compare(left, right []Header) []HeaderDiff {
	// Clone both sides so the diff result stays stable even if a caller
	// later feeds either snapshot through the editor.
	left = CloneHeaders(left)
	right = CloneHeaders(right)

	rightByName := make(map[string]*Header, len(right))
	for i := range right {
		rightByName[right[i].Name] = &right[i]
	}

	var diffs []HeaderDiff
	seen := make(map[string]bool, len(left))
	for i := range left {
		l := &left[i]
		seen[l.Name] = true
		diffs = append(diffs, compareHeader(l, rightByName[l.Name]))
	}
	for i := range right {
		if seen[right[i].Name] {
			continue
		}
		diffs = append(diffs, compareHeader(nil, &right[i]))
	}
	return diffs
}

func compareHeader(left, right *Header) HeaderDiff {
	d := HeaderDiff{Left: left, Right: right}
	switch {
	case left != nil:
		d.Name = left.Name
		d.Label = left.Label
	case right != nil:
		d.Name = right.Name
		d.Label = right.Label
	}

	var leftRows, rightRows []Row
	if left != nil {
		leftRows = left.Rows
	}
	if right != nil {
		rightRows = right.Rows
	}
	count := len(leftRows)
	if len(rightRows) > count {
		count = len(rightRows)
	}
	for i := 0; i < count; i++ {
		rd := RowDiff{Index: i}
		if i < len(leftRows) {
			rd.Left = &leftRows[i]
		}
		if i < len(rightRows) {
			rd.Right = &rightRows[i]
		}
		rd.Fields = compareFields(rd.Left, rd.Right)
		d.Rows = append(d.Rows, rd)
	}
	return d
}

// compareFields aligns fields by key: the left row's key order first, then
// right-only keys in their row order.
func compareFields(left, right *Row) []FieldDiff {
	var diffs []FieldDiff
	seen := map[string]bool{}

	if left != nil {
		for i := range left.Fields {
			lf := &left.Fields[i]
			seen[lf.Key] = true
			fd := FieldDiff{Key: lf.Key, Left: lf}
			if right != nil {
				fd.Right = right.FieldByKey(lf.Key)
			}
			fd.Changed = fd.Right == nil || !valueEqual(lf.Value, fd.Right.Value)
			diffs = append(diffs, fd)
		}
	}
	if right != nil {
		for i := range right.Fields {
			rf := &right.Fields[i]
			if seen[rf.Key] {
				continue
			}
			diffs = append(diffs, FieldDiff{Key: rf.Key, Right: rf, Changed: true})
		}
	}
	return diffs
}

// valueEqual compares field values structurally. booleanButton maps compare
// by content, never by reference, and numeric values compare by magnitude so
// a hand-built int snapshot matches its parsed float64 counterpart.
func valueEqual(a, b any) bool {
	if na, ok := asFloat(a); ok {
		if nb, ok := asFloat(b); ok {
			return na == nb
		}
		return false
	}
	if ma, ok := asBoolMap(a); ok {
		mb, ok := asBoolMap(b)
		if !ok || len(ma) != len(mb) {
			return false
		}
		for k, v := range ma {
			if other, ok := mb[k]; !ok || other != v {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asBoolMap(v any) (map[string]bool, bool) {
	switch m := v.(type) {
	case map[string]bool:
		return m, true
	case map[string]any:
		out := make(map[string]bool, len(m))
		for k, raw := range m {
			b, ok := raw.(bool)
			if !ok {
				return nil, false
			}
			out[k] = b
		}
		return out, true
	}
	return nil, false
}

// DisplayValue renders a field value for a comparison pane, shortening long
// scalars past TruncateLimit. Rendering only: callers must not feed the
// result back into the model.
func DisplayValue(v any) string {
	s := fmt.Sprintf("%v", v)
	if len([]rune(s)) <= TruncateLimit {
		return s
	}
	return string([]rune(s)[:TruncateLimit]) + "…"
}
