// Package ixsd implements the dynamic-form data model used by the document
// review workflow: a schema-free, server-driven representation of extracted
// document fields. The server describes each form at runtime through two JSON
// channels (data + exceptions); this package parses that representation,
// supports structural edits over line items, reconstructs the wire format for
// save, and diffs two versions for audit comparison.
//
// Everything in this package is a pure, synchronous transformation over
// in-memory data. There is no I/O, no locking, and no shared mutable state:
// operations that change the model return a fresh object graph and callers
// replace their reference.
package ixsd

import (
	"strings"
	"unicode"
)

// InputType selects which editor and validator the front end applies to a field.
type InputType string

const (
	InputText          InputType = "text"
	InputTextarea      InputType = "textarea"
	InputOptions       InputType = "options"
	InputMultiSelect   InputType = "multiSelect"
	InputDate          InputType = "date"
	InputCheckbox      InputType = "checkbox"
	InputBoolean       InputType = "boolean"
	InputBooleanButton InputType = "booleanButton"
	InputCurrency      InputType = "currency"
	InputDecimal       InputType = "decimal"
)

// IsValid checks if the input type is one of the supported enum values.
func (t InputType) IsValid() bool {
	switch t {
	case InputText, InputTextarea, InputOptions, InputMultiSelect, InputDate,
		InputCheckbox, InputBoolean, InputBooleanButton, InputCurrency, InputDecimal:
		return true
	}
	return false
}

// ParseInputType maps a wire string to an InputType. Unknown values fall back
// to InputText so a newer server vocabulary degrades to a plain text editor
// instead of breaking the review session.
func ParseInputType(s string) InputType {
	t := InputType(s)
	if !t.IsValid() {
		return InputText
	}
	return t
}

// RowState tracks the lifecycle of a row within the editing session.
type RowState string

const (
	RowStateUnchanged RowState = "unchanged"
	RowStateAdded     RowState = "added"
	RowStateDeleted   RowState = "deleted"
	RowStateModified  RowState = "modified"
)

// Wire item-state markers. A and D are interpreted; other markers (C, S, M)
// are preserved and round-tripped without interpretation.
const (
	itemStateAdded    = "A"
	itemStateDeleted  = "D"
	itemStateModified = "M"
)

// Severity ranks an exception entry. Error outranks warning.
type Severity string

const (
	SeverityNone    Severity = ""
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// LookupOption is one selectable entry for options/multiSelect fields.
// An empty option list is a valid state ("no lookup available"), not an error.
type LookupOption struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// ExceptionEntry is one server-side annotation attached to a field.
// Order within a field's list mirrors server-provided order and is never re-sorted.
type ExceptionEntry struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Field is the atomic unit of the model: one form field's value, type,
// editability, lookup options, and exception list.
//
// Value holds a scalar for most input types; for booleanButton it holds a
// map[string]bool from button label to pressed state.
type Field struct {
	Key              string
	DisplayLabel     string
	Value            any
	InputType        InputType
	ReadOnly         bool
	Required         bool
	LookupOptions    []LookupOption
	MaxLength        int
	Exceptions       []ExceptionEntry
	ChangedSinceLoad bool
	// RowState duplicates the owning row's state onto every field so render
	// code holding a single Field can style tombstoned rows without walking up.
	RowState RowState

	// wire records the exact shape the server sent for this field, so
	// reconstruction inverts Parse instead of normalizing the channel.
	wire fieldWire
}

// fieldWire tracks per-key wire presence for a field. Reconstruction emits
// exactly the metadata keys recorded here: keys the server never sent are
// never invented, and keys it did send survive even at their zero value.
type fieldWire struct {
	// rich marks a field the server sent as a metadata object rather than a
	// raw scalar.
	rich bool

	hasValue         bool
	hasInputType     bool
	hasReadOnly      bool
	hasRequired      bool
	hasLookupOptions bool
	hasMaxLength     bool
	hasDisplayLabel  bool

	// nullValue distinguishes an explicit wire null from a missing value.
	// Editors bind the empty string either way; reconstruction emits null
	// again unless the field was edited.
	nullValue bool
}

// HasException reports whether the field carries at least one exception entry.
func (f *Field) HasException() bool {
	return len(f.Exceptions) > 0
}

// ExceptionSeverity returns the strongest severity among the field's
// exceptions: error beats warning beats none.
func (f *Field) ExceptionSeverity() Severity {
	sev := SeverityNone
	for _, e := range f.Exceptions {
		if e.Severity == SeverityError {
			return SeverityError
		}
		if e.Severity != SeverityNone {
			sev = SeverityWarning
		}
	}
	return sev
}

// clone deep-copies the field, including lookup options, exceptions, and
// booleanButton value maps.
func (f *Field) clone() Field {
	out := *f
	if f.LookupOptions != nil {
		out.LookupOptions = make([]LookupOption, len(f.LookupOptions))
		copy(out.LookupOptions, f.LookupOptions)
	}
	if f.Exceptions != nil {
		out.Exceptions = make([]ExceptionEntry, len(f.Exceptions))
		copy(out.Exceptions, f.Exceptions)
	}
	if m, ok := f.Value.(map[string]bool); ok {
		cp := make(map[string]bool, len(m))
		for k, v := range m {
			cp[k] = v
		}
		out.Value = cp
	}
	return out
}

// Row is one record in a header: an ordered sequence of fields sharing the
// same key set with every sibling row of the same array-view header.
type Row struct {
	Fields []Field
	// State mirrors the RowState duplicated on each field.
	State RowState
	// HasDuplicated carries the server's duplicate-detection flag untouched.
	HasDuplicated bool

	// wireState preserves an uninterpreted item-state marker (C, S, M, ...)
	// exactly as the server sent it.
	wireState string
	// hasDupOnWire records whether hasDuplicated was present in the payload,
	// so reconstruction does not invent the key on rows that never had it.
	hasDupOnWire bool
}

// FieldByKey returns a pointer to the row's field with the given key, or nil.
func (r *Row) FieldByKey(key string) *Field {
	for i := range r.Fields {
		if r.Fields[i].Key == key {
			return &r.Fields[i]
		}
	}
	return nil
}

// setState updates the row state and its duplicate on every field.
func (r *Row) setState(state RowState) {
	r.State = state
	for i := range r.Fields {
		r.Fields[i].RowState = state
	}
}

func (r *Row) clone() Row {
	out := *r
	out.Fields = make([]Field, len(r.Fields))
	for i := range r.Fields {
		out.Fields[i] = r.Fields[i].clone()
	}
	return out
}

// ViewStyle distinguishes single-record headers from repeating line-item grids.
type ViewStyle string

const (
	// ViewObject is a header with exactly one row; the row is never added or
	// deleted, only individual field values mutate.
	ViewObject ViewStyle = "object"
	// ViewArray is a header with zero or more rows ("line items").
	ViewArray ViewStyle = "array"
)

// Header is a named field-group: either one record (object view) or a set of
// rows (array view of line items).
type Header struct {
	// Name matches the wire JSON's top-level property for this group.
	Name  string
	Label string

	ViewStyle ViewStyle
	Rows      []Row

	// Visible headers render and reconstruct; hidden headers are held in
	// memory but excluded from both.
	Visible bool

	// wireScalar preserves a top-level wire value that was neither an object
	// nor an array. Such a header has no field structure; the raw value
	// round-trips through reconstruction unchanged.
	wireScalar   any
	scalarOnWire bool
}

// HasException reports whether any field in any non-deleted row carries a
// non-empty exception list.
func (h *Header) HasException() bool {
	return h.ExceptionSeverity() != SeverityNone
}

// ExceptionSeverity derives the header's severity from its non-deleted rows:
// error if any exception has severity error, else warning if any exist.
func (h *Header) ExceptionSeverity() Severity {
	sev := SeverityNone
	for i := range h.Rows {
		if h.Rows[i].State == RowStateDeleted {
			continue
		}
		for j := range h.Rows[i].Fields {
			switch h.Rows[i].Fields[j].ExceptionSeverity() {
			case SeverityError:
				return SeverityError
			case SeverityWarning:
				sev = SeverityWarning
			}
		}
	}
	return sev
}

func (h *Header) clone() Header {
	out := *h
	out.Rows = make([]Row, len(h.Rows))
	for i := range h.Rows {
		out.Rows[i] = h.Rows[i].clone()
	}
	return out
}

// CloneHeaders deep-copies a header slice. Editor operations use it so the
// caller's previous snapshot stays untouched and safe for concurrent reads.
func CloneHeaders(headers []Header) []Header {
	out := make([]Header, len(headers))
	for i := range headers {
		out[i] = headers[i].clone()
	}
	return out
}

// labelFromKey derives a display label from a wire key when the server does
// not supply one: camelCase and snake_case boundaries become word breaks and
// each word is title-cased ("vendorName" -> "Vendor Name").
func labelFromKey(key string) string {
	if key == "" {
		return ""
	}
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(key)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case unicode.IsUpper(r):
			// Split before an upper rune unless it continues an acronym run.
			if i > 0 && !unicode.IsUpper(runes[i-1]) {
				flush()
			}
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
