package ixsd

// Line-item editor. All three operations are pure transformations: they
// deep-copy the input headers and return the copy, so a caller that replaces
// its reference gets a fresh object graph while older snapshots stay valid
// for concurrent reads (e.g. an audit diff against a previous version).
//
// Invalid targets are silent no-ops, never panics: UI event handlers can race
// against header reloads and must not take the session down. The same applies
// to read-only fields; enforcement lives here, not in the presentation layer,
// because reconstruction trusts the model.

// AddRow appends a new empty row to the array-view header at headerIdx.
//
// The last existing row serves as the template: field metadata (type, lookup
// options, max length, editability) is copied, values are cleared, and the
// new row is appended with state added, never inserted, so server-side
// ordinal row numbers stay stable for pre-existing rows.
//
// Adding to a header with zero rows is a silent no-op: there is no template
// row to derive the column schema from.
func AddRow(headers []Header, headerIdx int) []Header {
	out := CloneHeaders(headers)
	if headerIdx < 0 || headerIdx >= len(out) {
		return out
	}
	h := &out[headerIdx]
	if h.ViewStyle != ViewArray || len(h.Rows) == 0 {
		return out
	}

	template := h.Rows[len(h.Rows)-1]
	row := template.clone()
	row.HasDuplicated = false
	row.hasDupOnWire = false
	row.wireState = ""
	for i := range row.Fields {
		f := &row.Fields[i]
		f.Value = emptyValue(f)
		f.Exceptions = nil
		f.ChangedSinceLoad = false
		// The template's wire null must not leak onto the cleared field.
		f.wire.nullValue = false
	}
	row.setState(RowStateAdded)

	h.Rows = append(h.Rows, row)
	return out
}

// emptyValue is the cleared value for a freshly added row's field. Most types
// clear to the empty string; booleanButton keeps its button labels (they are
// schema, carried in the value map) with every button released.
func emptyValue(f *Field) any {
	if f.InputType == InputBooleanButton {
		labels, _ := f.Value.(map[string]bool)
		cleared := make(map[string]bool, len(labels))
		for label := range labels {
			cleared[label] = false
		}
		return cleared
	}
	return ""
}

// DeleteRow tombstones the identified row: every field takes the deleted
// state but the row stays in place, preserving index stability for any UI
// still referencing it and letting reconstruction emit the tombstone the
// server applies transactionally. Deleting an already-deleted row is
// idempotent. Object-view rows are never deleted.
func DeleteRow(headers []Header, headerIdx, rowIdx int) []Header {
	out := CloneHeaders(headers)
	if headerIdx < 0 || headerIdx >= len(out) {
		return out
	}
	h := &out[headerIdx]
	if h.ViewStyle != ViewArray || rowIdx < 0 || rowIdx >= len(h.Rows) {
		return out
	}
	h.Rows[rowIdx].setState(RowStateDeleted)
	return out
}

// UpdateFieldValue replaces the value of the field at (rowIdx, fieldKey) and
// marks it changed since load. A row that was unchanged becomes modified so
// the save payload carries the lifecycle marker the server expects.
//
// No-ops: unknown header/row/field targets, and read-only fields.
func UpdateFieldValue(headers []Header, headerIdx, rowIdx int, fieldKey string, newValue any) []Header {
	out := CloneHeaders(headers)
	if headerIdx < 0 || headerIdx >= len(out) {
		return out
	}
	h := &out[headerIdx]
	if rowIdx < 0 || rowIdx >= len(h.Rows) {
		return out
	}
	row := &h.Rows[rowIdx]
	field := row.FieldByKey(fieldKey)
	if field == nil || field.ReadOnly {
		return out
	}

	if !valueEqual(field.Value, newValue) {
		field.ChangedSinceLoad = true
		if row.State == RowStateUnchanged {
			row.setState(RowStateModified)
		}
	}
	field.Value = newValue
	return out
}
