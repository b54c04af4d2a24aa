package ixsd

// Reconstruction is the structural inverse of Parse: it derives the two wire
// JSON channels from the current in-memory model at save time. Deleted rows
// are emitted with their tombstone marker rather than omitted, so the server
// can apply deletions transactionally and ordinal row numbers stay stable for
// the rows that remain.

// DataJSON serializes the data channel. Object-view headers emit one object
// keyed by field key; array-view headers emit one object per row, deleted
// rows included. Hidden headers are excluded from iteration entirely.
func DataJSON(headers []Header) map[string]any {
	out := make(map[string]any, len(headers))
	for i := range headers {
		h := &headers[i]
		if !h.Visible {
			continue
		}
		if h.scalarOnWire {
			out[h.Name] = h.wireScalar
			continue
		}
		if h.ViewStyle == ViewArray {
			rows := make([]any, 0, len(h.Rows))
			for j := range h.Rows {
				rows = append(rows, reconstructRow(&h.Rows[j]))
			}
			out[h.Name] = rows
			continue
		}
		if len(h.Rows) > 0 {
			out[h.Name] = reconstructRow(&h.Rows[0])
		} else {
			out[h.Name] = map[string]any{}
		}
	}
	return out
}

func reconstructRow(row *Row) map[string]any {
	obj := make(map[string]any, len(row.Fields)+2)
	for i := range row.Fields {
		f := &row.Fields[i]
		obj[f.Key] = reconstructField(f)
	}
	if marker := wireItemState(row); marker != "" {
		obj[keyItemState] = marker
	}
	if row.hasDupOnWire || row.HasDuplicated {
		obj[keyHasDuplicated] = row.HasDuplicated
	}
	return obj
}

// wireItemState maps the row's lifecycle back to its wire marker. Session
// states win; otherwise any uninterpreted marker the server sent round-trips.
func wireItemState(row *Row) string {
	switch row.State {
	case RowStateAdded:
		return itemStateAdded
	case RowStateDeleted:
		return itemStateDeleted
	case RowStateModified:
		return itemStateModified
	}
	return row.wireState
}

// reconstructField emits either the raw scalar or the rich metadata object,
// matching the shape the server used for this field on load. Only the
// metadata keys that were on the wire come back; nothing is invented.
func reconstructField(f *Field) any {
	if !f.wire.rich {
		return fieldValue(f)
	}
	obj := map[string]any{}
	if f.wire.hasValue || f.ChangedSinceLoad {
		obj["value"] = fieldValue(f)
	}
	if f.wire.hasInputType {
		obj["inputType"] = string(f.InputType)
	}
	if f.wire.hasReadOnly {
		obj["readOnly"] = f.ReadOnly
	}
	if f.wire.hasRequired {
		obj["required"] = f.Required
	}
	if f.wire.hasDisplayLabel {
		obj["displayLabel"] = f.DisplayLabel
	}
	if f.wire.hasMaxLength {
		obj["maxLength"] = float64(f.MaxLength)
	}
	if f.wire.hasLookupOptions && f.LookupOptions != nil {
		opts := make([]any, 0, len(f.LookupOptions))
		for _, opt := range f.LookupOptions {
			opts = append(opts, map[string]any{
				"id":          opt.ID,
				"description": opt.Description,
			})
		}
		obj["lookupOptions"] = opts
	}
	return obj
}

// fieldValue is the wire value for a field: a local edit wins, otherwise an
// explicit wire null round-trips as null rather than the editor's empty
// string binding.
func fieldValue(f *Field) any {
	if f.wire.nullValue && !f.ChangedSinceLoad {
		return nil
	}
	return f.Value
}

// ExceptionJSON serializes the exception channel sparsely: only headers, rows,
// and fields that currently carry at least one exception appear, matching the
// parser's "absence means none" read convention. Within an array view, rows
// before the last excepted row are kept as empty objects so row indexes stay
// aligned with the data channel.
func ExceptionJSON(headers []Header) map[string]any {
	out := map[string]any{}
	for i := range headers {
		h := &headers[i]
		if !h.Visible {
			continue
		}
		if h.ViewStyle == ViewArray {
			rows := make([]any, 0, len(h.Rows))
			last := -1
			for j := range h.Rows {
				rowExc := reconstructRowExceptions(&h.Rows[j])
				rows = append(rows, rowExc)
				if len(rowExc) > 0 {
					last = j
				}
			}
			if last < 0 {
				continue
			}
			out[h.Name] = rows[:last+1]
			continue
		}
		if len(h.Rows) == 0 {
			continue
		}
		rowExc := reconstructRowExceptions(&h.Rows[0])
		if len(rowExc) == 0 {
			continue
		}
		out[h.Name] = rowExc
	}
	return out
}

func reconstructRowExceptions(row *Row) map[string]any {
	obj := map[string]any{}
	for i := range row.Fields {
		f := &row.Fields[i]
		if len(f.Exceptions) == 0 {
			continue
		}
		entries := make([]any, 0, len(f.Exceptions))
		for _, e := range f.Exceptions {
			entries = append(entries, map[string]any{
				"message":  e.Message,
				"severity": string(e.Severity),
			})
		}
		obj[f.Key] = entries
	}
	return obj
}
