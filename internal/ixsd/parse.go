package ixsd

import (
	"encoding/json"
	"sort"
)

// Reserved row-level properties. They seed row metadata and are excluded from
// the displayable field list.
const (
	keyItemState     = "itemState"
	keyHasDuplicated = "hasDuplicated"
)

// Metadata keys that mark a wire property as a rich field object rather than
// a raw scalar value.
var fieldMetadataKeys = []string{
	"value", "inputType", "readOnly", "required", "lookupOptions", "maxLength", "displayLabel",
}

// Parse converts the two wire JSON channels into the header/field model.
//
// dataJSON and exceptionJSON each accept a raw JSON string or an
// already-decoded map[string]any. Malformed JSON never fails the call: an
// unparsable channel degrades to an empty mapping so the review UI stays
// interactive on partial or corrupt server data. An empty data channel yields
// an empty header list, which callers must treat as the valid "no data
// available" state.
//
// Header order is the sorted order of the wire property names, which keeps
// the output deterministic for structurally equal inputs.
func Parse(dataJSON, exceptionJSON any) []Header {
	data := decodeChannel(dataJSON)
	exceptions := decodeChannel(exceptionJSON)

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	headers := make([]Header, 0, len(names))
	for _, name := range names {
		headers = append(headers, parseHeader(name, data[name], exceptions[name]))
	}
	return headers
}

// decodeChannel normalizes a wire channel to a map. Unparsable strings and
// unexpected shapes fall back to an empty map, never an error.
func decodeChannel(raw any) map[string]any {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return v
	case string:
		if v == "" {
			return map[string]any{}
		}
		var decoded map[string]any
		if err := json.Unmarshal([]byte(v), &decoded); err != nil {
			return map[string]any{}
		}
		return decoded
	case []byte:
		var decoded map[string]any
		if err := json.Unmarshal(v, &decoded); err != nil {
			return map[string]any{}
		}
		return decoded
	default:
		return map[string]any{}
	}
}

// parseHeader builds one header from its wire value. View style is structural:
// a JSON array is an array view, anything else is an object view.
func parseHeader(name string, value any, excValue any) Header {
	h := Header{
		Name:    name,
		Label:   labelFromKey(name),
		Visible: true,
	}

	switch v := value.(type) {
	case []any:
		h.ViewStyle = ViewArray
		excRows, _ := excValue.([]any)
		for i, rowValue := range v {
			rowObj, ok := rowValue.(map[string]any)
			if !ok {
				// Tolerate junk entries; the row set stays index-aligned with
				// the wire array by emitting an empty row.
				h.Rows = append(h.Rows, Row{})
				continue
			}
			var excRow any
			if i < len(excRows) {
				excRow = excRows[i]
			}
			h.Rows = append(h.Rows, parseRow(rowObj, excRow))
		}
	case map[string]any:
		h.ViewStyle = ViewObject
		h.Rows = []Row{parseRow(v, excValue)}
	default:
		// Scalar or null at the top level carries no field structure to edit.
		// The raw value is held so reconstruction emits it unchanged.
		h.ViewStyle = ViewObject
		h.Rows = []Row{{State: RowStateUnchanged}}
		h.wireScalar = v
		h.scalarOnWire = true
	}
	return h
}

func parseRow(rowObj map[string]any, excValue any) Row {
	row := Row{State: RowStateUnchanged}

	if marker, ok := rowObj[keyItemState].(string); ok {
		switch marker {
		case itemStateAdded:
			row.State = RowStateAdded
		case itemStateDeleted:
			row.State = RowStateDeleted
		case itemStateModified:
			row.State = RowStateModified
		default:
			// Uninterpreted lifecycle markers (C, S, ...) round-trip untouched.
			row.wireState = marker
		}
	}
	if dup, ok := rowObj[keyHasDuplicated].(bool); ok {
		row.HasDuplicated = dup
		row.hasDupOnWire = true
	}

	excFields, _ := excValue.(map[string]any)

	keys := make([]string, 0, len(rowObj))
	for key := range rowObj {
		if key == keyItemState || key == keyHasDuplicated {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field := parseField(key, rowObj[key])
		field.Exceptions = parseExceptions(excFields[key])
		field.RowState = row.State
		row.Fields = append(row.Fields, field)
	}
	return row
}

// parseField builds a field from a wire property. A property value that is an
// object carrying recognized metadata keys is unpacked; any other value is the
// field's value with text-input defaults.
func parseField(key string, value any) Field {
	field := Field{
		Key:          key,
		DisplayLabel: labelFromKey(key),
		InputType:    InputText,
	}

	obj, ok := value.(map[string]any)
	if !ok || !hasFieldMetadata(obj) {
		field.wire.nullValue = value == nil
		field.Value = normalizeValue(field.InputType, value)
		return field
	}

	field.wire.rich = true
	if raw, present := obj["inputType"]; present {
		field.wire.hasInputType = true
		if t, ok := raw.(string); ok {
			field.InputType = ParseInputType(t)
		}
	}
	if raw, present := obj["value"]; present {
		field.wire.hasValue = true
		field.wire.nullValue = raw == nil
	}
	field.Value = normalizeValue(field.InputType, obj["value"])
	if raw, present := obj["readOnly"]; present {
		field.wire.hasReadOnly = true
		if ro, ok := raw.(bool); ok {
			field.ReadOnly = ro
		}
	}
	if raw, present := obj["required"]; present {
		field.wire.hasRequired = true
		if req, ok := raw.(bool); ok {
			field.Required = req
		}
	}
	if raw, present := obj["displayLabel"]; present {
		field.wire.hasDisplayLabel = true
		if label, ok := raw.(string); ok && label != "" {
			field.DisplayLabel = label
		}
	}
	if raw, present := obj["maxLength"]; present {
		field.wire.hasMaxLength = true
		if ml, ok := raw.(float64); ok {
			field.MaxLength = int(ml)
		}
	}
	if raw, present := obj["lookupOptions"]; present {
		field.wire.hasLookupOptions = true
		if opts, ok := raw.([]any); ok {
			field.LookupOptions = parseLookupOptions(opts)
		}
	}
	return field
}

// normalizeValue shapes a wire value for its input type. booleanButton values
// become a label->pressed map; missing and null values become the empty
// string so editors always have a scalar to bind. Wire nullness is recorded
// on the field so reconstruction can emit null again.
func normalizeValue(inputType InputType, value any) any {
	if inputType == InputBooleanButton {
		out := map[string]bool{}
		if m, ok := value.(map[string]any); ok {
			for label, v := range m {
				pressed, _ := v.(bool)
				out[label] = pressed
			}
		}
		return out
	}
	if value == nil {
		return ""
	}
	return value
}

func parseLookupOptions(raw []any) []LookupOption {
	// An empty slice is a valid "no lookup available" state and is kept
	// non-nil so reconstruction preserves the wire key.
	opts := make([]LookupOption, 0, len(raw))
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		var opt LookupOption
		if id, ok := obj["id"].(string); ok {
			opt.ID = id
		}
		if desc, ok := obj["description"].(string); ok {
			opt.Description = desc
		}
		opts = append(opts, opt)
	}
	return opts
}

// parseExceptions reads one field's entry from the exception channel.
// Absence of an entry means no exceptions, not an error.
func parseExceptions(raw any) []ExceptionEntry {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	var entries []ExceptionEntry
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		var entry ExceptionEntry
		if msg, ok := obj["message"].(string); ok {
			entry.Message = msg
		}
		if sev, ok := obj["severity"].(string); ok {
			entry.Severity = Severity(sev)
		}
		entries = append(entries, entry)
	}
	return entries
}

func hasFieldMetadata(obj map[string]any) bool {
	for _, key := range fieldMetadataKeys {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	return false
}
