package ixsd

// Exception aggregation. The review UI needs a flat list of everything the
// extraction pipeline flagged, with enough identity per record to link back
// to the offending field. The two consumers disagree on deleted rows — the
// audit view wants them, notifications do not — so the policy is a caller
// supplied predicate rather than a hard-coded choice.

// ExceptionRecord is one flattened field exception, carrying the identity
// needed to address the field it came from.
type ExceptionRecord struct {
	HeaderName  string   `json:"headerName"`
	HeaderLabel string   `json:"headerLabel"`
	RowIndex    int      `json:"rowIndex"`
	RowState    RowState `json:"rowState"`
	FieldKey    string   `json:"fieldKey"`
	FieldLabel  string   `json:"fieldLabel"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
}

// RowFilter decides which rows an aggregation pass visits.
type RowFilter func(row *Row) bool

// AllRows visits every row, tombstoned ones included. Audit uses this.
func AllRows(*Row) bool { return true }

// ActiveRows skips tombstoned rows. Notification lists use this.
func ActiveRows(row *Row) bool { return row.State != RowStateDeleted }

// CollectExceptions flattens every field's exceptions across all headers and
// the rows admitted by filter into one ordered sequence. Entry order follows
// header order, then row order, then field order, with each field's entries
// kept in server-provided order. A nil filter visits all rows.
func CollectExceptions(headers []Header, filter RowFilter) []ExceptionRecord {
	if filter == nil {
		filter = AllRows
	}
	var records []ExceptionRecord
	for i := range headers {
		h := &headers[i]
		for j := range h.Rows {
			row := &h.Rows[j]
			if !filter(row) {
				continue
			}
			for k := range row.Fields {
				f := &row.Fields[k]
				for _, e := range f.Exceptions {
					records = append(records, ExceptionRecord{
						HeaderName:  h.Name,
						HeaderLabel: h.Label,
						RowIndex:    j,
						RowState:    row.State,
						FieldKey:    f.Key,
						FieldLabel:  f.DisplayLabel,
						Message:     e.Message,
						Severity:    e.Severity,
					})
				}
			}
		}
	}
	return records
}
