package ixsd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exceptionFixture(t *testing.T) []Header {
	t.Helper()
	data := `{
		"invoice": {"vendor": ""},
		"lineItems": [{"qty": "-1"}, {"qty": "2"}, {"qty": "0", "itemState": "D"}]
	}`
	exceptions := `{
		"invoice": {"vendor": [{"message": "vendor missing", "severity": "warning"}]},
		"lineItems": [
			{"qty": [{"message": "negative quantity", "severity": "error"}]},
			{},
			{"qty": [{"message": "zero quantity", "severity": "warning"}]}
		]
	}`
	return Parse(data, exceptions)
}

func TestCollectExceptionsAllRows(t *testing.T) {
	records := CollectExceptions(exceptionFixture(t), AllRows)
	require.Len(t, records, 3)

	// Header order, then row order, then server-provided entry order.
	assert.Equal(t, "invoice", records[0].HeaderName)
	assert.Equal(t, "vendor", records[0].FieldKey)
	assert.Equal(t, "Vendor", records[0].FieldLabel)
	assert.Equal(t, 0, records[0].RowIndex)
	assert.Equal(t, SeverityWarning, records[0].Severity)

	assert.Equal(t, "lineItems", records[1].HeaderName)
	assert.Equal(t, 0, records[1].RowIndex)
	assert.Equal(t, SeverityError, records[1].Severity)

	assert.Equal(t, 2, records[2].RowIndex)
	assert.Equal(t, RowStateDeleted, records[2].RowState)
}

func TestCollectExceptionsActiveRowsSkipsTombstones(t *testing.T) {
	records := CollectExceptions(exceptionFixture(t), ActiveRows)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.NotEqual(t, RowStateDeleted, rec.RowState)
	}
}

func TestCollectExceptionsNilFilterVisitsEverything(t *testing.T) {
	all := CollectExceptions(exceptionFixture(t), nil)
	explicit := CollectExceptions(exceptionFixture(t), AllRows)
	assert.Equal(t, explicit, all)
}

func TestCollectExceptionsEmptyModel(t *testing.T) {
	assert.Empty(t, CollectExceptions(nil, nil))
	assert.Empty(t, CollectExceptions(Parse(`{"invoice": {"amount": "1"}}`, `{}`), nil))
}

func TestCollectExceptionsIncludesHiddenHeaders(t *testing.T) {
	headers := exceptionFixture(t)
	for i := range headers {
		headers[i].Visible = false
	}
	// Hidden headers drop out of rendering and reconstruction, not out of
	// exception aggregation: their findings still count toward severity.
	records := CollectExceptions(headers, AllRows)
	require.Len(t, records, 3)
	assert.Equal(t, "invoice", records[0].HeaderName)
}

func TestCollectExceptionsRecordIdentity(t *testing.T) {
	records := CollectExceptions(exceptionFixture(t), AllRows)
	for _, rec := range records {
		assert.NotEmpty(t, rec.HeaderName)
		assert.NotEmpty(t, rec.HeaderLabel)
		assert.NotEmpty(t, rec.FieldKey)
		assert.NotEmpty(t, rec.Message, "a record must link back to an actionable message")
	}
}
