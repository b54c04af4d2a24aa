package ixsd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelFromKey(t *testing.T) {
	cases := map[string]string{
		"vendorName":     "Vendor Name",
		"amount":         "Amount",
		"invoice_total":  "Invoice Total",
		"lineItems":      "Line Items",
		"DIN":            "DIN",
		"documentDIN":    "Document DIN",
		"po-number":      "Po Number",
		"":               "",
		"alreadyLabeled": "Already Labeled",
	}
	for key, want := range cases {
		assert.Equal(t, want, labelFromKey(key), "key %q", key)
	}
}

func TestParseInputTypeFallsBackToText(t *testing.T) {
	assert.Equal(t, InputCurrency, ParseInputType("currency"))
	assert.Equal(t, InputText, ParseInputType("hologram"))
	assert.Equal(t, InputText, ParseInputType(""))
}

func TestFieldExceptionSeverity(t *testing.T) {
	f := Field{Exceptions: []ExceptionEntry{
		{Message: "minor", Severity: SeverityWarning},
		{Message: "major", Severity: SeverityError},
	}}
	assert.Equal(t, SeverityError, f.ExceptionSeverity())

	f.Exceptions = f.Exceptions[:1]
	assert.Equal(t, SeverityWarning, f.ExceptionSeverity())

	f.Exceptions = nil
	assert.Equal(t, SeverityNone, f.ExceptionSeverity())
	assert.False(t, f.HasException())
}

func TestCloneHeadersIsDeep(t *testing.T) {
	headers := Parse(`{"approval": {"decision": {
		"value": {"Approve": true},
		"inputType": "booleanButton",
		"lookupOptions": [{"id": "a", "description": "A"}]
	}}}`, `{}`)

	cloned := CloneHeaders(headers)
	cloned[0].Rows[0].Fields[0].Value.(map[string]bool)["Approve"] = false
	cloned[0].Rows[0].Fields[0].LookupOptions[0].ID = "mutated"

	original := headers[0].Rows[0].Fields[0]
	assert.True(t, original.Value.(map[string]bool)["Approve"])
	assert.Equal(t, "a", original.LookupOptions[0].ID)
}
