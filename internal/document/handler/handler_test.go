package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	docservice "capture-gateway/internal/document/service"
	"capture-gateway/internal/document/store/version"
	"capture-gateway/internal/platform/middleware"
)

const testToken = "valid-token"

// staticValidator accepts one known token and rejects everything else.
type staticValidator struct{}

func (staticValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	if token != testToken {
		return nil, http.ErrNoCookie
	}
	return &middleware.JWTClaims{ReviewerID: "rev-1", ClientID: "ui"}, nil
}

func newDocumentRouter(t *testing.T) http.Handler {
	t.Helper()
	store := version.NewInMemory()
	svc, err := docservice.New(store)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	h := New(svc, logger, nil, staticValidator{})
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func ingestDocument(t *testing.T, router http.Handler, din string) {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/documents/"+din, map[string]any{
		"uploadId": "upl-1",
		"data": map[string]any{
			"invoiceHeader": map[string]any{
				"vendorName": map[string]any{"value": "Acme", "inputType": "text", "readOnly": false},
				"total":      map[string]any{"value": 125.5, "inputType": "currency", "readOnly": true},
			},
			"lineItems": []any{
				map[string]any{"description": "Widget", "quantity": 2},
				map[string]any{"description": "Gadget", "quantity": 1},
			},
		},
		"exceptions": map[string]any{
			"invoiceHeader": map[string]any{
				"vendorName": []any{map[string]any{"message": "Vendor not in master data", "severity": "error"}},
			},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 ingesting document, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	router := newDocumentRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/documents/din-1", nil)
	// No Authorization header set
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestIngestAndLoad(t *testing.T) {
	router := newDocumentRouter(t)
	ingestDocument(t, router, "din-1")

	rec := doRequest(t, router, http.MethodGet, "/documents/din-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 loading document, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		DIN        string         `json:"din"`
		Version    int            `json:"version"`
		Data       map[string]any `json:"data"`
		Exceptions map[string]any `json:"exceptions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DIN != "din-1" || resp.Version != 1 {
		t.Fatalf("unexpected snapshot identity: %+v", resp)
	}
	if _, ok := resp.Data["lineItems"]; !ok {
		t.Fatalf("expected lineItems header in data channel")
	}
	if _, ok := resp.Exceptions["invoiceHeader"]; !ok {
		t.Fatalf("expected invoiceHeader exceptions in exception channel")
	}
}

func TestLoad_NotFound(t *testing.T) {
	router := newDocumentRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/documents/din-missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing document, got %d", rec.Code)
	}
}

func TestAddRowReturnsUpdatedChannels(t *testing.T) {
	router := newDocumentRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/documents/din-1/headers/lineItems/rows", map[string]any{
		"data": map[string]any{
			"lineItems": []any{
				map[string]any{"description": "Widget", "quantity": 2},
			},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 adding row, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	rows := resp.Data["lineItems"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows after add, got %d", len(rows))
	}
	added := rows[1].(map[string]any)
	if added["itemState"] != "A" {
		t.Fatalf("expected added row marker A, got %v", added["itemState"])
	}
	if added["description"] != "" {
		t.Fatalf("expected blank description in new row, got %v", added["description"])
	}
}

func TestAddRow_UnknownHeader(t *testing.T) {
	router := newDocumentRouter(t)
	rec := doRequest(t, router, http.MethodPost, "/documents/din-1/headers/nope/rows", map[string]any{
		"data": map[string]any{"lineItems": []any{map[string]any{"description": "Widget"}}},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown header, got %d", rec.Code)
	}
}

func TestDeleteRowTombstones(t *testing.T) {
	router := newDocumentRouter(t)

	rec := doRequest(t, router, http.MethodDelete, "/documents/din-1/headers/lineItems/rows/0", map[string]any{
		"data": map[string]any{
			"lineItems": []any{
				map[string]any{"description": "Widget"},
				map[string]any{"description": "Gadget"},
			},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting row, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	rows := resp.Data["lineItems"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected tombstoned row to remain, got %d rows", len(rows))
	}
	if rows[0].(map[string]any)["itemState"] != "D" {
		t.Fatalf("expected tombstone marker on deleted row")
	}
}

func TestUpdateField_ReadOnlyIsNoOp(t *testing.T) {
	router := newDocumentRouter(t)

	data := map[string]any{
		"invoiceHeader": map[string]any{
			"total": map[string]any{"value": 125.5, "inputType": "currency", "readOnly": true},
		},
	}
	rec := doRequest(t, router, http.MethodPatch,
		"/documents/din-1/headers/invoiceHeader/rows/0/fields/total",
		map[string]any{"data": data, "value": 999},
	)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 updating field, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	header := resp.Data["invoiceHeader"].(map[string]any)
	total := header["total"].(map[string]any)
	if total["value"] != 125.5 {
		t.Fatalf("read-only field must keep its value, got %v", total["value"])
	}
}

func TestSaveDraftAndHistory(t *testing.T) {
	router := newDocumentRouter(t)
	ingestDocument(t, router, "din-1")

	rec := doRequest(t, router, http.MethodPost, "/documents/din-1/versions", map[string]any{
		"data": map[string]any{
			"lineItems": []any{
				map[string]any{"description": "Premium Widget", "quantity": 2, "itemState": "M"},
			},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 saving draft, got %d: %s", rec.Code, rec.Body.String())
	}

	var saveResp struct {
		Version   int    `json:"version"`
		Source    string `json:"source"`
		CreatedBy string `json:"createdBy"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&saveResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if saveResp.Version != 2 || saveResp.Source != "reviewer" {
		t.Fatalf("unexpected save response: %+v", saveResp)
	}
	if saveResp.CreatedBy != "rev-1" {
		t.Fatalf("expected authenticated reviewer as author, got %q", saveResp.CreatedBy)
	}

	histRec := doRequest(t, router, http.MethodGet, "/documents/din-1/versions", nil)
	if histRec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing versions, got %d", histRec.Code)
	}
	var histResp struct {
		Versions []struct {
			Version int    `json:"version"`
			Source  string `json:"source"`
		} `json:"versions"`
	}
	if err := json.NewDecoder(histRec.Body).Decode(&histResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(histResp.Versions) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(histResp.Versions))
	}
	if histResp.Versions[0].Source != "extraction" || histResp.Versions[1].Source != "reviewer" {
		t.Fatalf("unexpected version sources: %+v", histResp.Versions)
	}
}

func TestCompareEndpoint(t *testing.T) {
	router := newDocumentRouter(t)
	ingestDocument(t, router, "din-1")

	rec := doRequest(t, router, http.MethodPost, "/documents/din-1/versions", map[string]any{
		"data": map[string]any{
			"lineItems": []any{
				map[string]any{"description": "Widget", "quantity": 5},
				map[string]any{"description": "Gadget", "quantity": 1},
			},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 saving draft, got %d", rec.Code)
	}

	cmpRec := doRequest(t, router, http.MethodGet, "/documents/din-1/compare?from=1&to=2", nil)
	if cmpRec.Code != http.StatusOK {
		t.Fatalf("expected 200 comparing, got %d: %s", cmpRec.Code, cmpRec.Body.String())
	}

	var cmpResp struct {
		From    int `json:"from"`
		To      int `json:"to"`
		Headers []struct {
			Name    string `json:"name"`
			Changed bool   `json:"changed"`
			Rows    []struct {
				Fields []struct {
					Key     string `json:"key"`
					Changed bool   `json:"changed"`
				} `json:"fields"`
			} `json:"rows"`
		} `json:"headers"`
	}
	if err := json.NewDecoder(cmpRec.Body).Decode(&cmpResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	var quantityChanged bool
	for _, h := range cmpResp.Headers {
		if h.Name != "lineItems" {
			continue
		}
		for _, row := range h.Rows {
			for _, f := range row.Fields {
				if f.Key == "quantity" && f.Changed {
					quantityChanged = true
				}
			}
		}
	}
	if !quantityChanged {
		t.Fatalf("expected quantity change to be flagged in diff")
	}
}

func TestCompare_BadParams(t *testing.T) {
	router := newDocumentRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/documents/din-1/compare?from=x&to=2", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad compare params, got %d", rec.Code)
	}
}

func TestExceptionsEndpoint(t *testing.T) {
	router := newDocumentRouter(t)
	ingestDocument(t, router, "din-1")

	rec := doRequest(t, router, http.MethodGet, "/documents/din-1/exceptions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing exceptions, got %d", rec.Code)
	}

	var resp struct {
		Exceptions []struct {
			HeaderName string `json:"headerName"`
			FieldKey   string `json:"fieldKey"`
			Severity   string `json:"severity"`
		} `json:"exceptions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Exceptions) != 1 {
		t.Fatalf("expected 1 exception record, got %d", len(resp.Exceptions))
	}
	if resp.Exceptions[0].FieldKey != "vendorName" || resp.Exceptions[0].Severity != "error" {
		t.Fatalf("unexpected exception record: %+v", resp.Exceptions[0])
	}
}
