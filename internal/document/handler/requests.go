package handler

import (
	"encoding/json"

	"capture-gateway/internal/document/models"
	"capture-gateway/internal/document/service"
	"capture-gateway/internal/ixsd"
)

// ingestRequest carries the extraction pipeline's two wire channels.
type ingestRequest struct {
	UploadID   string          `json:"uploadId"`
	Data       json.RawMessage `json:"data"`
	Exceptions json.RawMessage `json:"exceptions,omitempty"`
}

// editRequest carries the caller-held wire channels an edit applies to.
type editRequest struct {
	Data       json.RawMessage `json:"data"`
	Exceptions json.RawMessage `json:"exceptions,omitempty"`
}

// updateFieldRequest adds the new value for a field update.
type updateFieldRequest struct {
	Data       json.RawMessage `json:"data"`
	Exceptions json.RawMessage `json:"exceptions,omitempty"`
	Value      any             `json:"value"`
}

// saveDraftRequest persists the caller-held channels as a new version.
type saveDraftRequest struct {
	Data       json.RawMessage `json:"data"`
	Exceptions json.RawMessage `json:"exceptions,omitempty"`
}

// channelsResponse returns the reconstructed wire channels after an edit.
type channelsResponse struct {
	Data       map[string]any `json:"data"`
	Exceptions map[string]any `json:"exceptions"`
}

func newChannelsResponse(headers []ixsd.Header) channelsResponse {
	return channelsResponse{
		Data:       ixsd.DataJSON(headers),
		Exceptions: ixsd.ExceptionJSON(headers),
	}
}

// versionResponse is the metadata envelope for a stored version.
type versionResponse struct {
	DIN       string `json:"din"`
	UploadID  string `json:"uploadId,omitempty"`
	Version   int    `json:"version"`
	Source    string `json:"source"`
	CreatedAt string `json:"createdAt"`
	CreatedBy string `json:"createdBy,omitempty"`
}

func newVersionResponse(v *models.DocumentVersion) versionResponse {
	return versionResponse{
		DIN:       v.DIN,
		UploadID:  v.UploadID,
		Version:   v.Version,
		Source:    string(v.Source),
		CreatedAt: v.CreatedAt.Format(timeFormat),
		CreatedBy: v.CreatedBy,
	}
}

// snapshotResponse is a loaded document: metadata plus both wire channels.
type snapshotResponse struct {
	DIN        string         `json:"din"`
	UploadID   string         `json:"uploadId,omitempty"`
	Version    int            `json:"version"`
	Source     string         `json:"source"`
	Status     string         `json:"status"`
	CreatedAt  string         `json:"createdAt"`
	Data       map[string]any `json:"data"`
	Exceptions map[string]any `json:"exceptions"`
}

func newSnapshotResponse(s *service.Snapshot) snapshotResponse {
	return snapshotResponse{
		DIN:        s.DIN,
		UploadID:   s.UploadID,
		Version:    s.Version,
		Source:     string(s.Source),
		Status:     s.Status.String(),
		CreatedAt:  s.CreatedAt.Format(timeFormat),
		Data:       ixsd.DataJSON(s.Headers),
		Exceptions: ixsd.ExceptionJSON(s.Headers),
	}
}

// Comparison DTOs flatten the diff model into a camelCase wire shape with
// display-truncated values. Truncation here is presentation only.

type fieldDiffResponse struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	LeftValue  string `json:"leftValue"`
	RightValue string `json:"rightValue"`
	Changed    bool   `json:"changed"`
}

type rowDiffResponse struct {
	Index      int                 `json:"index"`
	LeftState  string              `json:"leftState,omitempty"`
	RightState string              `json:"rightState,omitempty"`
	Fields     []fieldDiffResponse `json:"fields"`
}

type headerDiffResponse struct {
	Name    string            `json:"name"`
	Label   string            `json:"label"`
	Changed bool              `json:"changed"`
	Rows    []rowDiffResponse `json:"rows"`
}

func newCompareResponse(diffs []ixsd.HeaderDiff) []headerDiffResponse {
	out := make([]headerDiffResponse, 0, len(diffs))
	for i := range diffs {
		d := &diffs[i]
		hr := headerDiffResponse{
			Name:    d.Name,
			Label:   d.Label,
			Changed: d.Changed(),
			Rows:    make([]rowDiffResponse, 0, len(d.Rows)),
		}
		for j := range d.Rows {
			row := &d.Rows[j]
			rr := rowDiffResponse{
				Index:  row.Index,
				Fields: make([]fieldDiffResponse, 0, len(row.Fields)),
			}
			if row.Left != nil {
				rr.LeftState = string(row.Left.State)
			}
			if row.Right != nil {
				rr.RightState = string(row.Right.State)
			}
			for k := range row.Fields {
				f := &row.Fields[k]
				fr := fieldDiffResponse{
					Key:     f.Key,
					Changed: f.Changed,
				}
				if f.Left != nil {
					fr.Label = f.Left.DisplayLabel
					fr.LeftValue = ixsd.DisplayValue(f.Left.Value)
				}
				if f.Right != nil {
					if fr.Label == "" {
						fr.Label = f.Right.DisplayLabel
					}
					fr.RightValue = ixsd.DisplayValue(f.Right.Value)
				}
				rr.Fields = append(rr.Fields, fr)
			}
			hr.Rows = append(hr.Rows, rr)
		}
		out = append(out, hr)
	}
	return out
}
