// Package models defines the data types moved between the local library,
// the metadata cache and the remote blob store.
package models

import "encoding/json"

// Record is a locally owned unit of synchronizable data: one book in the
// library together with its reading state and binary payloads.
//
// ID is immutable once created. LastModified is epoch milliseconds and is
// authoritative for conflict comparisons; it must be bumped on every field
// mutation that should count as "new" during conflict resolution.
type Record struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	Progress     float64 `json:"progress"`
	FontSize     int     `json:"fontSize"`
	LastModified int64   `json:"lastModified"`

	// Binary payloads travel inside the serialized record (base64 in JSON),
	// so one record maps to exactly one remote object.
	Content []byte `json:"content,omitempty"`
	Cover   []byte `json:"cover,omitempty"`
}

// SignificantFields is the subset of Record fields whose change justifies a
// re-upload. Payload-only changes (content, cover) are deliberately excluded.
type SignificantFields struct {
	Author       string
	Title        string
	Progress     float64
	FontSize     int
	LastModified int64
}

// Significant projects the record onto its significant fields.
func (r Record) Significant() SignificantFields {
	return SignificantFields{
		Author:       r.Author,
		Title:        r.Title,
		Progress:     r.Progress,
		FontSize:     r.FontSize,
		LastModified: r.LastModified,
	}
}

// MarshalPayload serializes the record into the remote object payload format.
func (r Record) MarshalPayload() ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalPayload parses a remote object payload into a Record.
func UnmarshalPayload(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}
