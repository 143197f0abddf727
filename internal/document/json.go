// Package document persists the vault state as a single JSON document.
package document

import (
	"encoding/json"
	"fmt"

	"hv-go/internal/category"
	"hv-go/internal/hv"
)

// wireDocument is the on-disk layout. Pointer fields distinguish a missing
// key from a zero value; all three keys are required.
type wireDocument struct {
	Password              *string       `json:"password"`
	ShouldDeleteOriginals *bool         `json:"should_delete_originals"`
	FileRecords           *[]wireRecord `json:"file_records"`
}

type wireRecord struct {
	Filename *string `json:"filename"`
	Data     *string `json:"data"`
	Type     string  `json:"type"`
}

// Marshal encodes doc in the persisted format, indented with four spaces.
func Marshal(doc *hv.Document) ([]byte, error) {
	label := doc.Config.AccessLabel
	deleteOriginals := doc.Config.DeleteOriginalsDefault
	records := make([]wireRecord, len(doc.Records))
	for i := range doc.Records {
		r := &doc.Records[i]
		records[i] = wireRecord{
			Filename: &r.Filename,
			Data:     &r.Payload,
			Type:     string(r.Category),
		}
	}

	data, err := json.MarshalIndent(wireDocument{
		Password:              &label,
		ShouldDeleteOriginals: &deleteOriginals,
		FileRecords:           &records,
	}, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding vault document: %w", err)
	}
	return data, nil
}

// Unmarshal decodes and validates a persisted document. Every failure wraps
// hv.ErrCorruptVault. A record with a missing or unknown type is classified
// again from its filename.
func Unmarshal(data []byte) (*hv.Document, error) {
	var w wireDocument
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", hv.ErrCorruptVault, err)
	}
	switch {
	case w.Password == nil:
		return nil, fmt.Errorf("%w: missing password", hv.ErrCorruptVault)
	case w.ShouldDeleteOriginals == nil:
		return nil, fmt.Errorf("%w: missing should_delete_originals", hv.ErrCorruptVault)
	case w.FileRecords == nil:
		return nil, fmt.Errorf("%w: missing file_records", hv.ErrCorruptVault)
	}

	doc := &hv.Document{
		Config: hv.VaultConfig{
			AccessLabel:            *w.Password,
			DeleteOriginalsDefault: *w.ShouldDeleteOriginals,
		},
		Records: make([]hv.FileRecord, 0, len(*w.FileRecords)),
	}
	for i, r := range *w.FileRecords {
		if r.Filename == nil {
			return nil, fmt.Errorf("%w: record %d has no filename", hv.ErrCorruptVault, i)
		}
		if r.Data == nil {
			return nil, fmt.Errorf("%w: record %q has no data", hv.ErrCorruptVault, *r.Filename)
		}
		cat, ok := category.Parse(r.Type)
		if !ok {
			cat = category.Classify(*r.Filename)
		}
		doc.Records = append(doc.Records, hv.FileRecord{
			Filename: *r.Filename,
			Payload:  *r.Data,
			Category: cat,
		})
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}
