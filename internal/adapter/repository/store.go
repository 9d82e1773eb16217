package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"cv-builder/internal/model"
)

// ErrNotFound is returned by Load when the user has no stored document.
var ErrNotFound = errors.New("document not found")

// encode validates the document shape and serializes it. Nil collections
// are written as empty arrays.
func encode(doc *model.Resume) ([]byte, error) {
	snap := doc.Clone()
	if snap == nil {
		return nil, errors.New("nil document")
	}
	if err := model.ValidateDocument(snap); err != nil {
		return nil, err
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return b, nil
}

func decode(raw []byte) (*model.Resume, error) {
	var doc model.Resume
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	doc.Normalize()
	return &doc, nil
}
