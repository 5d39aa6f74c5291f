package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type Variant struct {
	Size      Size   `json:"size"`
	ObjectKey string `json:"object_key"`
	SizeBytes int64  `json:"size_bytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type Variants []Variant

func (v Variants) Value() (driver.Value, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal Variants: %w", err)
	}
	return b, nil
}

func (v *Variants) Scan(src interface{}) error {
	if src == nil {
		*v = nil
		return nil
	}
	var data []byte
	switch s := src.(type) {
	case []byte:
		data = s
	case string:
		data = []byte(s)
	default:
		return fmt.Errorf("Variants.Scan: expected []byte, got %T", src)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal Variants: %w", err)
	}
	return nil
}

// With returns a copy of the variants where any previous entry for the same
// size is replaced by nv.
func (v Variants) With(nv Variant) Variants {
	out := make(Variants, 0, len(v)+1)
	for _, old := range v {
		if old.Size != nv.Size {
			out = append(out, old)
		}
	}
	return append(out, nv)
}
