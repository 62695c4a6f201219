package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Order references users and products by id only; product ids are stored
// denormalized as a comma-separated string ("1,2,3") that must round-trip
// losslessly through parse/serialize.
type Order struct {
	ID         int64   `json:"id" gorm:"primaryKey"`
	UserID     int64   `json:"user_id"`
	ProductIDs string  `json:"product_ids" gorm:"size:1000"` // comma-separated: "1,2,3"
	Total      float64 `json:"total"`
	Status     string  `json:"status" gorm:"size:50;default:Pending"` // Pending, Delivering, Completed
}

// ParseProductIDs parses the stored "1,2,3" encoding. Blank segments are
// skipped; a non-numeric segment is a data error.
func ParseProductIDs(field string) ([]int64, error) {
	if strings.TrimSpace(field) == "" {
		return nil, nil
	}

	var ids []int64
	for _, part := range strings.Split(field, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FormatProductIDs serializes ids into the stored encoding.
func FormatProductIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// IDList accepts either a JSON array of integers or a comma-separated
// string ("1,2,3"), the two encodings callers send for product ids.
type IDList []int64

// UnmarshalJSON implements json.Unmarshaler.
func (l *IDList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		ids, err := ParseProductIDs(s)
		if err != nil {
			return err
		}
		*l = IDList(ids)
		return nil
	}

	var ids []int64
	if err := json.Unmarshal(trimmed, &ids); err != nil {
		return err
	}
	*l = IDList(ids)
	return nil
}
