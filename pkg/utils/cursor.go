package utils

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// Cursor marks a position in a createdAt-descending query. The document id
// breaks ties between messages written in the same instant.
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	DocID     string    `json:"doc_id"`
}

func EncodeCursor(createdAt time.Time, docID string) string {
	b, _ := json.Marshal(Cursor{CreatedAt: createdAt, DocID: docID})
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeCursor(raw string) (*Cursor, error) {
	if raw == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, err
	}
	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
