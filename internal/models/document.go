package models

import "time"

// Document is user-supplied source material, already extracted to plain text.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentChunk is one overlapping slice of a document, used to ground
// generation prompts.
type DocumentChunk struct {
	ID         int64  `json:"id"`
	DocumentID string `json:"document_id"`
	Index      int    `json:"index"`
	Content    string `json:"content"`
}
