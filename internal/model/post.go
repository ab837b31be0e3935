package model

import "github.com/google/uuid"

// Post is append-only: once created it is never mutated.
type Post struct {
	ID        uuid.UUID `json:"id"`
	AuthorID  uuid.UUID `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt int64     `json:"createdAt"`
}
