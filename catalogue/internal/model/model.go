package model

import (
	"encoding/json"
	"time"
)

type Book struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Author      string    `json:"author" db:"author"`
	Image       string    `json:"image" db:"image"`
	Rating      float64   `json:"rating" db:"rating"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type Review struct {
	ID        string    `json:"id" db:"id"`
	BookID    string    `json:"bookId" db:"book_id"`
	Reviewer  string    `json:"reviewer" db:"reviewer"`
	Review    string    `json:"review" db:"review"`
	Rating    float64   `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// BookPayload is the multipart form of POST/PUT /books. Fields are pointers
// so that an absent field is reported as required and an empty one as empty.
// Rating arrives as text and must parse as a finite number. Image is accepted
// but ignored: the stored path is always derived by the server.
type BookPayload struct {
	Title       *string `json:"title" form:"title" validate:"required,notblank"`
	Description *string `json:"description" form:"description" validate:"required,notblank"`
	Author      *string `json:"author" form:"author" validate:"required,notblank"`
	Image       *string `json:"image" form:"image" validate:"omitempty"`
	Rating      *string `json:"rating" form:"rating" validate:"required,number"`
}

type ReviewPayload struct {
	Reviewer *string      `json:"reviewer" form:"reviewer" validate:"required,notblank"`
	Review   *string      `json:"review" form:"review" validate:"required,notblank"`
	Rating   *json.Number `json:"rating" form:"rating" validate:"required,number"`
}
