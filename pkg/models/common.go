package models

import "time"

type Page struct {
	Number int
	Size   int
}

type PageResult[T any] struct {
	Count int
	Items []T
}

// APICredential authorizes outbound calls to every url below APIRoot.
type APICredential struct {
	ID                 int64     `db:"id" json:"id"`
	APIRoot            string    `db:"api_root" json:"api_root"`
	Label              string    `db:"label" json:"label"`
	ClientID           string    `db:"client_id" json:"client_id"`
	Secret             string    `db:"secret" json:"-"`
	UserID             string    `db:"user_id" json:"user_id"`
	UserRepresentation string    `db:"user_representation" json:"user_representation"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
