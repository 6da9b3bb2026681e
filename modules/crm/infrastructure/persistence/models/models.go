package models

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Lead struct {
	ID             pgtype.UUID
	FullName       string
	Email          string
	Phone          pgtype.Text
	Company        pgtype.Text
	Notes          pgtype.Text
	Source         string
	Status         string
	// estimated_value is NUMERIC in SQL; scanned through ::text to keep
	// decimal conversion in one place.
	EstimatedValue string
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}
