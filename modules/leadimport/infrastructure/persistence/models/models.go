package models

import "github.com/jackc/pgx/v5/pgtype"

type ImportSession struct {
	ID             pgtype.UUID
	FileName       string
	CreatedBy      string
	Phase          string
	Columns        []byte
	RemovedColumns []byte
	RawRows        []byte
	Suggestions    []byte
	Bundle         []byte
	Normalization  []byte
	Analysis       []byte
	Decisions      []byte
	Summary        []byte
	FailureReason  string
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

type ImportTemplate struct {
	ID          pgtype.UUID
	Name        string
	Description string
	CreatedBy   string
	Bundle      []byte
	IsDefault   bool
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}
