package model

import "time"

// Activity kinds.
const (
	ActivityPDFUnlock = "pdf_unlock"
	ActivityUnminify  = "unminify"
)

// Activity statuses.
const (
	StatusSuccess  = "success"
	StatusFailed   = "failed"
	StatusRejected = "rejected"
)

// Activity is a content-free record of one processed request.
// Neither file bytes nor passwords nor source code are ever part of it.
type Activity struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Filename  string    `json:"filename,omitempty"`
	Format    string    `json:"format,omitempty"`
	Size      int64     `json:"size"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
