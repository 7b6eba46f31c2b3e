package domain

import (
	"time"

	"github.com/google/uuid"
)

// UploadBatch records one successful spreadsheet upload. The tasks of the
// most recent batch form the current task set.
type UploadBatch struct {
	ID         uuid.UUID `json:"id"`
	UploadedBy uuid.UUID `json:"uploadedBy"`
	Filename   string    `json:"filename"`
	RowCount   int       `json:"rowCount"`
	AgentCount int       `json:"agentCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewUploadBatch creates a batch header for an upload made by uploadedBy.
func NewUploadBatch(uploadedBy uuid.UUID, filename string) *UploadBatch {
	return &UploadBatch{
		ID:         uuid.New(),
		UploadedBy: uploadedBy,
		Filename:   filename,
		CreatedAt:  time.Now().UTC(),
	}
}
