package dto

import (
	"strings"
	"time"
)

// PresignRequest is the body of POST /api/files.
type PresignRequest struct {
	Key string `json:"key" validate:"required,notblank,max=512"`
}

func (r *PresignRequest) Normalize() {
	r.Key = strings.TrimSpace(r.Key)
}

type PresignResponse struct {
	URL         string    `json:"url"`
	Method      string    `json:"method"`
	Key         string    `json:"key"`
	ObjectURL   string    `json:"objectUrl,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
