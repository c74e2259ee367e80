package attachmentapimodels

import (
	dbmodels "policy-portal-backend/models/db"
	"time"
)

type AttachmentView struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Path        string    `json:"path"` // pass as attachment_path when deciding
	CreatedAt   time.Time `json:"created_at"`
}

func AttachmentConvert(rec dbmodels.Attachment) AttachmentView {
	return AttachmentView{
		ID:          rec.ID,
		RequestID:   rec.RequestID,
		FileName:    rec.FileName,
		ContentType: rec.ContentType,
		Size:        rec.Size,
		Path:        rec.ObjectPath,
		CreatedAt:   rec.CreatedAt,
	}
}
