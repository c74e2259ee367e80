package dbmodels

type Attachment struct {
	BaseModel
	RequestID        string `gorm:"type:varchar(36);index"`
	UploadedByUserID string `gorm:"type:varchar(36)"`
	FileName         string `gorm:"type:varchar(255)"`
	ContentType      string `gorm:"type:varchar(255)"`
	Size             int64
	// ObjectPath is the key in the attachment bucket and the value stored in Approval.AttachmentPath.
	ObjectPath string `gorm:"type:varchar(512);uniqueIndex"`
}
