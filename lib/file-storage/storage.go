package filestorage

import (
	"context"
	"fmt"
	"path/filepath"
	"policy-portal-backend/db"
	filesdbstorage "policy-portal-backend/lib/file-storage/store"
	requeststore "policy-portal-backend/lib/request/store"
	"policy-portal-backend/models"
	attachmentapimodels "policy-portal-backend/models/api/attachment"
	dbmodels "policy-portal-backend/models/db"
	s3client "policy-portal-backend/s3"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Upload(ctx context.Context, userID, requestID, fileName, contentType string, body []byte) (*attachmentapimodels.AttachmentView, error)
	// Get returns the attachment record with its content.
	Get(ctx context.Context, id string) (*dbmodels.Attachment, []byte, error)
	ListByRequest(requestID string) ([]attachmentapimodels.AttachmentView, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		objects:      func() s3client.Provider { return s3client.Instance },
		store:        filesdbstorage.NewInstance(db.DB),
		requestStore: requeststore.NewInstance(db.DB),
	}
}

type impl struct {
	objects      func() s3client.Provider
	store        filesdbstorage.Provider
	requestStore requeststore.Provider
}

func (i impl) Upload(ctx context.Context, userID, requestID, fileName, contentType string, body []byte) (*attachmentapimodels.AttachmentView, error) {
	objects := i.objects()
	if objects == nil {
		return nil, errors.New("attachment storage is not configured")
	}
	request, err := i.requestStore.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, errors.Wrapf(models.ErrNotFound, "request %v", requestID)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	rec := dbmodels.Attachment{
		RequestID:        request.ID,
		UploadedByUserID: userID,
		FileName:         fileName,
		ContentType:      contentType,
		Size:             int64(len(body)),
		ObjectPath:       objectPath(request.ID, fileName),
	}
	err = objects.PutObject(ctx, rec.ObjectPath, contentType, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upload attachment")
	}
	rec.ID, err = i.store.SaveFile(rec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to save attachment")
	}
	log.
		WithField("request_id", request.ID).
		WithField("attachment_path", rec.ObjectPath).
		Info("attachment uploaded")
	result := attachmentapimodels.AttachmentConvert(rec)
	return &result, nil
}

func (i impl) Get(ctx context.Context, id string) (*dbmodels.Attachment, []byte, error) {
	objects := i.objects()
	if objects == nil {
		return nil, nil, errors.New("attachment storage is not configured")
	}
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, errors.Wrapf(models.ErrNotFound, "attachment %v", id)
	}
	body, err := objects.GetObject(ctx, rec.ObjectPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to download attachment")
	}
	return rec, body, nil
}

func (i impl) ListByRequest(requestID string) ([]attachmentapimodels.AttachmentView, error) {
	list, err := i.store.ListByRequest(requestID)
	if err != nil {
		return nil, err
	}
	result := make([]attachmentapimodels.AttachmentView, 0, len(list))
	for _, rec := range list {
		result = append(result, attachmentapimodels.AttachmentConvert(rec))
	}
	return result, nil
}

// objectPath keeps the original extension and drops any directory part of the client file name.
func objectPath(requestID, fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	if base == "." || base == "/" {
		ext = ""
	}
	return fmt.Sprintf("requests/%s/%s%s", requestID, uuid.NewString(), ext)
}
