package connectionhub

import (
	dbmodels "policy-portal-backend/models/db"
	wsmodels "policy-portal-backend/models/ws"
)

func NotificationMessage(rec dbmodels.Notification) wsmodels.ServerMessage {
	return wsmodels.ServerMessage{
		ToUserID:    rec.RecipientUserID,
		ID:          rec.ID,
		Time:        rec.CreatedAt.Format("02.01.2006 15:04:05"),
		Code:        string(rec.Type),
		Title:       rec.Title,
		Msg:         rec.Description,
		ReferenceID: rec.ReferenceID,
	}
}
