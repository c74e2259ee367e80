package pdfexport

import (
	"bytes"
	"testing"
	"time"

	"policy-portal-backend/models"
	requestapimodels "policy-portal-backend/models/api/request"

	"github.com/stretchr/testify/require"
)

func TestGenerateApprovalSheet(t *testing.T) {
	actionDate := time.Date(2026, 1, 9, 6, 0, 0, 0, time.UTC)
	t.Run("request with history", func(t *testing.T) {
		view := requestapimodels.RequestView{
			ID:                "r1",
			PolicyName:        "Travel",
			CreatedByUserName: "alice",
			CreatedAt:         actionDate.Add(-time.Hour),
			Status:            models.RequestStatusRejected,
			Approvals: []requestapimodels.ApprovalView{
				{ApproverUserName: "bob", Status: models.ApprovalStatusRejected, Comment: "Over budget", ActionDate: &actionDate},
			},
			Progress: &requestapimodels.ProgressView{
				CurrentStepOrder: -1,
				IsRejected:       true,
				Steps: []requestapimodels.StepProgressView{
					{StepOrder: 0, RoleName: "Lead", State: requestapimodels.StepStateRejected},
					{StepOrder: 1, RoleName: "Finance", IsFinalStep: true, State: requestapimodels.StepStateWaiting},
				},
			},
		}
		file, err := GenerateApprovalSheet(view)
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(file, []byte("%PDF-")))
	})
	t.Run("request without decisions", func(t *testing.T) {
		file, err := GenerateApprovalSheet(requestapimodels.RequestView{ID: "r2", Status: models.RequestStatusPending})
		require.NoError(t, err)
		require.NotEmpty(t, file)
	})
}
