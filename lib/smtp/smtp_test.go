package smtp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendEMail(t *testing.T) {
	t.Run("not configured client skips sending", func(t *testing.T) {
		client := impl{}
		require.False(t, client.IsConfigured())
		require.NoError(t, client.SendEMail("from@test.local", "to@test.local", "body", "subject"))
	})
	t.Run("message headers", func(t *testing.T) {
		msg := buildMessage("from@test.local", "to@test.local", "Request approved", "Your request was approved")
		require.True(t, strings.HasPrefix(msg, "From: from@test.local\r\n"))
		require.Contains(t, msg, "To: to@test.local\r\n")
		require.Contains(t, msg, "Subject: Policy Portal - Request approved\r\n")
		require.True(t, strings.HasSuffix(msg, "\r\n\r\nYour request was approved\r\n"))
	})
}
