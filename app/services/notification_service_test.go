// Package services provides external service integrations and technical concerns like notifications and rate limiting
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendConfirmationEmail(t *testing.T) {
	t.Run("RendersAndSends", func(t *testing.T) {
		provider := NewMockEmailProvider()
		svc := NewNotificationService(provider)

		err := svc.SendConfirmationEmail("juan@example.com", "Juan", "https://villex.com.ar/confirm?token=abc")
		require.NoError(t, err)

		require.Len(t, provider.Sent, 1)
		sent := provider.Sent[0]
		assert.Equal(t, "juan@example.com", sent.To)
		assert.Equal(t, confirmationSubject, sent.Subject)
		assert.Contains(t, sent.HTMLBody, "Hola Juan")
		assert.Contains(t, sent.HTMLBody, "https://villex.com.ar/confirm?token=abc")
		assert.Contains(t, sent.TextBody, "https://villex.com.ar/confirm?token=abc")
	})

	t.Run("InvalidAddress", func(t *testing.T) {
		provider := NewMockEmailProvider()
		svc := NewNotificationService(provider)

		assert.Error(t, svc.SendConfirmationEmail("", "Juan", "https://example.com"))
		assert.Error(t, svc.SendConfirmationEmail("no-at-sign", "Juan", "https://example.com"))
		assert.Empty(t, provider.Sent)
	})

	t.Run("ProviderFailurePropagates", func(t *testing.T) {
		provider := NewMockEmailProvider()
		provider.Fail = true
		svc := NewNotificationService(provider)

		err := svc.SendConfirmationEmail("juan@example.com", "Juan", "https://example.com")
		assert.Error(t, err)
	})

	t.Run("MissingProvider", func(t *testing.T) {
		svc := NewNotificationService(nil)
		assert.Error(t, svc.SendConfirmationEmail("juan@example.com", "Juan", "https://example.com"))
	})
}
