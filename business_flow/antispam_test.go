// Package businessflow contains the core business logic and use cases for lead-capture workflows
package businessflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateContact(t *testing.T) {
	tests := []struct {
		name        string
		contact     string
		expectValid bool
		expectMsg   string
	}{
		{
			name:        "valid email",
			contact:     "juan@example.com",
			expectValid: true,
		},
		{
			name:        "valid email with plus tag",
			contact:     "juan+leads@example.com.ar",
			expectValid: true,
		},
		{
			name:        "valid bare phone",
			contact:     "1123456789",
			expectValid: true,
		},
		{
			name:        "valid international phone with formatting",
			contact:     "+54 9 11 2345-6789",
			expectValid: true,
		},
		{
			name:        "valid phone with parentheses and dots",
			contact:     "(011) 2345.6789",
			expectValid: true,
		},
		{
			name:        "empty contact",
			contact:     "",
			expectValid: false,
			expectMsg:   MsgContactRequired,
		},
		{
			name:        "whitespace only",
			contact:     "   ",
			expectValid: false,
			expectMsg:   MsgContactRequired,
		},
		{
			name:        "phone too short",
			contact:     "1234567",
			expectValid: false,
			expectMsg:   MsgContactInvalid,
		},
		{
			name:        "phone too long",
			contact:     "1234567890123456",
			expectValid: false,
			expectMsg:   MsgContactInvalid,
		},
		{
			name:        "email without tld",
			contact:     "juan@example",
			expectValid: false,
			expectMsg:   MsgContactInvalid,
		},
		{
			name:        "free text",
			contact:     "llamame cuando puedas",
			expectValid: false,
			expectMsg:   MsgContactInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateContact(tt.contact)
			assert.Equal(t, tt.expectValid, valid)
			assert.Equal(t, tt.expectMsg, msg)
		})
	}
}

func TestExtractEmailFromContact(t *testing.T) {
	assert.Equal(t, "juan@example.com", ExtractEmailFromContact("juan@example.com"))
	assert.Equal(t, "juan@example.com", ExtractEmailFromContact("  JUAN@Example.COM  "))
	assert.Equal(t, "", ExtractEmailFromContact("+5491123456789"))
	assert.Equal(t, "", ExtractEmailFromContact(""))
	assert.Equal(t, "", ExtractEmailFromContact("not an email"))
}

func TestIsDisposableEmail(t *testing.T) {
	assert.True(t, IsDisposableEmail("bot@mailinator.com"))
	assert.True(t, IsDisposableEmail("bot@YOPMAIL.com"))
	assert.False(t, IsDisposableEmail("juan@example.com"))
	assert.False(t, IsDisposableEmail("no-at-sign"))
	assert.False(t, IsDisposableEmail(""))
}

func TestCalculateSpamScore(t *testing.T) {
	tests := []struct {
		name           string
		leadName       string
		contact        string
		message        string
		honeypotFilled bool
		expectScore    int
	}{
		{
			name:        "clean submission",
			leadName:    "Juan Pérez",
			contact:     "juan@example.com",
			message:     "Necesito una web para mi negocio",
			expectScore: 0,
		},
		{
			name:           "honeypot filled",
			leadName:       "Juan Pérez",
			contact:        "juan@example.com",
			message:        "Hola",
			honeypotFilled: true,
			expectScore:    10,
		},
		{
			name:        "url flooding",
			leadName:    "Juan Pérez",
			contact:     "juan@example.com",
			message:     "mira https://a.com https://b.com https://c.com https://d.com",
			expectScore: 4,
		},
		{
			name:        "three urls below the flooding bar",
			leadName:    "Juan Pérez",
			contact:     "juan@example.com",
			message:     "mira https://a.com https://b.com https://c.com",
			expectScore: 0,
		},
		{
			name:        "single spam keyword",
			leadName:    "Juan Pérez",
			contact:     "juan@example.com",
			message:     "best casino bonus",
			expectScore: 3,
		},
		{
			name:        "spam keywords stack",
			leadName:    "Juan Pérez",
			contact:     "juan@example.com",
			message:     "you are a winner, make money fast, earn $5000 every day",
			expectScore: 9,
		},
		{
			name:        "name too short",
			leadName:    "J",
			contact:     "juan@example.com",
			message:     "Hola",
			expectScore: 2,
		},
		{
			name:        "all caps shouting",
			leadName:    "Juan Pérez",
			contact:     "juan@example.com",
			message:     "QUIERO UNA PAGINA WEB YA MISMO",
			expectScore: 2,
		},
		{
			name:        "short all caps message is fine",
			leadName:    "Juan Pérez",
			contact:     "juan@example.com",
			message:     "HOLA",
			expectScore: 0,
		},
		{
			name:        "disposable email domain",
			leadName:    "Juan Pérez",
			contact:     "bot@mailinator.com",
			message:     "Hola",
			expectScore: 3,
		},
		{
			name:           "everything at once",
			leadName:       "X",
			contact:        "bot@guerrillamail.com",
			message:        "WINNER CLICK HERE FOR CASINO " + strings.Repeat("https://spam.example ", 5),
			honeypotFilled: true,
			// honeypot 10 + 5 urls + 3 keywords*3 + short name 2 + disposable 3
			expectScore: 29,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := CalculateSpamScore(tt.leadName, tt.contact, tt.message, tt.honeypotFilled)
			assert.Equal(t, tt.expectScore, score)
		})
	}
}

func TestHashIP(t *testing.T) {
	h1 := HashIP("203.0.113.7", "secret-a")
	h2 := HashIP("203.0.113.7", "secret-a")
	h3 := HashIP("203.0.113.7", "secret-b")
	h4 := HashIP("203.0.113.8", "secret-a")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.NotEqual(t, h1, h4)
	assert.Len(t, h1, 64)
	assert.NotContains(t, h1, "203.0.113.7")
}

func TestTruncateUserAgent(t *testing.T) {
	short := "Mozilla/5.0"
	assert.Equal(t, short, TruncateUserAgent(short))

	long := strings.Repeat("a", 300)
	assert.Len(t, TruncateUserAgent(long), 255)
}
