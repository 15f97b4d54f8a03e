package mails

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWelcomeTemplate(t *testing.T) {
	partials, err := parseEmailTmpl("user_welcome.tmpl", map[string]any{
		"username": "alice",
		"role":     "user",
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Movie Catalog, alice!", partials["subject"])
	assert.Contains(t, partials["plainBody"], "Your user account has been created")
	assert.Contains(t, partials["htmlBody"], "<p>Hi alice,</p>")
}

func TestParseUnknownTemplate(t *testing.T) {
	_, err := parseEmailTmpl("missing.tmpl", nil)
	assert.Error(t, err)
}
