package smtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	mail "github.com/wneessen/go-mail"

	"github.com/bakkerme/feedboard/internal/config"
	"github.com/bakkerme/feedboard/internal/outputs/email"
)

func TestIsLocalDevSMTPHost(t *testing.T) {
	cases := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"127.0.0.1", true},
		{"::1", true},
		{"mailpit", true},
		{"smtp.example.com", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, isLocalDevSMTPHost(tc.host), tc.host)
	}
}

func TestResolveTLSMode(t *testing.T) {
	cases := []struct {
		mode string
		port int
		want TLSMode
	}{
		{"", 465, TLSModeImplicit},
		{"", 587, TLSModeStartTLS},
		{"off", 25, TLSModeDisabled},
		{"START_TLS", 25, TLSModeStartTLS},
		{"smtps", 0, ""},
	}
	for _, tc := range cases {
		s := NewSender(config.SMTPEnvConfig{Host: "smtp.example.com", Port: tc.port, TLSMode: tc.mode})
		got, err := s.resolveTLSMode()
		if tc.want == "" {
			assert.Error(t, err, tc.mode)
			continue
		}
		assert.NoError(t, err, tc.mode)
		assert.Equal(t, tc.want, got, tc.mode)
	}
}

func TestValidateConfig(t *testing.T) {
	assert.Error(t, ValidateConfig(config.SMTPEnvConfig{Port: 587}))
	assert.Error(t, ValidateConfig(config.SMTPEnvConfig{Host: "smtp.example.com"}))
	assert.Error(t, ValidateConfig(config.SMTPEnvConfig{Host: "smtp.example.com", Port: 587, TLSMode: "bogus"}))
	assert.NoError(t, ValidateConfig(config.SMTPEnvConfig{Host: "smtp.example.com", Port: 587}))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, mail.TypeTextPlain, contentType(""))
	assert.Equal(t, mail.TypeTextHTML, contentType(email.TextHTML))
}
