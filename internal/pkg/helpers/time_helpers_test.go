package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"15s", 15 * time.Second},
		{" 24h ", 24 * time.Hour},
		{"", time.Minute},
		{"soon", time.Minute},
		{"-5s", time.Minute},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDuration(tt.in, time.Minute), tt.in)
	}
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/uploads", PublicURL("http://localhost:8080/", "/uploads"))
	assert.Equal(t, "http://localhost:8080/uploads", PublicURL("http://localhost:8080", "uploads"))
}
