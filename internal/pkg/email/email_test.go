package email

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationToken(t *testing.T) {
	a, err := GenerateVerificationToken()
	require.NoError(t, err)
	b, err := GenerateVerificationToken()
	require.NoError(t, err)

	assert.Len(t, a, TokenLength)
	assert.NotEqual(t, a, b)
	for _, r := range a {
		assert.True(t, strings.ContainsRune(tokenAlphabet, r))
	}
}

func TestRenderConfirmation(t *testing.T) {
	msg := RenderConfirmation("https://app.example.edu/", "<Alice>", "abc123")

	assert.Equal(t, "Verifica tu cuenta", msg.Subject)
	assert.Equal(t, "https://app.example.edu/confirmar/abc123", msg.Link)
	assert.Contains(t, msg.HTML, msg.Link)
	assert.Contains(t, msg.HTML, "&lt;Alice&gt;")
	assert.NotContains(t, msg.HTML, "<Alice>")
}

func TestLogMailer_AlwaysDelivers(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer("http://localhost:5173", zerolog.New(&buf))

	res := m.SendConfirmation(context.Background(), "alice@puce.edu.ec", "Alice", "tok")
	assert.True(t, res.OK)
	assert.NoError(t, res.Err)
	assert.Contains(t, buf.String(), "http://localhost:5173/confirmar/tok")
}

func TestSMTPMailer_UnreachableServerFails(t *testing.T) {
	// Reserve a port and close it so nothing is listening there
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	m := NewSMTPMailer(SMTPConfig{
		Host:      "127.0.0.1",
		Port:      addr.Port,
		FromEmail: "no-reply@example.edu",
		Timeout:   time.Second,
	}, zerolog.Nop())

	res := m.SendConfirmation(context.Background(), "alice@puce.edu.ec", "Alice", "tok")
	assert.False(t, res.OK)
	assert.Error(t, res.Err)
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("Uni-Connect", "no-reply@example.edu", "alice@puce.edu.ec", "Hola", "<p>x</p>"))

	assert.True(t, strings.HasPrefix(msg, "From: Uni-Connect <no-reply@example.edu>\r\n"))
	assert.Contains(t, msg, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>x</p>")
}
