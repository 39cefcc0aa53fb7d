package email

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"strings"
)

// Result is the outcome of a delivery attempt. Mailers report failures here
// instead of returning errors so callers must branch on OK explicitly.
type Result struct {
	OK  bool
	Err error
}

// Delivered is the successful result
func Delivered() Result {
	return Result{OK: true}
}

// Failed wraps a delivery failure
func Failed(err error) Result {
	return Result{OK: false, Err: err}
}

// Mailer delivers account emails
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) Result
	SendConfirmation(ctx context.Context, to, name, token string) Result
}

// Message holds the rendered confirmation email
type Message struct {
	Subject string
	HTML    string
	Link    string
}

// ConfirmationLink builds the frontend link that carries the confirmation token
func ConfirmationLink(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/confirmar/" + url.PathEscape(token)
}

// RenderConfirmation renders the confirmation email for name
func RenderConfirmation(frontendURL, name, token string) Message {
	link := ConfirmationLink(frontendURL, token)
	body := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; padding: 20px;">
  <h2>Verificación de Cuenta</h2>
  <p>Hola %s,</p>
  <p>Para confirmar tu cuenta, haz clic en el siguiente enlace:</p>
  <a href="%s" style="padding: 10px 20px; background-color: #3498db; color: white; border-radius: 5px; text-decoration: none;">Verificar Cuenta</a>
  <p>Si no solicitaste esta verificación, ignora este mensaje.</p>
</div>`, htmlEscape(name), link)

	return Message{
		Subject: "Verifica tu cuenta",
		HTML:    body,
		Link:    link,
	}
}

var htmlReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;")

func htmlEscape(s string) string {
	return htmlReplacer.Replace(s)
}

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TokenLength is the length of confirmation tokens
const TokenLength = 32

// GenerateVerificationToken returns a random single-use confirmation token
func GenerateVerificationToken() (string, error) {
	result := make([]byte, TokenLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate verification token: %w", err)
		}
		result[i] = tokenAlphabet[n.Int64()]
	}
	return string(result), nil
}
