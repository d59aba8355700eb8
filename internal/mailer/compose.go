package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

var verifyHTML = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: sans-serif; color: #222;">
    <p>Hello {{.Name}},</p>
    <p>Welcome to {{.Platform}}. Please confirm your email address to continue
    setting up your account:</p>
    <p><a href="{{.Link}}" style="display:inline-block;padding:10px 18px;background:#1a6fb0;color:#fff;text-decoration:none;border-radius:4px;">Verify my email</a></p>
    <p>Or open this link directly:<br><a href="{{.Link}}">{{.Link}}</a></p>
    <p>The link is valid for 24 hours and can be used once. If you did not
    register, you can ignore this message.</p>
  </body>
</html>
`))

// Composer renders verification messages. The base URL is injected so the
// same binary serves any deployment hostname.
type Composer struct {
	baseURL    string
	senderName string
}

// NewComposer builds a composer. baseURL is the public verification endpoint
// prefix; the token is appended as a path segment.
func NewComposer(baseURL, senderName string) *Composer {
	return &Composer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		senderName: senderName,
	}
}

// BuildVerification renders the confirmation email for one account.
func (c *Composer) BuildVerification(to, name, token string) (Message, error) {
	link := c.baseURL + "/" + token

	var buf bytes.Buffer
	err := verifyHTML.Execute(&buf, map[string]string{
		"Name":     name,
		"Platform": c.senderName,
		"Link":     link,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render verification email: %w", err)
	}

	text := fmt.Sprintf(
		"Hello %s,\n\nWelcome to %s. Please confirm your email address by opening:\n\n%s\n\nThe link is valid for 24 hours and can be used once. If you did not register, ignore this message.\n",
		name, c.senderName, link,
	)

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Confirm your %s account", c.senderName),
		Text:    text,
		HTML:    buf.String(),
	}, nil
}
