package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
)

// Email categories, also used as S3 key prefixes.
const (
	CategoryVerification  = "verification"
	CategoryPasswordReset = "password-reset"
)

const (
	verifyPath = "/verify-email"
	resetPath  = "/reset-password"
)

var (
	verificationHTML = template.Must(template.New("verification").Parse(
		`<h1>Welcome{{if .Name}}, {{.Name}}{{end}}!</h1>
<p>Please verify your email address by clicking the link below:</p>
<p><a href="{{.Link}}">Verify Email</a></p>`))

	verificationText = texttemplate.Must(texttemplate.New("verification").Parse(
		`Welcome{{if .Name}}, {{.Name}}{{end}}!

Please verify your email address by opening this link:
{{.Link}}
`))

	resetHTML = template.Must(template.New("reset").Parse(
		`<h1>Password Reset Request</h1>
<p>{{if .Name}}Hi {{.Name}}, you{{else}}You{{end}} requested a password reset. Click the link below to set a new password:</p>
<p><a href="{{.Link}}">Reset Password</a></p>
<p>If you did not request this, please ignore this email.</p>`))

	resetText = texttemplate.Must(texttemplate.New("reset").Parse(
		`{{if .Name}}Hi {{.Name}}, you{{else}}You{{end}} requested a password reset.

Set a new password here:
{{.Link}}

If you did not request this, please ignore this email.
`))
)

// Composer renders account emails with links rooted at the application URL.
type Composer struct {
	appURL string
	from   string
}

func NewComposer(appURL, from string) *Composer {
	return &Composer{appURL: strings.TrimRight(appURL, "/"), from: from}
}

// Link builds the application link carrying token for the given path.
func (c *Composer) Link(path, token string) string {
	return c.appURL + path + "?token=" + url.QueryEscape(token)
}

// Verification renders the address verification email.
func (c *Composer) Verification(msg Message) (*Email, error) {
	return c.render(msg, CategoryVerification, "Verify your email", verifyPath, verificationText, verificationHTML)
}

// PasswordReset renders the password reset email.
func (c *Composer) PasswordReset(msg Message) (*Email, error) {
	return c.render(msg, CategoryPasswordReset, "Reset your password", resetPath, resetText, resetHTML)
}

func (c *Composer) render(msg Message, category, subject, path string, text *texttemplate.Template, html *template.Template) (*Email, error) {
	if msg.To == "" {
		return nil, fmt.Errorf("render %s email: empty recipient", category)
	}

	data := struct {
		Name string
		Link string
	}{Name: msg.Name, Link: c.Link(path, msg.Token)}

	var tb, hb bytes.Buffer
	if err := text.Execute(&tb, data); err != nil {
		return nil, fmt.Errorf("render %s email: %w", category, err)
	}
	if err := html.Execute(&hb, data); err != nil {
		return nil, fmt.Errorf("render %s email: %w", category, err)
	}

	return &Email{
		From:     c.from,
		To:       msg.To,
		Subject:  subject,
		Text:     tb.String(),
		HTML:     hb.String(),
		Link:     data.Link,
		Category: category,
	}, nil
}
