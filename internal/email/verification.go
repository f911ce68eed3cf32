package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"
)

type verificationData struct {
	AppName string
	Link    string
	Hours   int
	Year    int
}

var verificationHTML = htmltemplate.Must(htmltemplate.New("verification.html").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Email Verification</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background-color: #f4f4f4; padding: 20px; border-radius: 10px;">
    <h1 style="color: #333; text-align: center;">Welcome to {{.AppName}}!</h1>
    <p>Thanks for signing up. Confirm your email address to finish setting up your account:</p>
    <div style="text-align: center; margin: 30px 0;">
      <a href="{{.Link}}" style="background-color: #4CAF50; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block; font-weight: bold;">Verify Email Address</a>
    </div>
    <p style="font-size: 12px; color: #666;">Or paste this link into your browser:</p>
    <p style="font-size: 12px; color: #666; word-break: break-all;">{{.Link}}</p>
    <p style="font-size: 12px; color: #666; margin-top: 30px;">The link expires in {{.Hours}} hours. If you did not create an account with {{.AppName}}, ignore this email.</p>
    <hr style="border: none; border-top: 1px solid #ddd; margin: 20px 0;">
    <p style="font-size: 11px; color: #999; text-align: center;">&copy; {{.Year}} {{.AppName}}. All rights reserved.</p>
  </div>
</body>
</html>
`))

var verificationText = texttemplate.Must(texttemplate.New("verification.txt").Parse(`Welcome to {{.AppName}}!

Thanks for signing up. Confirm your email address to finish setting up your account:

{{.Link}}

The link expires in {{.Hours}} hours. If you did not create an account with {{.AppName}}, ignore this email.

(c) {{.Year}} {{.AppName}}. All rights reserved.
`))

// VerificationMessage renders the email that carries a verification link.
func VerificationMessage(appName, to, link string, ttl time.Duration) (Message, error) {
	data := verificationData{
		AppName: appName,
		Link:    link,
		Hours:   int(ttl.Hours()),
		Year:    time.Now().Year(),
	}

	var html, text bytes.Buffer
	if err := verificationHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("rendering verification html: %w", err)
	}
	if err := verificationText.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("rendering verification text: %w", err)
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Verify Your Email Address - %s", appName),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
