package services

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"

	"github.com/spread-puzzle/puzzle-board-api/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer dispatches a single transactional email.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// GomailMailer sends mail over SMTP.
type GomailMailer struct {
	dialer    *gomail.Dialer
	fromEmail string
	fromName  string
}

// NewGomailMailer creates a Mailer from the SMTP configuration.
func NewGomailMailer(cfg *config.Config) (*GomailMailer, error) {
	port, err := strconv.Atoi(cfg.SMTPPort)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	return &GomailMailer{
		dialer:    gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUsername, cfg.SMTPPassword),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}, nil
}

// Send delivers one HTML email.
func (m *GomailMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}

var invitationTemplate = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #007BFF; color: #ffffff; padding: 24px; text-align: center; }
        .sender-box { background-color: #F0F7FF; padding: 16px; border-radius: 8px; margin: 20px 0; }
        .button { display: inline-block; padding: 16px 32px; background-color: #007BFF; color: #ffffff; font-weight: bold; text-decoration: none; border-radius: 4px; }
        .alt-link { background-color: #F8F9FA; padding: 16px; border-radius: 4px; font-size: 14px; word-break: break-all; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h1>You are invited to join '{{.TeamName}}'</h1>
    </div>

    <div class="sender-box">
        <p><strong>{{.Sender}}</strong> sent you this invitation.</p>
    </div>

    <p>Hello!<br><br>
    '{{.TeamName}}' is looking for new members, and {{.Sender}} thinks you would be a great fit.</p>

    <p style="text-align: center; margin: 32px 0;">
        <a href="{{.InviteLink}}" class="button">Join the team</a>
    </p>

    <div class="alt-link">
        <p>Button not working? Copy this link into your browser:</p>
        <a href="{{.InviteLink}}">{{.InviteLink}}</a>
    </div>

    <div class="footer">
        <p>If you were not expecting this invitation, you can safely ignore this email.</p>
    </div>
</body>
</html>`))

// BuildInvitationEmail renders the invitation subject and HTML body.
func BuildInvitationEmail(sender, teamName, inviteLink string) (string, string, error) {
	subject := fmt.Sprintf("%s invited you to join '%s'", sender, teamName)

	var body bytes.Buffer
	err := invitationTemplate.Execute(&body, struct {
		Subject    string
		Sender     string
		TeamName   string
		InviteLink string
	}{
		Subject:    subject,
		Sender:     sender,
		TeamName:   teamName,
		InviteLink: inviteLink,
	})
	if err != nil {
		return "", "", fmt.Errorf("error executing template: %w", err)
	}

	return subject, body.String(), nil
}
