// Package email provides notification adapters for reviewer invitations.
package email

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"net/url"
	"sort"

	"github.com/example/confer/internal/ports/secondary"
)

// SMTPConfig holds what the SMTP notifier needs to deliver mail.
type SMTPConfig struct {
	Host          string
	Port          string
	Username      string
	Password      string
	From          string
	InvitationURL string
}

// Message is a rendered email ready to send.
type Message struct {
	To      string
	Subject string
	Body    string
}

// SMTPNotifier implements secondary.NotificationPort over plain SMTP.
type SMTPNotifier struct {
	config SMTPConfig
	logger *slog.Logger
	send   func(cfg SMTPConfig, msg Message) error
}

// NewSMTPNotifier creates a notifier that delivers invitations over SMTP.
func NewSMTPNotifier(cfg SMTPConfig, logger *slog.Logger) *SMTPNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SMTPNotifier{config: cfg, logger: logger, send: sendMail}
}

// Ensure SMTPNotifier implements the interface
var _ secondary.NotificationPort = (*SMTPNotifier)(nil)

// SendReviewerInvitation sends the invitation mail. Failures are logged, never returned.
func (n *SMTPNotifier) SendReviewerInvitation(ctx context.Context, inv secondary.ReviewerInvitation) {
	if inv.Email == "" {
		n.logger.WarnContext(ctx, "reviewer invitation skipped: user has no email",
			"reviewer", inv.ReviewerID,
			"user_id", inv.UserID,
		)
		return
	}

	msg := BuildInvitation(n.config.InvitationURL, inv)
	if err := n.send(n.config, msg); err != nil {
		n.logger.ErrorContext(ctx, "failed to send reviewer invitation",
			"reviewer", inv.ReviewerID,
			"to", inv.Email,
			"error", err,
		)
		return
	}
	n.logger.InfoContext(ctx, "reviewer invitation sent", "reviewer", inv.ReviewerID, "to", inv.Email)
}

// InvitationLink joins the token onto the configured invitation URL.
func InvitationLink(base, token string) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return fmt.Sprintf("%s?token=%s", base, url.QueryEscape(token))
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// BuildInvitation renders the invitation mail for a reviewer.
func BuildInvitation(baseURL string, inv secondary.ReviewerInvitation) Message {
	name := inv.Name
	if name == "" {
		name = inv.Username
	}
	link := InvitationLink(baseURL, inv.InvitationToken)

	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Reviewer Invitation</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2>Hello %s,</h2>
        <p>You have been invited to review proposals for the conference program.</p>
        <p>Accept or decline the invitation here:</p>
        <p style="word-break: break-all;"><a href="%s">%s</a></p>
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`, name, link, link)

	return Message{
		To:      inv.Email,
		Subject: "Invitation to review proposals",
		Body:    body,
	}
}

// render produces the raw RFC 5322 message.
func render(from string, msg Message) []byte {
	headers := map[string]string{
		"From":         from,
		"To":           msg.To,
		"Subject":      msg.Subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, headers[k])
	}
	buf.WriteString("\r\n")
	buf.WriteString(msg.Body)
	return buf.Bytes()
}

func sendMail(cfg SMTPConfig, msg Message) error {
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	slog.Debug("connecting to SMTP server", "address", addr)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	// Local catchers such as Mailpit run without auth
	if cfg.Username != "" && cfg.Password != "" {
		if err := client.Auth(smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open message body: %w", err)
	}
	if _, err := w.Write(render(cfg.From, msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}
	return client.Quit()
}

// LogNotifier records invitations in the log instead of sending mail.
type LogNotifier struct {
	baseURL string
	logger  *slog.Logger
}

// NewLogNotifier creates a notifier for setups without SMTP.
func NewLogNotifier(invitationURL string, logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{baseURL: invitationURL, logger: logger}
}

var _ secondary.NotificationPort = (*LogNotifier)(nil)

// SendReviewerInvitation logs the invitation link.
func (n *LogNotifier) SendReviewerInvitation(ctx context.Context, inv secondary.ReviewerInvitation) {
	n.logger.InfoContext(ctx, "reviewer invitation",
		"reviewer", inv.ReviewerID,
		"user", inv.Username,
		"email", inv.Email,
		"link", InvitationLink(n.baseURL, inv.InvitationToken),
	)
}
