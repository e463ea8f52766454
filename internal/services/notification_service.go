// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/dpp-backend/internal/config"
)

// Notifier delivers the transfer workflow emails.
type Notifier interface {
	SendTransferInvitation(n TransferNotification) error
	SendApprovalRequest(n TransferNotification) error
	SendTransferCompleted(n TransferNotification) error
}

type discardNotifier struct{}

func (discardNotifier) SendTransferInvitation(TransferNotification) error { return nil }
func (discardNotifier) SendApprovalRequest(TransferNotification) error    { return nil }
func (discardNotifier) SendTransferCompleted(TransferNotification) error  { return nil }

// TransferNotification carries everything the transfer templates render.
type TransferNotification struct {
	RecipientEmail string
	RecipientName  string
	ProductName    string
	ProductID      string
	TransferID     string
	TransferCode   string
	ApprovalToken  string
	ClaimantName   string
	ClaimantEmail  string
	NewOwnerID     string
	TransactionID  string
	ExpiresAt      time.Time
}

type NotificationService struct {
	config *config.Config
	send   func(to, subject, body string) error
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(config *config.Config) *NotificationService {
	s := &NotificationService{config: config}
	s.send = s.sendEmail
	return s
}

func (s *NotificationService) SendTransferInvitation(n TransferNotification) error {
	return s.deliver("transfer_invitation", n, map[string]interface{}{
		"RecipientName": fallbackName(n.RecipientName),
		"ProductName":   n.ProductName,
		"ProductID":     n.ProductID,
		"TransferID":    n.TransferID,
		"TransferCode":  n.TransferCode,
		"ValidUntil":    n.ExpiresAt.Format("January 2, 2006"),
		"ClaimURL":      s.config.Frontend.BaseURL + s.config.Transfer.ClaimPath,
	})
}

func (s *NotificationService) SendApprovalRequest(n TransferNotification) error {
	return s.deliver("approval_request", n, map[string]interface{}{
		"RecipientName": fallbackName(n.RecipientName),
		"ClaimantName":  n.ClaimantName,
		"ClaimantEmail": n.ClaimantEmail,
		"ProductName":   n.ProductName,
		"TransferID":    n.TransferID,
		"ApprovalCode":  n.ApprovalToken,
		"ApproveURL":    fmt.Sprintf("%s/dpp/certificate/transfer/approve?id=%s", s.config.Frontend.BaseURL, n.TransferID),
	})
}

func (s *NotificationService) SendTransferCompleted(n TransferNotification) error {
	return s.deliver("transfer_completed", n, map[string]interface{}{
		"RecipientName":  fallbackName(n.RecipientName),
		"ProductName":    n.ProductName,
		"ProductID":      n.ProductID,
		"NewOwnerID":     n.NewOwnerID,
		"TransactionID":  n.TransactionID,
		"CertificateURL": fmt.Sprintf("%s/dpp/certificate?product_id=%s", s.config.Frontend.BaseURL, n.ProductID),
	})
}

func (s *NotificationService) deliver(templateType string, n TransferNotification, data map[string]interface{}) error {
	if n.RecipientEmail == "" {
		logrus.WithFields(logrus.Fields{
			"template":    templateType,
			"transfer_id": n.TransferID,
		}).Debug("No recipient email, notification skipped")
		return nil
	}

	tmpl := s.getEmailTemplate(templateType)
	subject, err := s.renderTemplate(tmpl.Subject, data)
	if err != nil {
		return fmt.Errorf("failed to render email subject: %w", err)
	}
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.send(n.RecipientEmail, subject, body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email would be sent")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	from := fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", from, to, subject, body))

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"transfer_invitation": {
			Subject: "Ownership Transfer for {{.ProductName}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<p>Dear {{.RecipientName}},</p>
	<p>You have been invited to claim ownership of {{.ProductName}} ({{.ProductID}}).</p>
	<h2>Transfer code: {{.TransferCode}}</h2>
	<p>Transfer ID: {{.TransferID}}<br>Valid until: {{.ValidUntil}}</p>
	<p>Visit <a href="{{.ClaimURL}}">{{.ClaimURL}}</a> and enter your transfer code.
	The current owner must approve the transfer before it is complete.</p>
	<p>Keep this code secure and do not share it.</p>
</body>
</html>`,
		},
		"approval_request": {
			Subject: "Transfer Approval Required for {{.ProductName}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<p>Dear {{.RecipientName}},</p>
	<p>A new ownership claim has been submitted for {{.ProductName}}.</p>
	<p>Claimant: {{.ClaimantName}} ({{.ClaimantEmail}})</p>
	<h2>Approval code: {{.ApprovalCode}}</h2>
	<p><a href="{{.ApproveURL}}">Review the transfer request</a></p>
	<p>Approving permanently transfers ownership and is recorded on the blockchain.
	If you did not initiate this transfer, reject it immediately.</p>
</body>
</html>`,
		},
		"transfer_completed": {
			Subject: "Ownership Transfer Complete for {{.ProductName}}",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<p>Dear {{.RecipientName}},</p>
	<p>You are now the registered owner of {{.ProductName}} ({{.ProductID}}).</p>
	<p>Client ID: {{.NewOwnerID}}<br>Transaction: {{.TransactionID}}</p>
	<a href="{{.CertificateURL}}">View your certificate</a>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.ProductName}}</p>",
	}
}

func fallbackName(name string) string {
	if name == "" {
		return "Client"
	}
	return name
}
