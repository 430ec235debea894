package verification

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/Was1f/UrbanFix-sub001/logging"
	"github.com/Was1f/UrbanFix-sub001/models"
)

// Sender delivers a code to a user
type Sender interface {
	Send(ctx context.Context, user *models.User, code string) error
}

// EmailSender delivers codes through SendGrid
type EmailSender struct {
	client *sendgrid.Client
	from   string
}

// NewEmailSender creates a SendGrid backed sender
func NewEmailSender(apiKey, from string) *EmailSender {
	return &EmailSender{client: sendgrid.NewSendClient(apiKey), from: from}
}

// Send mails the code to the user's address
func (e *EmailSender) Send(_ context.Context, user *models.User, code string) error {
	if user.Email == "" {
		return models.NewValidationError("account has no email address", "email")
	}
	from := mail.NewEmail("UrbanFix", e.from)
	to := mail.NewEmail(user.Name, user.Email)
	subject := "Your UrbanFix sign-in code"
	plainText := fmt.Sprintf("Your sign-in code is %s. It expires shortly.", code)
	htmlContent := fmt.Sprintf("<p>Your sign-in code is <strong>%s</strong>. It expires shortly.</p>", code)
	message := mail.NewSingleEmail(from, subject, to, plainText, htmlContent)

	resp, err := e.client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender writes codes to the log. It is used when no mail provider is
// configured.
type LogSender struct {
	log *zap.SugaredLogger
}

// NewLogSender creates a sender that logs codes
func NewLogSender() *LogSender {
	return &LogSender{log: logging.New("verification")}
}

// Send logs the code
func (l *LogSender) Send(_ context.Context, user *models.User, code string) error {
	l.log.Infow("sign-in code issued", "identity", user.Identity, "code", code)
	return nil
}
