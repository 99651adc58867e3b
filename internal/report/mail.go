package report

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"wikispider/internal/scheduler"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("wikispider/internal/report")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

type EmailConfig struct {
	Smtp       SmtpConfig `json:"smtp"`
	Recipients []string   `json:"recipients"`
}

// Enabled reports whether enough is configured to send mail.
func (c EmailConfig) Enabled() bool {
	return c.Smtp.Server != "" && c.Smtp.EmailAddress != "" && len(c.Recipients) > 0
}

type Mailer struct {
	config EmailConfig
}

func NewMailer(config EmailConfig) Mailer {
	return Mailer{config: config}
}

// Compose builds the failure report of a run.
func (m Mailer) Compose(runID string, results []scheduler.GroupResult) *email.Email {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("wikispider <%s>", m.config.Smtp.EmailAddress)
	mail.To = m.config.Recipients
	mail.Subject = fmt.Sprintf("wikispider run %s had failures", runID)

	body := strings.Builder{}
	body.WriteString("The following sources or datasets failed:\n\n")
	for _, line := range Failures(results) {
		body.WriteString(line)
		body.WriteString("\n")
	}
	body.WriteString("\n")
	body.WriteString(Table(results).Render())
	body.WriteString("\n")
	mail.Text = []byte(body.String())

	return mail
}

// SendFailures mails the report when mail is configured and the run had
// failures. It reports whether a mail was sent.
func (m Mailer) SendFailures(ctx context.Context, runID string, results []scheduler.GroupResult) (bool, error) {
	if !m.config.Enabled() || !AnyFailed(results) {
		return false, nil
	}

	_, span := tracer.Start(ctx, "SendFailures")
	defer span.End()

	mail := m.Compose(runID, results)
	addr := fmt.Sprintf("%s:%d", m.config.Smtp.Server, m.config.Smtp.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", m.config.Smtp.EmailAddress, m.config.Smtp.Password, m.config.Smtp.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		return false, err
	}
	return true, nil
}
