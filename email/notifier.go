package email

import (
	"fmt"

	"github.com/apex/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"civic-reports-service/models"
)

// Notifier emails the configured contact when a report's triage status
// changes. Without an API key it is disabled and every call is a no-op.
type Notifier struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
}

func NewNotifier(apiKey, fromName, fromEmail string) *Notifier {
	n := &Notifier{fromName: fromName, fromEmail: fromEmail}
	if apiKey != "" {
		n.client = sendgrid.NewSendClient(apiKey)
	}
	return n
}

// Enabled reports whether a SendGrid client is configured.
func (n *Notifier) Enabled() bool { return n != nil && n.client != nil }

// NotifyStatusChange sends a status update email to the given recipient.
// Failures are logged, never propagated; notification is best-effort.
func (n *Notifier) NotifyStatusChange(recipient string, r *models.Report) {
	if !n.Enabled() || recipient == "" {
		return
	}

	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail(r.Author.Name, recipient)
	subject := fmt.Sprintf("Your report %q is now %s", r.Title, r.Status)

	plain := fmt.Sprintf("Hello %s,\n\nYour report %q at %s has moved to status %q.\n",
		r.Author.Name, r.Title, r.Location.Address, r.Status)
	html := fmt.Sprintf("<p>Hello %s,</p><p>Your report <b>%s</b> at %s has moved to status <b>%s</b>.</p>",
		r.Author.Name, r.Title, r.Location.Address, r.Status)

	message := mail.NewSingleEmail(from, subject, to, plain, html)
	response, err := n.client.Send(message)
	if err != nil {
		log.Warnf("Error sending status email to %s: %v", recipient, err)
		return
	}
	log.Infof("Status email sent to %s! Status: %d", recipient, response.StatusCode)
}
