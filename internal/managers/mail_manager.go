// Package managers handles the sending of emails for account verification and password recovery using the
// Mailgun service and the Hermes package for email formatting.
package managers

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"

	"server-notes/internal/config"
)

const serviceName = "Server Notes"

// MailMgr is an interface that outlines the contract for email management.
type MailMgr interface {
	SendVerificationMail(ctx context.Context, email, username, link string) error
	SendPasswordResetMail(ctx context.Context, email, username, link string) error
}

// MailTransport delivers an already rendered HTML email.
type MailTransport interface {
	Send(ctx context.Context, to, subject, html string) error
}

// MailManager is a concrete implementation of the MailMgr interface.
// It formats emails with Hermes and hands them to its transport.
type MailManager struct {
	Hermes    *hermes.Hermes
	Transport MailTransport
	Timeout   time.Duration
}

// MailgunTransport sends emails through the Mailgun API.
type MailgunTransport struct {
	Mailgun *mailgun.MailgunImpl
	From    string
}

// Send implements MailTransport.
func (t *MailgunTransport) Send(ctx context.Context, to, subject, html string) error {
	message := t.Mailgun.NewMessage(t.From, subject, "", to)
	message.SetHtml(html)
	_, _, err := t.Mailgun.Send(ctx, message)
	return err
}

// LogTransport only logs the recipient and subject. It is used outside of production.
type LogTransport struct{}

// Send implements MailTransport.
func (t *LogTransport) Send(_ context.Context, to, subject, _ string) error {
	log.WithFields(log.Fields{"to": to, "subject": subject}).Info("Skipping mail in development mode")
	return nil
}

// SendVerificationMail sends a mail containing the link that verifies the user's email address.
func (mm *MailManager) SendVerificationMail(ctx context.Context, email, username, link string) error {
	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				fmt.Sprintf("Welcome to %s! We're very excited to have you on board.", serviceName),
			},
			Actions: []hermes.Action{
				{
					Instructions: "To verify your email address and start writing notes, please click here:",
					Button: hermes.Button{
						Color: "#2563EB",
						Text:  "Verify your email",
						Link:  link,
					},
				},
			},
			Outros: []string{
				"The link is valid for 24 hours. If you did not sign up, you can safely ignore this email.",
			},
		},
	}

	return mm.send(ctx, email, "Verify your email address", mailBody)
}

// SendPasswordResetMail sends a mail containing the link that lets the user choose a new password.
func (mm *MailManager) SendPasswordResetMail(ctx context.Context, email, username, link string) error {
	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: username,
			Intros: []string{
				fmt.Sprintf("You have requested to reset the password of your %s account.", serviceName),
			},
			Actions: []hermes.Action{
				{
					Instructions: "To choose a new password, please click here:",
					Button: hermes.Button{
						Color: "#DC4D2F",
						Text:  "Reset your password",
						Link:  link,
					},
				},
			},
			Outros: []string{
				"The link is valid for one hour. If you did not request a password reset, no further action is required.",
			},
		},
	}

	return mm.send(ctx, email, "Reset your password", mailBody)
}

func (mm *MailManager) send(ctx context.Context, email, subject string, mailBody hermes.Email) error {
	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, mm.Timeout)
	defer cancel()

	if err := mm.Transport.Send(sendCtx, email, subject, emailBody); err != nil {
		log.Warning("Error sending mail: " + err.Error())
		return err
	}
	log.Debug("Mail sent to ", email)

	return nil
}

// NewMailManager initializes a new MailManager with Hermes and the given transport.
func NewMailManager(transport MailTransport, timeout time.Duration) *MailManager {
	return &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name:        serviceName,
				Link:        "https://server-notes.app/",
				Copyright:   "© Server Notes",
				TroubleText: "If you’re having trouble with the button '{ACTION}', copy and paste the URL below into your web browser.",
			},
		},
		Transport: transport,
		Timeout:   timeout,
	}
}

// NewMailManagerFromConfig picks the Mailgun transport in production and the logging transport otherwise.
func NewMailManagerFromConfig(cfg *config.Config) MailMgr {
	log.Info("Initializing mail manager")

	var transport MailTransport = &LogTransport{}
	if cfg.IsProduction() {
		mailgunInstance := mailgun.NewMailgun(cfg.Mail.Domain, cfg.Mail.APIKey)
		if cfg.Mail.EUBase {
			mailgunInstance.SetAPIBase(mailgun.APIBaseEU)
		}
		transport = &MailgunTransport{Mailgun: mailgunInstance, From: cfg.Mail.From}
	} else {
		log.Println("Running in development mode, email will not be sent to users")
	}

	mm := NewMailManager(transport, cfg.Mail.Timeout)
	log.Info("Initialized mail manager")
	return mm
}
