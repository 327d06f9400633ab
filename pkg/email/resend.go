package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Sender delivers a prepared message and returns the provider message id.
type Sender interface {
	Send(params *resend.SendEmailRequest) (string, error)
}

type resendSender struct {
	client *resend.Client
}

func (r resendSender) Send(params *resend.SendEmailRequest) (string, error) {
	resp, err := r.client.Emails.Send(params)
	if err != nil {
		return "", err
	}
	return resp.Id, nil
}

type EmailService struct {
	sender    Sender
	from      string
	fromName  string
	templates *template.Template
	logger    *zap.Logger
}

func NewEmailService(apiKey, from, fromName string, logger *zap.Logger) *EmailService {
	return NewEmailServiceWithSender(resendSender{client: resend.NewClient(apiKey)}, from, fromName, logger)
}

func NewEmailServiceWithSender(sender Sender, from, fromName string, logger *zap.Logger) *EmailService {
	return &EmailService{
		sender:    sender,
		from:      from,
		fromName:  fromName,
		templates: template.Must(template.ParseFS(templatesFS, "templates/*.html")),
		logger:    logger.Named("email"),
	}
}

// SendTicketEmail mails the ticket code and, when qrURL is set, the QR code
// image served from it. The provider call is abandoned once ctx is done.
func (s *EmailService) SendTicketEmail(ctx context.Context, to, name, eventTitle, ticketCode, qrURL string) error {
	templateData := map[string]interface{}{
		"Name":       name,
		"EventTitle": eventTitle,
		"TicketCode": ticketCode,
		"QRURL":      qrURL,
		"Year":       time.Now().Year(),
	}

	html, err := s.render("ticket.html", templateData)
	if err != nil {
		s.logger.Error("render ticket template", zap.Error(err))
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{to},
		Subject: "Your ticket for " + eventTitle,
		Html:    html,
	}

	id, err := s.send(ctx, params)
	if err != nil {
		s.logger.Warn("failed to send ticket email", zap.String("ticket", ticketCode), zap.Error(err))
		return fmt.Errorf("send ticket email: %w", err)
	}

	s.logger.Info("ticket email sent", zap.String("ticket", ticketCode), zap.String("email_id", id))
	return nil
}

type sendResult struct {
	id  string
	err error
}

func (s *EmailService) send(ctx context.Context, params *resend.SendEmailRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	done := make(chan sendResult, 1)
	go func() {
		id, err := s.sender.Send(params)
		done <- sendResult{id: id, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.id, res.err
	}
}

func (s *EmailService) render(name string, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, name, data); err != nil {
		return "", err
	}
	return body.String(), nil
}
