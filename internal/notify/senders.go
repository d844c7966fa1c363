package notify

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

const defaultFromName = "Salon Booking Assistant"

// EmailSender delivers one message to one recipient.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is a plain text e-mail with an optional HTML alternative.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
	HTML    string
}

// Mailbox is the From identity shared by every provider.
type Mailbox struct {
	Address string
	Name    string
}

func (m Mailbox) withDefaults() Mailbox {
	if m.Name == "" {
		m.Name = defaultFromName
	}
	return m
}

// String renders the RFC 5322 form, quoting the display name when needed.
func (m Mailbox) String() string {
	return (&mail.Address{Name: m.Name, Address: m.Address}).String()
}

type sendgridAPI interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	api    sendgridAPI
	from   Mailbox
	logger *logging.Logger
}

// NewSendGridSender returns nil when apiKey is empty.
func NewSendGridSender(apiKey string, from Mailbox, logger *logging.Logger) *SendGridSender {
	if apiKey == "" {
		return nil
	}
	return newSendGridSender(sendgrid.NewSendClient(apiKey), from, logger)
}

func newSendGridSender(api sendgridAPI, from Mailbox, logger *logging.Logger) *SendGridSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &SendGridSender{api: api, from: from.withDefaults(), logger: logger}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	html := msg.HTML
	if html == "" {
		html = msg.Body
	}
	email := sgmail.NewSingleEmail(
		sgmail.NewEmail(s.from.Name, s.from.Address),
		msg.Subject,
		sgmail.NewEmail("", msg.To),
		msg.Body,
		html,
	)

	resp, err := s.api.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("notify: sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		s.logger.Warn("sendgrid rejected message", "status", resp.StatusCode, "body", resp.Body)
		return fmt.Errorf("notify: sendgrid: status %d", resp.StatusCode)
	}
	s.logger.Debug("sendgrid accepted message", "to", msg.To, "status", resp.StatusCode)
	return nil
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers through Amazon SES v2.
type SESSender struct {
	api    sesAPI
	from   Mailbox
	logger *logging.Logger
}

// NewSESSender accepts *sesv2.Client. It returns nil for a nil client.
func NewSESSender(api sesAPI, from Mailbox, logger *logging.Logger) *SESSender {
	if api == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SESSender{api: api, from: from.withDefaults(), logger: logger}
}

func (s *SESSender) Send(ctx context.Context, msg EmailMessage) error {
	body := &sestypes.Body{}
	if msg.Body != "" {
		body.Text = sesContent(msg.Body)
	}
	if msg.HTML != "" {
		body.Html = sesContent(msg.HTML)
	}
	out, err := s.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from.String()),
		Destination:      &sestypes.Destination{ToAddresses: []string{msg.To}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{Subject: sesContent(msg.Subject), Body: body},
		},
	})
	if err != nil {
		return fmt.Errorf("notify: ses: %w", err)
	}
	s.logger.Debug("ses accepted message", "to", msg.To, "message_id", aws.ToString(out.MessageId))
	return nil
}

func sesContent(data string) *sestypes.Content {
	return &sestypes.Content{Data: aws.String(data), Charset: aws.String("UTF-8")}
}

// LogSender only logs. It backs EMAIL_PROVIDER=stub.
type LogSender struct {
	logger *logging.Logger
}

func NewLogSender(logger *logging.Logger) *LogSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg EmailMessage) error {
	s.logger.InfoContext(ctx, "staff e-mail (not sent)", "to", msg.To, "subject", msg.Subject)
	return nil
}

var (
	_ EmailSender = (*SendGridSender)(nil)
	_ EmailSender = (*SESSender)(nil)
	_ EmailSender = (*LogSender)(nil)
)
