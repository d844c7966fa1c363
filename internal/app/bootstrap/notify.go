package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/wolfman30/salon-booking-assistant/internal/config"
	"github.com/wolfman30/salon-booking-assistant/internal/notify"
	"github.com/wolfman30/salon-booking-assistant/pkg/logging"
)

// BuildNotifier picks the staff e-mail sender named by EMAIL_PROVIDER.
func BuildNotifier(ctx context.Context, cfg *appconfig.Config, loc *time.Location, observer notify.DeliveryObserver, loadAWS AWSConfigLoader, logger *logging.Logger) (*notify.Service, error) {
	var (
		sender   notify.EmailSender
		provider = cfg.EmailProvider
	)
	switch provider {
	case "sendgrid":
		sg := notify.NewSendGridSender(cfg.SendGridAPIKey, notify.Mailbox{
			Address: cfg.SendGridFromEmail,
			Name:    cfg.SendGridFromName,
		}, logger)
		if sg == nil {
			return nil, fmt.Errorf("bootstrap: sendgrid: SENDGRID_API_KEY is required")
		}
		sender = sg
	case "ses":
		if loadAWS == nil {
			return nil, fmt.Errorf("bootstrap: ses: no AWS config loader")
		}
		awsCfg, err := loadAWS(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load aws config: %w", err)
		}
		sender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.Mailbox{
			Address: cfg.SESFromEmail,
			Name:    cfg.SendGridFromName,
		}, logger)
	case "", "stub":
		provider = "stub"
		sender = notify.NewLogSender(logger)
	default:
		return nil, fmt.Errorf("bootstrap: unknown EMAIL_PROVIDER %q", cfg.EmailProvider)
	}

	return notify.NewService(sender, provider, strings.Split(cfg.StaffNotifyEmail, ","), logger,
		notify.WithLocation(loc, cfg.BusinessTZLabel),
		notify.WithDeliveryObserver(observer),
	), nil
}
