// AngelaMos | 2026
// notifier.go

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pos-nt/backend/internal/config"
)

const sendTimeout = 15 * time.Second

type SaleEvent struct {
	OwnerID       string
	Total         float64
	PaymentMethod string
	ItemCount     int
}

type SummaryEvent struct {
	OwnerID   string
	Date      time.Time
	SaleCount int
	Total     float64
	ItemCount int
}

// RecipientSource resolves the email address notifications go to.
type RecipientSource interface {
	EmailForUser(ctx context.Context, userID string) (string, error)
}

// Notifier fans events out to the configured channels. Deliveries run in the
// background; a channel failure is logged and never reaches the caller.
type Notifier struct {
	telegram   *TelegramClient
	whatsapp   *WhatsAppClient
	email      *EmailClient
	recipients RecipientSource
	logger     *slog.Logger
}

func NewNotifier(
	cfg config.NotifyConfig,
	recipients RecipientSource,
	logger *slog.Logger,
) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}

	n := &Notifier{recipients: recipients, logger: logger}

	if cfg.Telegram.Enabled {
		n.telegram = NewTelegramClient(cfg.Telegram)
	}
	if cfg.WhatsApp.Enabled {
		n.whatsapp = NewWhatsAppClient(cfg.WhatsApp)
	}
	if cfg.Email.Enabled {
		n.email = NewEmailClient(cfg.Email)
	}

	return n
}

func (n *Notifier) SaleCreated(ctx context.Context, e SaleEvent) {
	text := fmt.Sprintf(
		"Nueva venta: $%.2f - %d articulos (%s)",
		e.Total,
		e.ItemCount,
		e.PaymentMethod,
	)

	n.background(ctx, "sale telegram", func(ctx context.Context) error {
		if n.telegram == nil {
			return nil
		}
		return n.telegram.Send(ctx, text)
	})

	n.background(ctx, "sale whatsapp", func(ctx context.Context) error {
		if n.whatsapp == nil {
			return nil
		}
		return n.whatsapp.Send(ctx, text)
	})
}

func (n *Notifier) LowStock(
	ctx context.Context,
	ownerID, name string,
	stock, minStock int,
) {
	text := fmt.Sprintf(
		"Alerta de stock bajo\nProducto: %s\nStock actual: %d\nStock minimo: %d",
		name,
		stock,
		minStock,
	)

	n.background(ctx, "low stock whatsapp", func(ctx context.Context) error {
		if n.whatsapp == nil {
			return nil
		}
		return n.whatsapp.Send(ctx, text)
	})

	n.background(ctx, "low stock email", func(ctx context.Context) error {
		if n.email == nil {
			return nil
		}
		to, err := n.recipients.EmailForUser(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("resolve recipient: %w", err)
		}
		return n.email.Send(ctx, to, "Alerta: Stock bajo", text)
	})
}

func (n *Notifier) DailySummary(ctx context.Context, e SummaryEvent) {
	text := fmt.Sprintf(
		"Resumen del %s\nVentas: %d\nArticulos: %d\nTotal: $%.2f",
		e.Date.Format("2006-01-02"),
		e.SaleCount,
		e.ItemCount,
		e.Total,
	)

	n.background(ctx, "daily summary email", func(ctx context.Context) error {
		if n.email == nil {
			return nil
		}
		to, err := n.recipients.EmailForUser(ctx, e.OwnerID)
		if err != nil {
			return fmt.Errorf("resolve recipient: %w", err)
		}
		return n.email.Send(ctx, to, "Resumen diario de ventas", text)
	})
}

// SendPasswordReset delivers a reset token synchronously; callers need to
// know whether the mail went out.
func (n *Notifier) SendPasswordReset(
	ctx context.Context,
	to, token string,
) error {
	if n.email == nil {
		return fmt.Errorf("send password reset: email channel disabled")
	}

	body := fmt.Sprintf(
		"Usa este codigo para restablecer tu contrasena: %s\n"+
			"El codigo expira en 1 hora.",
		token,
	)

	return n.email.Send(ctx, to, "Restablecimiento de contrasena", body)
}

// background detaches the delivery from the request lifecycle so a slow
// provider cannot hold a response open.
func (n *Notifier) background(
	ctx context.Context,
	op string,
	fn func(ctx context.Context) error,
) {
	detached := context.WithoutCancel(ctx)

	go func() {
		sendCtx, cancel := context.WithTimeout(detached, sendTimeout)
		defer cancel()

		if err := fn(sendCtx); err != nil {
			n.logger.Error("notification delivery failed",
				"op", op,
				"error", err,
			)
		}
	}()
}
