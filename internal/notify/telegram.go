// Package notify шлёт оповещения о низких остатках в админский чат.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kyawhla-commit/prodplan/internal/domain/materials"
	"github.com/kyawhla-commit/prodplan/internal/domain/products"
)

type Notifier struct {
	bot       *tgbotapi.BotAPI
	chatID    int64
	log       *slog.Logger
	products  *products.Repo
	materials *materials.Repo
}

func New(token string, chatID int64, log *slog.Logger, p *products.Repo, m *materials.Repo) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Notifier{bot: bot, chatID: chatID, log: log, products: p, materials: m}, nil
}

// CheckLowStock собирает всё, что на минимуме или ниже, в одно сообщение.
// Ошибки отправки только логируются: оповещение не должно ронять основной поток.
func (n *Notifier) CheckLowStock(ctx context.Context) {
	mats, err := n.materials.ListBelowMinimum(ctx)
	if err != nil {
		n.log.Error("low-stock check: materials", "err", err)
		return
	}
	prods, err := n.products.ListBelowMinimum(ctx)
	if err != nil {
		n.log.Error("low-stock check: products", "err", err)
		return
	}
	if len(mats) == 0 && len(prods) == 0 {
		return
	}

	var b strings.Builder
	b.WriteString("Низкие остатки:\n")
	for _, m := range mats {
		fmt.Fprintf(&b, "• %s: %s %s (минимум %s)\n", m.Name, m.Quantity, m.Unit, m.MinimumStockLevel)
	}
	for _, p := range prods {
		fmt.Fprintf(&b, "• %s: %s %s (минимум %s)\n", p.Name, p.Quantity, p.Unit, p.MinimumStockLevel)
	}

	msg := tgbotapi.NewMessage(n.chatID, b.String())
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Error("low-stock notify failed", "err", err)
		return
	}
	n.log.Info("low-stock notification sent", "materials", len(mats), "products", len(prods))
}
