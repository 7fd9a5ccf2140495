package bot

import (
	"context"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DahaitPrince/credits-bot/internal/approval"
	"github.com/DahaitPrince/credits-bot/internal/domain/ledger"
	"github.com/DahaitPrince/credits-bot/internal/domain/payments"
)

type Bot struct {
	api       *tgbotapi.BotAPI
	log       *slog.Logger
	ledger    *ledger.Repo
	payments  *payments.Repo
	approvals *approval.Coordinator
	adminChat int64
	wallet    string
	plans     []string
}

func New(api *tgbotapi.BotAPI, log *slog.Logger,
	ledgerRepo *ledger.Repo, paymentsRepo *payments.Repo,
	approvals *approval.Coordinator,
	adminChatID int64, wallet string, plans []string) *Bot {

	return &Bot{
		api: api, log: log,
		ledger: ledgerRepo, payments: paymentsRepo, approvals: approvals,
		adminChat: adminChatID, wallet: wallet, plans: plans,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			} else if upd.CallbackQuery != nil {
				b.onCallback(ctx, upd)
			}
		}
	}
}

func (b *Bot) isAdmin(id int64) bool { return id == b.adminChat }

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

// notifyUser delivers a status update to the requester. Best-effort: a user
// who blocked the bot must not fail the ledger path.
func (b *Bot) notifyUser(userID string, text string) {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		b.log.Error("bad user id in notification", "user_id", userID, "err", err)
		return
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("user notification failed", "user_id", userID, "err", err)
	}
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	if _, err := b.api.Request(resp); err != nil {
		b.log.Error("answer callback failed", "err", err)
	}
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(
		chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}},
	)
	b.send(edit)
}
