package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DahaitPrince/credits-bot/internal/approval"
	"github.com/DahaitPrince/credits-bot/internal/domain/payments"
	"github.com/DahaitPrince/credits-bot/internal/infra/metrics"
)

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.handleText(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := strconv.FormatInt(msg.From.ID, 10)

	switch msg.Command() {
	case "start":
		if err := b.ledger.EnsureUser(ctx, userID); err != nil {
			b.log.Error("ensure user failed", "user_id", userID, "err", err)
			b.send(tgbotapi.NewMessage(chatID, "Something went wrong, please try again."))
			return
		}
		b.send(tgbotapi.NewMessage(chatID, "👋 Welcome! Use /buy to purchase image credits."))

	case "buy":
		m := tgbotapi.NewMessage(chatID, b.buyText())
		m.ParseMode = tgbotapi.ModeMarkdown
		b.send(m)

	case "balance":
		credits, err := b.ledger.GetBalance(ctx, userID)
		if err != nil {
			b.log.Error("get balance failed", "user_id", userID, "err", err)
			b.send(tgbotapi.NewMessage(chatID, "Something went wrong, please try again."))
			return
		}
		b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("💳 Your balance: %d credits.", credits)))

	case "give":
		if !b.isAdmin(msg.From.ID) {
			b.send(tgbotapi.NewMessage(chatID, "❌ You are not authorized."))
			return
		}
		target, credits, err := parseGiveArgs(msg.CommandArguments())
		if err != nil {
			b.send(tgbotapi.NewMessage(chatID, "Usage: /give <user_id> <credits>"))
			return
		}
		if err := b.ledger.AddCredits(ctx, target, credits); err != nil {
			b.log.Error("direct grant failed", "user_id", target, "credits", credits, "err", err)
			b.send(tgbotapi.NewMessage(chatID, "❌ Grant failed, nothing was changed. Try again."))
			return
		}
		metrics.CreditGrants.Inc()
		b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ %d credits given to user %s.", credits, target)))
		b.notifyUser(target, fmt.Sprintf("🎁 You received %d free credits from admin!", credits))

	case "export":
		if !b.isAdmin(msg.From.ID) {
			b.send(tgbotapi.NewMessage(chatID, "❌ You are not authorized."))
			return
		}
		b.exportPayments(ctx, chatID)

	case "help":
		b.send(tgbotapi.NewMessage(chatID,
			"Commands:\n/start — create your account\n/buy — payment instructions\n/balance — your credits\n/help — this message"))

	default:
		b.send(tgbotapi.NewMessage(chatID, "Unknown command. Try /help"))
	}
}

// handleText routes non-command text. An admin with an armed approval context
// is entering the credit amount; anyone else is submitting a TXID.
func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if _, ok := b.approvals.Awaiting(msg.From.ID); ok {
		b.handleCreditAmount(ctx, msg)
		return
	}

	txid, ok := parseTxID(msg.Text)
	if !ok {
		return
	}

	userID := strconv.FormatInt(msg.From.ID, 10)
	if err := b.ledger.EnsureUser(ctx, userID); err != nil {
		b.log.Error("ensure user failed", "user_id", userID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Submission failed, please resend your TXID."))
		return
	}
	req, err := b.payments.Submit(ctx, userID, txid)
	if err != nil {
		b.log.Error("submit failed", "user_id", userID, "txid", txid, "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Submission failed, please resend your TXID."))
		return
	}
	metrics.RequestsSubmitted.Inc()

	name := msg.From.UserName
	if name == "" {
		name = userID
	}
	adm := tgbotapi.NewMessage(b.adminChat,
		fmt.Sprintf("📥 New payment request\nUser: @%s\nTXID: `%s`", name, req.TxID))
	adm.ParseMode = tgbotapi.ModeMarkdown
	adm.ReplyMarkup = decisionKeyboard(req.UserID, req.TxID)
	b.send(adm)

	b.send(tgbotapi.NewMessage(chatID, "✅ TXID submitted. Waiting for admin approval."))
}

func (b *Bot) handleCreditAmount(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	res, err := b.approvals.SubmitAmount(ctx, msg.From.ID, msg.Text)
	switch {
	case err == nil:
	case errors.Is(err, approval.ErrBadAmount):
		// context stays armed, just retype the number
		b.send(tgbotapi.NewMessage(chatID, "❌ Invalid number. Please enter a valid number."))
		return
	case errors.Is(err, payments.ErrNoPendingRequest):
		b.send(tgbotapi.NewMessage(chatID, "⚠️ This request is already resolved."))
		return
	default:
		b.log.Error("approve failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Approval failed, nothing was changed. Send the number again."))
		return
	}

	metrics.RequestsApproved.Inc()
	b.send(tgbotapi.NewMessage(chatID,
		fmt.Sprintf("✅ Approved. %d credits given to user %s.", res.Credits, res.Request.UserID)))
	b.notifyUser(res.Request.UserID,
		fmt.Sprintf("✅ Your payment is approved. You got %d credits.", res.Credits))
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	cb := upd.CallbackQuery

	d, ok := parseDecision(cb.Data)
	if !ok {
		b.answerCallback(cb, "", false)
		return
	}
	if !b.isAdmin(cb.From.ID) {
		b.answerCallback(cb, "Not authorized", true)
		return
	}

	if d.Approve {
		prev, err := b.approvals.Begin(cb.From.ID, d.UserID, d.TxID)
		if err != nil {
			b.answerCallback(cb, "Not authorized", true)
			return
		}
		b.answerCallback(cb, "", false)
		if prev != nil && prev.TxID != d.TxID {
			b.send(tgbotapi.NewMessage(cb.Message.Chat.ID,
				fmt.Sprintf("⚠️ Approval of TXID %s was abandoned.", prev.TxID)))
		}
		m := tgbotapi.NewMessage(cb.Message.Chat.ID,
			fmt.Sprintf("💬 Please enter number of credits to give for TXID `%s`:", d.TxID))
		m.ParseMode = tgbotapi.ModeMarkdown
		b.send(m)
		return
	}

	req, err := b.payments.Reject(ctx, d.TxID)
	if err != nil {
		if errors.Is(err, payments.ErrNoPendingRequest) {
			b.answerCallback(cb, "Request already resolved", true)
			return
		}
		b.log.Error("reject failed", "txid", d.TxID, "err", err)
		b.answerCallback(cb, "Reject failed, try again", true)
		return
	}
	metrics.RequestsRejected.Inc()
	b.answerCallback(cb, "", false)
	b.editTextAndClear(cb.Message.Chat.ID, cb.Message.MessageID, "❌ Payment rejected.")
	b.notifyUser(req.UserID, "❌ Your payment was rejected.")
}

func (b *Bot) buyText() string {
	var sb strings.Builder
	sb.WriteString("💰 *Buy Image Credits*\n\n")
	sb.WriteString("📤 *TRC20 (USDT)* Address:\n")
	sb.WriteString(fmt.Sprintf("`%s`\n\n", b.wallet))
	if len(b.plans) > 0 {
		sb.WriteString("💵 *Plans:*\n")
		for _, p := range b.plans {
			sb.WriteString(fmt.Sprintf("• %s\n", p))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("📌 *After payment*, send the *TXID* (Transaction ID) and plan amount below 👇\n")
	sb.WriteString("`Example:` TXID: abc123 PLAN: 250")
	return sb.String()
}
