package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

func decisionKeyboard(userID, txid string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", decisionData(true, userID, txid)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", decisionData(false, userID, txid)),
		),
	)
}
