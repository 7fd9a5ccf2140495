package bot

import (
	"bytes"
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"
)

const exportLimit = 1000

// exportPayments sends the admin an Excel sheet with the latest payment
// requests and their resolution.
func (b *Bot) exportPayments(ctx context.Context, chatID int64) {
	list, err := b.payments.ListRecent(ctx, exportLimit)
	if err != nil {
		b.log.Error("list payments failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Export failed, try again."))
		return
	}
	if len(list) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "No payment requests yet."))
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"id", "user_id", "txid", "credits", "status", "created_at"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		b.log.Error("export header failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Export failed, try again."))
		return
	}

	row := 2
	for _, req := range list {
		excelRow := []interface{}{
			req.ID,
			req.UserID,
			req.TxID,
			req.Credits,
			string(req.Status),
			req.CreatedAt.Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			b.log.Error("export cell failed", "err", err)
			b.send(tgbotapi.NewMessage(chatID, "❌ Export failed, try again."))
			return
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			b.log.Error("export row failed", "err", err)
			b.send(tgbotapi.NewMessage(chatID, "❌ Export failed, try again."))
			return
		}
		row++
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		b.log.Error("export write failed", "err", err)
		b.send(tgbotapi.NewMessage(chatID, "❌ Export failed, try again."))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("payments_%s.xlsx", time.Now().Format("20060102_150405")),
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("Payment requests (latest %d).", len(list))
	b.send(doc)
}
