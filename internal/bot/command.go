package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Parsing at the transport boundary: raw Telegram text and callback data are
// turned into tagged values here, the handlers never pattern-match free text.

const txidToken = "TXID:"

// decision is the admin's choice on a payment request, carried in the inline
// keyboard callback data as pay:<verb>:<user_id>:<txid>.
type decision struct {
	Approve bool
	UserID  string
	TxID    string
}

func decisionData(approve bool, userID, txid string) string {
	verb := "reject"
	if approve {
		verb = "approve"
	}
	return fmt.Sprintf("pay:%s:%s:%s", verb, userID, txid)
}

// parseDecision inverts decisionData. The txid is the last segment and may
// itself contain colons, hence SplitN.
func parseDecision(data string) (*decision, bool) {
	parts := strings.SplitN(data, ":", 4)
	if len(parts) != 4 || parts[0] != "pay" || parts[2] == "" || parts[3] == "" {
		return nil, false
	}
	d := &decision{UserID: parts[2], TxID: parts[3]}
	switch parts[1] {
	case "approve":
		d.Approve = true
	case "reject":
		d.Approve = false
	default:
		return nil, false
	}
	return d, true
}

// parseTxID pulls the transaction reference out of a free-form submission:
// "TXID: abc123 PLAN: 250" -> "abc123".
func parseTxID(text string) (string, bool) {
	idx := strings.Index(text, txidToken)
	if idx < 0 {
		return "", false
	}
	rest := strings.TrimSpace(text[idx+len(txidToken):])
	if rest == "" {
		return "", false
	}
	return strings.Fields(rest)[0], true
}

// parseGiveArgs parses "/give <user_id> <credits>" arguments.
func parseGiveArgs(args string) (userID string, credits int64, err error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "", 0, fmt.Errorf("expected 2 arguments, got %d", len(fields))
	}
	if _, err := strconv.ParseInt(fields[0], 10, 64); err != nil {
		return "", 0, fmt.Errorf("user id: %w", err)
	}
	credits, err = strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("credits: %w", err)
	}
	return fields[0], credits, nil
}
