package tx

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kelsos/comet-dash/internal/chain"
)

const maxMessageLength = 240

// FormatError turns a submission failure into the message shown on the
// error screen
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, chain.ErrReadOnlyWallet):
		return "No signing key is configured. Set COMET_PRIVATE_KEY to submit transactions."
	case errors.Is(err, chain.ErrTxFailed):
		return "The transaction was mined but reverted."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out waiting for the network."
	case errors.Is(err, ErrInvalidAmount):
		return "Enter a valid amount."
	}

	raw := err.Error()
	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "insufficient funds"):
		return "Insufficient funds to pay for gas."
	case strings.Contains(lower, "nonce too low"):
		return "Nonce too low. Another transaction from this wallet may still be pending."
	case strings.Contains(lower, "replacement transaction underpriced"):
		return "A pending transaction from this wallet blocks this one. Try again once it is mined."
	case strings.Contains(lower, "execution reverted"):
		reason := revertReason(raw)
		if reason == "" {
			return "The transaction would revert."
		}
		return "The transaction would revert: " + reason
	}

	return sentence(innermost(err).Error())
}

func revertReason(msg string) string {
	i := strings.Index(strings.ToLower(msg), "execution reverted:")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(msg[i+len("execution reverted:"):])
}

func innermost(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func sentence(msg string) string {
	msg = strings.TrimSpace(msg)
	if len(msg) > maxMessageLength {
		cut := maxMessageLength
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "..."
	}
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}
