// internal/services/notification_service.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gamevault/gamevault-backend/internal/apperrors"
	"github.com/gamevault/gamevault-backend/internal/config"
	"github.com/gamevault/gamevault-backend/internal/models"
)

// Notifier delivers marketplace events to users. Implementations must be safe
// for concurrent use; callers fire these from goroutines after the owning
// transaction commits and never wait on the result.
type Notifier interface {
	NotifySellerNewOrder(seller *models.User, purchase *models.Purchase, listingTitle string)
	NotifyBuyerFulfilled(buyer *models.User, purchase *models.Purchase, listingTitle string)
	NotifyBuyerRefunded(buyer *models.User, purchase *models.Purchase, reason string)
	NotifyTopUpReviewed(user *models.User, payment *models.Payment)
	NotifyWithdrawalProcessed(seller *models.User, withdrawal *models.Withdrawal)
	NotifyAdminTopUpSubmitted(payment *models.Payment)
}

// TelegramNotifier sends messages through the Telegram Bot API. Users without a
// linked chat ID are skipped silently; delivery failures are logged and
// swallowed so they can never affect the transaction that produced the event.
type TelegramNotifier struct {
	cfg    config.TelegramConfig
	client *http.Client
}

func NewTelegramNotifier(cfg config.TelegramConfig) *TelegramNotifier {
	return &TelegramNotifier{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

func (n *TelegramNotifier) send(chatID, text string) {
	if n.cfg.BotToken == "" || chatID == "" {
		return
	}

	payload, err := json.Marshal(telegramMessage{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		logrus.WithError(err).Error("Failed to encode telegram message")
		return
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.cfg.APIBaseURL, n.cfg.BotToken)
	resp, err := n.client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		deliveryErr := fmt.Errorf("%w: %v", apperrors.ErrNotificationDelivery, err)
		logrus.WithError(deliveryErr).WithField("chat_id", chatID).Warn("Telegram delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		deliveryErr := fmt.Errorf("%w: status %d", apperrors.ErrNotificationDelivery, resp.StatusCode)
		logrus.WithError(deliveryErr).WithField("chat_id", chatID).Warn("Telegram delivery failed")
	}
}

func (n *TelegramNotifier) NotifySellerNewOrder(seller *models.User, purchase *models.Purchase, listingTitle string) {
	text := fmt.Sprintf(
		"New order!\n\nListing: %s\nAmount: %s coins\nOrder ID: %s\n\nDeliver the account details within 1 hour or the order will be auto-refunded.",
		listingTitle, purchase.Amount.StringFixed(2), purchase.ID,
	)
	n.send(seller.TelegramChatID, text)
}

func (n *TelegramNotifier) NotifyBuyerFulfilled(buyer *models.User, purchase *models.Purchase, listingTitle string) {
	text := fmt.Sprintf(
		"Your order has been delivered!\n\nListing: %s\nOrder ID: %s\n\nCheck the account details in your purchases page and confirm once everything works.",
		listingTitle, purchase.ID,
	)
	n.send(buyer.TelegramChatID, text)
}

func (n *TelegramNotifier) NotifyBuyerRefunded(buyer *models.User, purchase *models.Purchase, reason string) {
	text := fmt.Sprintf(
		"Order refunded.\n\nOrder ID: %s\nAmount returned: %s coins\nReason: %s",
		purchase.ID, purchase.Amount.StringFixed(2), reason,
	)
	n.send(buyer.TelegramChatID, text)
}

func (n *TelegramNotifier) NotifyTopUpReviewed(user *models.User, payment *models.Payment) {
	var text string
	if payment.Status == models.PaymentStatusApproved {
		text = fmt.Sprintf("Top-up approved! %s coins have been added to your wallet.", payment.Amount.StringFixed(2))
	} else {
		text = fmt.Sprintf("Your top-up of %s was rejected. %s", payment.Amount.StringFixed(2), payment.Notes)
	}
	n.send(user.TelegramChatID, text)
}

func (n *TelegramNotifier) NotifyWithdrawalProcessed(seller *models.User, withdrawal *models.Withdrawal) {
	var text string
	if withdrawal.Status == models.WithdrawalStatusPaid {
		text = fmt.Sprintf("Withdrawal of %s sent to your GCash (%s).", withdrawal.Amount.StringFixed(2), withdrawal.GcashNumber)
	} else {
		text = fmt.Sprintf("Withdrawal of %s was rejected and returned to your balance. %s", withdrawal.Amount.StringFixed(2), withdrawal.Notes)
	}
	n.send(seller.TelegramChatID, text)
}

func (n *TelegramNotifier) NotifyAdminTopUpSubmitted(payment *models.Payment) {
	text := fmt.Sprintf(
		"New top-up pending review.\n\nAmount: %s\nReference: %s\nPayment ID: %s",
		payment.Amount.StringFixed(2), payment.ReferenceNo, payment.ID,
	)
	n.send(n.cfg.AdminChatID, text)
}
