// Package appstore parses App Store server-to-server subscription
// notifications.
package appstore

import (
	"encoding/json"
	"errors"
	"time"
)

// Notification types the store sends for subscription lifecycle events.
const (
	InitialBuy     = "INITIAL_BUY"
	DidRenew       = "DID_RENEW"
	DidFailToRenew = "DID_FAIL_TO_RENEW"
	Cancel         = "CANCEL"
	Expired        = "EXPIRED"
)

var (
	ErrNoTransactionInfo = errors.New("no transaction info")
	ErrProductMismatch   = errors.New("product id mismatch")
)

// Notification is the webhook payload. Transaction info arrives either as
// the first latest_receipt_info entry or as data.transaction_info,
// depending on the store's notification version.
type Notification struct {
	NotificationType string `json:"notification_type"`
	Data             struct {
		LatestReceiptInfo []TransactionInfo `json:"latest_receipt_info"`
		TransactionInfo   *TransactionInfo  `json:"transaction_info"`
	} `json:"data"`
}

// TransactionInfo identifies the purchased product and subscription window.
type TransactionInfo struct {
	ProductID             string      `json:"product_id"`
	OriginalTransactionID string      `json:"original_transaction_id"`
	ExpiresDateMS         json.Number `json:"expires_date_ms"`
}

// Transaction returns whichever transaction info the payload carries.
func (n *Notification) Transaction() (*TransactionInfo, error) {
	if len(n.Data.LatestReceiptInfo) > 0 {
		return &n.Data.LatestReceiptInfo[0], nil
	}
	if n.Data.TransactionInfo != nil {
		return n.Data.TransactionInfo, nil
	}
	return nil, ErrNoTransactionInfo
}

// ExpiresAt converts the millisecond timestamp, when present.
func (t *TransactionInfo) ExpiresAt() *time.Time {
	ms, err := t.ExpiresDateMS.Int64()
	if err != nil || ms <= 0 {
		return nil
	}
	at := time.UnixMilli(ms).UTC()
	return &at
}

// Outcome is the entitlement change a notification implies.
type Outcome struct {
	Subscribed      bool
	SubscriptionEnd *time.Time
	// Handled is false for notification types the app ignores.
	Handled bool
}

// Evaluate validates the product and maps the notification type onto an
// entitlement outcome.
func (n *Notification) Evaluate(expectedProductID string) (*TransactionInfo, Outcome, error) {
	txn, err := n.Transaction()
	if err != nil {
		return nil, Outcome{}, err
	}
	if txn.ProductID != expectedProductID {
		return nil, Outcome{}, ErrProductMismatch
	}

	switch n.NotificationType {
	case InitialBuy, DidRenew:
		return txn, Outcome{Subscribed: true, SubscriptionEnd: txn.ExpiresAt(), Handled: true}, nil
	case DidFailToRenew, Cancel, Expired:
		return txn, Outcome{Subscribed: false, Handled: true}, nil
	default:
		return txn, Outcome{Handled: false}, nil
	}
}
