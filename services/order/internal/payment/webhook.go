package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

const SignatureHeader = "X-Payment-Signature"

var ErrBadSignature = errors.New("payment notification: bad signature")

// Notification is the success message the gateway posts once a session or
// intent has been paid.
type Notification struct {
	Type      string            `json:"type"`
	Reference string            `json:"reference"`
	Metadata  map[string]string `json:"metadata"`
}

const NotificationSucceeded = "payment.succeeded"

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func Verify(secret, body []byte, signature string) error {
	if len(secret) == 0 {
		return ErrBadSignature
	}
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return ErrBadSignature
	}
	want, _ := hex.DecodeString(Sign(secret, body))
	if !hmac.Equal(got, want) {
		return ErrBadSignature
	}
	return nil
}
