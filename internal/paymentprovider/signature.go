package paymentprovider

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign возвращает hex(HMAC-SHA256(message, secret)).
func Sign(message, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

func verify(message, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Sign(message, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyPaymentSignature проверяет подпись orderRef|paymentRef ключом API.
func (c *Client) VerifyPaymentSignature(orderRef, paymentRef, signature string) bool {
	return verify(orderRef+"|"+paymentRef, signature, c.keySecret)
}

// VerifyWebhookSignature проверяет подпись тела вебхука секретом вебхука.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	return verify(string(body), signature, c.webhookSecret)
}
