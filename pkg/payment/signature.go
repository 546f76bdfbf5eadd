package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// Signature computes the gateway webhook signature:
// SHA-512(order_id + status_code + gross_amount + server_key), hex-encoded.
// gross_amount is the decimal string exactly as delivered in the payload.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifySignature compares the supplied signature_key in constant time.
func VerifySignature(orderID, statusCode, grossAmount, serverKey, signatureKey string) bool {
	expected := Signature(orderID, statusCode, grossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signatureKey)) == 1
}
