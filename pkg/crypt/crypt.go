// Package crypt holds the message-authentication helpers used to verify
// signed callbacks.
package crypt

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// SignSHA512 returns the lowercase hex HMAC-SHA512 of body under secret.
func SignSHA512(secret, body []byte) string {
	mac := hmac.New(sha512.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySHA512 reports whether signature is exactly the lowercase hex
// HMAC-SHA512 of body under secret, as SignSHA512 renders it. The comparison
// is constant time. An empty secret or signature never verifies.
func VerifySHA512(secret, body []byte, signature string) bool {
	if len(secret) == 0 || signature == "" {
		return false
	}
	return hmac.Equal([]byte(SignSHA512(secret, body)), []byte(signature))
}
