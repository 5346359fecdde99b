package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	gmaildomain "campushub-backend/internal/gmail/domain"
)

// The OAuth state ties the provider callback back to the user who started the
// consent flow: base64url(userID) + "." + base64url(HMAC-SHA256(payload, secret)).
// Without the secret an attacker cannot mint a state for an arbitrary user.

func signState(userID, secret string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(userID))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return payload + "." + sig
}

func verifyState(state, secret string) (string, error) {
	payload, sig, ok := strings.Cut(state, ".")
	if !ok {
		return "", gmaildomain.ErrInvalidState
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	expected := mac.Sum(nil)

	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(got, expected) {
		return "", gmaildomain.ErrInvalidState
	}

	userID, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil || len(userID) == 0 {
		return "", gmaildomain.ErrInvalidState
	}
	return string(userID), nil
}
