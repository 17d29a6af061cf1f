package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("token signature mismatch")
	ErrTokenExpired   = errors.New("token expired")
)

// Sign issues a bearer token for a caller: base64url(role|id|expiry) + "." +
// hex(HMAC-SHA256(secret, payload)).
func Sign(secret string, c Caller, ttl time.Duration) string {
	payload := fmt.Sprintf("%s|%s|%d", c.Role, c.ID, time.Now().Add(ttl).Unix())
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return encoded + "." + signature(secret, payload)
}

// Verify checks a bearer token and returns its caller.
func Verify(secret, token string) (Caller, error) {
	encoded, sig, ok := strings.Cut(token, ".")
	if !ok {
		return Guest(), ErrMalformedToken
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Guest(), ErrMalformedToken
	}
	payload := string(raw)

	expected := signature(secret, payload)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return Guest(), ErrBadSignature
	}

	parts := strings.Split(payload, "|")
	if len(parts) != 3 {
		return Guest(), ErrMalformedToken
	}

	expiry, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Guest(), ErrMalformedToken
	}
	if time.Now().Unix() > expiry {
		return Guest(), ErrTokenExpired
	}

	role := Role(parts[0])
	if role != RoleAdmin && role != RoleUser {
		return Guest(), ErrMalformedToken
	}

	return Caller{ID: parts[1], Role: role}, nil
}

func signature(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
