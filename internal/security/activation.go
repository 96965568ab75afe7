package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/SezimOrozobekova/velox-backend/internal/domain"
)

// An activation token is an HMAC over the user's id, email and password
// hash. Activating the account changes none of those fields, so a valid
// link stays verifiable after activation (the second visit must reach the
// idempotent "already activated" branch). Changing the password kills it.

func MakeActivationToken(key string, u *domain.User) string {
	return activationMAC(key, u)
}

func CheckActivationToken(key, token string, u *domain.User) bool {
	return hmac.Equal([]byte(token), []byte(activationMAC(key, u)))
}

func activationMAC(key string, u *domain.User) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(u.ID.Hex()))
	mac.Write([]byte{0})
	mac.Write([]byte(u.Email))
	mac.Write([]byte{0})
	mac.Write([]byte(u.PasswordHash))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// EncodeUID / DecodeUID wrap the user id for use in activation links.
func EncodeUID(hexID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(hexID))
}

func DecodeUID(s string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
