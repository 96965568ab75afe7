package security

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := MakeAccess("secret", "6507f1f77bcf86cd79943901", "a@example.com", time.Minute)
	if err != nil {
		t.Fatalf("make: %v", err)
	}
	c, err := ParseAccess("secret", tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UID != "6507f1f77bcf86cd79943901" || c.Email != "a@example.com" {
		t.Fatalf("claims = %+v", c)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	tok, _ := MakeAccess("secret", "uid", "a@example.com", time.Minute)
	if _, err := ParseAccess("other", tok); err == nil {
		t.Fatal("token parsed under the wrong secret")
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	tok, _ := MakeAccess("secret", "uid", "a@example.com", -time.Minute)
	if _, err := ParseAccess("secret", tok); err == nil {
		t.Fatal("expired token parsed as valid")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Fatal("right password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("wrong password accepted")
	}
}
