package auth_test

import (
	"strings"
	"testing"

	"github.com/justsurfingit/placement-portal/internal/auth"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := auth.HashPassword("Student@123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "Student@123" {
		t.Fatal("hash equals plain text")
	}
	if !auth.VerifyPassword("Student@123", hash) {
		t.Error("VerifyPassword rejected the right password")
	}
	if auth.VerifyPassword("student@123", hash) {
		t.Error("VerifyPassword accepted the wrong password")
	}
}

func TestVerify_GarbageHash(t *testing.T) {
	if auth.VerifyPassword("anything", "not-a-bcrypt-hash") {
		t.Error("VerifyPassword accepted a malformed hash")
	}
}

// Anything past 72 bytes is ignored rather than rejected.
func TestHash_LongPassword(t *testing.T) {
	long := strings.Repeat("p", 100)
	hash, err := auth.HashPassword(long)
	if err != nil {
		t.Fatalf("HashPassword(100 bytes): %v", err)
	}
	if !auth.VerifyPassword(strings.Repeat("p", 72)+"different-tail", hash) {
		t.Error("passwords sharing the first 72 bytes should verify")
	}
}
