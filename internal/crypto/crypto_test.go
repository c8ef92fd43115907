package crypto

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	salt, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	key := DeriveKey("master-secret", salt)

	plaintext := []byte("hunter2")
	ciphertext, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bytes.Contains(ciphertext, plaintext) {
		t.Error("ciphertext contains plaintext")
	}

	decrypted, err := Decrypt(key, ciphertext)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("expected %q, got %q", plaintext, decrypted)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	salt, _ := NewSalt()
	ciphertext, err := Encrypt(DeriveKey("right-key", salt), []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	_, err = Decrypt(DeriveKey("wrong-key", salt), ciphertext)
	if err == nil {
		t.Fatal("expected error decrypting with wrong key")
	}
	if _, ok := err.(*DecryptionError); !ok {
		t.Errorf("expected *DecryptionError, got %T", err)
	}
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	salt, _ := NewSalt()
	key := DeriveKey("master", salt)
	ciphertext, err := Encrypt(key, []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	ciphertext[len(ciphertext)-1] ^= 0xff
	if _, err := Decrypt(key, ciphertext); err == nil {
		t.Fatal("expected error decrypting tampered ciphertext")
	}
}

func TestEncryptUniqueNonce(t *testing.T) {
	salt, _ := NewSalt()
	key := DeriveKey("master", salt)

	a, err := Encrypt(key, []byte("same plaintext"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	b, err := Encrypt(key, []byte("same plaintext"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same plaintext produced identical output")
	}
}

func TestNewTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := NewToken(32)
		if err != nil {
			t.Fatalf("NewToken failed: %v", err)
		}
		if len(token) < 40 {
			t.Fatalf("token too short: %d chars", len(token))
		}
		if seen[token] {
			t.Fatal("duplicate token generated")
		}
		seen[token] = true
	}
}
