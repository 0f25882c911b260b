package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := make([]byte, 32)
	iv := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if _, err := rand.Read(iv); err != nil {
		t.Fatalf("generate iv: %v", err)
	}

	for _, size := range []int{0, 1, 15, 16, 17, 4096} {
		plaintext := bytes.Repeat([]byte{0xA5}, size)

		ciphertext, err := Encrypt(key, iv, plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%d bytes) failed: %v", size, err)
		}
		if len(ciphertext)%16 != 0 || len(ciphertext) <= size {
			t.Fatalf("unexpected ciphertext length %d for %d bytes", len(ciphertext), size)
		}

		decrypted, err := Decrypt(key, iv, ciphertext)
		if err != nil {
			t.Fatalf("Decrypt(%d bytes) failed: %v", size, err)
		}
		if !bytes.Equal(plaintext, decrypted) {
			t.Fatalf("round trip mismatch for %d bytes", size)
		}
	}
}

func TestEncryptRejectsBadKeyAndIV(t *testing.T) {
	if _, err := Encrypt(make([]byte, 16), make([]byte, 16), []byte("x")); err == nil {
		t.Fatalf("expected error for short key")
	}
	if _, err := Encrypt(make([]byte, 32), make([]byte, 12), []byte("x")); err == nil {
		t.Fatalf("expected error for short iv")
	}
}

func TestDecryptRejectsBadPadding(t *testing.T) {
	key := make([]byte, 32)
	iv := make([]byte, 16)

	ciphertext, err := Encrypt(key, iv, []byte("sixteen byte msg"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	wrongKey := bytes.Repeat([]byte{1}, 32)
	if _, err := Decrypt(wrongKey, iv, ciphertext); err == nil {
		t.Fatalf("expected padding error when decrypting with wrong key")
	}
}

func TestSignVerify(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	data := []byte("header and body")

	signature := Sign(key, data)
	if len(signature) != 32 {
		t.Fatalf("expected 32-byte signature, got %d", len(signature))
	}
	if !Verify(key, data, signature) {
		t.Fatalf("expected signature to verify")
	}

	signature[0] ^= 0x01
	if Verify(key, data, signature) {
		t.Fatalf("expected tampered signature to fail")
	}
}
