package crypto

import (
	"bytes"
	"errors"
	"testing"

	"github.com/golang/protobuf/proto"

	"nearshare/protocol/securemessage"
)

func newSessionPair(t *testing.T) (*SecureSession, *SecureSession) {
	t.Helper()
	client, server := runHandshake(t)
	return NewSecureSession(client.Keys), NewSecureSession(server.Keys)
}

func TestSecureSessionRoundTripBothDirections(t *testing.T) {
	initiator, responder := newSessionPair(t)

	raw, err := initiator.Encrypt([]byte("ping"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	got, err := responder.Decrypt(raw)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if string(got) != "ping" {
		t.Fatalf("expected ping, got %q", got)
	}

	raw, err = responder.Encrypt([]byte("pong"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	got, err = initiator.Decrypt(raw)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if string(got) != "pong" {
		t.Fatalf("expected pong, got %q", got)
	}
}

func TestSecureSessionSequenceNumbersStartAtOne(t *testing.T) {
	initiator, responder := newSessionPair(t)

	for want := int32(1); want <= 5; want++ {
		raw, err := initiator.Encrypt([]byte{byte(want)})
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}
		d2d, err := responder.Open(raw)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if d2d.SequenceNumber != want {
			t.Fatalf("expected sequence %d, got %d", want, d2d.SequenceNumber)
		}
	}
	if initiator.SendSequence() != 5 || responder.LastReceivedSequence() != 5 {
		t.Fatalf("unexpected counters send=%d received=%d", initiator.SendSequence(), responder.LastReceivedSequence())
	}
}

func TestSecureSessionDetectsTampering(t *testing.T) {
	initiator, responder := newSessionPair(t)

	raw, err := initiator.Encrypt([]byte("attack at dawn"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	var message securemessage.SecureMessage
	if err := proto.Unmarshal(raw, &message); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	original := message.HeaderAndBody
	for bit := 0; bit < len(original)*8; bit++ {
		tampered := bytes.Clone(original)
		tampered[bit/8] ^= 1 << (bit % 8)

		forged, err := proto.Marshal(&securemessage.SecureMessage{HeaderAndBody: tampered, Signature: message.Signature})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if _, err := responder.Decrypt(forged); !errors.Is(err, ErrAuthentication) {
			t.Fatalf("bit %d: expected ErrAuthentication, got %v", bit, err)
		}
	}
}

func TestSecureSessionRejectsOwnDirection(t *testing.T) {
	initiator, _ := newSessionPair(t)

	raw, err := initiator.Encrypt([]byte("loopback"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := initiator.Decrypt(raw); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication decrypting own message, got %v", err)
	}
}
