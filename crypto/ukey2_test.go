package crypto

import (
	"bytes"
	"crypto/ecdh"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/golang/protobuf/proto"

	"nearshare/protocol/securegcm"
)

func runHandshake(t *testing.T) (*Result, *Result) {
	t.Helper()

	client, err := NewClientHandshake()
	if err != nil {
		t.Fatalf("NewClientHandshake failed: %v", err)
	}
	server, err := NewServerHandshake(client.ClientInit())
	if err != nil {
		t.Fatalf("NewServerHandshake failed: %v", err)
	}
	finish, clientResult, err := client.HandleServerInit(server.ServerInit())
	if err != nil {
		t.Fatalf("HandleServerInit failed: %v", err)
	}
	serverResult, err := server.HandleClientFinish(finish)
	if err != nil {
		t.Fatalf("HandleClientFinish failed: %v", err)
	}
	return clientResult, serverResult
}

func TestHandshakeDerivesMirroredKeys(t *testing.T) {
	client, server := runHandshake(t)

	if !bytes.Equal(client.AuthString, server.AuthString) {
		t.Fatalf("auth strings differ")
	}
	if !bytes.Equal(client.NextSecret, server.NextSecret) {
		t.Fatalf("next secrets differ")
	}
	if client.AuthPin() != server.AuthPin() || len(client.AuthPin()) != 4 {
		t.Fatalf("unexpected pins %q and %q", client.AuthPin(), server.AuthPin())
	}

	if !bytes.Equal(client.Keys.EncryptKey, server.Keys.DecryptKey) ||
		!bytes.Equal(client.Keys.SendHMACKey, server.Keys.ReceiveHMACKey) ||
		!bytes.Equal(client.Keys.DecryptKey, server.Keys.EncryptKey) ||
		!bytes.Equal(client.Keys.ReceiveHMACKey, server.Keys.SendHMACKey) {
		t.Fatalf("session keys are not mirrored")
	}
	if bytes.Equal(client.Keys.EncryptKey, client.Keys.DecryptKey) {
		t.Fatalf("directional keys must differ")
	}
}

func TestHandshakeStateIsConsumedOnce(t *testing.T) {
	client, err := NewClientHandshake()
	if err != nil {
		t.Fatalf("NewClientHandshake failed: %v", err)
	}
	server, err := NewServerHandshake(client.ClientInit())
	if err != nil {
		t.Fatalf("NewServerHandshake failed: %v", err)
	}
	finish, _, err := client.HandleServerInit(server.ServerInit())
	if err != nil {
		t.Fatalf("HandleServerInit failed: %v", err)
	}
	if _, _, err := client.HandleServerInit(server.ServerInit()); !errors.Is(err, ErrHandshakeConsumed) {
		t.Fatalf("expected ErrHandshakeConsumed, got %v", err)
	}
	if _, err := server.HandleClientFinish(finish); err != nil {
		t.Fatalf("HandleClientFinish failed: %v", err)
	}
	if _, err := server.HandleClientFinish(finish); !errors.Is(err, ErrHandshakeConsumed) {
		t.Fatalf("expected ErrHandshakeConsumed, got %v", err)
	}
}

func TestServerRejectsCommitmentMismatch(t *testing.T) {
	client, err := NewClientHandshake()
	if err != nil {
		t.Fatalf("NewClientHandshake failed: %v", err)
	}
	server, err := NewServerHandshake(client.ClientInit())
	if err != nil {
		t.Fatalf("NewServerHandshake failed: %v", err)
	}

	// A ClientFinish from an unrelated handshake does not match the commitment.
	other, err := BuildClientInit()
	if err != nil {
		t.Fatalf("BuildClientInit failed: %v", err)
	}
	if _, err := server.HandleClientFinish(other.FinishRaw); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestBuildServerInitValidatesClientInit(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*securegcm.Ukey2ClientInit)
		want   securegcm.Ukey2Alert_AlertType
	}{
		{"version", func(m *securegcm.Ukey2ClientInit) { m.Version = 2 }, securegcm.Ukey2Alert_BAD_VERSION},
		{"random", func(m *securegcm.Ukey2ClientInit) { m.Random = m.Random[:16] }, securegcm.Ukey2Alert_BAD_RANDOM},
		{"next protocol", func(m *securegcm.Ukey2ClientInit) { m.NextProtocol = "AES_256_GCM_SIV" }, securegcm.Ukey2Alert_BAD_NEXT_PROTOCOL},
		{"cipher", func(m *securegcm.Ukey2ClientInit) {
			m.CipherCommitments[0].HandshakeCipher = securegcm.Ukey2HandshakeCipher_CURVE25519_SHA512
		}, securegcm.Ukey2Alert_BAD_HANDSHAKE_CIPHER},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clientInit, err := BuildClientInit()
			if err != nil {
				t.Fatalf("BuildClientInit failed: %v", err)
			}
			tc.mutate(clientInit.Message)
			raw, err := wrapUkey2(securegcm.Ukey2Message_CLIENT_INIT, clientInit.Message)
			if err != nil {
				t.Fatalf("wrap: %v", err)
			}

			_, err = BuildServerInit(raw)
			alertType, ok := AlertFor(err)
			if !ok || alertType != tc.want {
				t.Fatalf("expected alert %s, got %v", tc.want, err)
			}
		})
	}
}

func TestUnexpectedMessageTypeRaisesAlert(t *testing.T) {
	clientInit, err := BuildClientInit()
	if err != nil {
		t.Fatalf("BuildClientInit failed: %v", err)
	}
	_, err = BuildServerInit(clientInit.FinishRaw)
	if alertType, ok := AlertFor(err); !ok || alertType != securegcm.Ukey2Alert_BAD_MESSAGE_TYPE {
		t.Fatalf("expected BAD_MESSAGE_TYPE alert, got %v", err)
	}
}

func TestPeerAlertIsReported(t *testing.T) {
	client, err := NewClientHandshake()
	if err != nil {
		t.Fatalf("NewClientHandshake failed: %v", err)
	}
	alert, err := AlertMessage(securegcm.Ukey2Alert_BAD_VERSION, "unsupported")
	if err != nil {
		t.Fatalf("AlertMessage failed: %v", err)
	}

	_, _, err = client.HandleServerInit(alert)
	var alertErr *AlertError
	if !errors.As(err, &alertErr) {
		t.Fatalf("expected *AlertError, got %v", err)
	}
	if !alertErr.Remote || alertErr.Type != securegcm.Ukey2Alert_BAD_VERSION || alertErr.Message != "unsupported" {
		t.Fatalf("unexpected alert %+v", alertErr)
	}
	if _, ok := AlertFor(err); ok {
		t.Fatalf("peer alerts must not be echoed back")
	}
}

func TestClientInitCarriesCommitment(t *testing.T) {
	clientInit, err := BuildClientInit()
	if err != nil {
		t.Fatalf("BuildClientInit failed: %v", err)
	}

	var wrapper securegcm.Ukey2Message
	if err := proto.Unmarshal(clientInit.Raw, &wrapper); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if wrapper.MessageType != securegcm.Ukey2Message_CLIENT_INIT {
		t.Fatalf("unexpected message type %s", wrapper.MessageType)
	}
	if len(clientInit.Message.CipherCommitments) != 1 || len(clientInit.Message.CipherCommitments[0].Commitment) != 64 {
		t.Fatalf("expected one SHA-512 commitment")
	}
	if clientInit.Message.NextProtocol != NextProtocol {
		t.Fatalf("unexpected next protocol %q", clientInit.Message.NextProtocol)
	}
}

func TestLocalAlertsAreInvalidMessages(t *testing.T) {
	clientInit, err := BuildClientInit()
	if err != nil {
		t.Fatalf("BuildClientInit failed: %v", err)
	}
	clientInit.Message.Version = 7
	raw, err := wrapUkey2(securegcm.Ukey2Message_CLIENT_INIT, clientInit.Message)
	if err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if _, err := BuildServerInit(raw); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestKeyExchangeKnownAnswer(t *testing.T) {
	mustKey := func(fill byte) *ecdh.PrivateKey {
		key, err := ecdh.P256().NewPrivateKey(bytes.Repeat([]byte{fill}, 32))
		if err != nil {
			t.Fatalf("NewPrivateKey failed: %v", err)
		}
		return key
	}
	client, server := mustKey(1), mustKey(2)
	clientInit := []byte("client init message")
	serverInit := []byte("server init")

	auth, next, err := KeyExchange(server.PublicKey(), client, clientInit, serverInit)
	if err != nil {
		t.Fatalf("KeyExchange failed: %v", err)
	}
	if got := hex.EncodeToString(auth); got != "a29af70403ff2c1d194f54e17a4bb43eda73d3ad144440cdd2780c4f134f5e79" {
		t.Fatalf("auth string = %s", got)
	}
	if got := hex.EncodeToString(next); got != "2b8e83c290804e22179b35efb3f411c1cce7b5d4db56598143e0cb404e794c70" {
		t.Fatalf("next secret = %s", got)
	}

	peerAuth, peerNext, err := KeyExchange(client.PublicKey(), server, clientInit, serverInit)
	if err != nil {
		t.Fatalf("KeyExchange failed: %v", err)
	}
	if !bytes.Equal(auth, peerAuth) || !bytes.Equal(next, peerNext) {
		t.Fatalf("initiator and responder derived different secrets")
	}
}

func TestXorPaddedUsesLongerLength(t *testing.T) {
	got := xorPadded([]byte{0x0f}, []byte{0xf0, 0x01, 0x02})
	if !bytes.Equal(got, []byte{0xff, 0x01, 0x02}) {
		t.Fatalf("xorPadded = %x", got)
	}
}
