package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const sessionKeySize = 32

var (
	// d2dSalt is SHA-256("D2D").
	d2dSalt = mustDecodeHex("82AA55A0D397F88346CA1CEE8D3909B95F13FA7DEB1D4AB38376B8256DA85510")
	// pt2Salt is SHA-256("SecureMessage").
	pt2Salt = mustDecodeHex("BF9D2A53C63616D75DB0A7165B91C1EF73E537F2427405FA23610A4BE657642E")
)

// SessionKeys are the directional AES and HMAC keys of one side of a secure channel.
type SessionKeys struct {
	EncryptKey     []byte
	SendHMACKey    []byte
	DecryptKey     []byte
	ReceiveHMACKey []byte
}

// DeriveSessionKeys expands the UKEY2 next-protocol secret into the four
// secure channel keys. The initiator encrypts with the client-derived keys and
// decrypts with the server-derived keys; the responder does the reverse.
func DeriveSessionKeys(nextSecret []byte, initiator bool) (SessionKeys, error) {
	clientKey, err := deriveKey(nextSecret, d2dSalt, "client")
	if err != nil {
		return SessionKeys{}, err
	}
	serverKey, err := deriveKey(nextSecret, d2dSalt, "server")
	if err != nil {
		return SessionKeys{}, err
	}

	clientEnc, err := deriveKey(clientKey, pt2Salt, "ENC:2")
	if err != nil {
		return SessionKeys{}, err
	}
	clientSig, err := deriveKey(clientKey, pt2Salt, "SIG:1")
	if err != nil {
		return SessionKeys{}, err
	}
	serverEnc, err := deriveKey(serverKey, pt2Salt, "ENC:2")
	if err != nil {
		return SessionKeys{}, err
	}
	serverSig, err := deriveKey(serverKey, pt2Salt, "SIG:1")
	if err != nil {
		return SessionKeys{}, err
	}

	if initiator {
		return SessionKeys{EncryptKey: clientEnc, SendHMACKey: clientSig, DecryptKey: serverEnc, ReceiveHMACKey: serverSig}, nil
	}
	return SessionKeys{EncryptKey: serverEnc, SendHMACKey: serverSig, DecryptKey: clientEnc, ReceiveHMACKey: clientSig}, nil
}

func deriveKey(ikm, salt []byte, info string) ([]byte, error) {
	reader := hkdf.New(sha256.New, ikm, salt, []byte(info))
	key := make([]byte, sessionKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive %q key: %w", info, err)
	}
	return key, nil
}

func mustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}
