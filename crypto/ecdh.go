package crypto

import (
	"bytes"
	"crypto/ecdh"
	"crypto/rand"
	"fmt"

	"github.com/golang/protobuf/proto"

	"nearshare/protocol/securemessage"
)

const p256CoordinateSize = 32

var p256Curve = ecdh.P256()

// GenerateKeyPair creates an ephemeral P-256 key pair for one handshake.
func GenerateKeyPair() (*ecdh.PrivateKey, error) {
	privateKey, err := p256Curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate P-256 private key: %w", err)
	}
	return privateKey, nil
}

// EncodePublicKey serializes key as a GenericPublicKey.
func EncodePublicKey(key *ecdh.PublicKey) ([]byte, error) {
	raw := key.Bytes()
	if len(raw) != 1+2*p256CoordinateSize || raw[0] != 0x04 {
		return nil, fmt.Errorf("unexpected P-256 public key encoding (%d bytes)", len(raw))
	}

	generic := &securemessage.GenericPublicKey{
		Type: securemessage.PublicKeyType_EC_P256,
		EcP256PublicKey: &securemessage.EcP256PublicKey{
			X: signedCoordinate(raw[1 : 1+p256CoordinateSize]),
			Y: signedCoordinate(raw[1+p256CoordinateSize:]),
		},
	}
	encoded, err := proto.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("marshal public key: %w", err)
	}
	return encoded, nil
}

// ParsePublicKey decodes a GenericPublicKey into a P-256 public key. The point
// is validated to lie on the curve.
func ParsePublicKey(encoded []byte) (*ecdh.PublicKey, error) {
	var generic securemessage.GenericPublicKey
	if err := proto.Unmarshal(encoded, &generic); err != nil {
		return nil, fmt.Errorf("unmarshal public key: %w", err)
	}
	if generic.Type != securemessage.PublicKeyType_EC_P256 || generic.EcP256PublicKey == nil {
		return nil, fmt.Errorf("unsupported public key type %d", generic.Type)
	}

	x, err := unsignedCoordinate(generic.EcP256PublicKey.X)
	if err != nil {
		return nil, fmt.Errorf("x coordinate: %w", err)
	}
	y, err := unsignedCoordinate(generic.EcP256PublicKey.Y)
	if err != nil {
		return nil, fmt.Errorf("y coordinate: %w", err)
	}

	raw := make([]byte, 0, 1+2*p256CoordinateSize)
	raw = append(raw, 0x04)
	raw = append(raw, x...)
	raw = append(raw, y...)

	key, err := p256Curve.NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parse P-256 point: %w", err)
	}
	return key, nil
}

// signedCoordinate prefixes a zero byte when the high bit is set, matching the
// two's-complement big integer encoding peers expect.
func signedCoordinate(c []byte) []byte {
	if c[0]&0x80 == 0 {
		return append([]byte{}, c...)
	}
	return append([]byte{0x00}, c...)
}

func unsignedCoordinate(c []byte) ([]byte, error) {
	c = bytes.TrimLeft(c, "\x00")
	if len(c) > p256CoordinateSize {
		return nil, fmt.Errorf("coordinate too long (%d bytes)", len(c))
	}
	out := make([]byte, p256CoordinateSize)
	copy(out[p256CoordinateSize-len(c):], c)
	return out, nil
}
