package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"fmt"

	"github.com/golang/protobuf/proto"

	"nearshare/protocol/securegcm"
)

const (
	ukey2Version    = 1
	ukey2RandomSize = 32
	// NextProtocol is the only secure channel protocol offered and accepted.
	NextProtocol = "AES_256_CBC-HMAC_SHA256"
)

const (
	authInfo = "UKEY2 v1 auth"
	nextInfo = "UKEY2 v1 next"
)

// ClientInit is the initiator's first handshake message together with the
// state needed to finish the handshake.
type ClientInit struct {
	Message *securegcm.Ukey2ClientInit
	// Raw is the serialized Ukey2Message wrapping Message.
	Raw []byte
	// FinishRaw is the serialized ClientFinish committed to in Message.
	FinishRaw  []byte
	PrivateKey *ecdh.PrivateKey
}

// ServerInit is the responder's reply to a validated ClientInit.
type ServerInit struct {
	Message       *securegcm.Ukey2ServerInit
	Raw           []byte
	ClientInitRaw []byte
	PrivateKey    *ecdh.PrivateKey
	commitment    []byte
}

// Result is the outcome of a completed UKEY2 exchange.
type Result struct {
	// AuthString can be compared out of band by both users. It is never
	// verified automatically.
	AuthString []byte
	NextSecret []byte
	Keys       SessionKeys
}

// AuthPin renders the auth string as the 4-digit code Nearby peers display.
func (r *Result) AuthPin() string {
	const modulo = 9973
	hash, multiplier := 0, 1
	for _, b := range r.AuthString {
		hash = (hash + int(int8(b))*multiplier) % modulo
		multiplier = multiplier * 31 % modulo
	}
	if hash < 0 {
		hash = -hash
	}
	return fmt.Sprintf("%04d", hash)
}

// BuildClientInit generates an ephemeral key pair, prepares the ClientFinish
// that will later be sent, and commits to it with SHA-512.
func BuildClientInit() (*ClientInit, error) {
	privateKey, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	publicKey, err := EncodePublicKey(privateKey.PublicKey())
	if err != nil {
		return nil, err
	}

	finishRaw, err := wrapUkey2(securegcm.Ukey2Message_CLIENT_FINISH, &securegcm.Ukey2ClientFinished{PublicKey: publicKey})
	if err != nil {
		return nil, err
	}
	commitment := sha512.Sum512(finishRaw)

	random := make([]byte, ukey2RandomSize)
	if _, err := rand.Read(random); err != nil {
		return nil, fmt.Errorf("generate client random: %w", err)
	}

	message := &securegcm.Ukey2ClientInit{
		Version: ukey2Version,
		Random:  random,
		CipherCommitments: []*securegcm.Ukey2ClientInit_CipherCommitment{{
			HandshakeCipher: securegcm.Ukey2HandshakeCipher_P256_SHA512,
			Commitment:      commitment[:],
		}},
		NextProtocol: NextProtocol,
	}
	raw, err := wrapUkey2(securegcm.Ukey2Message_CLIENT_INIT, message)
	if err != nil {
		return nil, err
	}

	return &ClientInit{Message: message, Raw: raw, FinishRaw: finishRaw, PrivateKey: privateKey}, nil
}

// BuildServerInit validates a received ClientInit and produces the ServerInit.
// Validation failures are returned as *AlertError so the caller can report
// them to the peer.
func BuildServerInit(clientInitRaw []byte) (*ServerInit, error) {
	data, err := unwrapUkey2(clientInitRaw, securegcm.Ukey2Message_CLIENT_INIT)
	if err != nil {
		return nil, err
	}

	var clientInit securegcm.Ukey2ClientInit
	if err := proto.Unmarshal(data, &clientInit); err != nil {
		return nil, newAlert(securegcm.Ukey2Alert_BAD_MESSAGE_DATA, "client init: %v", err)
	}
	if clientInit.Version != ukey2Version {
		return nil, newAlert(securegcm.Ukey2Alert_BAD_VERSION, "client init version %d", clientInit.Version)
	}
	if len(clientInit.Random) != ukey2RandomSize {
		return nil, newAlert(securegcm.Ukey2Alert_BAD_RANDOM, "client random is %d bytes", len(clientInit.Random))
	}
	if clientInit.NextProtocol != NextProtocol {
		return nil, newAlert(securegcm.Ukey2Alert_BAD_NEXT_PROTOCOL, "next protocol %q", clientInit.NextProtocol)
	}

	var commitment []byte
	for _, c := range clientInit.CipherCommitments {
		if c.HandshakeCipher == securegcm.Ukey2HandshakeCipher_P256_SHA512 {
			commitment = c.Commitment
			break
		}
	}
	if commitment == nil {
		return nil, newAlert(securegcm.Ukey2Alert_BAD_HANDSHAKE_CIPHER, "no P256_SHA512 commitment")
	}

	privateKey, err := GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	publicKey, err := EncodePublicKey(privateKey.PublicKey())
	if err != nil {
		return nil, err
	}

	random := make([]byte, ukey2RandomSize)
	if _, err := rand.Read(random); err != nil {
		return nil, fmt.Errorf("generate server random: %w", err)
	}

	message := &securegcm.Ukey2ServerInit{
		Version:         ukey2Version,
		Random:          random,
		HandshakeCipher: securegcm.Ukey2HandshakeCipher_P256_SHA512,
		PublicKey:       publicKey,
	}
	raw, err := wrapUkey2(securegcm.Ukey2Message_SERVER_INIT, message)
	if err != nil {
		return nil, err
	}

	return &ServerInit{
		Message:       message,
		Raw:           raw,
		ClientInitRaw: append([]byte{}, clientInitRaw...),
		PrivateKey:    privateKey,
		commitment:    commitment,
	}, nil
}

// KeyExchange computes the shared secret between local and peer and derives
// the auth string and next-protocol secret bound to both init messages. The
// HKDF salt is clientInitRaw XOR serverInitRaw, zero-padded to the longer one.
func KeyExchange(peer *ecdh.PublicKey, local *ecdh.PrivateKey, clientInitRaw, serverInitRaw []byte) (authString, nextSecret []byte, err error) {
	shared, err := local.ECDH(peer)
	if err != nil {
		return nil, nil, fmt.Errorf("compute shared secret: %w", err)
	}
	salt := xorPadded(clientInitRaw, serverInitRaw)

	if authString, err = deriveKey(shared, salt, authInfo); err != nil {
		return nil, nil, err
	}
	if nextSecret, err = deriveKey(shared, salt, nextInfo); err != nil {
		return nil, nil, err
	}
	return authString, nextSecret, nil
}

func xorPadded(a, b []byte) []byte {
	if len(a) < len(b) {
		a, b = b, a
	}
	out := append([]byte(nil), a...)
	for i, v := range b {
		out[i] ^= v
	}
	return out
}

// ClientHandshake holds initiator state between ClientInit and ClientFinish.
// It can complete exactly once.
type ClientHandshake struct {
	state *ClientInit
}

// NewClientHandshake starts an initiator handshake.
func NewClientHandshake() (*ClientHandshake, error) {
	state, err := BuildClientInit()
	if err != nil {
		return nil, err
	}
	return &ClientHandshake{state: state}, nil
}

// ClientInit returns the serialized ClientInit to send.
func (h *ClientHandshake) ClientInit() []byte {
	if h.state == nil {
		return nil
	}
	return h.state.Raw
}

// HandleServerInit validates the ServerInit and returns the ClientFinish to
// send along with the derived session material.
func (h *ClientHandshake) HandleServerInit(serverInitRaw []byte) ([]byte, *Result, error) {
	if h.state == nil {
		return nil, nil, ErrHandshakeConsumed
	}

	data, err := unwrapUkey2(serverInitRaw, securegcm.Ukey2Message_SERVER_INIT)
	if err != nil {
		return nil, nil, err
	}
	var serverInit securegcm.Ukey2ServerInit
	if err := proto.Unmarshal(data, &serverInit); err != nil {
		return nil, nil, newAlert(securegcm.Ukey2Alert_BAD_MESSAGE_DATA, "server init: %v", err)
	}
	if serverInit.Version != ukey2Version {
		return nil, nil, newAlert(securegcm.Ukey2Alert_BAD_VERSION, "server init version %d", serverInit.Version)
	}
	if len(serverInit.Random) != ukey2RandomSize {
		return nil, nil, newAlert(securegcm.Ukey2Alert_BAD_RANDOM, "server random is %d bytes", len(serverInit.Random))
	}
	if serverInit.HandshakeCipher != securegcm.Ukey2HandshakeCipher_P256_SHA512 {
		return nil, nil, newAlert(securegcm.Ukey2Alert_BAD_HANDSHAKE_CIPHER, "handshake cipher %d", serverInit.HandshakeCipher)
	}
	peerKey, err := ParsePublicKey(serverInit.PublicKey)
	if err != nil {
		return nil, nil, newAlert(securegcm.Ukey2Alert_BAD_PUBLIC_KEY, "%v", err)
	}

	result, err := complete(peerKey, h.state.PrivateKey, h.state.Raw, serverInitRaw, true)
	if err != nil {
		return nil, nil, err
	}
	finish := h.state.FinishRaw
	h.state = nil
	return finish, result, nil
}

// ServerHandshake holds responder state between ServerInit and ClientFinish.
type ServerHandshake struct {
	state *ServerInit
}

// NewServerHandshake validates clientInitRaw and prepares the ServerInit.
func NewServerHandshake(clientInitRaw []byte) (*ServerHandshake, error) {
	state, err := BuildServerInit(clientInitRaw)
	if err != nil {
		return nil, err
	}
	return &ServerHandshake{state: state}, nil
}

// ServerInit returns the serialized ServerInit to send.
func (h *ServerHandshake) ServerInit() []byte {
	if h.state == nil {
		return nil
	}
	return h.state.Raw
}

// HandleClientFinish checks the ClientFinish against the commitment received
// in ClientInit and derives the session material.
func (h *ServerHandshake) HandleClientFinish(clientFinishRaw []byte) (*Result, error) {
	if h.state == nil {
		return nil, ErrHandshakeConsumed
	}

	data, err := unwrapUkey2(clientFinishRaw, securegcm.Ukey2Message_CLIENT_FINISH)
	if err != nil {
		return nil, err
	}
	digest := sha512.Sum512(clientFinishRaw)
	if subtle.ConstantTimeCompare(digest[:], h.state.commitment) != 1 {
		return nil, fmt.Errorf("%w: client finish does not match commitment", ErrInvalidMessage)
	}

	var finish securegcm.Ukey2ClientFinished
	if err := proto.Unmarshal(data, &finish); err != nil {
		return nil, newAlert(securegcm.Ukey2Alert_BAD_MESSAGE_DATA, "client finish: %v", err)
	}
	peerKey, err := ParsePublicKey(finish.PublicKey)
	if err != nil {
		return nil, newAlert(securegcm.Ukey2Alert_BAD_PUBLIC_KEY, "%v", err)
	}

	result, err := complete(peerKey, h.state.PrivateKey, h.state.ClientInitRaw, h.state.Raw, false)
	if err != nil {
		return nil, err
	}
	h.state = nil
	return result, nil
}

// AlertMessage serializes a Ukey2Alert wrapped in a Ukey2Message.
func AlertMessage(alertType securegcm.Ukey2Alert_AlertType, message string) ([]byte, error) {
	return wrapUkey2(securegcm.Ukey2Message_ALERT, &securegcm.Ukey2Alert{Type: alertType, ErrorMessage: message})
}

func complete(peer *ecdh.PublicKey, local *ecdh.PrivateKey, clientInitRaw, serverInitRaw []byte, initiator bool) (*Result, error) {
	authString, nextSecret, err := KeyExchange(peer, local, clientInitRaw, serverInitRaw)
	if err != nil {
		return nil, err
	}
	keys, err := DeriveSessionKeys(nextSecret, initiator)
	if err != nil {
		return nil, err
	}
	return &Result{AuthString: authString, NextSecret: nextSecret, Keys: keys}, nil
}

func wrapUkey2(messageType securegcm.Ukey2Message_Type, message proto.Message) ([]byte, error) {
	data, err := proto.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", messageType, err)
	}
	raw, err := proto.Marshal(&securegcm.Ukey2Message{MessageType: messageType, MessageData: data})
	if err != nil {
		return nil, fmt.Errorf("marshal ukey2 message: %w", err)
	}
	return raw, nil
}

func unwrapUkey2(raw []byte, want securegcm.Ukey2Message_Type) ([]byte, error) {
	var message securegcm.Ukey2Message
	if err := proto.Unmarshal(raw, &message); err != nil {
		return nil, newAlert(securegcm.Ukey2Alert_BAD_MESSAGE, "%v", err)
	}

	if message.MessageType == securegcm.Ukey2Message_ALERT {
		var alert securegcm.Ukey2Alert
		if err := proto.Unmarshal(message.MessageData, &alert); err != nil {
			return nil, newAlert(securegcm.Ukey2Alert_BAD_MESSAGE_DATA, "alert: %v", err)
		}
		return nil, &AlertError{Type: alert.Type, Message: alert.ErrorMessage, Remote: true}
	}
	if message.MessageType != want {
		return nil, newAlert(securegcm.Ukey2Alert_BAD_MESSAGE_TYPE, "got %s, want %s", message.MessageType, want)
	}
	return message.MessageData, nil
}
