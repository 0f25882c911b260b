package crypto

import (
	"crypto/aes"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/golang/protobuf/proto"

	"nearshare/protocol/securegcm"
	"nearshare/protocol/securemessage"
)

const gcmMetadataVersion = 1

// SecureSession encrypts and authenticates messages on an established
// connection. Outbound sequence numbers start at 1 and increase by one per
// message. Inbound sequence numbers are recorded but not enforced.
type SecureSession struct {
	keys SessionKeys

	mu           sync.Mutex
	sendSequence int32
	lastReceived int32
}

// NewSecureSession builds a session from derived keys.
func NewSecureSession(keys SessionKeys) *SecureSession {
	return &SecureSession{keys: keys}
}

// Encrypt wraps message in a DeviceToDeviceMessage with the next sequence
// number and returns the serialized SecureMessage.
func (s *SecureSession) Encrypt(message []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sequence := s.sendSequence + 1
	d2d, err := proto.Marshal(&securegcm.DeviceToDeviceMessage{Message: message, SequenceNumber: sequence})
	if err != nil {
		return nil, fmt.Errorf("marshal device to device message: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}
	ciphertext, err := Encrypt(s.keys.EncryptKey, iv, d2d)
	if err != nil {
		return nil, err
	}

	metadata, err := proto.Marshal(&securegcm.GcmMetadata{
		Type:    securegcm.Type_DEVICE_TO_DEVICE_MESSAGE,
		Version: gcmMetadataVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal gcm metadata: %w", err)
	}
	headerAndBody, err := proto.Marshal(&securemessage.HeaderAndBody{
		Header: &securemessage.Header{
			SignatureScheme:  securemessage.SigScheme_HMAC_SHA256,
			EncryptionScheme: securemessage.EncScheme_AES_256_CBC,
			Iv:               iv,
			PublicMetadata:   metadata,
		},
		Body: ciphertext,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal header and body: %w", err)
	}

	raw, err := proto.Marshal(&securemessage.SecureMessage{
		HeaderAndBody: headerAndBody,
		Signature:     Sign(s.keys.SendHMACKey, headerAndBody),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal secure message: %w", err)
	}

	s.sendSequence = sequence
	return raw, nil
}

// Decrypt verifies and decrypts a serialized SecureMessage and returns the
// inner message bytes.
func (s *SecureSession) Decrypt(raw []byte) ([]byte, error) {
	d2d, err := s.Open(raw)
	if err != nil {
		return nil, err
	}
	return d2d.Message, nil
}

// Open is Decrypt but returns the whole DeviceToDeviceMessage.
func (s *SecureSession) Open(raw []byte) (*securegcm.DeviceToDeviceMessage, error) {
	var secure securemessage.SecureMessage
	if err := proto.Unmarshal(raw, &secure); err != nil {
		return nil, fmt.Errorf("%w: secure message: %v", ErrInvalidMessage, err)
	}
	if !Verify(s.keys.ReceiveHMACKey, secure.HeaderAndBody, secure.Signature) {
		return nil, ErrAuthentication
	}

	var headerAndBody securemessage.HeaderAndBody
	if err := proto.Unmarshal(secure.HeaderAndBody, &headerAndBody); err != nil {
		return nil, fmt.Errorf("%w: header and body: %v", ErrInvalidMessage, err)
	}
	if headerAndBody.Header == nil {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidMessage)
	}

	plaintext, err := Decrypt(s.keys.DecryptKey, headerAndBody.Header.Iv, headerAndBody.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
	}

	var d2d securegcm.DeviceToDeviceMessage
	if err := proto.Unmarshal(plaintext, &d2d); err != nil {
		return nil, fmt.Errorf("%w: device to device message: %v", ErrInvalidMessage, err)
	}

	s.mu.Lock()
	s.lastReceived = d2d.SequenceNumber
	s.mu.Unlock()
	return &d2d, nil
}

// SendSequence returns the sequence number of the last encrypted message.
func (s *SecureSession) SendSequence() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendSequence
}

// LastReceivedSequence returns the sequence number of the last decrypted message.
func (s *SecureSession) LastReceivedSequence() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReceived
}
