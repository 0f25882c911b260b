// Package securemessage declares the signed/encrypted envelope and the
// generic public key encoding used by UKEY2.
package securemessage

import "github.com/golang/protobuf/proto"

type SigScheme int32

const (
	SigScheme_HMAC_SHA256       SigScheme = 1
	SigScheme_ECDSA_P256_SHA256 SigScheme = 2
	SigScheme_RSA2048_SHA256    SigScheme = 3
)

type EncScheme int32

const (
	EncScheme_NONE        EncScheme = 1
	EncScheme_AES_256_CBC EncScheme = 2
)

type PublicKeyType int32

const (
	PublicKeyType_EC_P256     PublicKeyType = 1
	PublicKeyType_RSA2048     PublicKeyType = 2
	PublicKeyType_DH2048_MODP PublicKeyType = 3
)

type SecureMessage struct {
	HeaderAndBody []byte `protobuf:"bytes,1,opt,name=header_and_body,json=headerAndBody,proto3" json:"header_and_body,omitempty"`
	Signature     []byte `protobuf:"bytes,2,opt,name=signature,proto3" json:"signature,omitempty"`
}

func (m *SecureMessage) Reset()         { *m = SecureMessage{} }
func (m *SecureMessage) String() string { return proto.CompactTextString(m) }
func (*SecureMessage) ProtoMessage()    {}

type Header struct {
	SignatureScheme      SigScheme `protobuf:"varint,1,opt,name=signature_scheme,json=signatureScheme,proto3,enum=securemessage.SigScheme" json:"signature_scheme,omitempty"`
	EncryptionScheme     EncScheme `protobuf:"varint,2,opt,name=encryption_scheme,json=encryptionScheme,proto3,enum=securemessage.EncScheme" json:"encryption_scheme,omitempty"`
	VerificationKeyId    []byte    `protobuf:"bytes,3,opt,name=verification_key_id,json=verificationKeyId,proto3" json:"verification_key_id,omitempty"`
	DecryptionKeyId      []byte    `protobuf:"bytes,4,opt,name=decryption_key_id,json=decryptionKeyId,proto3" json:"decryption_key_id,omitempty"`
	Iv                   []byte    `protobuf:"bytes,5,opt,name=iv,proto3" json:"iv,omitempty"`
	PublicMetadata       []byte    `protobuf:"bytes,6,opt,name=public_metadata,json=publicMetadata,proto3" json:"public_metadata,omitempty"`
	AssociatedDataLength uint32    `protobuf:"varint,7,opt,name=associated_data_length,json=associatedDataLength,proto3" json:"associated_data_length,omitempty"`
}

func (m *Header) Reset()         { *m = Header{} }
func (m *Header) String() string { return proto.CompactTextString(m) }
func (*Header) ProtoMessage()    {}

type HeaderAndBody struct {
	Header *Header `protobuf:"bytes,1,opt,name=header,proto3" json:"header,omitempty"`
	Body   []byte  `protobuf:"bytes,2,opt,name=body,proto3" json:"body,omitempty"`
}

func (m *HeaderAndBody) Reset()         { *m = HeaderAndBody{} }
func (m *HeaderAndBody) String() string { return proto.CompactTextString(m) }
func (*HeaderAndBody) ProtoMessage()    {}

type GenericPublicKey struct {
	Type            PublicKeyType    `protobuf:"varint,1,opt,name=type,proto3,enum=securemessage.PublicKeyType" json:"type,omitempty"`
	EcP256PublicKey *EcP256PublicKey `protobuf:"bytes,2,opt,name=ec_p256_public_key,json=ecP256PublicKey,proto3" json:"ec_p256_public_key,omitempty"`
}

func (m *GenericPublicKey) Reset()         { *m = GenericPublicKey{} }
func (m *GenericPublicKey) String() string { return proto.CompactTextString(m) }
func (*GenericPublicKey) ProtoMessage()    {}

// EcP256PublicKey holds big-endian two's-complement coordinates; a leading
// zero byte is present when the high bit of a coordinate is set.
type EcP256PublicKey struct {
	X []byte `protobuf:"bytes,1,opt,name=x,proto3" json:"x,omitempty"`
	Y []byte `protobuf:"bytes,2,opt,name=y,proto3" json:"y,omitempty"`
}

func (m *EcP256PublicKey) Reset()         { *m = EcP256PublicKey{} }
func (m *EcP256PublicKey) String() string { return proto.CompactTextString(m) }
func (*EcP256PublicKey) ProtoMessage()    {}
