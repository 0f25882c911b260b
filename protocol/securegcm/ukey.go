// Package securegcm declares the UKEY2 handshake messages and the
// device-to-device envelope carried inside secure messages.
package securegcm

import "github.com/golang/protobuf/proto"

type Ukey2Message_Type int32

const (
	Ukey2Message_UNKNOWN_DO_NOT_USE Ukey2Message_Type = 0
	Ukey2Message_ALERT              Ukey2Message_Type = 1
	Ukey2Message_CLIENT_INIT        Ukey2Message_Type = 2
	Ukey2Message_SERVER_INIT        Ukey2Message_Type = 3
	Ukey2Message_CLIENT_FINISH      Ukey2Message_Type = 4
)

func (x Ukey2Message_Type) String() string {
	switch x {
	case Ukey2Message_ALERT:
		return "ALERT"
	case Ukey2Message_CLIENT_INIT:
		return "CLIENT_INIT"
	case Ukey2Message_SERVER_INIT:
		return "SERVER_INIT"
	case Ukey2Message_CLIENT_FINISH:
		return "CLIENT_FINISH"
	default:
		return "UNKNOWN_DO_NOT_USE"
	}
}

type Ukey2Alert_AlertType int32

const (
	Ukey2Alert_BAD_MESSAGE          Ukey2Alert_AlertType = 1
	Ukey2Alert_BAD_MESSAGE_TYPE     Ukey2Alert_AlertType = 2
	Ukey2Alert_INCORRECT_MESSAGE    Ukey2Alert_AlertType = 3
	Ukey2Alert_BAD_MESSAGE_DATA     Ukey2Alert_AlertType = 4
	Ukey2Alert_BAD_VERSION          Ukey2Alert_AlertType = 100
	Ukey2Alert_BAD_RANDOM           Ukey2Alert_AlertType = 101
	Ukey2Alert_BAD_HANDSHAKE_CIPHER Ukey2Alert_AlertType = 102
	Ukey2Alert_BAD_NEXT_PROTOCOL    Ukey2Alert_AlertType = 103
	Ukey2Alert_BAD_PUBLIC_KEY       Ukey2Alert_AlertType = 104
	Ukey2Alert_INTERNAL_ERROR       Ukey2Alert_AlertType = 200
)

var alertTypeNames = map[Ukey2Alert_AlertType]string{
	Ukey2Alert_BAD_MESSAGE:          "BAD_MESSAGE",
	Ukey2Alert_BAD_MESSAGE_TYPE:     "BAD_MESSAGE_TYPE",
	Ukey2Alert_INCORRECT_MESSAGE:    "INCORRECT_MESSAGE",
	Ukey2Alert_BAD_MESSAGE_DATA:     "BAD_MESSAGE_DATA",
	Ukey2Alert_BAD_VERSION:          "BAD_VERSION",
	Ukey2Alert_BAD_RANDOM:           "BAD_RANDOM",
	Ukey2Alert_BAD_HANDSHAKE_CIPHER: "BAD_HANDSHAKE_CIPHER",
	Ukey2Alert_BAD_NEXT_PROTOCOL:    "BAD_NEXT_PROTOCOL",
	Ukey2Alert_BAD_PUBLIC_KEY:       "BAD_PUBLIC_KEY",
	Ukey2Alert_INTERNAL_ERROR:       "INTERNAL_ERROR",
}

func (x Ukey2Alert_AlertType) String() string {
	if name, ok := alertTypeNames[x]; ok {
		return name
	}
	return "UNKNOWN_ALERT"
}

type Ukey2HandshakeCipher int32

const (
	Ukey2HandshakeCipher_RESERVED          Ukey2HandshakeCipher = 0
	Ukey2HandshakeCipher_P256_SHA512       Ukey2HandshakeCipher = 100
	Ukey2HandshakeCipher_CURVE25519_SHA512 Ukey2HandshakeCipher = 200
)

type Type int32

const (
	Type_DEVICE_TO_DEVICE_MESSAGE Type = 13
)

type Ukey2Message struct {
	MessageType Ukey2Message_Type `protobuf:"varint,1,opt,name=message_type,json=messageType,proto3,enum=securegcm.Ukey2Message_Type" json:"message_type,omitempty"`
	MessageData []byte            `protobuf:"bytes,2,opt,name=message_data,json=messageData,proto3" json:"message_data,omitempty"`
}

func (m *Ukey2Message) Reset()         { *m = Ukey2Message{} }
func (m *Ukey2Message) String() string { return proto.CompactTextString(m) }
func (*Ukey2Message) ProtoMessage()    {}

type Ukey2Alert struct {
	Type         Ukey2Alert_AlertType `protobuf:"varint,1,opt,name=type,proto3,enum=securegcm.Ukey2Alert_AlertType" json:"type,omitempty"`
	ErrorMessage string               `protobuf:"bytes,2,opt,name=error_message,json=errorMessage,proto3" json:"error_message,omitempty"`
}

func (m *Ukey2Alert) Reset()         { *m = Ukey2Alert{} }
func (m *Ukey2Alert) String() string { return proto.CompactTextString(m) }
func (*Ukey2Alert) ProtoMessage()    {}

type Ukey2ClientInit struct {
	Version           int32                               `protobuf:"varint,1,opt,name=version,proto3" json:"version,omitempty"`
	Random            []byte                              `protobuf:"bytes,2,opt,name=random,proto3" json:"random,omitempty"`
	CipherCommitments []*Ukey2ClientInit_CipherCommitment `protobuf:"bytes,3,rep,name=cipher_commitments,json=cipherCommitments,proto3" json:"cipher_commitments,omitempty"`
	NextProtocol      string                              `protobuf:"bytes,4,opt,name=next_protocol,json=nextProtocol,proto3" json:"next_protocol,omitempty"`
}

func (m *Ukey2ClientInit) Reset()         { *m = Ukey2ClientInit{} }
func (m *Ukey2ClientInit) String() string { return proto.CompactTextString(m) }
func (*Ukey2ClientInit) ProtoMessage()    {}

type Ukey2ClientInit_CipherCommitment struct {
	HandshakeCipher Ukey2HandshakeCipher `protobuf:"varint,1,opt,name=handshake_cipher,json=handshakeCipher,proto3,enum=securegcm.Ukey2HandshakeCipher" json:"handshake_cipher,omitempty"`
	Commitment      []byte               `protobuf:"bytes,2,opt,name=commitment,proto3" json:"commitment,omitempty"`
}

func (m *Ukey2ClientInit_CipherCommitment) Reset()         { *m = Ukey2ClientInit_CipherCommitment{} }
func (m *Ukey2ClientInit_CipherCommitment) String() string { return proto.CompactTextString(m) }
func (*Ukey2ClientInit_CipherCommitment) ProtoMessage()    {}

type Ukey2ServerInit struct {
	Version         int32                `protobuf:"varint,1,opt,name=version,proto3" json:"version,omitempty"`
	Random          []byte               `protobuf:"bytes,2,opt,name=random,proto3" json:"random,omitempty"`
	HandshakeCipher Ukey2HandshakeCipher `protobuf:"varint,3,opt,name=handshake_cipher,json=handshakeCipher,proto3,enum=securegcm.Ukey2HandshakeCipher" json:"handshake_cipher,omitempty"`
	PublicKey       []byte               `protobuf:"bytes,4,opt,name=public_key,json=publicKey,proto3" json:"public_key,omitempty"`
}

func (m *Ukey2ServerInit) Reset()         { *m = Ukey2ServerInit{} }
func (m *Ukey2ServerInit) String() string { return proto.CompactTextString(m) }
func (*Ukey2ServerInit) ProtoMessage()    {}

type Ukey2ClientFinished struct {
	PublicKey []byte `protobuf:"bytes,1,opt,name=public_key,json=publicKey,proto3" json:"public_key,omitempty"`
}

func (m *Ukey2ClientFinished) Reset()         { *m = Ukey2ClientFinished{} }
func (m *Ukey2ClientFinished) String() string { return proto.CompactTextString(m) }
func (*Ukey2ClientFinished) ProtoMessage()    {}
