package securegcm

import "github.com/golang/protobuf/proto"

// GcmMetadata is serialized into Header.public_metadata of every secure message.
type GcmMetadata struct {
	Type    Type  `protobuf:"varint,1,opt,name=type,proto3,enum=securegcm.Type" json:"type,omitempty"`
	Version int32 `protobuf:"varint,2,opt,name=version,proto3" json:"version,omitempty"`
}

func (m *GcmMetadata) Reset()         { *m = GcmMetadata{} }
func (m *GcmMetadata) String() string { return proto.CompactTextString(m) }
func (*GcmMetadata) ProtoMessage()    {}

type DeviceToDeviceMessage struct {
	Message        []byte `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
	SequenceNumber int32  `protobuf:"varint,2,opt,name=sequence_number,json=sequenceNumber,proto3" json:"sequence_number,omitempty"`
}

func (m *DeviceToDeviceMessage) Reset()         { *m = DeviceToDeviceMessage{} }
func (m *DeviceToDeviceMessage) String() string { return proto.CompactTextString(m) }
func (*DeviceToDeviceMessage) ProtoMessage()    {}
