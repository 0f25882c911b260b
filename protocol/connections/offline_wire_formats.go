// Package connections declares the connections-layer frames (package
// location.nearby.connections) exchanged on every Nearby socket.
package connections

import "github.com/golang/protobuf/proto"

type OfflineFrame_Version int32

const (
	OfflineFrame_UNKNOWN_VERSION OfflineFrame_Version = 0
	OfflineFrame_V1              OfflineFrame_Version = 1
)

type V1Frame_FrameType int32

const (
	V1Frame_UNKNOWN_FRAME_TYPE            V1Frame_FrameType = 0
	V1Frame_CONNECTION_REQUEST            V1Frame_FrameType = 1
	V1Frame_CONNECTION_RESPONSE           V1Frame_FrameType = 2
	V1Frame_PAYLOAD_TRANSFER              V1Frame_FrameType = 3
	V1Frame_BANDWIDTH_UPGRADE_NEGOTIATION V1Frame_FrameType = 4
	V1Frame_KEEP_ALIVE                    V1Frame_FrameType = 5
	V1Frame_DISCONNECTION                 V1Frame_FrameType = 6
	V1Frame_PAIRED_KEY_ENCRYPTION         V1Frame_FrameType = 7
)

var v1FrameTypeNames = map[V1Frame_FrameType]string{
	V1Frame_UNKNOWN_FRAME_TYPE:            "UNKNOWN_FRAME_TYPE",
	V1Frame_CONNECTION_REQUEST:            "CONNECTION_REQUEST",
	V1Frame_CONNECTION_RESPONSE:           "CONNECTION_RESPONSE",
	V1Frame_PAYLOAD_TRANSFER:              "PAYLOAD_TRANSFER",
	V1Frame_BANDWIDTH_UPGRADE_NEGOTIATION: "BANDWIDTH_UPGRADE_NEGOTIATION",
	V1Frame_KEEP_ALIVE:                    "KEEP_ALIVE",
	V1Frame_DISCONNECTION:                 "DISCONNECTION",
	V1Frame_PAIRED_KEY_ENCRYPTION:         "PAIRED_KEY_ENCRYPTION",
}

func (x V1Frame_FrameType) String() string {
	if name, ok := v1FrameTypeNames[x]; ok {
		return name
	}
	return "UNKNOWN_FRAME_TYPE"
}

type ConnectionRequestFrame_Medium int32

const (
	ConnectionRequestFrame_UNKNOWN_MEDIUM ConnectionRequestFrame_Medium = 0
	ConnectionRequestFrame_MDNS           ConnectionRequestFrame_Medium = 1
	ConnectionRequestFrame_BLUETOOTH      ConnectionRequestFrame_Medium = 2
	ConnectionRequestFrame_WIFI_HOTSPOT   ConnectionRequestFrame_Medium = 3
	ConnectionRequestFrame_BLE            ConnectionRequestFrame_Medium = 4
	ConnectionRequestFrame_WIFI_LAN       ConnectionRequestFrame_Medium = 5
	ConnectionRequestFrame_WIFI_AWARE     ConnectionRequestFrame_Medium = 6
	ConnectionRequestFrame_NFC            ConnectionRequestFrame_Medium = 7
	ConnectionRequestFrame_WIFI_DIRECT    ConnectionRequestFrame_Medium = 8
	ConnectionRequestFrame_WEB_RTC        ConnectionRequestFrame_Medium = 9
)

type ConnectionResponseFrame_ResponseStatus int32

const (
	ConnectionResponseFrame_UNKNOWN_RESPONSE_STATUS ConnectionResponseFrame_ResponseStatus = 0
	ConnectionResponseFrame_ACCEPT                  ConnectionResponseFrame_ResponseStatus = 1
	ConnectionResponseFrame_REJECT                  ConnectionResponseFrame_ResponseStatus = 2
)

type OsInfo_OsType int32

const (
	OsInfo_UNKNOWN_OS_TYPE OsInfo_OsType = 0
	OsInfo_ANDROID         OsInfo_OsType = 1
	OsInfo_CHROME_OS       OsInfo_OsType = 2
	OsInfo_WINDOWS         OsInfo_OsType = 3
	OsInfo_APPLE           OsInfo_OsType = 4
	OsInfo_LINUX           OsInfo_OsType = 100
)

type PayloadTransferFrame_PacketType int32

const (
	PayloadTransferFrame_UNKNOWN_PACKET_TYPE PayloadTransferFrame_PacketType = 0
	PayloadTransferFrame_DATA                PayloadTransferFrame_PacketType = 1
	PayloadTransferFrame_CONTROL             PayloadTransferFrame_PacketType = 2
)

type PayloadHeader_PayloadType int32

const (
	PayloadHeader_UNKNOWN_PAYLOAD_TYPE PayloadHeader_PayloadType = 0
	PayloadHeader_BYTES                PayloadHeader_PayloadType = 1
	PayloadHeader_FILE                 PayloadHeader_PayloadType = 2
	PayloadHeader_STREAM               PayloadHeader_PayloadType = 3
)

func (x PayloadHeader_PayloadType) String() string {
	switch x {
	case PayloadHeader_BYTES:
		return "BYTES"
	case PayloadHeader_FILE:
		return "FILE"
	case PayloadHeader_STREAM:
		return "STREAM"
	default:
		return "UNKNOWN_PAYLOAD_TYPE"
	}
}

// PayloadChunk_LAST_CHUNK is the flag bit marking the terminal chunk.
const PayloadChunk_LAST_CHUNK int32 = 0x1

type ControlMessage_EventType int32

const (
	ControlMessage_UNKNOWN_EVENT_TYPE   ControlMessage_EventType = 0
	ControlMessage_PAYLOAD_ERROR        ControlMessage_EventType = 1
	ControlMessage_PAYLOAD_CANCELED     ControlMessage_EventType = 2
	ControlMessage_PAYLOAD_RECEIVED_ACK ControlMessage_EventType = 3
)

type OfflineFrame struct {
	Version OfflineFrame_Version `protobuf:"varint,1,opt,name=version,proto3,enum=location.nearby.connections.OfflineFrame_Version" json:"version,omitempty"`
	V1      *V1Frame             `protobuf:"bytes,2,opt,name=v1,proto3" json:"v1,omitempty"`
}

func (m *OfflineFrame) Reset()         { *m = OfflineFrame{} }
func (m *OfflineFrame) String() string { return proto.CompactTextString(m) }
func (*OfflineFrame) ProtoMessage()    {}

func (m *OfflineFrame) GetV1() *V1Frame {
	if m != nil {
		return m.V1
	}
	return nil
}

type V1Frame struct {
	Type                        V1Frame_FrameType                 `protobuf:"varint,1,opt,name=type,proto3,enum=location.nearby.connections.V1Frame_FrameType" json:"type,omitempty"`
	ConnectionRequest           *ConnectionRequestFrame           `protobuf:"bytes,2,opt,name=connection_request,json=connectionRequest,proto3" json:"connection_request,omitempty"`
	ConnectionResponse          *ConnectionResponseFrame          `protobuf:"bytes,3,opt,name=connection_response,json=connectionResponse,proto3" json:"connection_response,omitempty"`
	PayloadTransfer             *PayloadTransferFrame             `protobuf:"bytes,4,opt,name=payload_transfer,json=payloadTransfer,proto3" json:"payload_transfer,omitempty"`
	BandwidthUpgradeNegotiation *BandwidthUpgradeNegotiationFrame `protobuf:"bytes,5,opt,name=bandwidth_upgrade_negotiation,json=bandwidthUpgradeNegotiation,proto3" json:"bandwidth_upgrade_negotiation,omitempty"`
	KeepAlive                   *KeepAliveFrame                   `protobuf:"bytes,6,opt,name=keep_alive,json=keepAlive,proto3" json:"keep_alive,omitempty"`
	Disconnection               *DisconnectionFrame               `protobuf:"bytes,7,opt,name=disconnection,proto3" json:"disconnection,omitempty"`
}

func (m *V1Frame) Reset()         { *m = V1Frame{} }
func (m *V1Frame) String() string { return proto.CompactTextString(m) }
func (*V1Frame) ProtoMessage()    {}

func (m *V1Frame) GetType() V1Frame_FrameType {
	if m != nil {
		return m.Type
	}
	return V1Frame_UNKNOWN_FRAME_TYPE
}

func (m *V1Frame) GetConnectionRequest() *ConnectionRequestFrame {
	if m != nil {
		return m.ConnectionRequest
	}
	return nil
}

func (m *V1Frame) GetConnectionResponse() *ConnectionResponseFrame {
	if m != nil {
		return m.ConnectionResponse
	}
	return nil
}

func (m *V1Frame) GetPayloadTransfer() *PayloadTransferFrame {
	if m != nil {
		return m.PayloadTransfer
	}
	return nil
}

type ConnectionRequestFrame struct {
	EndpointId              string                          `protobuf:"bytes,1,opt,name=endpoint_id,json=endpointId,proto3" json:"endpoint_id,omitempty"`
	EndpointName            string                          `protobuf:"bytes,2,opt,name=endpoint_name,json=endpointName,proto3" json:"endpoint_name,omitempty"`
	HandshakeData           []byte                          `protobuf:"bytes,3,opt,name=handshake_data,json=handshakeData,proto3" json:"handshake_data,omitempty"`
	Nonce                   int32                           `protobuf:"varint,4,opt,name=nonce,proto3" json:"nonce,omitempty"`
	Mediums                 []ConnectionRequestFrame_Medium `protobuf:"varint,5,rep,name=mediums,proto3,enum=location.nearby.connections.ConnectionRequestFrame_Medium" json:"mediums,omitempty"`
	EndpointInfo            []byte                          `protobuf:"bytes,6,opt,name=endpoint_info,json=endpointInfo,proto3" json:"endpoint_info,omitempty"`
	KeepAliveIntervalMillis int32                           `protobuf:"varint,8,opt,name=keep_alive_interval_millis,json=keepAliveIntervalMillis,proto3" json:"keep_alive_interval_millis,omitempty"`
	KeepAliveTimeoutMillis  int32                           `protobuf:"varint,9,opt,name=keep_alive_timeout_millis,json=keepAliveTimeoutMillis,proto3" json:"keep_alive_timeout_millis,omitempty"`
}

func (m *ConnectionRequestFrame) Reset()         { *m = ConnectionRequestFrame{} }
func (m *ConnectionRequestFrame) String() string { return proto.CompactTextString(m) }
func (*ConnectionRequestFrame) ProtoMessage()    {}

type ConnectionResponseFrame struct {
	Status        int32                                  `protobuf:"varint,1,opt,name=status,proto3" json:"status,omitempty"`
	HandshakeData []byte                                 `protobuf:"bytes,2,opt,name=handshake_data,json=handshakeData,proto3" json:"handshake_data,omitempty"`
	Response      ConnectionResponseFrame_ResponseStatus `protobuf:"varint,3,opt,name=response,proto3,enum=location.nearby.connections.ConnectionResponseFrame_ResponseStatus" json:"response,omitempty"`
	OsInfo        *OsInfo                                `protobuf:"bytes,4,opt,name=os_info,json=osInfo,proto3" json:"os_info,omitempty"`
}

func (m *ConnectionResponseFrame) Reset()         { *m = ConnectionResponseFrame{} }
func (m *ConnectionResponseFrame) String() string { return proto.CompactTextString(m) }
func (*ConnectionResponseFrame) ProtoMessage()    {}

type OsInfo struct {
	Type OsInfo_OsType `protobuf:"varint,1,opt,name=type,proto3,enum=location.nearby.connections.OsInfo_OsType" json:"type,omitempty"`
}

func (m *OsInfo) Reset()         { *m = OsInfo{} }
func (m *OsInfo) String() string { return proto.CompactTextString(m) }
func (*OsInfo) ProtoMessage()    {}

type PayloadTransferFrame struct {
	PacketType     PayloadTransferFrame_PacketType `protobuf:"varint,1,opt,name=packet_type,json=packetType,proto3,enum=location.nearby.connections.PayloadTransferFrame_PacketType" json:"packet_type,omitempty"`
	PayloadHeader  *PayloadHeader                  `protobuf:"bytes,2,opt,name=payload_header,json=payloadHeader,proto3" json:"payload_header,omitempty"`
	PayloadChunk   *PayloadChunk                   `protobuf:"bytes,3,opt,name=payload_chunk,json=payloadChunk,proto3" json:"payload_chunk,omitempty"`
	ControlMessage *ControlMessage                 `protobuf:"bytes,4,opt,name=control_message,json=controlMessage,proto3" json:"control_message,omitempty"`
}

func (m *PayloadTransferFrame) Reset()         { *m = PayloadTransferFrame{} }
func (m *PayloadTransferFrame) String() string { return proto.CompactTextString(m) }
func (*PayloadTransferFrame) ProtoMessage()    {}

type PayloadHeader struct {
	Id           int64                     `protobuf:"varint,1,opt,name=id,proto3" json:"id,omitempty"`
	Type         PayloadHeader_PayloadType `protobuf:"varint,2,opt,name=type,proto3,enum=location.nearby.connections.PayloadHeader_PayloadType" json:"type,omitempty"`
	TotalSize    int64                     `protobuf:"varint,3,opt,name=total_size,json=totalSize,proto3" json:"total_size,omitempty"`
	IsSensitive  bool                      `protobuf:"varint,4,opt,name=is_sensitive,json=isSensitive,proto3" json:"is_sensitive,omitempty"`
	FileName     string                    `protobuf:"bytes,5,opt,name=file_name,json=fileName,proto3" json:"file_name,omitempty"`
	ParentFolder string                    `protobuf:"bytes,6,opt,name=parent_folder,json=parentFolder,proto3" json:"parent_folder,omitempty"`
}

func (m *PayloadHeader) Reset()         { *m = PayloadHeader{} }
func (m *PayloadHeader) String() string { return proto.CompactTextString(m) }
func (*PayloadHeader) ProtoMessage()    {}

type PayloadChunk struct {
	Flags  int32  `protobuf:"varint,1,opt,name=flags,proto3" json:"flags,omitempty"`
	Offset int64  `protobuf:"varint,2,opt,name=offset,proto3" json:"offset,omitempty"`
	Body   []byte `protobuf:"bytes,3,opt,name=body,proto3" json:"body,omitempty"`
}

func (m *PayloadChunk) Reset()         { *m = PayloadChunk{} }
func (m *PayloadChunk) String() string { return proto.CompactTextString(m) }
func (*PayloadChunk) ProtoMessage()    {}

// IsLast reports whether the LAST_CHUNK flag is set.
func (m *PayloadChunk) IsLast() bool {
	return m != nil && m.Flags&PayloadChunk_LAST_CHUNK != 0
}

type ControlMessage struct {
	Event  ControlMessage_EventType `protobuf:"varint,1,opt,name=event,proto3,enum=location.nearby.connections.ControlMessage_EventType" json:"event,omitempty"`
	Offset int64                    `protobuf:"varint,2,opt,name=offset,proto3" json:"offset,omitempty"`
}

func (m *ControlMessage) Reset()         { *m = ControlMessage{} }
func (m *ControlMessage) String() string { return proto.CompactTextString(m) }
func (*ControlMessage) ProtoMessage()    {}

// BandwidthUpgradeNegotiationFrame is carried opaquely; medium upgrades are not negotiated.
type BandwidthUpgradeNegotiationFrame struct {
	EventType int32 `protobuf:"varint,1,opt,name=event_type,json=eventType,proto3" json:"event_type,omitempty"`
}

func (m *BandwidthUpgradeNegotiationFrame) Reset()         { *m = BandwidthUpgradeNegotiationFrame{} }
func (m *BandwidthUpgradeNegotiationFrame) String() string { return proto.CompactTextString(m) }
func (*BandwidthUpgradeNegotiationFrame) ProtoMessage()    {}

type KeepAliveFrame struct {
	Ack bool `protobuf:"varint,1,opt,name=ack,proto3" json:"ack,omitempty"`
}

func (m *KeepAliveFrame) Reset()         { *m = KeepAliveFrame{} }
func (m *KeepAliveFrame) String() string { return proto.CompactTextString(m) }
func (*KeepAliveFrame) ProtoMessage()    {}

type DisconnectionFrame struct {
	RequestSafeToDisconnect bool `protobuf:"varint,1,opt,name=request_safe_to_disconnect,json=requestSafeToDisconnect,proto3" json:"request_safe_to_disconnect,omitempty"`
	AckSafeToDisconnect     bool `protobuf:"varint,2,opt,name=ack_safe_to_disconnect,json=ackSafeToDisconnect,proto3" json:"ack_safe_to_disconnect,omitempty"`
}

func (m *DisconnectionFrame) Reset()         { *m = DisconnectionFrame{} }
func (m *DisconnectionFrame) String() string { return proto.CompactTextString(m) }
func (*DisconnectionFrame) ProtoMessage()    {}
