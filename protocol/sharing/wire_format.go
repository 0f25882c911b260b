// Package sharing declares the sharing-layer frames (package sharing.nearby)
// that travel as BYTES payloads over an established connection.
package sharing

import "github.com/golang/protobuf/proto"

type Frame_Version int32

const (
	Frame_UNKNOWN_VERSION Frame_Version = 0
	Frame_V1              Frame_Version = 1
)

type V1Frame_FrameType int32

const (
	V1Frame_UNKNOWN_FRAME_TYPE    V1Frame_FrameType = 0
	V1Frame_INTRODUCTION          V1Frame_FrameType = 1
	V1Frame_RESPONSE              V1Frame_FrameType = 2
	V1Frame_PAIRED_KEY_ENCRYPTION V1Frame_FrameType = 3
	V1Frame_PAIRED_KEY_RESULT     V1Frame_FrameType = 4
	V1Frame_CERTIFICATE_INFO      V1Frame_FrameType = 5
	V1Frame_CANCEL                V1Frame_FrameType = 6
)

func (x V1Frame_FrameType) String() string {
	switch x {
	case V1Frame_INTRODUCTION:
		return "INTRODUCTION"
	case V1Frame_RESPONSE:
		return "RESPONSE"
	case V1Frame_PAIRED_KEY_ENCRYPTION:
		return "PAIRED_KEY_ENCRYPTION"
	case V1Frame_PAIRED_KEY_RESULT:
		return "PAIRED_KEY_RESULT"
	case V1Frame_CERTIFICATE_INFO:
		return "CERTIFICATE_INFO"
	case V1Frame_CANCEL:
		return "CANCEL"
	default:
		return "UNKNOWN_FRAME_TYPE"
	}
}

type FileMetadata_Type int32

const (
	FileMetadata_UNKNOWN FileMetadata_Type = 0
	FileMetadata_IMAGE   FileMetadata_Type = 1
	FileMetadata_VIDEO   FileMetadata_Type = 2
	FileMetadata_APP     FileMetadata_Type = 3
	FileMetadata_AUDIO   FileMetadata_Type = 4
)

type TextMetadata_Type int32

const (
	TextMetadata_UNKNOWN      TextMetadata_Type = 0
	TextMetadata_TEXT         TextMetadata_Type = 1
	TextMetadata_URL          TextMetadata_Type = 2
	TextMetadata_ADDRESS      TextMetadata_Type = 3
	TextMetadata_PHONE_NUMBER TextMetadata_Type = 4
)

func (x TextMetadata_Type) String() string {
	switch x {
	case TextMetadata_TEXT:
		return "TEXT"
	case TextMetadata_URL:
		return "URL"
	case TextMetadata_ADDRESS:
		return "ADDRESS"
	case TextMetadata_PHONE_NUMBER:
		return "PHONE_NUMBER"
	default:
		return "UNKNOWN"
	}
}

type WifiCredentialsMetadata_SecurityType int32

const (
	WifiCredentialsMetadata_UNKNOWN_SECURITY_TYPE WifiCredentialsMetadata_SecurityType = 0
	WifiCredentialsMetadata_OPEN                  WifiCredentialsMetadata_SecurityType = 1
	WifiCredentialsMetadata_WPA_PSK               WifiCredentialsMetadata_SecurityType = 2
	WifiCredentialsMetadata_WEP                   WifiCredentialsMetadata_SecurityType = 3
)

type ConnectionResponseFrame_Status int32

const (
	ConnectionResponseFrame_UNKNOWN                     ConnectionResponseFrame_Status = 0
	ConnectionResponseFrame_ACCEPT                      ConnectionResponseFrame_Status = 1
	ConnectionResponseFrame_REJECT                      ConnectionResponseFrame_Status = 2
	ConnectionResponseFrame_NOT_ENOUGH_SPACE            ConnectionResponseFrame_Status = 3
	ConnectionResponseFrame_UNSUPPORTED_ATTACHMENT_TYPE ConnectionResponseFrame_Status = 4
	ConnectionResponseFrame_TIMED_OUT                   ConnectionResponseFrame_Status = 5
)

func (x ConnectionResponseFrame_Status) String() string {
	switch x {
	case ConnectionResponseFrame_ACCEPT:
		return "ACCEPT"
	case ConnectionResponseFrame_REJECT:
		return "REJECT"
	case ConnectionResponseFrame_NOT_ENOUGH_SPACE:
		return "NOT_ENOUGH_SPACE"
	case ConnectionResponseFrame_UNSUPPORTED_ATTACHMENT_TYPE:
		return "UNSUPPORTED_ATTACHMENT_TYPE"
	case ConnectionResponseFrame_TIMED_OUT:
		return "TIMED_OUT"
	default:
		return "UNKNOWN"
	}
}

type PairedKeyResultFrame_Status int32

const (
	PairedKeyResultFrame_UNKNOWN PairedKeyResultFrame_Status = 0
	PairedKeyResultFrame_SUCCESS PairedKeyResultFrame_Status = 1
	PairedKeyResultFrame_FAIL    PairedKeyResultFrame_Status = 2
	PairedKeyResultFrame_UNABLE  PairedKeyResultFrame_Status = 3
)

type Frame struct {
	Version Frame_Version `protobuf:"varint,1,opt,name=version,proto3,enum=sharing.nearby.Frame_Version" json:"version,omitempty"`
	V1      *V1Frame      `protobuf:"bytes,2,opt,name=v1,proto3" json:"v1,omitempty"`
}

func (m *Frame) Reset()         { *m = Frame{} }
func (m *Frame) String() string { return proto.CompactTextString(m) }
func (*Frame) ProtoMessage()    {}

func (m *Frame) GetV1() *V1Frame {
	if m != nil {
		return m.V1
	}
	return nil
}

type V1Frame struct {
	Type                V1Frame_FrameType         `protobuf:"varint,1,opt,name=type,proto3,enum=sharing.nearby.V1Frame_FrameType" json:"type,omitempty"`
	Introduction        *IntroductionFrame        `protobuf:"bytes,2,opt,name=introduction,proto3" json:"introduction,omitempty"`
	ConnectionResponse  *ConnectionResponseFrame  `protobuf:"bytes,3,opt,name=connection_response,json=connectionResponse,proto3" json:"connection_response,omitempty"`
	PairedKeyEncryption *PairedKeyEncryptionFrame `protobuf:"bytes,4,opt,name=paired_key_encryption,json=pairedKeyEncryption,proto3" json:"paired_key_encryption,omitempty"`
	PairedKeyResult     *PairedKeyResultFrame     `protobuf:"bytes,5,opt,name=paired_key_result,json=pairedKeyResult,proto3" json:"paired_key_result,omitempty"`
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

func (m *V1Frame) GetIntroduction() *IntroductionFrame {
	if m != nil {
		return m.Introduction
	}
	return nil
}

func (m *V1Frame) GetConnectionResponse() *ConnectionResponseFrame {
	if m != nil {
		return m.ConnectionResponse
	}
	return nil
}

type IntroductionFrame struct {
	FileMetadata            []*FileMetadata            `protobuf:"bytes,1,rep,name=file_metadata,json=fileMetadata,proto3" json:"file_metadata,omitempty"`
	TextMetadata            []*TextMetadata            `protobuf:"bytes,2,rep,name=text_metadata,json=textMetadata,proto3" json:"text_metadata,omitempty"`
	RequiredPackage         string                     `protobuf:"bytes,3,opt,name=required_package,json=requiredPackage,proto3" json:"required_package,omitempty"`
	WifiCredentialsMetadata []*WifiCredentialsMetadata `protobuf:"bytes,4,rep,name=wifi_credentials_metadata,json=wifiCredentialsMetadata,proto3" json:"wifi_credentials_metadata,omitempty"`
	StartTransfer           bool                       `protobuf:"varint,6,opt,name=start_transfer,json=startTransfer,proto3" json:"start_transfer,omitempty"`
}

func (m *IntroductionFrame) Reset()         { *m = IntroductionFrame{} }
func (m *IntroductionFrame) String() string { return proto.CompactTextString(m) }
func (*IntroductionFrame) ProtoMessage()    {}

type FileMetadata struct {
	Name         string            `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Type         FileMetadata_Type `protobuf:"varint,2,opt,name=type,proto3,enum=sharing.nearby.FileMetadata_Type" json:"type,omitempty"`
	PayloadId    int64             `protobuf:"varint,3,opt,name=payload_id,json=payloadId,proto3" json:"payload_id,omitempty"`
	Size         int64             `protobuf:"varint,4,opt,name=size,proto3" json:"size,omitempty"`
	MimeType     string            `protobuf:"bytes,5,opt,name=mime_type,json=mimeType,proto3" json:"mime_type,omitempty"`
	Id           int64             `protobuf:"varint,6,opt,name=id,proto3" json:"id,omitempty"`
	ParentFolder string            `protobuf:"bytes,7,opt,name=parent_folder,json=parentFolder,proto3" json:"parent_folder,omitempty"`
}

func (m *FileMetadata) Reset()         { *m = FileMetadata{} }
func (m *FileMetadata) String() string { return proto.CompactTextString(m) }
func (*FileMetadata) ProtoMessage()    {}

type TextMetadata struct {
	TextTitle string            `protobuf:"bytes,2,opt,name=text_title,json=textTitle,proto3" json:"text_title,omitempty"`
	Type      TextMetadata_Type `protobuf:"varint,3,opt,name=type,proto3,enum=sharing.nearby.TextMetadata_Type" json:"type,omitempty"`
	PayloadId int64             `protobuf:"varint,4,opt,name=payload_id,json=payloadId,proto3" json:"payload_id,omitempty"`
	Size      int64             `protobuf:"varint,5,opt,name=size,proto3" json:"size,omitempty"`
	Id        int64             `protobuf:"varint,6,opt,name=id,proto3" json:"id,omitempty"`
}

func (m *TextMetadata) Reset()         { *m = TextMetadata{} }
func (m *TextMetadata) String() string { return proto.CompactTextString(m) }
func (*TextMetadata) ProtoMessage()    {}

type WifiCredentialsMetadata struct {
	Ssid         string                               `protobuf:"bytes,2,opt,name=ssid,proto3" json:"ssid,omitempty"`
	SecurityType WifiCredentialsMetadata_SecurityType `protobuf:"varint,3,opt,name=security_type,json=securityType,proto3,enum=sharing.nearby.WifiCredentialsMetadata_SecurityType" json:"security_type,omitempty"`
	PayloadId    int64                                `protobuf:"varint,4,opt,name=payload_id,json=payloadId,proto3" json:"payload_id,omitempty"`
	Id           int64                                `protobuf:"varint,5,opt,name=id,proto3" json:"id,omitempty"`
}

func (m *WifiCredentialsMetadata) Reset()         { *m = WifiCredentialsMetadata{} }
func (m *WifiCredentialsMetadata) String() string { return proto.CompactTextString(m) }
func (*WifiCredentialsMetadata) ProtoMessage()    {}

// WifiCredentials is the body of the payload announced by a WifiCredentialsMetadata.
type WifiCredentials struct {
	Password   string `protobuf:"bytes,1,opt,name=password,proto3" json:"password,omitempty"`
	HiddenSsid bool   `protobuf:"varint,2,opt,name=hidden_ssid,json=hiddenSsid,proto3" json:"hidden_ssid,omitempty"`
}

func (m *WifiCredentials) Reset()         { *m = WifiCredentials{} }
func (m *WifiCredentials) String() string { return proto.CompactTextString(m) }
func (*WifiCredentials) ProtoMessage()    {}

type ConnectionResponseFrame struct {
	Status ConnectionResponseFrame_Status `protobuf:"varint,1,opt,name=status,proto3,enum=sharing.nearby.ConnectionResponseFrame_Status" json:"status,omitempty"`
}

func (m *ConnectionResponseFrame) Reset()         { *m = ConnectionResponseFrame{} }
func (m *ConnectionResponseFrame) String() string { return proto.CompactTextString(m) }
func (*ConnectionResponseFrame) ProtoMessage()    {}

type PairedKeyEncryptionFrame struct {
	SignedData         []byte `protobuf:"bytes,1,opt,name=signed_data,json=signedData,proto3" json:"signed_data,omitempty"`
	SecretIdHash       []byte `protobuf:"bytes,2,opt,name=secret_id_hash,json=secretIdHash,proto3" json:"secret_id_hash,omitempty"`
	OptionalSignedData []byte `protobuf:"bytes,3,opt,name=optional_signed_data,json=optionalSignedData,proto3" json:"optional_signed_data,omitempty"`
}

func (m *PairedKeyEncryptionFrame) Reset()         { *m = PairedKeyEncryptionFrame{} }
func (m *PairedKeyEncryptionFrame) String() string { return proto.CompactTextString(m) }
func (*PairedKeyEncryptionFrame) ProtoMessage()    {}

type PairedKeyResultFrame struct {
	Status PairedKeyResultFrame_Status `protobuf:"varint,1,opt,name=status,proto3,enum=sharing.nearby.PairedKeyResultFrame_Status" json:"status,omitempty"`
}

func (m *PairedKeyResultFrame) Reset()         { *m = PairedKeyResultFrame{} }
func (m *PairedKeyResultFrame) String() string { return proto.CompactTextString(m) }
func (*PairedKeyResultFrame) ProtoMessage()    {}
