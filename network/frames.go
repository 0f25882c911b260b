package network

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"

	"nearshare/protocol/connections"
	"nearshare/protocol/sharing"
)

const (
	pairedKeySecretIDHashSize = 6
	pairedKeySignedDataSize   = 72
)

func marshalOffline(v1 *connections.V1Frame) ([]byte, error) {
	raw, err := proto.Marshal(&connections.OfflineFrame{Version: connections.OfflineFrame_V1, V1: v1})
	if err != nil {
		return nil, fmt.Errorf("marshal offline frame: %w", err)
	}
	return raw, nil
}

func unmarshalOffline(raw []byte) (*connections.V1Frame, error) {
	var frame connections.OfflineFrame
	if err := proto.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: offline frame: %v", ErrDecode, err)
	}
	if frame.Version != connections.OfflineFrame_V1 || frame.V1 == nil {
		return nil, fmt.Errorf("%w: offline frame version %d", ErrDecode, frame.Version)
	}
	return frame.V1, nil
}

func marshalSharing(v1 *sharing.V1Frame) ([]byte, error) {
	raw, err := proto.Marshal(&sharing.Frame{Version: sharing.Frame_V1, V1: v1})
	if err != nil {
		return nil, fmt.Errorf("marshal sharing frame: %w", err)
	}
	return raw, nil
}

func unmarshalSharing(raw []byte) (*sharing.V1Frame, error) {
	var frame sharing.Frame
	if err := proto.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: sharing frame: %v", ErrDecode, err)
	}
	if frame.Version != sharing.Frame_V1 || frame.V1 == nil {
		return nil, fmt.Errorf("%w: sharing frame version %d", ErrDecode, frame.Version)
	}
	return frame.V1, nil
}

func connectionRequestFrame(endpointID, name string, endpointInfo []byte, keepAlive time.Duration) *connections.V1Frame {
	return &connections.V1Frame{
		Type: connections.V1Frame_CONNECTION_REQUEST,
		ConnectionRequest: &connections.ConnectionRequestFrame{
			EndpointId:              endpointID,
			EndpointName:            name,
			EndpointInfo:            endpointInfo,
			Mediums:                 []connections.ConnectionRequestFrame_Medium{connections.ConnectionRequestFrame_WIFI_LAN},
			KeepAliveIntervalMillis: int32(keepAlive / time.Millisecond),
			KeepAliveTimeoutMillis:  int32(DefaultKeepAliveTimeout / time.Millisecond),
		},
	}
}

func connectionResponseFrame() *connections.V1Frame {
	return &connections.V1Frame{
		Type: connections.V1Frame_CONNECTION_RESPONSE,
		ConnectionResponse: &connections.ConnectionResponseFrame{
			Response: connections.ConnectionResponseFrame_ACCEPT,
			OsInfo:   &connections.OsInfo{Type: connections.OsInfo_LINUX},
		},
	}
}

func keepAliveFrame() *connections.V1Frame {
	return &connections.V1Frame{
		Type:      connections.V1Frame_KEEP_ALIVE,
		KeepAlive: &connections.KeepAliveFrame{},
	}
}

func disconnectionFrame() *connections.V1Frame {
	return &connections.V1Frame{
		Type:          connections.V1Frame_DISCONNECTION,
		Disconnection: &connections.DisconnectionFrame{},
	}
}

func pairedKeyEncryptionFrame() (*sharing.V1Frame, error) {
	secretIDHash := make([]byte, pairedKeySecretIDHashSize)
	signedData := make([]byte, pairedKeySignedDataSize)
	if _, err := rand.Read(secretIDHash); err != nil {
		return nil, fmt.Errorf("generate secret id hash: %w", err)
	}
	if _, err := rand.Read(signedData); err != nil {
		return nil, fmt.Errorf("generate signed data: %w", err)
	}
	return &sharing.V1Frame{
		Type: sharing.V1Frame_PAIRED_KEY_ENCRYPTION,
		PairedKeyEncryption: &sharing.PairedKeyEncryptionFrame{
			SecretIdHash: secretIDHash,
			SignedData:   signedData,
		},
	}, nil
}

// pairedKeyResultFrame always reports UNABLE: certificates are never checked.
func pairedKeyResultFrame() *sharing.V1Frame {
	return &sharing.V1Frame{
		Type:            sharing.V1Frame_PAIRED_KEY_RESULT,
		PairedKeyResult: &sharing.PairedKeyResultFrame{Status: sharing.PairedKeyResultFrame_UNABLE},
	}
}

func responseFrame(status sharing.ConnectionResponseFrame_Status) *sharing.V1Frame {
	return &sharing.V1Frame{
		Type:               sharing.V1Frame_RESPONSE,
		ConnectionResponse: &sharing.ConnectionResponseFrame{Status: status},
	}
}

func cancelFrame() *sharing.V1Frame {
	return &sharing.V1Frame{Type: sharing.V1Frame_CANCEL}
}
