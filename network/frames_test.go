package network

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"google.golang.org/protobuf/encoding/protowire"

	"nearshare/protocol/connections"
	"nearshare/protocol/sharing"
)

// fields decodes the top-level fields of a message into number -> raw value.
func fields(t *testing.T, raw []byte) map[protowire.Number][]any {
	t.Helper()
	out := make(map[protowire.Number][]any)
	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			t.Fatalf("bad tag: %v", protowire.ParseError(n))
		}
		raw = raw[n:]
		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(raw)
			if m < 0 {
				t.Fatalf("bad varint: %v", protowire.ParseError(m))
			}
			out[num] = append(out[num], v)
			raw = raw[m:]
		case protowire.BytesType:
			v, m := protowire.ConsumeBytes(raw)
			if m < 0 {
				t.Fatalf("bad bytes: %v", protowire.ParseError(m))
			}
			out[num] = append(out[num], v)
			raw = raw[m:]
		default:
			t.Fatalf("unexpected wire type %d for field %d", typ, num)
		}
	}
	return out
}

func TestConnectionRequestWireLayout(t *testing.T) {
	info := []byte("endpoint-info-bytes")
	raw, err := marshalOffline(connectionRequestFrame("AB12", "Laptop", info, 10*time.Second))
	if err != nil {
		t.Fatalf("marshalOffline failed: %v", err)
	}

	top := fields(t, raw)
	if got := top[1]; len(got) != 1 || got[0].(uint64) != 1 {
		t.Fatalf("offline frame version = %v, want 1", got)
	}
	v1 := fields(t, top[2][0].([]byte))
	if got := v1[1]; len(got) != 1 || got[0].(uint64) != uint64(connections.V1Frame_CONNECTION_REQUEST) {
		t.Fatalf("v1 frame type = %v", got)
	}

	request := fields(t, v1[2][0].([]byte))
	if string(request[1][0].([]byte)) != "AB12" {
		t.Fatalf("endpoint id = %q", request[1][0])
	}
	if string(request[2][0].([]byte)) != "Laptop" {
		t.Fatalf("endpoint name = %q", request[2][0])
	}
	if string(request[6][0].([]byte)) != string(info) {
		t.Fatalf("endpoint info = %q", request[6][0])
	}
	if request[8][0].(uint64) != 10000 {
		t.Fatalf("keep alive interval = %v", request[8][0])
	}
}

func TestUnmarshalOfflineRejectsGarbage(t *testing.T) {
	if _, err := unmarshalOffline([]byte{0xFF, 0xFF, 0xFF}); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}

	raw, err := proto.Marshal(&connections.OfflineFrame{Version: connections.OfflineFrame_UNKNOWN_VERSION})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if _, err := unmarshalOffline(raw); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode for missing v1, got %v", err)
	}
}

func TestPairedKeyFramesCarryPlaceholders(t *testing.T) {
	frame, err := pairedKeyEncryptionFrame()
	if err != nil {
		t.Fatalf("pairedKeyEncryptionFrame failed: %v", err)
	}
	pke := frame.PairedKeyEncryption
	if len(pke.SecretIdHash) != 6 || len(pke.SignedData) != 72 {
		t.Fatalf("unexpected placeholder sizes %d/%d", len(pke.SecretIdHash), len(pke.SignedData))
	}

	raw, err := marshalSharing(pairedKeyResultFrame())
	if err != nil {
		t.Fatalf("marshalSharing failed: %v", err)
	}
	decoded, err := unmarshalSharing(raw)
	if err != nil {
		t.Fatalf("unmarshalSharing failed: %v", err)
	}
	if decoded.PairedKeyResult.Status != sharing.PairedKeyResultFrame_UNABLE {
		t.Fatalf("paired key result = %v, want UNABLE", decoded.PairedKeyResult.Status)
	}
}
