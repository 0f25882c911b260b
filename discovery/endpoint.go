package discovery

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	endpointInfoVersion    = 0
	endpointInfoRandomSize = 16
	// endpointInfoPrefixSize covers the bitfield byte, the random bytes and the
	// name length byte.
	endpointInfoPrefixSize = 1 + endpointInfoRandomSize + 1
	maxEndpointNameSize    = 255

	// EndpointIDSize is the length of the short identifier every endpoint
	// advertises and sends in its connection request.
	EndpointIDSize = 4
)

var (
	// ErrInvalidEndpointInfo indicates a malformed endpoint info blob.
	ErrInvalidEndpointInfo = errors.New("discovery: invalid endpoint info")

	endpointIDAlphabet = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
	// serviceIDHash is the first three bytes of SHA-256("NearbySharing").
	serviceIDHash = []byte{0xFC, 0x9F, 0x5E}
)

const pcpConnectionRequest = 0x23

// DeviceType is the 3-bit device class carried in endpoint info.
type DeviceType int

const (
	DeviceTypeUnknown DeviceType = 0
	DeviceTypePhone   DeviceType = 1
	DeviceTypeTablet  DeviceType = 2
	DeviceTypeLaptop  DeviceType = 3
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypePhone:
		return "phone"
	case DeviceTypeTablet:
		return "tablet"
	case DeviceTypeLaptop:
		return "laptop"
	default:
		return "unknown"
	}
}

// ParseDeviceType maps a config value to a DeviceType, defaulting to unknown.
func ParseDeviceType(s string) DeviceType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phone":
		return DeviceTypePhone
	case "tablet":
		return DeviceTypeTablet
	case "laptop":
		return DeviceTypeLaptop
	default:
		return DeviceTypeUnknown
	}
}

// EndpointInfo is the decoded form of the endpoint info blob.
type EndpointInfo struct {
	Version    int
	Hidden     bool
	DeviceType DeviceType
	Name       string
}

// Encode serializes the endpoint info. Names longer than 255 bytes are cut at
// a rune boundary.
func (e EndpointInfo) Encode() []byte {
	name := truncateUTF8(e.Name, maxEndpointNameSize)

	out := make([]byte, endpointInfoPrefixSize, endpointInfoPrefixSize+len(name))
	out[0] = byte(e.Version&0x07)<<5 | byte(e.DeviceType&0x07)<<1
	if e.Hidden {
		out[0] |= 1 << 4
	}
	_, _ = rand.Read(out[1 : 1+endpointInfoRandomSize])
	out[endpointInfoPrefixSize-1] = byte(len(name))
	return append(out, name...)
}

// EncodeEndpointInfo encodes a visible endpoint of the current version.
func EncodeEndpointInfo(deviceType DeviceType, name string) []byte {
	return EndpointInfo{Version: endpointInfoVersion, DeviceType: deviceType, Name: name}.Encode()
}

// DecodeEndpointInfo parses an endpoint info blob.
func DecodeEndpointInfo(raw []byte) (EndpointInfo, error) {
	if len(raw) < endpointInfoPrefixSize {
		return EndpointInfo{}, fmt.Errorf("%w: %d bytes", ErrInvalidEndpointInfo, len(raw))
	}

	nameLen := int(raw[endpointInfoPrefixSize-1])
	if endpointInfoPrefixSize+nameLen > len(raw) {
		return EndpointInfo{}, fmt.Errorf("%w: name length %d exceeds %d remaining bytes", ErrInvalidEndpointInfo, nameLen, len(raw)-endpointInfoPrefixSize)
	}
	name := raw[endpointInfoPrefixSize : endpointInfoPrefixSize+nameLen]
	if !utf8.Valid(name) {
		return EndpointInfo{}, fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidEndpointInfo)
	}

	return EndpointInfo{
		Version:    int(raw[0]>>5) & 0x07,
		Hidden:     raw[0]&(1<<4) != 0,
		DeviceType: DeviceType(raw[0]>>1) & 0x07,
		Name:       string(name),
	}, nil
}

// NewEndpointID returns a random 4-character alphanumeric endpoint id.
func NewEndpointID() string {
	raw := make([]byte, EndpointIDSize)
	_, _ = rand.Read(raw)
	for i, b := range raw {
		raw[i] = endpointIDAlphabet[int(b)%len(endpointIDAlphabet)]
	}
	return string(raw)
}

// ServiceInstanceName builds the mDNS instance name advertised for endpointID.
func ServiceInstanceName(endpointID string) string {
	raw := make([]byte, 0, 1+EndpointIDSize+len(serviceIDHash)+2)
	raw = append(raw, pcpConnectionRequest)
	raw = append(raw, endpointID...)
	raw = append(raw, serviceIDHash...)
	raw = append(raw, 0x00, 0x00)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// ParseServiceInstanceName extracts the endpoint id from an advertised
// instance name.
func ParseServiceInstanceName(instance string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(instance, "="))
	if err != nil {
		return "", fmt.Errorf("decode instance name: %w", err)
	}
	if len(raw) < 1+EndpointIDSize+len(serviceIDHash) || raw[0] != pcpConnectionRequest {
		return "", fmt.Errorf("instance name %q is not a sharing endpoint", instance)
	}
	hash := raw[1+EndpointIDSize : 1+EndpointIDSize+len(serviceIDHash)]
	for i := range serviceIDHash {
		if hash[i] != serviceIDHash[i] {
			return "", fmt.Errorf("instance name %q has foreign service id", instance)
		}
	}
	return string(raw[1 : 1+EndpointIDSize]), nil
}

func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
