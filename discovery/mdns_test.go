package discovery

import (
	"context"
	"encoding/base64"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/grandcat/zeroconf"
)

func TestStartAdvertiserRegistersNearbyService(t *testing.T) {
	var (
		gotInstance string
		gotService  string
		gotPort     int
		gotTXT      []string
	)

	cfg := Config{
		EndpointID: "AB12",
		Info:       EndpointInfo{DeviceType: DeviceTypeLaptop, Name: "Alice Laptop"},
		Port:       9999,
		registerFn: func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (*zeroconf.Server, error) {
			gotInstance, gotService, gotPort = instance, service, port
			gotTXT = append([]string(nil), text...)
			return nil, nil
		},
	}

	advertiser, err := StartAdvertiser(cfg)
	if err != nil {
		t.Fatalf("StartAdvertiser failed: %v", err)
	}
	advertiser.Stop()

	if gotService != DefaultService || gotPort != 9999 {
		t.Fatalf("unexpected registration %q:%d", gotService, gotPort)
	}
	if id, err := ParseServiceInstanceName(gotInstance); err != nil || id != "AB12" {
		t.Fatalf("unexpected instance %q (%v)", gotInstance, err)
	}
	if len(gotTXT) != 1 || !strings.HasPrefix(gotTXT[0], "n=") {
		t.Fatalf("unexpected TXT records %v", gotTXT)
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(gotTXT[0], "n="))
	if err != nil {
		t.Fatalf("decode TXT: %v", err)
	}
	info, err := DecodeEndpointInfo(raw)
	if err != nil {
		t.Fatalf("DecodeEndpointInfo failed: %v", err)
	}
	if diff := cmp.Diff(cfg.Info, info); diff != "" {
		t.Fatalf("advertised info mismatch (-want +got):\n%s", diff)
	}
}

func TestStartAdvertiserValidatesConfig(t *testing.T) {
	if _, err := StartAdvertiser(Config{EndpointID: "AB", Info: EndpointInfo{Name: "x"}, Port: 1}); err == nil {
		t.Fatalf("expected short endpoint id to be rejected")
	}
	if _, err := StartAdvertiser(Config{EndpointID: "AB12", Port: 1}); err == nil {
		t.Fatalf("expected missing name to be rejected")
	}
}

func advertisedEntry(t *testing.T, endpointID string, info EndpointInfo, ip string) *zeroconf.ServiceEntry {
	t.Helper()
	entry := zeroconf.NewServiceEntry(ServiceInstanceName(endpointID), DefaultService, DefaultDomain)
	entry.HostName = "host.local."
	entry.Port = 4242
	entry.AddrIPv4 = []net.IP{net.ParseIP(ip)}
	entry.Text = []string{"n=" + base64.RawURLEncoding.EncodeToString(info.Encode())}
	return entry
}

func TestScannerCollectsAdvertisedDevices(t *testing.T) {
	entries := []*zeroconf.ServiceEntry{
		advertisedEntry(t, "PEER", EndpointInfo{DeviceType: DeviceTypePhone, Name: "Pixel"}, "192.168.1.20"),
		advertisedEntry(t, "SELF", EndpointInfo{DeviceType: DeviceTypeLaptop, Name: "Me"}, "192.168.1.10"),
		advertisedEntry(t, "HIDE", EndpointInfo{Hidden: true, Name: "Hidden"}, "192.168.1.30"),
		{ServiceRecord: zeroconf.ServiceRecord{Instance: "printer"}},
	}

	scanner, err := NewScanner(Config{
		EndpointID:      "SELF",
		ScanTimeout:     50 * time.Millisecond,
		RefreshInterval: time.Hour,
		browseFn: func(ctx context.Context, service, domain string, out chan<- *zeroconf.ServiceEntry) error {
			for _, entry := range entries {
				out <- entry
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewScanner failed: %v", err)
	}
	if err := scanner.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer scanner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := scanner.Refresh(ctx); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	devices := scanner.ListDevices()
	if len(devices) != 1 {
		t.Fatalf("expected exactly one device, got %+v", devices)
	}
	got := devices[0]
	if got.EndpointID != "PEER" || got.Name() != "Pixel" || got.Info.DeviceType != DeviceTypePhone {
		t.Fatalf("unexpected device %+v", got)
	}
	if got.Medium != MediumWLAN || got.Port != 4242 || len(got.Addresses) != 1 || got.Addresses[0] != "192.168.1.20" {
		t.Fatalf("unexpected reachability %+v", got)
	}

	if _, ok := scanner.Lookup("pixel"); !ok {
		t.Fatalf("expected lookup by name to succeed")
	}
	if _, ok := scanner.Lookup("PEER"); !ok {
		t.Fatalf("expected lookup by endpoint id to succeed")
	}

	select {
	case event := <-scanner.Events():
		if event.Type != EventDeviceUpserted || event.Device.EndpointID != "PEER" {
			t.Fatalf("unexpected event %+v", event)
		}
	case <-ctx.Done():
		t.Fatalf("expected upsert event")
	}
}
