package discovery

import (
	"context"
	"encoding/base64"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// EventDeviceUpserted is emitted when a device appears or its metadata changes.
	EventDeviceUpserted EventType = "device_upserted"
	// EventDeviceRemoved is emitted when a previously seen device disappears.
	EventDeviceRemoved EventType = "device_removed"
)

// EventType identifies discovery updates.
type EventType string

// Event carries discovery updates.
type Event struct {
	Type   EventType
	Device Device
}

type refreshRequest struct {
	ctx  context.Context
	done chan error
}

// Scanner browses for receivers over mDNS.
type Scanner struct {
	cfg    Config
	browse browseFunc
	logger *zap.Logger

	mu      sync.RWMutex
	devices map[string]Device

	events chan Event

	startOnce sync.Once
	stopOnce  sync.Once

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	refreshRequests chan refreshRequest
}

var _ Discoverer = (*Scanner)(nil)

// NewScanner creates a scanner. EndpointID, when set, filters out the local
// advertisement.
func NewScanner(config Config) (*Scanner, error) {
	cfg := config.withDefaults()

	browse := cfg.browseFn
	if browse == nil {
		resolver, err := zeroconf.NewResolver(nil)
		if err != nil {
			return nil, err
		}
		browse = resolver.Browse
	}

	return &Scanner{
		cfg:             cfg,
		browse:          browse,
		logger:          cfg.Logger.With(zap.String("component", "scanner")),
		devices:         make(map[string]Device),
		events:          make(chan Event, 128),
		refreshRequests: make(chan refreshRequest),
	}, nil
}

// Start begins background scanning.
func (s *Scanner) Start() error {
	s.startOnce.Do(func() {
		s.ctx, s.cancel = context.WithCancel(context.Background())
		s.wg.Add(1)
		go s.loop()
	})
	return nil
}

// Stop stops scanning and closes the event channel.
func (s *Scanner) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.wg.Wait()
		close(s.events)
	})
}

// Events provides asynchronous discovery updates.
func (s *Scanner) Events() <-chan Event {
	return s.events
}

// Refresh triggers an immediate scan and waits for it.
func (s *Scanner) Refresh(ctx context.Context) error {
	if s.ctx == nil {
		return errors.New("scanner is not started")
	}

	req := refreshRequest{ctx: ctx, done: make(chan error, 1)}
	select {
	case s.refreshRequests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return errors.New("scanner is stopped")
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return errors.New("scanner is stopped")
	}
}

// ListDevices returns the current snapshot sorted by name.
func (s *Scanner) ListDevices() []Device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Device, 0, len(s.devices))
	for _, device := range s.devices {
		out = append(out, device)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name() == out[j].Name() {
			return out[i].EndpointID < out[j].EndpointID
		}
		return out[i].Name() < out[j].Name()
	})
	return out
}

// Lookup finds a device by endpoint id or case-insensitive display name.
func (s *Scanner) Lookup(nameOrID string) (Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if device, ok := s.devices[nameOrID]; ok {
		return device, true
	}
	for _, device := range s.devices {
		if strings.EqualFold(device.Info.Name, nameOrID) {
			return device, true
		}
	}
	return Device{}, false
}

func (s *Scanner) loop() {
	defer s.wg.Done()

	s.runScan(context.Background())

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.runScan(context.Background()); err != nil {
				s.logger.Warn("mDNS browse failed", zap.Error(err))
			}
		case req := <-s.refreshRequests:
			req.done <- s.runScan(req.ctx)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scanner) runScan(requestCtx context.Context) error {
	scanCtx, cancel := context.WithTimeout(s.ctx, s.cfg.ScanTimeout)
	defer cancel()
	go func() {
		select {
		case <-requestCtx.Done():
			cancel()
		case <-scanCtx.Done():
		}
	}()

	entries := make(chan *zeroconf.ServiceEntry, 32)
	collected := make(map[string]Device)

	var g errgroup.Group
	g.Go(func() error {
		for {
			select {
			case <-scanCtx.Done():
				return nil
			case entry, ok := <-entries:
				if !ok {
					return nil
				}
				if entry == nil {
					continue
				}
				device, ok := parseEntry(entry, s.cfg.EndpointID)
				if !ok {
					continue
				}
				device.LastSeen = time.Now()
				collected[device.EndpointID] = device
			}
		}
	})

	browseErr := s.browse(scanCtx, s.cfg.Service, s.cfg.Domain, entries)
	if browseErr != nil {
		cancel()
		_ = g.Wait()
		return browseErr
	}

	<-scanCtx.Done()
	_ = g.Wait()
	s.applySnapshot(collected)
	return nil
}

func (s *Scanner) applySnapshot(next map[string]Device) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.devices
	s.devices = next

	for id, device := range next {
		old, exists := previous[id]
		if !exists || !devicesEqual(old, device) {
			s.emitEvent(Event{Type: EventDeviceUpserted, Device: device})
		}
	}
	for id, device := range previous {
		if _, exists := next[id]; !exists {
			s.emitEvent(Event{Type: EventDeviceRemoved, Device: device})
		}
	}
}

func (s *Scanner) emitEvent(event Event) {
	select {
	case s.events <- event:
	default:
	}
}

func parseEntry(entry *zeroconf.ServiceEntry, selfEndpointID string) (Device, bool) {
	endpointID, err := ParseServiceInstanceName(entry.Instance)
	if err != nil || endpointID == selfEndpointID {
		return Device{}, false
	}

	txt := txtToMap(entry.Text)
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(txt[endpointInfoTXTKey], "="))
	if err != nil {
		return Device{}, false
	}
	info, err := DecodeEndpointInfo(raw)
	if err != nil || info.Hidden {
		return Device{}, false
	}

	addresses := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	seen := make(map[string]struct{})
	for _, ip := range append(entry.AddrIPv4, entry.AddrIPv6...) {
		if ip == nil {
			continue
		}
		addr := ip.String()
		if _, exists := seen[addr]; exists {
			continue
		}
		seen[addr] = struct{}{}
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	return Device{
		EndpointID: endpointID,
		Info:       info,
		Medium:     MediumWLAN,
		HostName:   entry.HostName,
		Addresses:  addresses,
		Port:       entry.Port,
	}, true
}

func txtToMap(text []string) map[string]string {
	out := make(map[string]string, len(text))
	for _, entry := range text {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}

func devicesEqual(a, b Device) bool {
	if a.EndpointID != b.EndpointID ||
		a.Info != b.Info ||
		a.HostName != b.HostName ||
		a.Port != b.Port ||
		len(a.Addresses) != len(b.Addresses) {
		return false
	}
	for i := range a.Addresses {
		if a.Addresses[i] != b.Addresses[i] {
			return false
		}
	}
	return true
}
