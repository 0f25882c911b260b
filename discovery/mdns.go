package discovery

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"
)

const (
	// DefaultService is the Nearby Share mDNS service type.
	DefaultService = "_FC9F5ED42C8A._tcp"
	// DefaultDomain is the mDNS domain.
	DefaultDomain = "local."
	// DefaultRefreshInterval is the background browse interval.
	DefaultRefreshInterval = 10 * time.Second
	// DefaultScanTimeout bounds each browse window.
	DefaultScanTimeout = 3 * time.Second

	endpointInfoTXTKey = "n"
)

type registerFunc func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (*zeroconf.Server, error)
type browseFunc func(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error

// Config controls mDNS advertising and scanning.
type Config struct {
	Service         string
	Domain          string
	RefreshInterval time.Duration
	ScanTimeout     time.Duration

	EndpointID string
	Info       EndpointInfo
	Port       int

	Logger *zap.Logger

	registerFn registerFunc
	browseFn   browseFunc
}

func (c Config) withDefaults() Config {
	out := c
	if out.Service == "" {
		out.Service = DefaultService
	}
	if out.Domain == "" {
		out.Domain = DefaultDomain
	}
	if out.RefreshInterval <= 0 {
		out.RefreshInterval = DefaultRefreshInterval
	}
	if out.ScanTimeout <= 0 {
		out.ScanTimeout = DefaultScanTimeout
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	if out.registerFn == nil {
		out.registerFn = zeroconf.Register
	}
	return out
}

func (c Config) validateForAdvertise() error {
	if len(c.EndpointID) != EndpointIDSize {
		return fmt.Errorf("endpoint ID must be %d characters", EndpointIDSize)
	}
	if strings.TrimSpace(c.Info.Name) == "" {
		return errors.New("device name is required")
	}
	if c.Port <= 0 {
		return errors.New("listening port must be > 0")
	}
	return nil
}

// Advertiser announces the local receiver via mDNS.
type Advertiser struct {
	server *zeroconf.Server
}

// StartAdvertiser registers the receiver under its service instance name with
// the encoded endpoint info in the "n" TXT record.
func StartAdvertiser(config Config) (*Advertiser, error) {
	cfg := config.withDefaults()
	if err := cfg.validateForAdvertise(); err != nil {
		return nil, err
	}

	instance := ServiceInstanceName(cfg.EndpointID)
	txt := []string{
		endpointInfoTXTKey + "=" + base64.RawURLEncoding.EncodeToString(cfg.Info.Encode()),
	}

	server, err := cfg.registerFn(instance, cfg.Service, cfg.Domain, cfg.Port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("register mDNS service: %w", err)
	}
	cfg.Logger.Info("advertising receiver",
		zap.String("instance", instance),
		zap.String("endpoint_id", cfg.EndpointID),
		zap.Int("port", cfg.Port),
	)

	return &Advertiser{server: server}, nil
}

// Stop withdraws the advertisement.
func (a *Advertiser) Stop() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
}
