package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"nearshare/config"
	"nearshare/discovery"
	"nearshare/logging"
	"nearshare/network"
	"nearshare/protocol/sharing"
	"nearshare/storage"
)

const defaultLookupTimeout = 5 * time.Second

// env bundles what every command loads at startup.
type env struct {
	cfg     *config.DeviceConfig
	dataDir string
	logger  *zap.Logger
	store   *storage.Store
}

func loadRuntime(c *cli.Context) (*env, error) {
	cfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(os.Stderr, c.String("log-level"), logging.Format(c.String("log-format")))
	if err != nil {
		return nil, err
	}

	dataDir := filepath.Dir(cfgPath)
	store, dbPath, err := storage.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	logger.Debug("runtime ready",
		zap.String("config", cfgPath),
		zap.String("database", dbPath),
		zap.String("endpoint_id", cfg.EndpointID),
	)
	return &env{cfg: cfg, dataDir: dataDir, logger: logger, store: store}, nil
}

func (r *env) close() {
	if err := r.store.Close(); err != nil {
		r.logger.Warn("close history database", zap.Error(err))
	}
	_ = r.logger.Sync()
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func receiveCommand() *cli.Command {
	return &cli.Command{
		Name:  "receive",
		Usage: "Listen for incoming shares until interrupted",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "auto-accept",
				Usage: "accept every incoming share without prompting",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "TCP port to listen on (overrides the configured port)",
				Value: -1,
			},
			&cli.StringFlag{
				Name:  "download-dir",
				Usage: "directory received files are written to",
			},
		},
		Action: receiveAction,
	}
}

func receiveAction(c *cli.Context) error {
	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	port := rt.cfg.ListeningPort
	if c.Int("port") >= 0 {
		port = c.Int("port")
	}
	downloadDir := rt.cfg.DownloadDir
	if dir := c.String("download-dir"); dir != "" {
		downloadDir = dir
	}
	autoAccept := rt.cfg.AutoAccept || c.Bool("auto-accept")

	server, err := network.Listen(net.JoinHostPort("", strconv.Itoa(port)), network.ServerOptions{
		EndpointID:        rt.cfg.EndpointID,
		DeviceName:        rt.cfg.DeviceName,
		DeviceType:        rt.cfg.ParsedDeviceType(),
		Sink:              network.DirectorySink{Dir: downloadDir},
		Recorder:          rt.store,
		AutoAccept:        autoAccept,
		KeepAliveInterval: rt.cfg.KeepAliveInterval(),
		Logger:            rt.logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = server.Close()
	}()
	listenPort := server.Addr().(*net.TCPAddr).Port

	if rt.cfg.Visible {
		advertiser, err := discovery.StartAdvertiser(discovery.Config{
			EndpointID: rt.cfg.EndpointID,
			Info: discovery.EndpointInfo{
				DeviceType: rt.cfg.ParsedDeviceType(),
				Name:       rt.cfg.DeviceName,
			},
			Port:   listenPort,
			Logger: rt.logger,
		})
		if err != nil {
			rt.logger.Warn("mDNS advertising unavailable", zap.Error(err))
		} else {
			defer advertiser.Stop()
		}
	}

	ctx, stop := signalContext(c.Context)
	defer stop()

	fmt.Printf("Receiving as %q (%s) on port %d, files go to %s\n", rt.cfg.DeviceName, rt.cfg.EndpointID, listenPort, downloadDir)
	go func() {
		for err := range server.Errors() {
			rt.logger.Warn("inbound transfer failed", zap.Error(err))
		}
	}()

	prompter := newPrompter(os.Stdin, os.Stdout)
	for {
		select {
		case <-ctx.Done():
			fmt.Println("Shutting down")
			return nil
		case ev, ok := <-server.Events():
			if !ok {
				return nil
			}
			handleEvent(ctx, ev, prompter, os.Stdout)
		}
	}
}

func handleEvent(ctx context.Context, ev network.Event, p *prompter, out io.Writer) {
	switch e := ev.(type) {
	case network.PairingRequest:
		question := fmt.Sprintf("%s (%s) wants to share %s. PIN %s. Accept? [y/N] ", e.DeviceName, e.DeviceType, e.Summary, e.AuthPin)
		e.Respond(p.confirm(ctx, question))
	case network.IncomingText:
		fmt.Fprintf(out, "Text from %s: %s\n", e.DeviceName, e.Text)
	case network.IncomingWifiCredentials:
		fmt.Fprintf(out, "Wi-Fi from %s: ssid=%q security=%s password=%q\n", e.DeviceName, e.SSID, e.SecurityType, e.Password)
	case network.FileReceived:
		fmt.Fprintf(out, "File from %s: %s (%d bytes)\n", e.DeviceName, e.Path, e.Size)
	case network.TransferFinished:
		switch {
		case e.Err != nil:
			fmt.Fprintf(out, "Transfer from %s failed: %v\n", e.DeviceName, e.Err)
		case e.Accepted:
			fmt.Fprintf(out, "Transfer from %s complete\n", e.DeviceName)
		default:
			fmt.Fprintf(out, "Transfer from %s declined\n", e.DeviceName)
		}
	}
}

// prompter reads yes/no answers from a line-oriented input.
type prompter struct {
	lines <-chan string
	out   io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return &prompter{lines: lines, out: out}
}

func (p *prompter) confirm(ctx context.Context, question string) bool {
	fmt.Fprint(p.out, question)
	select {
	case line, ok := <-p.lines:
		return ok && isYes(line)
	case <-ctx.Done():
		return false
	}
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func sendCommand() *cli.Command {
	return &cli.Command{
		Name:  "send",
		Usage: "Share files, text or Wi-Fi credentials with a receiver",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "receiver host:port, skipping discovery",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "receiver name or endpoint id found via mDNS",
			},
			&cli.StringSliceFlag{
				Name:  "file",
				Usage: "file to send (repeatable)",
			},
			&cli.StringFlag{
				Name:  "text",
				Usage: "text or URL to send",
			},
			&cli.StringFlag{
				Name:  "wifi-ssid",
				Usage: "Wi-Fi network to share",
			},
			&cli.StringFlag{
				Name:  "wifi-password",
				Usage: "password for --wifi-ssid (open network when empty)",
			},
			&cli.IntFlag{
				Name:  "chunk-size",
				Usage: "stream files in chunks of this many bytes (0 sends each file in one frame)",
			},
			&cli.DurationFlag{
				Name:  "lookup-timeout",
				Usage: "how long to browse for --to",
				Value: defaultLookupTimeout,
			},
		},
		Action: sendAction,
	}
}

func sendAction(c *cli.Context) error {
	bundle := network.NewBundle(nil)
	for _, path := range c.StringSlice("file") {
		if err := bundle.AddFile(path); err != nil {
			return err
		}
	}
	if text := c.String("text"); text != "" {
		if err := bundle.AddText(text); err != nil {
			return err
		}
	}
	if ssid := c.String("wifi-ssid"); ssid != "" {
		if err := bundle.AddWifi(ssid, wifiSecurity(c.String("wifi-password")), c.String("wifi-password"), false); err != nil {
			return err
		}
	}
	if bundle.Len() == 0 {
		return errors.New("nothing to send: use --file, --text or --wifi-ssid")
	}

	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signalContext(c.Context)
	defer stop()

	var target discovery.Device
	switch {
	case c.String("address") != "":
		target, err = deviceFromAddress(c.String("address"))
	case c.String("to") != "":
		target, err = lookupDevice(ctx, rt, c.String("to"), c.Duration("lookup-timeout"))
	default:
		err = errors.New("a receiver is required: use --address or --to")
	}
	if err != nil {
		return err
	}

	status, err := network.Send(ctx, target, bundle, network.SenderOptions{
		EndpointID:        rt.cfg.EndpointID,
		DeviceName:        rt.cfg.DeviceName,
		DeviceType:        rt.cfg.ParsedDeviceType(),
		ChunkSize:         c.Int("chunk-size"),
		Recorder:          rt.store,
		KeepAliveInterval: rt.cfg.KeepAliveInterval(),
		Logger:            rt.logger,
		OnAuthPin: func(pin string) {
			fmt.Printf("PIN %s, confirm it matches on %s\n", pin, target.Name())
		},
		OnStatus: func(s network.SendStatus) {
			fmt.Printf("%s: %s\n", target.Name(), s)
		},
	})
	if err != nil {
		return err
	}
	if status == network.SendStatusRejected {
		return cli.Exit("receiver declined the share", 2)
	}
	return nil
}

func wifiSecurity(password string) sharing.WifiCredentialsMetadata_SecurityType {
	if password == "" {
		return sharing.WifiCredentialsMetadata_OPEN
	}
	return sharing.WifiCredentialsMetadata_WPA_PSK
}

// deviceFromAddress builds a WLAN device from host:port.
func deviceFromAddress(address string) (discovery.Device, error) {
	host, portText, err := net.SplitHostPort(address)
	if err != nil {
		return discovery.Device{}, fmt.Errorf("parse address %q: %w", address, err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port <= 0 || port > 65535 {
		return discovery.Device{}, fmt.Errorf("parse address %q: invalid port", address)
	}
	if host == "" {
		return discovery.Device{}, fmt.Errorf("parse address %q: missing host", address)
	}
	return discovery.Device{
		Medium:    discovery.MediumWLAN,
		Info:      discovery.EndpointInfo{Name: address},
		Addresses: []string{host},
		Port:      port,
	}, nil
}

func startScanner(rt *env) (*discovery.Scanner, error) {
	scanner, err := discovery.NewScanner(discovery.Config{
		EndpointID: rt.cfg.EndpointID,
		Logger:     rt.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("start mDNS scanner: %w", err)
	}
	if err := scanner.Start(); err != nil {
		return nil, err
	}
	return scanner, nil
}

func lookupDevice(ctx context.Context, rt *env, nameOrID string, timeout time.Duration) (discovery.Device, error) {
	scanner, err := startScanner(rt)
	if err != nil {
		return discovery.Device{}, err
	}
	defer scanner.Stop()

	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		if err := scanner.Refresh(lookupCtx); err != nil && lookupCtx.Err() == nil {
			rt.logger.Debug("mDNS refresh", zap.Error(err))
		}
		if device, ok := scanner.Lookup(nameOrID); ok {
			return device, nil
		}
		if lookupCtx.Err() != nil {
			return discovery.Device{}, fmt.Errorf("no receiver named %q found within %s", nameOrID, timeout)
		}
	}
}

func discoverCommand() *cli.Command {
	return &cli.Command{
		Name:  "discover",
		Usage: "List receivers advertising on the local network",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "how long to browse",
				Value: defaultLookupTimeout,
			},
		},
		Action: discoverAction,
	}
}

func discoverAction(c *cli.Context) error {
	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	scanner, err := startScanner(rt)
	if err != nil {
		return err
	}
	defer scanner.Stop()

	ctx, stop := signalContext(c.Context)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, c.Duration("timeout"))
	defer cancel()
	if err := scanner.Refresh(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	devices := scanner.ListDevices()
	if len(devices) == 0 {
		fmt.Println("No receivers found")
		return nil
	}
	for _, device := range devices {
		fmt.Printf("%-4s  %-24s  %-7s  %s\n", device.EndpointID, device.Name(), device.Info.DeviceType,
			net.JoinHostPort(firstAddress(device), strconv.Itoa(device.Port)))
	}
	return nil
}

func firstAddress(device discovery.Device) string {
	if len(device.Addresses) == 0 {
		return device.HostName
	}
	return device.Addresses[0]
}

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent transfers",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "maximum number of transfers to show",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "direction",
				Usage: "send or receive",
			},
		},
		Action: historyAction,
	}
}

func historyAction(c *cli.Context) error {
	rt, err := loadRuntime(c)
	if err != nil {
		return err
	}
	defer rt.close()

	transfers, err := rt.store.ListTransfers(storage.TransferFilter{
		Direction: c.String("direction"),
		Limit:     c.Int("limit"),
	})
	if err != nil {
		return err
	}
	for _, tr := range transfers {
		full, err := rt.store.GetTransfer(tr.TransferID)
		if err != nil {
			return err
		}
		started := time.UnixMilli(full.StartedAt).Format(time.DateTime)
		fmt.Printf("%s  %-7s  %-9s  %s", started, full.Direction, full.Status, full.PeerName)
		if full.Error != "" {
			fmt.Printf("  (%s)", full.Error)
		}
		fmt.Println()
		for _, item := range full.Items {
			done := " "
			if item.Complete {
				done = "x"
			}
			fmt.Printf("    [%s] %-4s %s\n", done, item.Kind, item.Name)
		}
	}
	return nil
}
