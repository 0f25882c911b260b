package network

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"nearshare/models"
	"nearshare/protocol/sharing"
)

// dispatchReceiver builds a receiver whose event stream holds one event and
// is already full.
func dispatchReceiver(t *testing.T, logger *zap.Logger) *receiver {
	t.Helper()
	_, conn := net.Pipe()
	notify := newNotifier(1)
	if !notify.publish(TransferFinished{TransferID: "earlier"}) {
		t.Fatalf("could not fill notifier")
	}
	opts := ServerOptions{DeviceName: "Receiver", Sink: DirectorySink{Dir: t.TempDir()}, Logger: logger}.withDefaults()
	r := newReceiver(conn, "pipe", opts, notify)
	t.Cleanup(func() {
		_ = r.ch.Close()
	})
	r.history = newHistory(nil, zap.NewNop(), models.DirectionReceive, peerInfo{})
	return r
}

func TestDispatchWaitsForRoomBeforeDeliveringText(t *testing.T) {
	r := dispatchReceiver(t, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- r.dispatch(ctx, peerInfo{Name: "Phone"}, &sharing.TextMetadata{Type: sharing.TextMetadata_TEXT}, &Payload{ID: 5, Data: []byte("hello")})
	}()

	select {
	case err := <-done:
		t.Fatalf("dispatch returned %v while the event stream was full", err)
	case <-time.After(50 * time.Millisecond):
	}

	if first := <-r.notify.events; first.(TransferFinished).TransferID != "earlier" {
		t.Fatalf("unexpected first event %+v", first)
	}
	if err := <-done; err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	text, ok := (<-r.notify.events).(IncomingText)
	if !ok || text.Text != "hello" || text.PayloadID != 5 {
		t.Fatalf("unexpected text event %+v", text)
	}
}

func TestDispatchGivesUpOnWifiWhenContextEnds(t *testing.T) {
	r := dispatchReceiver(t, zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	credentials, err := proto.Marshal(&sharing.WifiCredentials{Password: "hunter22"})
	if err != nil {
		t.Fatalf("marshal credentials: %v", err)
	}
	err = r.dispatch(ctx, peerInfo{Name: "Phone"}, &sharing.WifiCredentialsMetadata{Ssid: "HomeNet"}, &Payload{ID: 6, Data: credentials})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPublishLogsDroppedEvents(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	r := dispatchReceiver(t, zap.New(core))

	r.publish(FileReceived{Name: "photo.jpg"})

	dropped := logs.FilterMessage("event dropped").All()
	if len(dropped) != 1 {
		t.Fatalf("expected one dropped-event warning, got %d", len(dropped))
	}
	if got := dropped[0].ContextMap()["event"]; got != "network.FileReceived" {
		t.Fatalf("warning names %v", got)
	}
}
