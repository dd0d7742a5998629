package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalsfoundry/refframe/frames"
	"github.com/signalsfoundry/refframe/internal/conversion"
	"github.com/signalsfoundry/refframe/internal/frameapi"
	"github.com/signalsfoundry/refframe/internal/logging"
)

func TestFrameServerStartupSmoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}

	sitesPath := filepath.Join(t.TempDir(), "sites.json")
	catalogue := `{"sites": [{"id": "pad", "latitude": 10, "longitude": 20, "altitude": 30, "heading": 55.5}]}`
	if err := os.WriteFile(sitesPath, []byte(catalogue), 0o644); err != nil {
		t.Fatalf("write catalogue: %v", err)
	}

	cfg := Config{
		ListenAddress:  lis.Addr().String(),
		MetricsAddress: "",
		SitesPath:      sitesPath,
		LogLevel:       "warn",
		LogFormat:      "text",
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, cfg, log, lis)
	}()

	client, err := frameapi.Dial(cfg.ListenAddress)
	if err != nil {
		t.Fatalf("frameapi.Dial: %v", err)
	}
	defer client.Close()

	list, err := client.ListSites(ctx)
	if err != nil {
		t.Fatalf("ListSites: %v", err)
	}
	if len(list) != 1 || list[0].ID != "pad" {
		t.Fatalf("ListSites = %+v, want pad", list)
	}

	res, err := client.Convert(ctx, conversion.Request{
		From:     frames.KindENU,
		To:       frames.KindLLA,
		Position: [3]float64{0, 0, 0},
		Site:     "pad",
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if res.Frame.Kind() != frames.KindLLA {
		t.Fatalf("Convert returned %s, want LLA", res.Frame.Kind())
	}

	cancel()

	if err := <-errCh; err != nil {
		t.Fatalf("server returned error: %v", err)
	}
}

func TestRunFailsOnMissingCatalogue(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	defer lis.Close()

	cfg := Config{SitesPath: filepath.Join(t.TempDir(), "missing.json")}
	if err := run(context.Background(), cfg, nil, lis); err == nil {
		t.Fatalf("run succeeded without a site catalogue")
	}
}
