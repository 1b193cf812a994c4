package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/signalsfoundry/mission-designer/internal/api"
	"github.com/signalsfoundry/mission-designer/internal/config"
	"github.com/signalsfoundry/mission-designer/internal/logging"
	"github.com/signalsfoundry/mission-designer/internal/rpc"
	"github.com/signalsfoundry/mission-designer/internal/scenario"
)

func writeSeed(t *testing.T) string {
	t.Helper()
	doc, err := scenario.GlobalWatch()
	if err != nil {
		t.Fatalf("GlobalWatch: %v", err)
	}
	path := filepath.Join(t.TempDir(), "seed.yaml")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create seed: %v", err)
	}
	defer f.Close()
	if err := scenario.Encode(f, doc, scenario.FormatYAML); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return path
}

func TestMissionServerStartupSmoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	httpLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}

	cfg := config.Default()
	cfg.MetricsAddr = ""
	cfg.LogLevel = "warn"
	cfg.Seed = writeSeed(t)

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, cfg, log, listeners{grpc: grpcLis, http: httpLis})
	}()

	client := api.NewClient("http://" + httpLis.Addr().String())
	var health api.HealthStatus
	deadline := time.Now().Add(5 * time.Second)
	for {
		health, err = client.Health(ctx)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.MissionsCount != 1 {
		t.Fatalf("missions_count = %d, want 1 seeded mission", health.MissionsCount)
	}

	conn, err := grpc.NewClient(grpcLis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	defer conn.Close()

	sum, err := rpc.NewClient(conn).GetMissionSummary(ctx, "GW-001")
	if err != nil {
		t.Fatalf("GetMissionSummary: %v", err)
	}
	if sum.DesignSolutionsCount != 3 {
		t.Fatalf("design_solutions_count = %d, want 3", sum.DesignSolutionsCount)
	}

	cancel()

	if err := <-errCh; err != nil {
		t.Fatalf("server returned error: %v", err)
	}
}

func TestSeedRejectsMissingFile(t *testing.T) {
	cfg := config.Default()
	cfg.MetricsAddr = ""
	cfg.Seed = filepath.Join(t.TempDir(), "missing.yaml")

	err := run(context.Background(), cfg, logging.Noop(), listeners{})
	if err == nil {
		t.Fatalf("expected an error for a missing seed file")
	}
}

func TestListenFailureClosesOtherListeners(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	defer busy.Close()
	grpcLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}

	cfg := config.Default()
	cfg.HTTPAddr = busy.Addr().String()
	cfg.MetricsAddr = ""

	err = run(context.Background(), cfg, logging.Noop(), listeners{grpc: grpcLis})
	if err == nil {
		t.Fatalf("expected an error for a busy HTTP address")
	}
	if conn, err := net.DialTimeout("tcp", grpcLis.Addr().String(), time.Second); err == nil {
		conn.Close()
		t.Fatalf("gRPC listener still accepting after startup failed")
	}
}
