package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"telemesh.io/prototype/internal/log"
)

func TestNodeRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "telemesh-config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	cfg := Default()
	cfg.Address = "AA:BB:CC:DD:EE:01"
	cfg.Logging.FileLevel = log.DebugLevel
	cfg.Logging.FilePath = "telemesh.log"
	cfg.API.Port = 8080

	path := filepath.Join(dir, "node.yaml")
	if err := WriteNode(path, cfg); err != nil {
		t.Fatalf("expected config to serialise, got %s", err)
	}
	loaded, err := LoadNode(path)
	if err != nil {
		t.Fatalf("expected config to load, got %s", err)
	}
	if loaded.Address != "AA:BB:CC:DD:EE:01" {
		t.Fatalf("expected the address to survive, got %q", loaded.Address)
	}
	if loaded.NetworkName != "telemesh" {
		t.Fatalf("expected the default network name, got %q", loaded.NetworkName)
	}
	if loaded.Consensus.BlockInterval != 30*time.Second {
		t.Fatalf("expected a 30s block interval, got %s", loaded.Consensus.BlockInterval)
	}
	if loaded.Consensus.RoleStrategy != "address-hash" {
		t.Fatalf("expected the address-hash strategy, got %q", loaded.Consensus.RoleStrategy)
	}
	if loaded.Logging.ConsoleLevel != log.InfoLevel || loaded.Logging.FileLevel != log.DebugLevel {
		t.Fatal("expected the log levels to survive")
	}
	if loaded.API.Port != 8080 {
		t.Fatalf("expected the API port to survive, got %d", loaded.API.Port)
	}
	if loaded.Pool.Size != 20 || loaded.Ledger.MaxBlocks != 10 {
		t.Fatal("expected the pool and ledger defaults to survive")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Address != "" {
		t.Fatal("expected the address to be left for the caller")
	}
	if cfg.Consensus.MaxTxPerBlock != 4 || cfg.Consensus.EmergencyMargin != 4 {
		t.Fatal("unexpected consensus defaults")
	}
	if cfg.Network.ListenPort != 7711 || cfg.Network.MaxPeers != 10 {
		t.Fatal("unexpected network defaults")
	}
	if cfg.Storage.Type != "badger" || cfg.Storage.SaveInterval != 60*time.Second {
		t.Fatal("unexpected storage defaults")
	}
	if cfg.Telemetry.Interval != 10*time.Second {
		t.Fatal("unexpected telemetry default")
	}
}
