package backend

import (
	"context"
	"path/filepath"
	"testing"

	"finsecure/internal/config"
)

func TestCreateSimulatedGateways(t *testing.T) {
	factory := NewFactory(nil)
	cfg := Config{
		Storage:       SimulatedStorage,
		Compute:       SimulatedCompute,
		SQLiteDBPath:  filepath.Join(t.TempDir(), "finsecure.db"),
		EstimatorSeed: 42,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gw, err := factory.CreateGateways(ctx, cfg)
	if err != nil {
		t.Fatalf("CreateGateways() error = %v", err)
	}
	defer gw.Cleanup()

	if gw.Storage == nil || gw.Compute == nil {
		t.Fatal("gateway pair incomplete")
	}

	// The pair must actually work end to end.
	obj, err := gw.Storage.Put(ctx, "probe.json", []byte("{}"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := gw.Storage.Get(ctx, obj.Ref); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
}

func TestCreateGatewaysRejectsInvalidConfig(t *testing.T) {
	factory := NewFactory(nil)

	tests := []struct {
		name   string
		config Config
	}{
		{"unknown storage", Config{Storage: "dropbox", Compute: SimulatedCompute}},
		{"unknown compute", Config{Storage: SimulatedStorage, Compute: "mainframe", SQLiteDBPath: "x.db"}},
		{"lighthouse without key", Config{Storage: LighthouseStorage, Compute: SimulatedCompute}},
		{"gcs without bucket", Config{Storage: GCSStorage, Compute: SimulatedCompute}},
		{"lilypad without key", Config{Storage: SimulatedStorage, Compute: LilypadCompute, SQLiteDBPath: "x.db"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := factory.CreateGateways(context.Background(), tt.config); err == nil {
				t.Error("CreateGateways() = nil error, want rejection")
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		StorageBackend:   "lighthouse",
		ComputeBackend:   "lilypad",
		LighthouseAPIKey: "lh-key",
		LilypadAPIKey:    "lp-key",
		EstimatorSeed:    7,
	}

	cfg, err := FromAppConfig(appCfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Storage != LighthouseStorage || cfg.Compute != LilypadCompute {
		t.Errorf("selection = %s/%s", cfg.Storage, cfg.Compute)
	}
	if cfg.EstimatorSeed != 7 {
		t.Errorf("seed = %d, want 7", cfg.EstimatorSeed)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) = nil error")
	}
}
