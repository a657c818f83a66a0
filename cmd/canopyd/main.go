package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/canopyfs/canopy/internal/logger"
	"github.com/canopyfs/canopy/pkg/config"
	"github.com/canopyfs/canopy/pkg/credential"
	"github.com/canopyfs/canopy/pkg/engine"
	"github.com/canopyfs/canopy/pkg/tree"
)

// seedDemoStructure registers a demo account and populates it with a small
// folder tree so a fresh deployment has something to look at. Re-running
// against a persistent store is a no-op: the duplicate registration is
// detected and the seed is skipped.
func seedDemoStructure(ctx context.Context, eng *engine.Engine) error {
	user, err := eng.Register(ctx, "demo@canopy.dev", "demo-password")
	if err != nil {
		if tree.IsCode(err, tree.ErrConflict) {
			logger.Info("Demo account already exists, skipping seed")
			return nil
		}
		return fmt.Errorf("failed to register demo account: %w", err)
	}

	docs, err := eng.Mkdir(ctx, user.ID, user.RootNodeID, "documents", "")
	if err != nil {
		return fmt.Errorf("failed to create documents folder: %w", err)
	}

	if _, err := eng.Mkdir(ctx, user.ID, user.RootNodeID, "photos", ""); err != nil {
		return fmt.Errorf("failed to create photos folder: %w", err)
	}

	files := []struct {
		name    string
		content string
	}{
		{"readme.txt", "Welcome to Canopy!\nThis account was seeded automatically.\n"},
		{"notes.txt", "Upload, share, lock, and trash files through the engine API.\n"},
	}

	for _, f := range files {
		body := strings.NewReader(f.content)
		if _, err := eng.Upload(ctx, user.ID, docs.ID, f.name, "text/plain", int64(len(f.content)), body, ""); err != nil {
			return fmt.Errorf("failed to upload %s: %w", f.name, err)
		}
	}

	logger.Info("Demo structure seeded for %s", user.Email)
	return nil
}

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	logLevel := flag.String("log-level", "", "Log level override (DEBUG, INFO, WARN, ERROR)")
	seed := flag.Bool("seed", false, "Seed a demo account and folder structure on startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure logger; the flag wins over the config file.
	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logger.SetLevel(level)

	fmt.Println("Canopy - Multi-Tenant File Storage Engine")
	logger.Info("Log level set to: %s", level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	treeStore, err := config.CreateTreeStore(ctx, cfg.Tree)
	if err != nil {
		log.Fatalf("Failed to create tree store: %v", err)
	}
	defer func() {
		if err := treeStore.Close(); err != nil {
			logger.Error("Failed to close tree store: %v", err)
		}
	}()

	blobStore, err := config.CreateBlobStore(ctx, cfg.Blob)
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}

	if err := treeStore.Healthcheck(ctx); err != nil {
		log.Fatalf("Tree store healthcheck failed: %v", err)
	}
	if err := blobStore.Healthcheck(ctx); err != nil {
		log.Fatalf("Blob store healthcheck failed: %v", err)
	}
	logger.Info("Store healthchecks passed")

	hasher := credential.NewBcryptHasher(cfg.Engine.BcryptCost)

	eng := engine.New(treeStore, blobStore, hasher, engine.Options{
		StorageAllotment: cfg.Engine.StorageAllotment,
		DownloadTTL:      cfg.Engine.DownloadTTL,
	})

	logger.Info("Engine configuration:")
	logger.Info("  Storage allotment: %d bytes", cfg.Engine.StorageAllotment)
	logger.Info("  Download TTL: %v", cfg.Engine.DownloadTTL)
	logger.Info("  Shutdown timeout: %v", cfg.Server.ShutdownTimeout)

	if *seed {
		if err := seedDemoStructure(ctx, eng); err != nil {
			log.Fatalf("Failed to seed demo structure: %v", err)
		}
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Engine is running. Press Ctrl+C to stop.")
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
}
