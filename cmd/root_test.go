// file: cmd/root_test.go
// version: 2.0.0
// guid: 7f0b2d4e-6a8c-4195-bd7f-9b1d3f5b7e08

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/mrodavis/sound-circle-be/internal/config"
)

func TestInitConfigCreatesDatabaseDirectory(t *testing.T) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "db", "test.db")

	origCfgFile := cfgFile
	origDBPath := databasePath
	origConfig := config.AppConfig
	defer func() {
		cfgFile = origCfgFile
		databasePath = origDBPath
		config.AppConfig = origConfig
		viper.Reset()
	}()

	cfgFile = filepath.Join(tempDir, "config.yaml")
	databasePath = dbPath

	viper.Reset()
	initConfig()

	if _, err := os.Stat(filepath.Dir(dbPath)); err != nil {
		t.Fatalf("expected database directory to exist: %v", err)
	}
}

func TestInitConfigUsesHomeConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".sound-circle.yaml")
	if err := os.WriteFile(configPath, []byte("port: \"4000\"\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	origCfgFile := cfgFile
	origDBPath := databasePath
	origConfig := config.AppConfig
	defer func() {
		cfgFile = origCfgFile
		databasePath = origDBPath
		config.AppConfig = origConfig
		viper.Reset()
	}()

	t.Setenv("HOME", tempDir)
	cfgFile = ""
	databasePath = ""

	viper.Reset()
	initConfig()

	if config.AppConfig.Port != "4000" {
		t.Fatalf("expected port from home config, got %q", config.AppConfig.Port)
	}
}

func TestRootCommandHasServe(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "serve" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected serve subcommand to be registered")
	}
}
