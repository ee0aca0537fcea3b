// file: cmd/root.go
// version: 2.0.0
// guid: 5d8f0b2c-4e6a-4973-bb5d-7f9b1d3f5e86

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrodavis/sound-circle-be/internal/config"
	"github.com/mrodavis/sound-circle-be/internal/database"
	"github.com/mrodavis/sound-circle-be/internal/server"
)

var cfgFile string
var databasePath string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sound-circle",
	Short: "Backend service for sharing sound bytes and playlists",
	Long: `Sound Circle is the backend for a social music-sharing app. It keeps a
deduplicated track catalog, enriches new tracks from the iTunes Search
API, and manages per-user playlists and sound byte posts.`,
}

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server backed by the SQLite store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.InitializeStore(config.AppConfig.DatabasePath); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.CloseStore()

		fmt.Printf("Using database: %s\n", config.AppConfig.DatabasePath)
		if config.AppConfig.EnrichmentEnabled {
			fmt.Printf("Track enrichment enabled (%s)\n", config.AppConfig.ITunesBaseURL)
		}

		srv := server.NewServer()
		cfg := server.GetDefaultServerConfig()

		if port := cmd.Flag("port").Value.String(); port != "" {
			cfg.Port = port
		}
		if host := cmd.Flag("host").Value.String(); host != "" {
			cfg.Host = host
		}

		return srv.Start(cfg)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sound-circle.yaml)")
	rootCmd.PersistentFlags().StringVar(&databasePath, "db", "soundcircle.db", "path to the SQLite database")
	rootCmd.PersistentFlags().Bool("enrichment", false, "enable track enrichment via the iTunes Search API")

	viper.BindPFlag("database_path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("enrichment_enabled", rootCmd.PersistentFlags().Lookup("enrichment"))

	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "", "port to run the API server on")
	serveCmd.Flags().String("host", "", "host to bind the API server to")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sound-circle")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	// Ensure database directory exists
	if databasePath != "" {
		dbDir := filepath.Dir(databasePath)
		if dbDir != "." {
			if err := os.MkdirAll(dbDir, 0755); err != nil {
				fmt.Printf("Error creating database directory: %v\n", err)
			}
		}
	}

	config.InitConfig()
}
