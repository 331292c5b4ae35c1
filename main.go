package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/docuflow-io/docuflow-engine/pkg/config"
	"github.com/docuflow-io/docuflow-engine/pkg/logging"
	"github.com/docuflow-io/docuflow-engine/pkg/models"
	"github.com/docuflow-io/docuflow-engine/pkg/services"
	"github.com/docuflow-io/docuflow-engine/pkg/stats"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	inputPath  string
	outputPath string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "docuflow-engine",
	Short: "Convert a relational schema snapshot into a document-oriented schema",
	Long: `docuflow-engine reads an extracted relational schema snapshot (JSON or YAML)
and produces a document-oriented schema with collections, embedded documents,
indexes, and a staged migration plan. It never connects to a live database.`,
	RunE:    run,
	Version: Version,
}

func init() {
	rootCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Schema snapshot file (JSON or YAML)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Configuration file")
	_ = rootCmd.MarkFlagRequired("input")
}

func run(cmd *cobra.Command, args []string) error {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	snap, err := models.LoadSnapshot(inputPath)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	// Inline row counts from the snapshot act as the row-count provider;
	// tables without one degrade to the default estimate.
	provider := stats.NewStaticProvider(snap.RowCounts())

	converter := services.NewConverter(cfg, logger)
	result := converter.Convert(cmd.Context(), snap.Tables, provider)

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	encoded = append(encoded, '\n')

	if outputPath == "" {
		_, err = os.Stdout.Write(encoded)
	} else {
		err = os.WriteFile(outputPath, encoded, 0o644)
	}
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("conversion failed: %s", result.Error)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
