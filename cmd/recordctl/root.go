package main

import (
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"travel-records-service/internal/infrastructure/config"
	"travel-records-service/internal/infrastructure/persistence"
	"travel-records-service/internal/usecase"
	"travel-records-service/pkg/logger"
	"travel-records-service/pkg/metrics"
)

// cli carries the state shared by every subcommand
type cli struct {
	fs       afero.Fs
	dataFile string
	format   string
	verbose  bool
	service  *usecase.RecordService
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	c := &cli{fs: fs}

	root := &cobra.Command{
		Use:           "recordctl",
		Short:         "Inspect and maintain the travel record file",
		Long:          `recordctl works directly on the record file used by the travel records server.`,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open()
		},
	}

	root.PersistentFlags().StringVarP(&c.dataFile, "data-file", "f", "", "record file (default from DATA_FILE)")
	root.PersistentFlags().StringVar(&c.format, "format", "", "file format json|jsonl (default from DATA_FORMAT)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.statsCmd(),
		c.listCmd(),
		c.getCmd(),
		c.createCmd(),
		c.deleteCmd(),
		c.searchCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.clearCmd(),
		c.nextIDCmd(),
	)
	return root
}

// open builds the record service from flags, falling back to the environment
func (c *cli) open() error {
	if c.dataFile == "" || c.format == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if c.dataFile == "" {
			c.dataFile = cfg.DataFile
		}
		if c.format == "" {
			c.format = cfg.DataFormat
		}
	}

	format, err := persistence.ParseFormat(c.format)
	if err != nil {
		return err
	}

	var log logger.Logger = logger.NewNopLogger()
	if c.verbose {
		log = logger.NewLogger("debug")
	}
	store, err := persistence.NewFileStore(c.fs, c.dataFile, format, log)
	if err != nil {
		return err
	}
	c.service = usecase.NewRecordService(store, metrics.NewMetrics("recordctl", prometheus.NewRegistry()), log)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
