package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Davidi18/Schema-API-Full/internal/config"
	"github.com/Davidi18/Schema-API-Full/internal/fetch"
	"github.com/Davidi18/Schema-API-Full/internal/knowledge"
)

var (
	outDir  string
	source  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Generate the reference files used by schema-api",
	Long: `knowledge regenerates the static files schema-api reads at runtime:

  rules     writes google_rules.yml with title, description and heading limits
  ontology  scrapes the schema.org type listing into ontology.json`,
	SilenceUsage: true,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Write the Google snippet rule table",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		path, err := knowledge.WriteRules(outDir, knowledge.DefaultGoogleRules())
		if err != nil {
			return err
		}
		log.Info("rules written", "path", path)
		return nil
	},
}

var ontologyCmd = &cobra.Command{
	Use:   "ontology",
	Short: "Scrape schema.org types into ontology.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		cfg := config.Load()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		f := fetch.New(cfg.UserAgent, cfg.MaxFetchBytes, nil)
		defer f.Close()

		types, err := knowledge.FetchSchemaTypes(ctx, f, source, cfg.PageFetchTimeout)
		if err != nil {
			return err
		}
		path, err := knowledge.WriteOntology(outDir, knowledge.NewOntology(types, time.Now()))
		if err != nil {
			return err
		}
		log.Info("ontology written", "path", path, "types", len(types))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outDir, "dir", "knowledge", "output directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	ontologyCmd.Flags().StringVar(&source, "source", knowledge.DefaultSource, "schema.org page listing every type")

	rootCmd.AddCommand(rulesCmd, ontologyCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
