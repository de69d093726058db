package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"zoo-management/config"
	"zoo-management/logger"
	"zoo-management/zoo"
)

var (
	cfgFile string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "zoo",
	Short: "Zoo record keeping: animals, exhibits and care records",
	Long: `zoo keeps track of animals, the exhibits that house them and their
feeding and health check history, persisted in a local SQLite database.

Running zoo without a subcommand starts the interactive menu.

Examples:
  zoo                       # Interactive menu on ./zoo.db
  zoo --db data/zoo.db      # Use another database file
  zoo list                  # Print exhibits and animals`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, log, err := openManager()
		if err != nil {
			return err
		}
		defer mgr.Close()
		defer log.Sync()

		if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Println("Welcome to the Zoo Management System!")
			fmt.Println("Numeric prompts repeat until a value in range is entered.")
		}
		runMenus(newPrompter(os.Stdin, os.Stdout), mgr)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print exhibits and animals",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, log, err := openManager()
		if err != nil {
			return err
		}
		defer mgr.Close()
		defer log.Sync()

		p := newPrompter(os.Stdin, os.Stdout)
		handleListExhibits(p, mgr)
		handleListAnimals(p, mgr)
		fmt.Printf("\nCare records: %d\n", mgr.Care.Total())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides db.path)")
	rootCmd.AddCommand(listCmd)
}

// openManager loads configuration, builds the logger and restores state.
func openManager() (*zoo.ZooManager, *zap.SugaredLogger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if dbPath != "" {
		cfg.DB.Path = dbPath
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return nil, nil, err
	}

	mgr, err := zoo.NewZooManager(cfg.DB.Path, log)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	def := zoo.DefaultExhibit{
		Name:     cfg.DefaultExhibit.Name,
		Type:     cfg.DefaultExhibit.Type,
		Capacity: cfg.DefaultExhibit.Capacity,
	}
	if err := mgr.Load(def); err != nil {
		mgr.Close()
		return nil, nil, fmt.Errorf("load zoo state: %w", err)
	}
	return mgr, log, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
