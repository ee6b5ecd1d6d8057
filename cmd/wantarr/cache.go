package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"github.com/vmunix/wantarr/internal/cache"
	"github.com/vmunix/wantarr/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk lookup cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired entries from the on-disk cache",
	RunE:  runCachePruneCmd,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePruneCmd)
}

func runCachePruneCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	settings, err := cfg.Validate()
	if err != nil {
		return err
	}
	if settings.Cache.Path == "" {
		fmt.Println("No on-disk cache configured")
		return nil
	}

	db, err := sql.Open("sqlite", settings.Cache.Path)
	if err != nil {
		return fmt.Errorf("open cache db: %w", err)
	}
	defer db.Close()

	store := cache.NewStore(db)
	if err := store.Init(cmd.Context()); err != nil {
		return fmt.Errorf("init cache db: %w", err)
	}
	pruned, err := store.Prune(cmd.Context())
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}
	fmt.Printf("Pruned %d expired entries\n", pruned)
	return nil
}
