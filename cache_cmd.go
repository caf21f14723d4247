package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lawflow/lawflow/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show audio cache usage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCache(func(c *cache.Manager, dir string) error {
			_, disk := c.Stats()
			printCacheStats(cmd.OutOrStdout(), dir, disk)
			return nil
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached audio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withCache(func(c *cache.Manager, _ string) error {
			_, disk := c.Stats()
			if err := c.Clear(); err != nil {
				return fmt.Errorf("unable to clear cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s of cached audio\n", humanize.Bytes(uint64(disk.Size))) //nolint:gosec
			return nil
		})
	},
}

func withCache(fn func(*cache.Manager, string) error) error {
	cfg, err := cacheConfig()
	if err != nil {
		return err
	}
	c, err := cache.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("unable to open cache: %w", err)
	}
	defer c.Close() //nolint:errcheck
	return fn(c, cfg.DiskPath)
}

func printCacheStats(w io.Writer, dir string, s cache.CacheStats) {
	fmt.Fprintf(w, "%s %s\n", keyword("Path:"), dir)
	fmt.Fprintf(w, "%s %d\n", keyword("Clips:"), s.ItemCount)
	fmt.Fprintf(w, "%s %s of %s\n", keyword("Size:"),
		humanize.Bytes(uint64(s.Size)), humanize.Bytes(uint64(s.Capacity))) //nolint:gosec
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}
