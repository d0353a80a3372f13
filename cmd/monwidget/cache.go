package main

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/opd-ai/monwidget/internal/cache"
)

func cacheCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the placeholder cache",
	}
	cmd.PersistentFlags().StringVar(&path, "path", cache.DefaultPath(), "cache file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the cached disks and battery devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A corrupt cache loads as empty.
			c := cache.NewStore(path, nil).Load()
			data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(c, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the cache file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cache.NewStore(path, nil).Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", path)
			return nil
		},
	}

	cmd.AddCommand(show, clearCmd)
	return cmd
}
