package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lumen/pkg/localstore"
	"lumen/pkg/model"
)

// newInitCmd creates the "lumen init" subcommand.
func newInitCmd() *cobra.Command {
	var (
		projectID      string
		storeURL       string
		apiKey         string
		enoughLabelled int
		seedPath       string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the lumen config and set up the store",
		Long: "Writes ~/.lumen/config.toml. With --store-url the project lives on a\n" +
			"remote store; without it a local SQLite store is created, optionally\n" +
			"seeded from a YAML vocabulary/fixture file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := ResolvePaths()
			if err != nil {
				return err
			}

			cfg := &Config{
				ProjectID:      projectID,
				StoreURL:       storeURL,
				APIKey:         apiKey,
				EnoughLabelled: enoughLabelled,
			}

			if storeURL == "" {
				cfg.LocalDB = paths.LocalDB
				local, err := localstore.Open(paths.LocalDB)
				if err != nil {
					return err
				}
				defer local.Close() //nolint:errcheck // best-effort close

				if seedPath != "" {
					seed, err := localstore.LoadSeed(seedPath)
					if err != nil {
						return err
					}
					if projectID == "" {
						cfg.ProjectID = seed.Project
					}
					if err := local.Apply(cmd.Context(), seed); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "seeded project %s from %s\n", seed.Project, seedPath)
				} else if projectID != "" {
					if err := local.CreateProject(cmd.Context(), model.Project{ID: projectID}); err != nil {
						return err
					}
				}
			}

			if cfg.ProjectID == "" {
				return fmt.Errorf("a project is required: pass --project or --seed")
			}

			if err := SaveConfig(paths.ConfigPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (project %s)\n", paths.ConfigPath, cfg.ProjectID)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "project identifier")
	cmd.Flags().StringVar(&storeURL, "store-url", "", "remote store base URL (empty = local store)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "bearer credential for the remote store")
	cmd.Flags().IntVar(&enoughLabelled, "enough-labelled", 10, "labelling-sufficiency threshold")
	cmd.Flags().StringVar(&seedPath, "seed", "", "YAML seed file for the local store")

	return cmd
}
