package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maestro-drills/backend/internal/catalog"
)

func newSeedCmd(load configLoader) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the exercise catalog; existing exercises are kept as they are",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := loadCatalog(file)
			if err != nil {
				return err
			}

			a, err := newApp(load)
			if err != nil {
				return err
			}
			defer a.Close()

			inserted, err := a.service.Seed(cmd.Context(), entries)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d new exercises (%d in catalog)\n", inserted, len(entries))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML catalog to load instead of the built-in one")
	return cmd
}

func loadCatalog(file string) ([]catalog.Entry, error) {
	if file == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(file)
}
