package cmd

import (
	"blog/database"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample categories, tags, posts and comments",
	Long: `Load the sample data set. An "admin" staff user is created with the
password from SEED_ADMIN_PASSWORD if it does not exist yet. Running the
command again leaves existing records alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := setup()
		if err != nil {
			return err
		}
		if err := database.Migrate(db); err != nil {
			return err
		}
		if err := database.Seed(cmd.Context(), db, cfg.SeedAdminPassword); err != nil {
			return err
		}
		log.Info().Msg("Sample data created successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
