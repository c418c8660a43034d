// Package cmd provides the blog command-line interface: serving the site,
// migrating the schema and loading sample data.
package cmd

import (
	"blog/config"
	"blog/database"
	"blog/utils"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "blog",
	Short: "A blogging web application",
	Long: `blog serves a multi-author blog with categories, tags, comments
and a staff admin.

Configuration is read from the environment, optionally seeded from a .env
file. Run without a subcommand to start the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
}

// setup loads configuration, initialises logging and opens the database.
func setup() (*config.Config, *gorm.DB, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Debug().Err(err).Str("file", envFile).Msg("No env file loaded")
	}

	cfg := config.Load()
	utils.InitLogger(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
