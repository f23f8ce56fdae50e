// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db"
	"github.com/Ai-Chetan/NexusGrid/pkg/layout/db/postgres"
	"github.com/Ai-Chetan/NexusGrid/pkg/logger"
	"github.com/Ai-Chetan/NexusGrid/pkg/utils"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database schema migrations",
	Run:   runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	f := migrateCmd.Flags()
	f.String("db_dsn", "", "Database connection string")
	viper.BindPFlags(f)
}

func runMigrate(cmd *cobra.Command, args []string) {
	utils.LoadConfiguration("layout", false)
	f := NewFlagLoader(cmd)

	store, err := postgres.Open(db.DefaultConfig(f.String("db_dsn")))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer store.Close()

	if err := store.Migrate(cmd.Context()); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	logger.Info().Msg("migrations applied")
}
