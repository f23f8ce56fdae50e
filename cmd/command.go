// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"os"

	"github.com/Ai-Chetan/NexusGrid/pkg/utils"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nexusgrid",
	Short: "NexusGrid - lab infrastructure monitoring platform",
	Long: `NexusGrid manages the physical layout of lab facilities as a tree of
buildings, floors, rooms and equipment, with labs and assets provisioned
automatically alongside the tree.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&utils.ConfigurationFileDirectory, "config_dir", ".", "Directory for configuration files")
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
