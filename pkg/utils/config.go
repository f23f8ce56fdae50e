// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

// Package utils provides configuration loading and network helpers
// shared by the CLI commands.
package utils

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// ConfigurationFileDirectory is where config files are searched first.
// Set via the --config_dir persistent flag.
var ConfigurationFileDirectory = "."

// LoadConfiguration merges a named config file into viper, searching the
// configured directory and the standard system locations. Environment
// variables override file values.
func LoadConfiguration(configFileName string, required bool) bool {
	viper.SetConfigName(configFileName)
	viper.AddConfigPath(ConfigurationFileDirectory)
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.nexusgrid")
	viper.AddConfigPath("/usr/local/etc/nexusgrid/")
	viper.AddConfigPath("/etc/nexusgrid/")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if required {
				log.Fatal().Msgf("Config file not found: %s", configFileName)
			}
			log.Info().Msgf("Config file not found: %s", configFileName)
			return false
		}

		if required {
			log.Fatal().Msgf("Failed to load required config file: %s", configFileName)
		}
		return false
	}
	log.Info().Msgf("Loaded config file: %s", viper.ConfigFileUsed())

	return true
}
