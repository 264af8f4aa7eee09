// Package cmd provides the shopforge command-line interface.
//
// Configuration is layered: command-line flags take precedence over
// SHOPFORGE_ environment variables, which take precedence over the
// .shopforge.yml config file. Environment variables follow the
// SHOPFORGE_<SECTION>_<OPTION> pattern, e.g. SHOPFORGE_SERVER_PORT=9000.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "shopforge",
	Short: "Storefront section editor with live preview",
	Long: `Shopforge is a storefront composition editor. It manages the section
layout of a shop page (builtin sections plus custom content blocks), keeps
an isolated theme renderer in sync with every edit over a websocket
channel, and persists the result as a versioned shop configuration.

Quick Start:
  shopforge serve --shop my-shop     Start the editor and preview server
  shopforge validate config.json     Check a saved shop configuration
  shopforge version                  Print build information`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is .shopforge.yml)")
	rootCmd.PersistentFlags().String("log-level", "info",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text",
		"log format (text, json)")

	bindViperFlags(rootCmd.PersistentFlags(), map[string]string{
		"log.level":  "log-level",
		"log.format": "log-format",
	})
}

// bindViperFlags wires cobra flags into viper config keys so flag values
// override the config file and environment.
func bindViperFlags(flags *pflag.FlagSet, bindings map[string]string) {
	for key, name := range bindings {
		viper.BindPFlag(key, flags.Lookup(name))
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfig := os.Getenv("SHOPFORGE_CONFIG_FILE"); envConfig != "" {
		viper.SetConfigFile(envConfig)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".shopforge")
	}

	viper.SetEnvPrefix("SHOPFORGE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults and env vars carry the rest.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
