package hlasmcore

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RootCmd is the entry point for the hlasmcore CLI: a small demonstration
// front-end over the semantic-core analyzer, not a language server.
var RootCmd = &cobra.Command{
	Use:   "hlasmcore",
	Short: "A semantic-core analyzer for HLASM",
	Long: `hlasmcore is a library for the semantic core of an HLASM analyzer:
address/space modelling, symbol and dependency resolution, USING/DROP
tracking, and instruction/operand checking.

This CLI drives that core from pre-structured statement fixtures rather
than HLASM source, since parsing is out of this project's scope.`,
}

// Execute adds all child commands to RootCmd and runs it. Called once by
// main.main().
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(checkCmd, browseCmd, docsCmd)
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hlasmcore.yaml)")
	cobra.OnInitialize(initConfig)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".hlasmcore")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
