/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the sequitur commands. Provides configuration
loading, logging setup and input helpers used across command implementations.
*/

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/kleascm/sequitur/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("SEQUITUR")
	viper.AutomaticEnv()

	return nil
}

// SetupLogging builds the logger from the log_* keys. Console output goes to
// the command's error stream.
func SetupLogging(cmd *cobra.Command) (*logging.Logger, error) {
	config := logging.DefaultLoggerConfig()
	if v := viper.GetString("log_level"); v != "" {
		config.Level = logging.LogLevel(v)
	}
	if v := viper.GetString("log_format"); v != "" {
		config.Format = logging.LogFormat(v)
	}
	if v := viper.GetInt("log_max_files"); v > 0 {
		config.MaxFiles = v
	}
	config.OutputDir = viper.GetString("log_dir")
	config.Compress = viper.GetBool("log_compress")
	config.Console = cmd.ErrOrStderr()

	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// openInput returns the named file, or the command's input for "" and "-".
func openInput(cmd *cobra.Command, args []string) (io.ReadCloser, string, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(cmd.InOrStdin()), "stdin", nil
	}
	file, err := os.Open(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("failed to open input: %w", err)
	}
	return file, args[0], nil
}

// createOutput returns the named file, or the command's output for "".
func createOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{cmd.OutOrStdout()}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output: %w", err)
	}
	return file, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
