/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for Sequitur grammar induction. Reads a token
stream from a file or stdin, induces its grammar and renders it, with
configuration from flags, config files and SEQUITUR_ environment variables.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/sequitur/cmd/sequitur/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Configuration
	configFile string
	logLevel   string

	// Logging configuration
	logDir      string
	logFormat   string
	logMaxFiles int
	logCompress bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sequitur",
		Short: "Sequitur - incremental grammar induction",
		Long: `Sequitur infers a hierarchical grammar from a sequence of tokens. Every
repeated pair of adjacent symbols becomes a rule, and every rule is used at least
twice, so the grammar is a compact description of the structure of the input.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Log output directory (empty for console only)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().IntVar(&logMaxFiles, "log-max-files", 10, "Maximum number of log files to keep")
	rootCmd.PersistentFlags().BoolVar(&logCompress, "log-compress", false, "Compress log files when closed")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("log_compress", rootCmd.PersistentFlags().Lookup("log-compress"))

	// Add induce command
	induceCmd := &cobra.Command{
		Use:   "induce [file]",
		Short: "Induce the grammar of a token stream",
		Long: `Read the input file (or stdin when no file or "-" is given), split it into
tokens and induce its grammar. The grammar is written to stdout or to --output in
the selected format.`,
		Args: cobra.MaximumNArgs(1),
		RunE: commands.RunInduce,
	}

	induceCmd.Flags().StringP("tokenizer", "t", "chars", "Tokenizer (see the tokenizers command)")
	induceCmd.Flags().StringP("format", "f", "text", "Output format (text, debug, json, yaml)")
	induceCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	induceCmd.Flags().Bool("audit", false, "Check every grammar invariant after each token")
	induceCmd.Flags().Int("max-restore-passes", 0, "Bound of the restore loop per token (0 = from grammar size)")
	induceCmd.Flags().String("metrics-out", "", "Write Prometheus metrics to this textfile")
	induceCmd.Flags().String("report-dir", "", "Write an HTML report to this directory")
	induceCmd.Flags().String("profile-dir", "", "Write CPU and heap profiles to this directory")
	induceCmd.Flags().String("summary-dir", "", "Write a JSON run summary to this directory")

	viper.BindPFlag("induce.tokenizer", induceCmd.Flags().Lookup("tokenizer"))
	viper.BindPFlag("induce.format", induceCmd.Flags().Lookup("format"))
	viper.BindPFlag("induce.output", induceCmd.Flags().Lookup("output"))
	viper.BindPFlag("induce.audit", induceCmd.Flags().Lookup("audit"))
	viper.BindPFlag("induce.max_restore_passes", induceCmd.Flags().Lookup("max-restore-passes"))
	viper.BindPFlag("induce.metrics_out", induceCmd.Flags().Lookup("metrics-out"))
	viper.BindPFlag("induce.report_dir", induceCmd.Flags().Lookup("report-dir"))
	viper.BindPFlag("induce.profile_dir", induceCmd.Flags().Lookup("profile-dir"))
	viper.BindPFlag("induce.summary_dir", induceCmd.Flags().Lookup("summary-dir"))

	rootCmd.AddCommand(induceCmd)

	// Add verify command for built-in self-checks
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the grammar invariants on built-in and random inputs",
		Long: `Induce grammars for built-in samples and seeded random sequences and check
digram uniqueness, rule utility, reference counts, re-expansion and the text
rendering of each. Useful as a CI smoke test.`,
		Args: cobra.NoArgs,
		RunE: commands.PerformSelfCheck,
	}

	verifyCmd.Flags().Int("samples", 50, "Number of random sequences")
	verifyCmd.Flags().Int64("seed", 1, "Seed of the random sequences")
	verifyCmd.Flags().Int("max-length", 200, "Maximum length of a random sequence")
	verifyCmd.Flags().Int("alphabet", 4, "Number of distinct tokens in random sequences")

	viper.BindPFlag("verify.samples", verifyCmd.Flags().Lookup("samples"))
	viper.BindPFlag("verify.seed", verifyCmd.Flags().Lookup("seed"))
	viper.BindPFlag("verify.max_length", verifyCmd.Flags().Lookup("max-length"))
	viper.BindPFlag("verify.alphabet", verifyCmd.Flags().Lookup("alphabet"))

	rootCmd.AddCommand(verifyCmd)

	// Add tokenizers command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "tokenizers",
		Short: "List available tokenizers",
		Args:  cobra.NoArgs,
		Run:   commands.ListTokenizers,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
