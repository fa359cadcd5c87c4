package main

import (
	"fmt"
	"os"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "edushare",
	Short: "EduShare backend",
	Long: `EduShare shares study materials and sessions between students.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	seedCmd.Flags().String("file", "", "YAML seed file (default: embedded lookups)")

	tokenCmd.Flags().String("email", "", "Email claim (required)")
	tokenCmd.Flags().String("name", "", "user_metadata.full_name claim")
	tokenCmd.Flags().String("id", "", "Subject UUID (default: random)")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default 24h)")
	_ = tokenCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(tokenCmd)
}

func newLogger() *logger.ZapLogger {
	zcore, err := zap.NewProduction()
	if err != nil {
		zcore = zap.NewNop()
	}
	return logger.NewZapLogger(zcore.Sugar())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
