package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/aimtune/pkg/logger"
)

var version = "dev"

// Persistent flags.
var (
	baseURL    string
	lang       string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "aimtune",
	Short: "Per-axis touchscreen sensitivity for mobile FPS games",
	Long: `aimtune recommends per-axis touchscreen sensitivity for mobile FPS games
from your device, play style and game, and refines it with your feedback.

Examples:
  aimtune serve
  aimtune calculate --game pubg-mobile --width 1080 --height 2400 --dpi 401 --refresh 120 --gyro --fingers 4 --skill advanced --aim right
  aimtune feedback --result <id> --axis scope4x --rating too-high
  aimtune games --lang es`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", envOr("AIMTUNE_URL", "http://localhost:9080"), "aimtune server URL")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", envOr("AIMTUNE_LANG", "en"), "output language (en, es, fr, de, pt)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON")

	rootCmd.AddCommand(serveCmd, mcpCmd, benchCmd)
	rootCmd.AddCommand(calculateCmd, feedbackCmd, gamesCmd, historyCmd, resultsCmd, statsCmd, clearCmd)
}

func main() {
	// mcp owns stdout, so every command logs to stderr.
	if err := logger.InitWithWriter(os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
