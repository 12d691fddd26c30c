package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jama7777/Inifinite-wiki/internal/config"
)

// Version information (injected at build time via ldflags).
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	fmt.Printf("Infinite Wiki %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
	fmt.Println()

	// A missing API key must not hide version output; every other config
	// problem is still reported.
	cfg, err := config.Load()
	if err != nil && !errors.Is(err, config.ErrMissingAPIKey) {
		return err
	}

	if cfg != nil {
		fmt.Println("Configuration:")
		fmt.Printf("  Text model: %s\n", cfg.TextModel)
		fmt.Printf("  Vision model: %s\n", cfg.VisionModel)
		fmt.Printf("  Image model: %s\n", cfg.ImageModel)
		fmt.Printf("  Language: %s\n", cfg.Language)
	}

	key := os.Getenv("GEMINI_API_KEY")
	if key != "" {
		fmt.Println("  GEMINI_API_KEY: configured")
	} else {
		fmt.Println("  GEMINI_API_KEY: Not set")
		fmt.Println()
		fmt.Println("Hint: export GEMINI_API_KEY=your-api-key")
	}
	return nil
}
