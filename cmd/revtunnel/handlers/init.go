package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/revtunnel/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = config.FileExists

	// runWizard runs the interactive form.
	runWizard = config.RunWizard

	// writeConfig writes the config to a file.
	writeConfig = config.WriteFile
)

// Init runs the configuration wizard and writes the result to a file.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	result, err := runWizard(ctx)
	if err != nil {
		return err
	}

	cfg, err := result.ToConfig()
	if err != nil {
		return err
	}

	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)

	return nil
}

// printWelcome prints the welcome message.
func printWelcome() {
	fmt.Println()
	fmt.Println("revtunnel - reverse SSH tunnel")
	fmt.Println("==============================")
	fmt.Println()
	fmt.Println("This wizard creates a tunnel configuration.")
	fmt.Println("Optional questions can be left empty to use the ssh defaults.")
	fmt.Println()
}

// printInitSuccess prints the success message with summary and next steps.
func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Tunnel Summary")
	fmt.Println("--------------")
	fmt.Printf("  Remote host:  %s\n", cfg.Host)
	fmt.Printf("  Remote port:  %d -> %s:%d\n", cfg.RemotePort, cfg.LocalHost, cfg.LocalPort)
	if cfg.Username != "" {
		fmt.Printf("  Username:     %s\n", cfg.Username)
	}
	if cfg.Identity != "" {
		fmt.Printf("  Identity:     %s\n", cfg.Identity)
	}
	fmt.Printf("  Attempts:     %d, %s apart\n", cfg.Attempts, cfg.Delay)
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Println("  1. Check the configuration:")
	fmt.Printf("     revtunnel check -c %s\n", outputPath)
	fmt.Println()
	fmt.Println("  2. Run the tunnel:")
	fmt.Printf("     revtunnel tunnel -c %s\n", outputPath)
	fmt.Println()
	fmt.Println("  3. Or install it as a service:")
	fmt.Printf("     sudo revtunnel install -c %s\n", outputPath)
	fmt.Println()
}
