package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"claimpilot/internal/config"
)

// initCmd writes a starter configuration into the workspace
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize claimpilot in the current workspace",
	Long: `Creates the .claimpilot/ directory with a default config.yaml.

Edit the generated file to point at your portal, then set the
credentials through the environment:

  CLAIMPILOT_PORTAL_URL
  CLAIMPILOT_PORTAL_USERNAME
  CLAIMPILOT_PORTAL_PASSWORD

Credentials set in the environment always override the config file, so
they never need to be written to disk.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	path := config.DefaultPath(ws)

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Already initialized: %s\n", path)
		fmt.Println("Delete the file first to regenerate defaults.")
		return nil
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Workspace initialized: %s\n", path)
	fmt.Println("Next steps:")
	fmt.Println("  1. Set portal.base_url in the config (or CLAIMPILOT_PORTAL_URL)")
	fmt.Println("  2. Export CLAIMPILOT_PORTAL_USERNAME and CLAIMPILOT_PORTAL_PASSWORD")
	fmt.Println("  3. Run: claimpilot run --input claims.xlsx")
	return nil
}
