package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/taskgate/internal/systemd"
)

var (
	initSystemdDir  string
	initSystemdUser string
)

func init() {
	rootCmd.AddCommand(initSystemdCmd)
	initSystemdCmd.Flags().StringVar(&initSystemdDir, "dir", "", "Write taskgate.service into this directory instead of stdout")
	initSystemdCmd.Flags().StringVar(&initSystemdUser, "user", "", "Run the service as this user")
}

var initSystemdCmd = &cobra.Command{
	Use:   "init-systemd",
	Short: "Generate a systemd unit for taskgate serve",
	Long:  "Renders a hardened systemd unit whose only writable path is the data\nroot. Set logging.journal in the config to log to the journal.",
	RunE:  runInitSystemd,
}

func runInitSystemd(cmd *cobra.Command, args []string) error {
	cfg, path, _, err := loadConfig()
	if err != nil {
		return err
	}
	bin, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot locate taskgate binary: %w", err)
	}
	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	unit, err := systemd.Unit(systemd.UnitOptions{
		Binary:     bin,
		ConfigPath: path,
		DataRoot:   cfg.Root(),
		User:       initSystemdUser,
	})
	if err != nil {
		return err
	}

	if initSystemdDir == "" {
		fmt.Fprint(cmd.OutOrStdout(), unit)
		return nil
	}
	dest := filepath.Join(initSystemdDir, systemd.UnitName)
	if err := os.WriteFile(dest, []byte(unit), 0644); err != nil {
		return fmt.Errorf("failed to write unit: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", dest)
	return nil
}
