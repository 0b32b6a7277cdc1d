package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keymaster/internal/catalog"
	"github.com/verte-zerg/keymaster/internal/economy"
	"github.com/verte-zerg/keymaster/internal/game"
	"github.com/verte-zerg/keymaster/internal/savegame"
)

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the save slot and its challenge history",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadGameConfig(cmd)
	if err != nil {
		return err
	}
	if !resetYes {
		ok, err := confirm(cmd.InOrStdin(), fmt.Sprintf("Reset slot %q? All progress will be lost. [y/N] ", cfg.Slot))
		if err != nil {
			return err
		}
		if !ok {
			logErrln("Reset cancelled.")
			return nil
		}
	}

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	session := game.New(catalog.Default(), st, st, game.Options{Slot: cfg.Slot, Logger: cliLogger(cfg)})
	if err := session.Reset(cmd.Context()); err != nil {
		return fmt.Errorf("failed to reset slot: %w", err)
	}
	logErrf("Reset slot %q\n", cfg.Slot)
	return nil
}

func confirm(in io.Reader, prompt string) (bool, error) {
	logErrf("%s", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the save blob to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExportCmd,
	}
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadGameConfig(cmd)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	data, err := savegame.NewAdapter(st, cfg.Slot, cliLogger(cfg)).Export(cmd.Context())
	if errors.Is(err, savegame.ErrNoSave) {
		return fmt.Errorf("slot %q has no save", cfg.Slot)
	}
	if err != nil {
		return err
	}

	if len(args) == 0 || args[0] == "-" {
		if _, err := cmd.OutOrStdout().Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	path := args[0]
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}
	logErrf("Wrote export to %s\n", path)
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "keymaster-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a save blob into the slot",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadGameConfig(cmd)
	if err != nil {
		return err
	}
	var data []byte
	if args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read import: %w", err)
	}

	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	engine := economy.New(catalog.Default())
	adapter := savegame.NewAdapter(st, cfg.Slot, cliLogger(cfg))
	if err := adapter.Import(cmd.Context(), data, engine); err != nil {
		if savegame.IsCorrupt(err) {
			return fmt.Errorf("%s is not a valid save: %w", args[0], err)
		}
		return err
	}
	logErrf("Imported save with %s lifetime presses into slot %q\n", humanize.Comma(int64(engine.LifetimePresses())), cfg.Slot)
	return nil
}

func newSlotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "List save slots",
		Args:  cobra.NoArgs,
		RunE:  runSlotsCmd,
	}
}

func runSlotsCmd(cmd *cobra.Command, _ []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	saves, err := st.ListSaves(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list saves: %w", err)
	}
	if len(saves) == 0 {
		logErrln("No saves yet. Start playing with: keymaster")
		return nil
	}
	for _, s := range saves {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-20s %8s  %s\n", s.Slot, humanize.Bytes(uint64(s.Size)), humanize.Time(s.UpdatedAt)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
