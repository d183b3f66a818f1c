package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Vibe-Marketer/devping/internal/slot"
)

var slotsOpts struct {
	dir string
}

var (
	slotHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	slotAliveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	slotStaleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Show the on-screen slot registry",
	Long: `Show which stacking slots are held and by which process.

Stale entries belong to processes that exited without releasing their
slot; they are reclaimed lazily by the next claim.`,
	RunE: runSlots,
}

func init() {
	slotsCmd.Flags().StringVar(&slotsOpts.dir, "dir", "",
		"Slot registry directory (default: ~/.cache/devping/slots)")
	rootCmd.AddCommand(slotsCmd)
}

func runSlots(cmd *cobra.Command, args []string) error {
	dir := slotsOpts.dir
	if dir == "" {
		var err error
		dir, err = slot.DefaultDir()
		if err != nil {
			return fmt.Errorf("failed to resolve slot directory: %w", err)
		}
	}

	registry := slot.NewRegistry(dir, logger)
	held := registry.Held()

	if len(held) == 0 {
		fmt.Println("No slots held.")
		return nil
	}

	fmt.Println(slotHeaderStyle.Render(fmt.Sprintf("%-6s %-8s %-7s %s", "SLOT", "PID", "STATE", "CLAIMED")))
	for _, lock := range held {
		// Pad before styling so the ANSI codes don't skew the columns.
		state := slotAliveStyle.Render(fmt.Sprintf("%-7s", "alive"))
		if !lock.Alive {
			state = slotStaleStyle.Render(fmt.Sprintf("%-7s", "stale"))
		}
		fmt.Printf("%-6d %-8d %s %s\n", lock.Index, lock.PID, state, claimedAgo(dir, lock.Index))
	}
	return nil
}

// claimedAgo reports how long ago a slot's lock file was written.
func claimedAgo(dir string, index int) string {
	info, err := os.Stat(filepath.Join(dir, strconv.Itoa(index)))
	if err != nil {
		return "unknown"
	}
	return humanize.Time(info.ModTime())
}
