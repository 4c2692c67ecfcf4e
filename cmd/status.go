package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"irrigation_valve/internal/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the status of a running controller",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "Controller base URL (default: http://127.0.0.1:<port>)")
}

func runStatus(cmd *cobra.Command, _ []string) error {
	base := statusAddr
	if base == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		base = "http://127.0.0.1:" + strings.TrimPrefix(cfg.Port, ":")
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(strings.TrimSuffix(base, "/") + "/status")
	if err != nil {
		return fmt.Errorf("query controller: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return fmt.Errorf("controller answered %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var st models.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return fmt.Errorf("decode status: %w", err)
	}
	printStatus(cmd.OutOrStdout(), st)
	return nil
}

func phaseColor(p models.Phase) *color.Color {
	switch p {
	case models.PhaseOn:
		return color.New(color.FgHiGreen, color.Bold)
	case models.PhaseCoolingDown:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgHiBlack, color.Bold)
	}
}

func printStatus(w io.Writer, st models.Status) {
	label := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(w, "%s %s\n", label("valve:   "), phaseColor(st.Phase).Sprint(strings.ToUpper(string(st.Phase))))
	fmt.Fprintf(w, "%s %s (intended %s)\n", label("mode:    "), st.Mode, onOff(st.IntendedState))
	fmt.Fprintf(w, "%s %s\n", label("schedule:"), st.Schedule())

	switch {
	case st.Energized:
		fmt.Fprintf(w, "%s %s\n", label("running: "), time.Duration(st.RunSeconds)*time.Second)
	case st.OverheatProtected:
		fmt.Fprintf(w, "%s %s\n", label("cooldown:"), time.Duration(st.CooldownRemainingSeconds)*time.Second)
	}

	clockState := color.New(color.FgGreen).Sprint("synchronized")
	if !st.ClockTrusted {
		clockState = color.New(color.FgRed).Sprint("not synchronized")
	}
	fmt.Fprintf(w, "%s %s (%s)\n", label("clock:   "), st.Now.Format(time.RFC3339), clockState)

	if st.SignalQuality != nil {
		fmt.Fprintf(w, "%s %d%%\n", label("signal:  "), *st.SignalQuality)
	}
	if st.BootID != "" {
		fmt.Fprintf(w, "%s %s\n", label("boot id: "), st.BootID)
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
