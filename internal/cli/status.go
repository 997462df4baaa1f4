package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pablasso/oracle/internal/tui"
)

var statusFormat string

func init() {
	statusCmd.Flags().StringVarP(&statusFormat, "format", "f", "text", "Output format: text|json|yaml")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current state once",
	Long:  `Read the state document and print it. Never modifies the document.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := newStore().Snapshot()
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}

	out := cmd.OutOrStdout()
	switch statusFormat {
	case "text":
		_, err = fmt.Fprint(out, tui.RenderSnapshot(st, cfg.Dashboard.LogTail, time.Now(), ""))
		return err
	case "json":
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal state: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(st); err != nil {
			return fmt.Errorf("failed to marshal state: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json, or yaml)", statusFormat)
	}
}
