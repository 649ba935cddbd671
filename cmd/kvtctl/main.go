// Command kvtctl is an inspection CLI over an in-process kvtgraph
// engine: list provisioned tables and scan a table's raw rows.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/pingcap-incubator/kvtgraph/internal/kvt"
	"github.com/pingcap-incubator/kvtgraph/internal/kvtconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "kvtctl",
		Short: "Inspect a kvtgraph engine's tables.",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a kvtconfig TOML file")
	root.AddCommand(newTablesCommand())
	root.AddCommand(newScanCommand())

	if err := root.Execute(); err != nil {
		logrus.WithField("component", "kvtctl").WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func newEngine() (*kvt.Engine, error) {
	conf, err := kvtconfig.Load(configPath)
	if err != nil {
		return nil, err
	}
	mode, err := conf.ParseMode()
	if err != nil {
		return nil, err
	}
	return kvt.New(mode), nil
}

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List every table currently provisioned on a fresh engine.",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEngine()
			if err != nil {
				return err
			}
			for _, t := range e.ListTables() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", t.ID, t.Name, t.Partition)
			}
			return nil
		},
	}
}

func newScanCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "scan <table-id> <start-hex> <end-hex>",
		Long:  "Scan treats \"-\" as an open bound and any other argument as a hex-encoded key.",
		Short: "Scan a committed range of a table and print raw key/value pairs.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum rows to print")
	return cmd
}

func runScan(cmd *cobra.Command, args []string, limit int) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	var tableID uint64
	if _, err := fmt.Sscanf(args[0], "%d", &tableID); err != nil {
		return fmt.Errorf("invalid table id %q: %w", args[0], err)
	}
	start, err := hexOrNil(args[1])
	if err != nil {
		return fmt.Errorf("invalid start key %q: %w", args[1], err)
	}
	end, err := hexOrNil(args[2])
	if err != nil {
		return fmt.Errorf("invalid end key %q: %w", args[2], err)
	}
	rows, err := e.Scan(0, tableID, start, end, limit)
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", row.Key, row.Value)
	}
	return nil
}

func hexOrNil(s string) ([]byte, error) {
	if s == "-" {
		return nil, nil
	}
	return hex.DecodeString(s)
}
