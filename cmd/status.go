package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/trbridge/bridge"
)

// statusCmd reports the connection state made during start-up
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the connection state to the daemon",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Run one more connection attempt and report the result",
	Args:  cobra.NoArgs,
	RunE:  runConnect,
}

func init() {
	rootCmd.AddCommand(statusCmd, connectCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	address := client.Config()[bridge.KeyServerAddress]

	fmt.Fprintf(cmd.OutOrStdout(), "Daemon: %s (%s)\n", address, cfg.RPC.Client)
	fmt.Fprintf(cmd.OutOrStdout(), "State: %s\n", client.State())

	switch {
	case !client.IsConnected():
		return fmt.Errorf("not connected")
	case !client.IsAuthenticated():
		return fmt.Errorf("not authenticated")
	}

	res := client.List(cmd.Context())
	if err := resultError(res); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Torrents: %d\n", len(res.Value))
	return nil
}

func runConnect(cmd *cobra.Command, args []string) error {
	res := client.Connect(cmd.Context())
	if res.OK() {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Connection successful!")
		return nil
	}
	return fmt.Errorf("connection failed (%s): %w", client.State(), res.Err)
}
