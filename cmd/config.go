package cmd

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or change the store file",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one key, or every key",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change an existing key and persist it",
	Long: `Change an existing key and persist the store file. Changing server_address
triggers a reconnection attempt against the new address.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		values := client.Config()
		for _, key := range slices.Sorted(maps.Keys(values)) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, values[key])
		}
		return nil
	}

	res := client.ConfigValue(args[0])
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), res, map[string]string{args[0]: res.Value})
	}
	if err := resultError(res); err != nil {
		return fmt.Errorf("missing key %q: %w", args[0], err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	res := client.SetConfig(cmd.Context(), key, value)
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), res, client.Config())
	}
	if err := resultError(res); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %s\n", key, res.Value)
	fmt.Fprintf(cmd.OutOrStdout(), "Connection: %s\n", client.State())
	return nil
}
