package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/s0up4200/trbridge/bridge"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List torrents matching the filter criteria",
	Long: `List the torrents on the daemon. Use --filter for an expression such as
'status:downloading AND progress:<50' or 'Name contains "linux"', or --preset
for a named filter from the config file.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one torrent",
	Args:  cobra.ExactArgs(1),
	RunE:  runByID(getTorrent),
}

var startCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Resume a torrent",
	Args:  cobra.ExactArgs(1),
	RunE:  runByID(startTorrent),
}

var stopCmd = &cobra.Command{
	Use:   "stop <id>",
	Short: "Pause a torrent",
	Args:  cobra.ExactArgs(1),
	RunE:  runByID(stopTorrent),
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a torrent from the daemon (local data is kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var addCmd = &cobra.Command{
	Use:   "add <file.torrent>",
	Short: "Add a torrent file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func init() {
	listCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	listCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	addCmd.Flags().StringVar(&downloadDir, "dir", "", "download directory on the daemon")

	rootCmd.AddCommand(listCmd, getCmd, startCmd, stopCmd, deleteCmd, addCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	selected, err := filters.Select(filterExpr, preset)
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	logger.Debug().Str("filter", selected.Expression()).Msg("Listing torrents")

	res := client.List(cmd.Context())
	if res.OK() {
		res.Value, err = filters.Apply(cmd.Context(), selected, res.Value)
		if err != nil {
			return err
		}
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), res, res.Value)
	}
	if err := resultError(res); err != nil {
		return err
	}

	printRecords(cmd.OutOrStdout(), res.Value)
	return nil
}

func runByID(call func(cmd *cobra.Command, id int64) bridge.Result[bridge.Record]) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		res := call(cmd, id)
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), res, res.Value)
		}
		if err := resultError(res); err != nil {
			return err
		}

		printRecord(cmd.OutOrStdout(), res.Value)
		return nil
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	res := client.Delete(cmd.Context(), id)
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), res, map[string]int64{"id": res.Value})
	}
	if err := resultError(res); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed torrent %d\n", res.Value)
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	res := client.Add(cmd.Context(), args[0], downloadDir)
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), res, res.Value)
	}
	if err := resultError(res); err != nil {
		return err
	}

	added := res.Value
	if added.Duplicate {
		fmt.Fprintf(cmd.OutOrStdout(), "• %s is already on the daemon (ID: %d)\n", added.Name, added.ID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s (ID: %d, hash: %s)\n", added.Name, added.ID, added.Hash)
	return nil
}

func getTorrent(cmd *cobra.Command, id int64) bridge.Result[bridge.Record] {
	return client.Fetch(cmd.Context(), id)
}

func startTorrent(cmd *cobra.Command, id int64) bridge.Result[bridge.Record] {
	return client.Start(cmd.Context(), id)
}

func stopTorrent(cmd *cobra.Command, id int64) bridge.Result[bridge.Record] {
	return client.Stop(cmd.Context(), id)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid id format: %q", arg)
	}
	return id, nil
}
