package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itprism/itpcron/internal/constants"
)

// pluginsCmd represents the plugins command
var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Inspect the plugin group",
}

// pluginsListCmd imports the plugin group and prints handlers per event
var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered event handlers",
	Long: `Import the configured plugin group exactly as a run would and print
every event with its handlers in dispatch order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, _, err := bootstrap(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, constants.MsgPluginsTypes, strings.Join(a.PluginTypes(), ", "))

		d := a.Dispatcher()
		events := d.Events()
		if len(events) == 0 {
			fmt.Fprintln(out, constants.MsgPluginsNone)
			return nil
		}

		fmt.Fprint(out, constants.MsgPluginsHeader)
		for _, name := range events {
			fmt.Fprintf(out, constants.MsgPluginsEvent, name)
			for i, plugin := range d.Handlers(name) {
				fmt.Fprintf(out, constants.MsgPluginsHandler, i+1, plugin)
			}
		}
		return nil
	},
}

func init() {
	pluginsCmd.AddCommand(pluginsListCmd)
}
