// wlgrab: read the Wayland clipboard once and print it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	v := viper.New()

	root := &cobra.Command{
		Use:   "wlgrab",
		Short: "Read the Wayland clipboard once",
		Long: `wlgrab connects to the Wayland compositor, waits for a clipboard
selection via the wlr-data-control protocol, retrieves it in the best
supported representation (image/png before the text types), and prints
it: text verbatim on stdout, images as "WIDTHxHEIGHT".

Works without keyboard focus, so it runs fine from a plain terminal, a
script, or a keybinding. Requires a compositor that implements
zwlr_data_control_manager_v1 (sway, river, Hyprland, other wlroots
compositors).

Config file search order (first found wins):
  /etc/wlgrab/wlgrab.toml
  $HOME/.config/wlgrab/wlgrab.toml
  path supplied via --config

All flags can be set via WLGRAB_<FLAG> env vars or config-file keys.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE:       func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:          func(_ *cobra.Command, _ []string) error { return runGrab(v) },
	}

	f := root.Flags()
	f.String("display", "", "Wayland display name (default: $WAYLAND_DISPLAY, then wayland-0)")
	f.StringP("output", "o", "", "write the raw payload to FILE instead of printing a summary")
	f.BoolP("list-types", "l", false, "print the selection's announced mime types and exit without transferring")
	addLoggingFlags(root)
	addConfigFlag(root)

	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wlgrab: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("wlgrab %s\n", Version)
		},
	}
}
