package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kuldippatel.dev/dargo/internal/input"
	"kuldippatel.dev/dargo/internal/uinput"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List multitouch pointer devices known to the kernel",
	Args:  cobra.NoArgs,
	RunE:  executeDevices,
}

var devicesAll bool

func init() {
	devicesCmd.Flags().BoolVarP(&devicesAll, "all", "a", false, "Include devices not created by dargo")
}

func executeDevices(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name := cfg.DeviceName
	if devicesAll {
		name = ""
	}

	devices, err := uinput.Lookup(name)
	if errors.Is(err, uinput.ErrNoDevices) {
		fmt.Fprintln(cmd.OutOrStdout(), "no trackpads found")
		return nil
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tNAME\tSLOTS\tX\tY\tPRESSURE\tQUINTTAP")
	for _, dev := range devices {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d..%d\t%d..%d\t%t\t%t\n",
			dev.Path, dev.Name, dev.Slots,
			dev.TouchX.Minimum, dev.TouchX.Maximum,
			dev.TouchY.Minimum, dev.TouchY.Maximum,
			dev.HasAbs(input.AbsMtPressure),
			dev.HasKey(input.BtnToolQuintTap),
		)
	}
	return w.Flush()
}
