package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/banshee-data/haptics"
	"github.com/banshee-data/haptics/internal/device/serialdev"
)

// DeviceInfo describes one device index.
type DeviceInfo struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// DevicesResult is the output of the devices command.
type DevicesResult struct {
	Devices []DeviceInfo `json:"devices"`
	Ports   []string     `json:"ports,omitempty"`
}

func NewDevicesCommand(rootOpts *RootOptions) *cobra.Command {
	var ports bool
	cmd := &cobra.Command{
		Use:           "devices",
		Short:         "List haptic devices",
		Long:          "List the simulated device, configured serial bridges and optionally the host serial ports.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevices(rootOpts, ports, cmd)
		},
	}
	cmd.Flags().BoolVar(&ports, "ports", false, "also list host serial ports")
	return cmd
}

func runDevices(opts *RootOptions, ports bool, cmd *cobra.Command) error {
	hc, err := opts.newContext()
	if err != nil {
		return err
	}
	n, code := hc.CountDevices()
	if err := codeError(hc, "count devices", code); err != nil {
		return err
	}

	var res DevicesResult
	for i := haptics.VirtualDevice; i < n; i++ {
		name, code := hc.GetDeviceName(i, 256)
		if err := codeError(hc, fmt.Sprintf("device %d", i), code); err != nil {
			return err
		}
		res.Devices = append(res.Devices, DeviceInfo{Index: i, Name: name})
	}
	if ports {
		if res.Ports, err = serialdev.ListPorts(); err != nil {
			return WrapExitError(ExitFailure, "list serial ports", err)
		}
	}

	return opts.formatter(cmd).Print(res, func(w io.Writer) {
		for _, d := range res.Devices {
			fmt.Fprintf(w, "%3d  %s\n", d.Index, d.Name)
		}
		for _, p := range res.Ports {
			fmt.Fprintf(w, "port %s\n", p)
		}
	})
}
