package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/haptics"
)

// RunOptions holds the flags of the run command.
type RunOptions struct {
	Duration time.Duration
	Device   int
	Record   string
	Rate     int
	Sphere   float64
}

// RunResult summarises a loop run.
type RunResult struct {
	Device    int        `json:"device"`
	Loops     int64      `json:"loops"`
	Frequency float64    `json:"frequency_hz"`
	MeanLoop  string     `json:"mean_loop"`
	Frames    int        `json:"frames,omitempty"`
	Output    string     `json:"output,omitempty"`
	Position  [3]float64 `json:"position"`
}

func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the haptic loop",
		Long: `Initialise a device, run the haptic loop for a while and optionally
record it. The output format of --record follows its extension.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(rootOpts, opts, cmd)
		},
	}
	cmd.Flags().DurationVarP(&opts.Duration, "duration", "d", time.Second, "how long to run the loop")
	cmd.Flags().IntVar(&opts.Device, "device", haptics.VirtualDevice, "device index (-1 is the simulated device)")
	cmd.Flags().StringVarP(&opts.Record, "record", "r", "", "record the run to this file (.csv, .db, .png, .html)")
	cmd.Flags().IntVar(&opts.Rate, "rate", 1, "record every n-th loop")
	cmd.Flags().Float64Var(&opts.Sphere, "sphere", 0, "add a sphere of this radius at the origin")
	return cmd
}

func runLoop(root *RootOptions, opts *RunOptions, cmd *cobra.Command) error {
	if opts.Duration <= 0 {
		return NewExitError(ExitCommandError, "--duration must be positive")
	}
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	hc, err := root.newContext()
	if err != nil {
		return err
	}
	out := root.formatter(cmd)

	device := cfg.GetDeviceIndex()
	if cmd.Flags().Changed("device") {
		device = opts.Device
	}
	rate := cfg.GetSamplingRate()
	if cmd.Flags().Changed("rate") {
		rate = opts.Rate
	}

	code := hc.Initialize(device, cfg.GetWorkspaceScale(), cfg.GetToolRadius())
	if err := codeError(hc, "initialize", code); err != nil {
		return err
	}
	defer hc.Deinitialize()

	if opts.Sphere > 0 {
		id, code := hc.CreateSphereObject(opts.Sphere, [3]float64{}, [4]float64{1, 0, 0, 0})
		if err := codeError(hc, "create sphere", code); err != nil {
			return err
		}
		if err := codeError(hc, "add sphere", hc.AddObjectToWorld(id)); err != nil {
			return err
		}
		out.VerboseLog("sphere %d, radius %g", id, opts.Sphere)
	}

	if opts.Record != "" {
		if err := codeError(hc, "start recording", hc.StartLogging(rate)); err != nil {
			return err
		}
	}
	if err := codeError(hc, "start", hc.Start()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	timer := time.NewTimer(opts.Duration)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
		out.VerboseLog("interrupted")
	}

	res := RunResult{
		Device:    device,
		Loops:     hc.GetLoops(),
		Frequency: hc.GetLoopFrequency(),
		MeanLoop:  hc.GetLoopStats().Mean.String(),
	}
	res.Position, _ = hc.GetToolPosition()
	if err := codeError(hc, "stop", hc.Stop()); err != nil {
		return err
	}
	if opts.Record != "" {
		res.Frames = hc.GetLogFrame()
		if err := codeError(hc, "save recording", hc.StopLoggingAndSave(cmd.Context(), opts.Record)); err != nil {
			return err
		}
		res.Output = opts.Record
	}

	return out.Print(res, func(w io.Writer) {
		fmt.Fprintf(w, "device %d: %d loops, %.1f Hz, mean period %s\n", res.Device, res.Loops, res.Frequency, res.MeanLoop)
		fmt.Fprintf(w, "tool at %.4f %.4f %.4f\n", res.Position[0], res.Position[1], res.Position[2])
		if res.Output != "" {
			fmt.Fprintf(w, "recorded %d frames to %s\n", res.Frames, res.Output)
		}
	})
}
