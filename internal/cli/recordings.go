package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/banshee-data/haptics/internal/recording/store"
)

// RecordingInfo describes one stored recording.
type RecordingInfo struct {
	ID           string    `json:"id"`
	Started      time.Time `json:"started"`
	SamplingRate int       `json:"sampling_rate"`
	Frames       int       `json:"frames"`
}

func NewRecordingsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "recordings <db>",
		Short:         "List the recordings of a database",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordings(rootOpts, args[0], cmd)
		},
	}
}

func runRecordings(opts *RootOptions, path string, cmd *cobra.Command) error {
	// Opening creates the file, so refuse paths that do not exist.
	if _, err := os.Stat(path); err != nil {
		return WrapExitError(ExitCommandError, "open "+path, err)
	}
	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "open "+path, err)
	}
	defer st.Close()

	sums, err := st.List(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "list recordings", err)
	}
	res := make([]RecordingInfo, 0, len(sums))
	for _, s := range sums {
		res = append(res, RecordingInfo{ID: s.ID.String(), Started: s.Started, SamplingRate: s.SamplingRate, Frames: s.FrameCount})
	}
	return opts.formatter(cmd).Print(res, func(w io.Writer) {
		for _, r := range res {
			fmt.Fprintf(w, "%s  %s  rate %d  %d frames\n", r.ID, r.Started.Format(time.RFC3339), r.SamplingRate, r.Frames)
		}
	})
}
