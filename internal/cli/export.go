package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/banshee-data/haptics/internal/fsutil"
	"github.com/banshee-data/haptics/internal/recording/export"
)

// ExportResult is the output of the export command.
type ExportResult struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Format string `json:"format"`
	Frames int    `json:"frames"`
}

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <input> <output>",
		Short: "Convert a recording",
		Long: `Convert a recording between formats. The input is a CSV file or a
recording database (the most recent recording is used). The output format
follows the extension: .db/.sqlite, .png, .html, anything else is CSV.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, args[0], args[1], cmd)
		},
	}
}

func runExport(opts *RootOptions, in, outPath string, cmd *cobra.Command) error {
	fsys := fsutil.OSFileSystem{}
	b, err := export.Load(cmd.Context(), fsys, in)
	if err != nil {
		return WrapExitError(ExitCommandError, "load "+in, err)
	}
	if err := export.Save(cmd.Context(), fsys, b, outPath); err != nil {
		return WrapExitError(ExitFailure, "write "+outPath, err)
	}

	res := ExportResult{Input: in, Output: outPath, Format: export.FormatFor(outPath).String(), Frames: len(b.Frames)}
	return opts.formatter(cmd).Print(res, func(w io.Writer) {
		fmt.Fprintf(w, "wrote %d frames to %s (%s)\n", res.Frames, res.Output, res.Format)
	})
}
