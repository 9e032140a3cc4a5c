package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/banshee-data/haptics"
	"github.com/banshee-data/haptics/internal/version"
)

// VersionResult is the output of the version command.
type VersionResult struct {
	Version   string `json:"version"`
	API       string `json:"api"`
	GitSHA    string `json:"git_sha"`
	BuildTime string `json:"build_time"`
}

func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version information",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			major, minor, patch := haptics.GetVersionInfo()
			res := VersionResult{
				Version:   version.Version,
				API:       fmt.Sprintf("%d.%d.%d", major, minor, patch),
				GitSHA:    version.GitSHA,
				BuildTime: version.BuildTime,
			}
			return rootOpts.formatter(cmd).Print(res, func(w io.Writer) {
				fmt.Fprintf(w, "hapticsctl %s (api %s, %s, built %s)\n", res.Version, res.API, res.GitSHA, res.BuildTime)
			})
		},
	}
}
