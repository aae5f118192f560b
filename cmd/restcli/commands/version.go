package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kbukum/restpipe/version"
)

func newVersionCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			format := v.GetString("output")
			switch format {
			case OutputFormatJSON, OutputFormatYAML:
				return encode(cmd.OutOrStdout(), format, info)
			case OutputFormatTable, "":
				rows := [][]string{
					{"Version", info.Version},
					{"Go Version", info.GoVersion},
					{"Platform", info.Platform},
					{"User-Agent", version.UserAgent()},
					{"Release", strconv.FormatBool(info.IsRelease)},
				}
				if info.GitCommit != "" {
					rows = append(rows, []string{"Git Commit", info.GitCommit})
				}
				if info.BuildTime != "" {
					rows = append(rows, []string{"Build Time", info.BuildTime})
				}
				return renderTable(cmd.OutOrStdout(), []string{"Property", "Value"}, rows)
			default:
				return fmt.Errorf("unsupported output format %q", format)
			}
		},
	}
}
