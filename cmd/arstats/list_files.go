// cmd/arstats/list_files.go
package arstats

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mwiater/arstats/internal/discover"
	"github.com/mwiater/arstats/internal/resultfile"
)

// listFilesCmd implements 'list files', which prints the result files
// found below the input directory grouped by algorithm.
var listFilesCmd = &cobra.Command{
	Use:   "files",
	Short: "List result files per algorithm",
	Long:  `The 'files' subcommand lists the CSV and JSON result files below the input directory, grouped by the algorithm derived from each file name.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := discover.Files(conf.Input, ".csv", ".json")
		if err != nil {
			return err
		}
		algos, byAlgo := discover.ByStem(paths, resultfile.AlgorithmFromPath)
		w := cmd.OutOrStdout()
		for _, algo := range algos {
			fmt.Fprintf(w, "%s (%d)\n", algo, len(byAlgo[algo]))
			fmt.Fprintf(w, "  %s\n", strings.Join(byAlgo[algo], "\n  "))
		}
		return nil
	},
}

func init() {
	listCmd.AddCommand(listFilesCmd)
}
