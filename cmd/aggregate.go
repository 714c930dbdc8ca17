package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kiesman99/planraster/internal/reduce"
	"github.com/kiesman99/planraster/internal/source"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate RASTER",
	Short: "Print the sum and max of a raster band",
	Long: `Aggregate reads a Float32 band block by block and prints a single line
"<sum> <max>", with the sum truncated and the max rounded up to integers.
Cells equal to the band's nodata value are skipped.

Examples:
  planraster aggregate population.tif
  planraster aggregate --band 2 --count population.tif`,
	Args: cobra.ExactArgs(1),
	RunE: runAggregate,
}

func init() {
	rootCmd.AddCommand(aggregateCmd)

	aggregateCmd.Flags().Bool("count", false, "also print the number of valid cells")
}

func runAggregate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	h, err := source.Open(args[0], cfg.Raster.Driver)
	if err != nil {
		return err
	}
	defer h.Close()

	res, err := reduce.New(cfg.Raster.Band, log.WithField("raster", args[0])).Reduce(h)
	if err != nil {
		return err
	}

	withCount, _ := cmd.Flags().GetBool("count")
	if withCount {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", res, res.Count)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), res)
	}
	return nil
}
