package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/kiesman99/planraster/internal/coverage"
	"github.com/kiesman99/planraster/internal/source"
	"github.com/kiesman99/planraster/pkg/raster"
)

// coordsValue parses a "lng,lat" flag argument
type coordsValue struct {
	coords *raster.Coords
	set    bool
}

func (v *coordsValue) String() string {
	if v.coords == nil || !v.set {
		return ""
	}
	return v.coords.String()
}

func (v *coordsValue) Set(s string) error {
	c, err := raster.ParseCoords(s)
	if err != nil {
		return err
	}
	*v.coords = c
	v.set = true
	return nil
}

func (v *coordsValue) Type() string { return "lng,lat" }

var (
	coverageOrigin raster.Coords
	coverageCmd    = &cobra.Command{
		Use:   "coverage",
		Short: "Prepare a walking coverage run from an origin",
		Long: `Coverage validates that the friction raster is north-up and contains the
origin, locates the origin pixel and loads the friction band.

Every combination of --max-time and --min-friction is reported as a
threshold of the run.

Examples:
  planraster coverage -i friction.tif -g 36.82,-1.29
  planraster coverage -i friction.tif -g 36.82,-1.29 -m 60 -m 120 -f 0.01 -f 0.05`,
		Args: cobra.NoArgs,
		RunE: runCoverage,
	}
)

func init() {
	rootCmd.AddCommand(coverageCmd)

	coverageCmd.Flags().StringP("input-friction-raster", "i", "", "friction raster in min/m (required)")
	coverageCmd.Flags().StringP("output-cost-raster", "o", "", "output cost raster")
	coverageCmd.Flags().VarP(&coordsValue{coords: &coverageOrigin}, "origin", "g", "origin as lng,lat (required)")
	coverageCmd.Flags().IntSliceP("max-time", "m", coverage.DefaultMaxTimeCost, "max time cost in minutes")
	coverageCmd.Flags().Float32SliceP("min-friction", "f", coverage.DefaultMinFriction, "min friction in min/m")

	coverageCmd.MarkFlagRequired("input-friction-raster")
	coverageCmd.MarkFlagRequired("origin")
}

func runCoverage(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	frictionPath, _ := cmd.Flags().GetString("input-friction-raster")
	outputPath, _ := cmd.Flags().GetString("output-cost-raster")
	maxTimes, err := cmd.Flags().GetIntSlice("max-time")
	if err != nil {
		return err
	}
	minFrictions, err := cmd.Flags().GetFloat32Slice("min-friction")
	if err != nil {
		return err
	}

	h, err := source.Open(frictionPath, cfg.Raster.Driver)
	if err != nil {
		return err
	}
	defer h.Close()

	plan, err := coverage.Setup(h, &coverage.Options{
		FrictionPath: frictionPath,
		OutputPath:   outputPath,
		Origin:       coverageOrigin,
		MaxTimeCost:  maxTimes,
		MinFriction:  minFrictions,
		Band:         cfg.Raster.Band,
	}, log)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Origin     raster.PixelCoords   `json:"origin"`
		Width      int                  `json:"width"`
		Height     int                  `json:"height"`
		Thresholds []coverage.Threshold `json:"thresholds"`
	}{plan.Origin, plan.Friction.Width, plan.Friction.Height, plan.Thresholds})
}
