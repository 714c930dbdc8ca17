// Package coverage prepares a walking coverage computation: it validates the
// friction raster against the origin and loads the friction grid.
package coverage

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kiesman99/planraster/internal/reduce"
	"github.com/kiesman99/planraster/pkg/raster"
)

// Default thresholds
var (
	DefaultMaxTimeCost = []int{180}
	DefaultMinFriction = []float32{0.01}
)

// Options contains all parameters of a coverage run
type Options struct {
	FrictionPath string
	OutputPath   string
	Origin       raster.Coords
	// MaxTimeCost in minutes
	MaxTimeCost []int
	// MinFriction in min/m
	MinFriction []float32
	Band        int
}

// Threshold is one combination of the requested cost parameters
type Threshold struct {
	MaxTimeCost int     `json:"max_time_cost"`
	MinFriction float32 `json:"min_friction"`
}

// Plan is the prepared input of a coverage computation
type Plan struct {
	Origin     raster.PixelCoords
	Friction   *raster.BandData
	Thresholds []Threshold
}

// Thresholds enumerates every max-time x min-friction combination, falling
// back to the defaults for empty lists.
func (o *Options) Thresholds() []Threshold {
	maxTimes := o.MaxTimeCost
	if len(maxTimes) == 0 {
		maxTimes = DefaultMaxTimeCost
	}
	minFrictions := o.MinFriction
	if len(minFrictions) == 0 {
		minFrictions = DefaultMinFriction
	}

	thresholds := make([]Threshold, 0, len(maxTimes)*len(minFrictions))
	for _, m := range maxTimes {
		for _, f := range minFrictions {
			thresholds = append(thresholds, Threshold{MaxTimeCost: m, MinFriction: f})
		}
	}
	return thresholds
}

// Setup checks that the friction raster is north-up and contains the
// origin, locates the origin pixel and loads the friction band. Both
// checks fail before anything is read.
func Setup(src raster.Source, opts *Options, log logrus.FieldLogger) (*Plan, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	band := opts.Band
	if band == 0 {
		band = 1
	}

	extent := raster.NewExtent(src.Metadata())
	if !extent.IsNorthUp() {
		return nil, raster.ErrNotNorthUp
	}

	log.WithFields(logrus.Fields{
		"friction": opts.FrictionPath,
		"origin":   opts.Origin.String(),
	}).Debug("using friction raster")

	if !extent.Contains(opts.Origin) {
		return nil, fmt.Errorf("%w: %v not within %v-%v",
			raster.ErrOutOfBounds, opts.Origin, extent.TopLeft(), extent.BottomRight())
	}
	origin := extent.PixelCoords(opts.Origin)

	friction, err := reduce.LoadBand(src, band)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Origin:     origin,
		Friction:   friction,
		Thresholds: opts.Thresholds(),
	}

	log.WithFields(logrus.Fields{
		"pixel_origin": origin.String(),
		"size":         fmt.Sprintf("%dx%d", friction.Width, friction.Height),
		"thresholds":   len(plan.Thresholds),
	}).Info("friction raster loaded")

	if opts.OutputPath != "" {
		log.WithField("output", opts.OutputPath).Warn("cost raster output is not produced yet")
	}

	return plan, nil
}
