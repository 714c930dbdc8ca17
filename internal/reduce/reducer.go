// Package reduce folds a raster band into summary statistics one tile at a
// time.
package reduce

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/kiesman99/planraster/internal/tiling"
	"github.com/kiesman99/planraster/pkg/raster"
)

// Result is the outcome of a reduction
type Result struct {
	Sum   float64
	Max   float32
	Count int64
	Tiles int
}

// SumInt returns the sum truncated toward zero
func (r Result) SumInt() int64 {
	return toInt64(r.Sum)
}

// MaxInt returns the max rounded up to the next integer
func (r Result) MaxInt() int64 {
	return toInt64(math.Ceil(float64(r.Max)))
}

// Finite reports whether both sum and max are finite numbers
func (r Result) Finite() bool {
	return !math.IsNaN(r.Sum) && !math.IsInf(r.Sum, 0) &&
		!math.IsNaN(float64(r.Max)) && !math.IsInf(float64(r.Max), 0)
}

// toInt64 truncates f toward zero. NaN is 0 and values beyond the int64
// range saturate.
func toInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// String formats the result as "<sum> <max>"
func (r Result) String() string {
	return fmt.Sprintf("%d %d", r.SumInt(), r.MaxInt())
}

// TileReadError aborts a reduction. No partial result is returned with it.
type TileReadError struct {
	Band           int
	BlockX, BlockY int
	Err            error
}

func (e *TileReadError) Error() string {
	return fmt.Sprintf("error reading raster block (%d,%d) of band %d: %v", e.BlockX, e.BlockY, e.Band, e.Err)
}

func (e *TileReadError) Unwrap() error {
	return e.Err
}

// Accumulator keeps the running sum and max of the valid samples it was
// fed. Samples equal to the nodata value are skipped; the comparison is
// exact, not within a tolerance, so a NaN nodata value never matches. NaN
// samples are added to the sum but never become the max.
type Accumulator struct {
	nodata float32
	sum    float64
	max    float32
	seeded bool
	count  int64
	tiles  int
}

// NewAccumulator returns an empty accumulator excluding nodata
func NewAccumulator(nodata float32) *Accumulator {
	return &Accumulator{nodata: nodata}
}

// Add folds the valid span of tile t into the accumulator. buf holds the
// tile with rows spaced by stride; cells outside the span are not read.
func (a *Accumulator) Add(buf []float32, stride int, t tiling.Tile) {
	for y := 0; y < t.SpanY; y++ {
		row := buf[y*stride : y*stride+t.SpanX]
		for _, v := range row {
			if v == a.nodata {
				continue
			}
			a.sum += float64(v)
			a.count++
			if v != v {
				continue
			}
			if !a.seeded || v > a.max {
				a.max = v
				a.seeded = true
			}
		}
	}
	a.tiles++
}

// Result returns the current totals. The max is 0 when no valid sample was
// seen.
func (a *Accumulator) Result() Result {
	return Result{Sum: a.sum, Max: a.max, Count: a.count, Tiles: a.tiles}
}

// Reducer computes the sum and max of one band of a raster
type Reducer struct {
	Band int
	Log  logrus.FieldLogger
}

// New returns a reducer for the 1-based band index
func New(band int, log logrus.FieldLogger) *Reducer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reducer{Band: band, Log: log}
}

// Reduce walks every tile of the band, reading each into a single reused
// buffer. The band must hold Float32 samples; that is checked before any
// tile is read.
func (r *Reducer) Reduce(src raster.Source) (Result, error) {
	md := src.Metadata()
	info, err := checkFloat32(md, r.Band)
	if err != nil {
		return Result{}, err
	}
	if md.TileWidth <= 0 || md.TileHeight <= 0 {
		return Result{}, raster.ErrInvalidTiles
	}

	// without a nodata value, zero cells are skipped, as GDAL reports 0
	var nodata float32
	if info.HasNoData {
		nodata = float32(info.NoData)
	}
	acc := NewAccumulator(nodata)

	it := tiling.NewIterator(md.Width, md.Height, md.TileWidth, md.TileHeight)
	nx, ny := it.Count()
	r.Log.WithFields(logrus.Fields{
		"band":   r.Band,
		"size":   fmt.Sprintf("%dx%d", md.Width, md.Height),
		"blocks": fmt.Sprintf("%dx%d", nx, ny),
		"nodata": nodata,
	}).Debug("reducing band")

	buf := make([]float32, md.TileWidth*md.TileHeight)
	for t, ok := it.Next(); ok; t, ok = it.Next() {
		if err := src.ReadTile(r.Band, t.BlockX, t.BlockY, buf); err != nil {
			return Result{}, &TileReadError{Band: r.Band, BlockX: t.BlockX, BlockY: t.BlockY, Err: err}
		}
		acc.Add(buf, md.TileWidth, t)
		r.Log.Debugf("processed %v", t)
	}

	return acc.Result(), nil
}

func checkFloat32(md raster.Metadata, band int) (raster.BandInfo, error) {
	info, err := md.Band(band)
	if err != nil {
		return raster.BandInfo{}, err
	}
	if info.DataType != raster.Float32 {
		return raster.BandInfo{}, &raster.PreconditionError{
			Check:   "band type",
			Message: fmt.Sprintf("raster band %d is %s, not Float32", band, info.DataType),
		}
	}
	return info, nil
}
