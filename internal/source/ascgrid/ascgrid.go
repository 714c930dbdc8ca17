// Package ascgrid reads ESRI ASCII grid (.asc) rasters into memory so they
// can be reduced without GDAL.
package ascgrid

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kiesman99/planraster/internal/source/memsource"
	"github.com/kiesman99/planraster/pkg/raster"
)

var (
	ErrMissingHeader = errors.New("ascii grid: missing ncols, nrows or cellsize")
	ErrShortData     = errors.New("ascii grid: fewer values than ncols*nrows")
)

type header struct {
	columns, rows int
	cellSize      float64
	xll, yll      float64
	centered      bool
	nodata        float64
	hasNodata     bool
}

// Open reads the grid at path. Like GDAL's AAIGrid driver the grid is
// served in one-row strips unless a tile size option is given.
func Open(path string, options ...memsource.Option) (*memsource.Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, err := Decode(f, options...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

// Decode reads an ESRI ASCII grid from r
func Decode(r io.Reader, options ...memsource.Option) (*memsource.Source, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var h header
	var data []float32
	inHeader := true

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if inHeader {
			if _, err := strconv.ParseFloat(fields[0], 64); err != nil {
				if err := h.set(fields); err != nil {
					return nil, err
				}
				continue
			}
			inHeader = false
			if h.columns <= 0 || h.rows <= 0 || h.cellSize <= 0 {
				return nil, ErrMissingHeader
			}
			data = make([]float32, 0, h.columns*h.rows)
		}

		for _, field := range fields {
			if len(data) == h.columns*h.rows {
				return nil, fmt.Errorf("ascii grid: more values than %dx%d", h.columns, h.rows)
			}
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("ascii grid: value %d: %w", len(data), err)
			}
			data = append(data, float32(v))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if inHeader {
		if h.columns <= 0 || h.rows <= 0 || h.cellSize <= 0 {
			return nil, ErrMissingHeader
		}
		return nil, ErrShortData
	}
	if len(data) < h.columns*h.rows {
		return nil, ErrShortData
	}

	options = append([]memsource.Option{
		memsource.WithTileSize(h.columns, 1),
		memsource.WithGeoTransform(h.geoTransform()),
		memsource.WithBand(memsource.Band{
			Data:      data,
			DataType:  raster.Float32,
			NoData:    h.nodata,
			HasNoData: h.hasNodata,
		}),
	}, options...)

	return memsource.New(h.columns, h.rows, options...)
}

func (h *header) set(fields []string) error {
	if len(fields) < 2 {
		return fmt.Errorf("ascii grid: malformed header line %q", strings.Join(fields, " "))
	}
	key := strings.ToLower(fields[0])
	value := fields[len(fields)-1]

	var err error
	switch key {
	case "ncols":
		h.columns, err = strconv.Atoi(value)
	case "nrows":
		h.rows, err = strconv.Atoi(value)
	case "cellsize":
		h.cellSize, err = strconv.ParseFloat(value, 64)
	case "xllcorner":
		h.xll, err = strconv.ParseFloat(value, 64)
	case "yllcorner":
		h.yll, err = strconv.ParseFloat(value, 64)
	case "xllcenter":
		h.centered = true
		h.xll, err = strconv.ParseFloat(value, 64)
	case "yllcenter":
		h.centered = true
		h.yll, err = strconv.ParseFloat(value, 64)
	case "nodata_value":
		h.hasNodata = true
		h.nodata, err = strconv.ParseFloat(value, 64)
	default:
		return fmt.Errorf("ascii grid: unknown header key %q", fields[0])
	}
	if err != nil {
		return fmt.Errorf("ascii grid: header %s: %w", key, err)
	}
	return nil
}

// geoTransform returns the north-up transform of the grid. Center
// registered grids are shifted by half a cell to the corner.
func (h *header) geoTransform() raster.GeoTransform {
	west, south := h.xll, h.yll
	if h.centered {
		west -= h.cellSize / 2
		south -= h.cellSize / 2
	}
	north := south + float64(h.rows)*h.cellSize
	return raster.GeoTransform{west, h.cellSize, 0, north, 0, -h.cellSize}
}
