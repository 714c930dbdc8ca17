// Package source opens rasters from disk with the driver that fits them.
package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kiesman99/planraster/internal/source/ascgrid"
	"github.com/kiesman99/planraster/internal/source/gdalsource"
	"github.com/kiesman99/planraster/pkg/raster"
)

// Driver names
const (
	DriverAuto  = "auto"
	DriverGDAL  = "gdal"
	DriverASCII = "ascii"
)

// Handle is an open raster. The caller closes it once done.
type Handle interface {
	raster.Source
	Close() error
}

type nopCloser struct {
	raster.Source
}

func (nopCloser) Close() error { return nil }

// Resolve returns the concrete driver for path
func Resolve(path, driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "", DriverAuto:
		if strings.EqualFold(filepath.Ext(path), ".asc") {
			return DriverASCII, nil
		}
		return DriverGDAL, nil
	case DriverGDAL:
		return DriverGDAL, nil
	case DriverASCII:
		return DriverASCII, nil
	default:
		return "", fmt.Errorf("unknown driver: %s", driver)
	}
}

// Open opens path with the given driver name
func Open(path, driver string) (Handle, error) {
	resolved, err := Resolve(path, driver)
	if err != nil {
		return nil, err
	}

	switch resolved {
	case DriverASCII:
		src, err := ascgrid.Open(path)
		if err != nil {
			return nil, err
		}
		return nopCloser{src}, nil
	default:
		return gdalsource.Open(path)
	}
}
