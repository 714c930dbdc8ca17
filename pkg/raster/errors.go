package raster

import (
	"errors"
	"fmt"
)

var (
	ErrNotNorthUp   = errors.New("raster must be normalized with 'north-up'")
	ErrOutOfBounds  = errors.New("origin out of boundaries of raster file")
	ErrInvalidTiles = errors.New("raster reports non-positive tile size")
)

// PreconditionError is returned when a raster cannot be processed at all,
// e.g. the band has the wrong sample type. Nothing has been read when it is
// returned.
type PreconditionError struct {
	Check   string
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition %s failed: %s", e.Check, e.Message)
}

// ParseCoordsError reports a malformed "lng,lat" string
type ParseCoordsError struct {
	Input string
}

func (e *ParseCoordsError) Error() string {
	return fmt.Sprintf("invalid coordinates %q: expected 'lng,lat'", e.Input)
}
