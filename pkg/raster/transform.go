package raster

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// GeoTransform holds the six affine coefficients
// [originX, pixelWidth, rowRotation, originY, colRotation, pixelHeight].
type GeoTransform [6]float64

// IsNorthUp reports whether the transform has no rotation, a positive pixel
// width and a negative pixel height coefficient. The pixel math below is
// only valid for north-up transforms.
func (gt GeoTransform) IsNorthUp() bool {
	return gt[2] == 0 && gt[4] == 0 && gt[1] > 0 && gt[5] < 0
}

// TopLeft returns the geographic position of the raster origin
func (gt GeoTransform) TopLeft() Coords {
	return Coords{Lng: gt[0], Lat: gt[3]}
}

// BottomRight returns the far corner of a width x height raster
func (gt GeoTransform) BottomRight(width, height int) Coords {
	return Coords{
		Lng: gt[0] + gt[1]*float64(width),
		Lat: gt[3] + gt[5]*float64(height),
	}
}

// PixelWidth is the size of a cell along the x axis
func (gt GeoTransform) PixelWidth() float64 {
	return gt[1]
}

// PixelHeight is the size of a cell along the y axis, positive for
// north-up rasters.
func (gt GeoTransform) PixelHeight() float64 {
	return -gt[5]
}

// Contains reports whether c lies within the closed bounding box of a
// width x height raster.
func (gt GeoTransform) Contains(c Coords, width, height int) bool {
	tl := gt.TopLeft()
	br := gt.BottomRight(width, height)
	return c.Lng >= tl.Lng && c.Lng <= br.Lng &&
		c.Lat >= br.Lat && c.Lat <= tl.Lat
}

// PixelCoords maps c to the pixel that contains it. Sub-pixel position is
// discarded by truncating toward zero.
func (gt GeoTransform) PixelCoords(c Coords) PixelCoords {
	tl := gt.TopLeft()
	return PixelCoords{
		X: int((c.Lng - tl.Lng) / gt.PixelWidth()),
		Y: int((c.Lat - tl.Lat) / -gt.PixelHeight()),
	}
}

// Extent binds a transform to the size of the raster it describes
type Extent struct {
	Transform     GeoTransform
	Width, Height int
}

// NewExtent returns the extent of the raster described by md
func NewExtent(md Metadata) Extent {
	return Extent{Transform: md.GeoTransform, Width: md.Width, Height: md.Height}
}

// IsNorthUp reports whether the extent's transform is north-up
func (e Extent) IsNorthUp() bool {
	return e.Transform.IsNorthUp()
}

// TopLeft returns the north-west corner
func (e Extent) TopLeft() Coords {
	return e.Transform.TopLeft()
}

// BottomRight returns the south-east corner
func (e Extent) BottomRight() Coords {
	return e.Transform.BottomRight(e.Width, e.Height)
}

// Contains reports whether c lies within the extent, edges included
func (e Extent) Contains(c Coords) bool {
	return e.Transform.Contains(c, e.Width, e.Height)
}

// PixelCoords maps c into pixel space
func (e Extent) PixelCoords(c Coords) PixelCoords {
	return e.Transform.PixelCoords(c)
}

// Bound returns the extent as an orb.Bound in lng/lat order
func (e Extent) Bound() orb.Bound {
	tl, br := e.TopLeft(), e.BottomRight()
	return orb.Bound{
		Min: orb.Point{tl.Lng, br.Lat},
		Max: orb.Point{br.Lng, tl.Lat},
	}
}

// ParseCoords parses a "lng,lat" string. The string is split on the first
// comma and both halves must be valid floating point numbers.
func ParseCoords(s string) (Coords, error) {
	lng, lat, ok := strings.Cut(s, ",")
	if !ok {
		return Coords{}, &ParseCoordsError{Input: s}
	}

	lngValue, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return Coords{}, &ParseCoordsError{Input: s}
	}
	latValue, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Coords{}, &ParseCoordsError{Input: s}
	}

	return Coords{Lng: lngValue, Lat: latValue}, nil
}
