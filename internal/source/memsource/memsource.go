package memsource

import (
	"fmt"
	"math"

	"github.com/kiesman99/planraster/pkg/raster"
)

// Padding is written into the cells of edge tiles that lie outside the
// raster. Readers must never see it.
var Padding = float32(math.NaN())

// Band is one band of an in-memory raster
type Band struct {
	Data      []float32
	DataType  raster.DataType
	NoData    float64
	HasNoData bool
}

// Source is a raster held entirely in memory, split into tiles on read
type Source struct {
	md    raster.Metadata
	bands []Band
}

// Option configures a Source
type Option func(*Source)

// WithTileSize sets the block size reported by the source
func WithTileSize(tileWidth, tileHeight int) Option {
	return func(s *Source) {
		s.md.TileWidth = tileWidth
		s.md.TileHeight = tileHeight
	}
}

// WithGeoTransform sets the affine transform
func WithGeoTransform(gt raster.GeoTransform) Option {
	return func(s *Source) {
		s.md.GeoTransform = gt
	}
}

// WithBand appends a band. Data must hold width*height samples.
func WithBand(b Band) Option {
	return func(s *Source) {
		s.bands = append(s.bands, b)
	}
}

// New returns a width x height source. Without WithTileSize the whole
// raster is a single tile; without WithGeoTransform the transform maps
// pixels 1:1 with the origin at (0, 0).
func New(width, height int, options ...Option) (*Source, error) {
	s := &Source{
		md: raster.Metadata{
			Width:        width,
			Height:       height,
			TileWidth:    width,
			TileHeight:   height,
			GeoTransform: raster.GeoTransform{0, 1, 0, 0, 0, -1},
		},
	}
	for _, opt := range options {
		opt(s)
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}
	if s.md.TileWidth <= 0 || s.md.TileHeight <= 0 {
		return nil, raster.ErrInvalidTiles
	}
	for i, b := range s.bands {
		if len(b.Data) != width*height {
			return nil, fmt.Errorf("band %d holds %d samples, want %d", i+1, len(b.Data), width*height)
		}
		s.md.Bands = append(s.md.Bands, raster.BandInfo{
			DataType:  b.DataType,
			NoData:    b.NoData,
			HasNoData: b.HasNoData,
		})
	}
	s.md.BandCount = len(s.bands)

	return s, nil
}

// NewFloat32 is a shortcut for a single Float32 band source
func NewFloat32(width, height int, data []float32, nodata float64, options ...Option) (*Source, error) {
	options = append([]Option{WithBand(Band{
		Data:      data,
		DataType:  raster.Float32,
		NoData:    nodata,
		HasNoData: true,
	})}, options...)
	return New(width, height, options...)
}

// Metadata implements raster.Source
func (s *Source) Metadata() raster.Metadata {
	return s.md
}

// ReadTile implements raster.Source
func (s *Source) ReadTile(band, blockX, blockY int, buf []float32) error {
	b, err := s.band(band)
	if err != nil {
		return err
	}

	tw, th := s.md.TileWidth, s.md.TileHeight
	if len(buf) < tw*th {
		return fmt.Errorf("buffer holds %d samples, tile needs %d", len(buf), tw*th)
	}
	x0, y0 := blockX*tw, blockY*th
	if blockX < 0 || blockY < 0 || x0 >= s.md.Width || y0 >= s.md.Height {
		return fmt.Errorf("block (%d,%d) outside raster", blockX, blockY)
	}

	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			v := Padding
			if x0+x < s.md.Width && y0+y < s.md.Height {
				v = b.Data[(x0+x)+(y0+y)*s.md.Width]
			}
			buf[x+y*tw] = v
		}
	}
	return nil
}

// ReadBand implements raster.Source
func (s *Source) ReadBand(band int) ([]float32, error) {
	b, err := s.band(band)
	if err != nil {
		return nil, err
	}
	data := make([]float32, len(b.Data))
	copy(data, b.Data)
	return data, nil
}

func (s *Source) band(band int) (*Band, error) {
	if band < 1 || band > len(s.bands) {
		return nil, fmt.Errorf("band %d out of range (raster has %d)", band, len(s.bands))
	}
	return &s.bands[band-1], nil
}
