// Package gdalsource exposes a GDAL dataset as a raster.Source.
package gdalsource

import (
	"errors"
	"fmt"
	"sync"

	"github.com/airbusgeo/godal"

	"github.com/kiesman99/planraster/pkg/raster"
)

var (
	ErrEmptyFilename = errors.New("input filename is empty")

	registerOnce sync.Once
)

// defaultTransform is what GDAL reports for datasets without
// georeferencing. It is not north-up.
var defaultTransform = raster.GeoTransform{0, 1, 0, 0, 0, 1}

// Dataset wraps an open GDAL dataset
type Dataset struct {
	filename string
	ds       *godal.Dataset
	bands    []godal.Band
	md       raster.Metadata
}

// Open opens filename read-only. The caller must Close the dataset.
func Open(filename string) (*Dataset, error) {
	if filename == "" {
		return nil, ErrEmptyFilename
	}
	registerOnce.Do(godal.RegisterAll)

	ds, err := godal.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed opening %s: %w", filename, err)
	}

	d := &Dataset{
		filename: filename,
		ds:       ds,
		bands:    ds.Bands(),
	}
	d.md = d.readMetadata()
	if d.md.TileWidth <= 0 || d.md.TileHeight <= 0 {
		_ = ds.Close()
		return nil, raster.ErrInvalidTiles
	}
	return d, nil
}

func (d *Dataset) readMetadata() raster.Metadata {
	st := d.ds.Structure()
	md := raster.Metadata{
		Width:        st.SizeX,
		Height:       st.SizeY,
		TileWidth:    st.BlockSizeX,
		TileHeight:   st.BlockSizeY,
		BandCount:    st.NBands,
		GeoTransform: defaultTransform,
	}

	if gt, err := d.ds.GeoTransform(); err == nil {
		md.GeoTransform = raster.GeoTransform(gt)
	}

	for _, band := range d.bands {
		nodata, ok := band.NoData()
		md.Bands = append(md.Bands, raster.BandInfo{
			DataType:  convertDataType(band.Structure().DataType),
			NoData:    nodata,
			HasNoData: ok,
		})
	}
	return md
}

// Filename returns the path the dataset was opened from
func (d *Dataset) Filename() string {
	return d.filename
}

// Metadata implements raster.Source
func (d *Dataset) Metadata() raster.Metadata {
	return d.md
}

// ReadTile reads one block through a window read. Lines are spaced by the
// block width so edge blocks keep the same layout as full ones.
func (d *Dataset) ReadTile(band, blockX, blockY int, buf []float32) error {
	b, err := d.band(band)
	if err != nil {
		return err
	}

	tw, th := d.md.TileWidth, d.md.TileHeight
	if len(buf) < tw*th {
		return fmt.Errorf("buffer holds %d samples, tile needs %d", len(buf), tw*th)
	}

	x0, y0 := blockX*tw, blockY*th
	if blockX < 0 || blockY < 0 || x0 >= d.md.Width || y0 >= d.md.Height {
		return fmt.Errorf("block (%d,%d) outside raster", blockX, blockY)
	}
	spanX, spanY := min(tw, d.md.Width-x0), min(th, d.md.Height-y0)

	return b.Read(x0, y0, buf, spanX, spanY, godal.LineSpacing(tw*4))
}

// ReadBand implements raster.Source
func (d *Dataset) ReadBand(band int) ([]float32, error) {
	b, err := d.band(band)
	if err != nil {
		return nil, err
	}

	data := make([]float32, d.md.Width*d.md.Height)
	if err := b.Read(0, 0, data, d.md.Width, d.md.Height); err != nil {
		return nil, err
	}
	return data, nil
}

// Close releases the GDAL handle
func (d *Dataset) Close() error {
	return d.ds.Close()
}

func (d *Dataset) band(band int) (godal.Band, error) {
	if band < 1 || band > len(d.bands) {
		return godal.Band{}, fmt.Errorf("band %d out of range (raster has %d)", band, len(d.bands))
	}
	return d.bands[band-1], nil
}

func convertDataType(dt godal.DataType) raster.DataType {
	switch dt {
	case godal.Byte:
		return raster.Byte
	case godal.UInt16:
		return raster.UInt16
	case godal.Int16:
		return raster.Int16
	case godal.UInt32:
		return raster.UInt32
	case godal.Int32:
		return raster.Int32
	case godal.Float32:
		return raster.Float32
	case godal.Float64:
		return raster.Float64
	default:
		return raster.Unknown
	}
}
