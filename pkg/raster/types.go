package raster

import "fmt"

// DataType identifies the numeric representation of a band's samples
type DataType int

// Sample data types
const (
	Unknown DataType = iota
	Byte
	UInt16
	Int16
	UInt32
	Int32
	Float32
	Float64
)

var dataTypeNames = map[DataType]string{
	Unknown: "Unknown",
	Byte:    "Byte",
	UInt16:  "UInt16",
	Int16:   "Int16",
	UInt32:  "UInt32",
	Int32:   "Int32",
	Float32: "Float32",
	Float64: "Float64",
}

func (dt DataType) String() string {
	if name, ok := dataTypeNames[dt]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(dt))
}

// BandInfo describes a single band of a raster
type BandInfo struct {
	DataType  DataType
	NoData    float64
	HasNoData bool
}

// Metadata is everything a Source reports about a raster. It is read-only
// to the reduction and transform code.
type Metadata struct {
	Width, Height         int
	TileWidth, TileHeight int
	BandCount             int
	Bands                 []BandInfo
	GeoTransform          GeoTransform
}

// Band returns the info of the 1-based band index
func (m Metadata) Band(band int) (BandInfo, error) {
	if band < 1 || band > m.BandCount || band > len(m.Bands) {
		return BandInfo{}, &PreconditionError{
			Check:   "band",
			Message: fmt.Sprintf("band %d out of range (raster has %d)", band, m.BandCount),
		}
	}
	return m.Bands[band-1], nil
}

// Source is the raster dataset a caller opened. Implementations own the
// underlying handle; the reduction code only borrows it.
type Source interface {
	// Metadata returns size, tiling, band and transform information.
	Metadata() Metadata

	// ReadTile reads block (blockX, blockY) of the 1-based band into buf,
	// which must hold TileWidth*TileHeight samples laid out with a stride of
	// TileWidth. Cells outside the block's valid span are undefined.
	ReadTile(band, blockX, blockY int, buf []float32) error

	// ReadBand reads the whole band row by row.
	ReadBand(band int) ([]float32, error)
}

// Coords is a geographic point
type Coords struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

func (c Coords) String() string {
	return fmt.Sprintf("(%v, %v)", c.Lng, c.Lat)
}

// PixelCoords is a pixel index, column X and row Y
type PixelCoords struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p PixelCoords) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// BandData holds a band materialized in memory. The caller owns it.
type BandData struct {
	Width, Height int
	Data          []float32
	NoData        float32
}

// At returns the sample at column x, row y
func (b *BandData) At(x, y int) float32 {
	return b.Data[x+y*b.Width]
}
