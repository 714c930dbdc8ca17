package reduce

import (
	"fmt"

	"github.com/kiesman99/planraster/pkg/raster"
)

// LoadBand reads a whole band into memory. Samples are converted to
// float32 by the source; nodata values are left in place for the caller to
// filter. A band without a nodata value reports 0.
func LoadBand(src raster.Source, band int) (*raster.BandData, error) {
	md := src.Metadata()
	info, err := md.Band(band)
	if err != nil {
		return nil, err
	}

	data, err := src.ReadBand(band)
	if err != nil {
		return nil, fmt.Errorf("failed to load band %d: %w", band, err)
	}
	if len(data) != md.Width*md.Height {
		return nil, fmt.Errorf("band %d returned %d samples, want %d", band, len(data), md.Width*md.Height)
	}

	var nodata float32
	if info.HasNoData {
		nodata = float32(info.NoData)
	}

	return &raster.BandData{
		Width:  md.Width,
		Height: md.Height,
		Data:   data,
		NoData: nodata,
	}, nil
}
