package ascgrid

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kiesman99/planraster/internal/source/memsource"
	"github.com/kiesman99/planraster/pkg/raster"
)

const sampleGrid = `ncols        4
nrows        3
xllcorner    100.0
yllcorner    47.0
cellsize     1.0
NODATA_value -9999
-9999 1 2 3
4 5 6 7
8 9 10 11
`

func TestDecode(t *testing.T) {
	src, err := Decode(strings.NewReader(sampleGrid))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	md := src.Metadata()
	if md.Width != 4 || md.Height != 3 {
		t.Errorf("size = %dx%d, want 4x3", md.Width, md.Height)
	}
	if md.TileWidth != 4 || md.TileHeight != 1 {
		t.Errorf("tile size = %dx%d, want 4x1", md.TileWidth, md.TileHeight)
	}
	if md.BandCount != 1 || md.Bands[0].DataType != raster.Float32 {
		t.Errorf("bands = %+v", md.Bands)
	}
	if !md.Bands[0].HasNoData || md.Bands[0].NoData != -9999 {
		t.Errorf("nodata = %+v", md.Bands[0])
	}

	want := raster.GeoTransform{100, 1, 0, 50, 0, -1}
	if md.GeoTransform != want {
		t.Errorf("geotransform = %v, want %v", md.GeoTransform, want)
	}

	data, err := src.ReadBand(1)
	if err != nil {
		t.Fatalf("ReadBand returned error: %v", err)
	}
	if data[0] != -9999 || data[5] != 5 || data[11] != 11 {
		t.Errorf("unexpected data %v", data)
	}
}

func TestDecodeCentered(t *testing.T) {
	grid := `ncols 2
nrows 2
xllcenter 0.5
yllcenter 0.5
cellsize 1
1 2
3 4
`
	src, err := Decode(strings.NewReader(grid))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	md := src.Metadata()
	if md.GeoTransform != (raster.GeoTransform{0, 1, 0, 2, 0, -1}) {
		t.Errorf("geotransform = %v", md.GeoTransform)
	}
	if md.Bands[0].HasNoData {
		t.Error("expected no nodata value")
	}
}

func TestDecodeTileOverride(t *testing.T) {
	src, err := Decode(strings.NewReader(sampleGrid), memsource.WithTileSize(2, 2))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	md := src.Metadata()
	if md.TileWidth != 2 || md.TileHeight != 2 {
		t.Errorf("tile size = %dx%d, want 2x2", md.TileWidth, md.TileHeight)
	}
}

func TestDecodeErrors(t *testing.T) {
	testCases := []struct {
		name string
		grid string
		want error
	}{
		{"missing header", "1 2 3\n", ErrMissingHeader},
		{"short data", "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3\n", ErrShortData},
		{"header only", "ncols 2\nnrows 2\ncellsize 1\n", ErrShortData},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.grid))
			if !errors.Is(err, tc.want) {
				t.Errorf("Decode error = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := Decode(strings.NewReader("ncols 1\nnrows 1\ncellsize 1\nfoo\n")); err == nil {
		t.Error("expected error for unknown header key")
	}
	if _, err := Decode(strings.NewReader("ncols 1\nnrows 1\ncellsize 1\n1 2\n")); err == nil {
		t.Error("expected error for too many values")
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.asc")
	if err := os.WriteFile(path, []byte(sampleGrid), 0o644); err != nil {
		t.Fatalf("failed to write grid: %v", err)
	}

	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if src.Metadata().Width != 4 {
		t.Errorf("width = %d", src.Metadata().Width)
	}

	if _, err := Open(filepath.Join(t.TempDir(), "missing.asc")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) error = %v", err)
	}
}
