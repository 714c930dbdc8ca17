package gdalsource

import (
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"

	"github.com/kiesman99/planraster/pkg/raster"
)

// writeTiledGeoTIFF writes a 20x18 Float32 GeoTIFF with 16x16 blocks, so
// the last block column and row are partial.
func writeTiledGeoTIFF(t *testing.T, dtype godal.DataType) (string, []float32) {
	t.Helper()
	registerOnce.Do(godal.RegisterAll)

	const width, height = 20, 18
	path := filepath.Join(t.TempDir(), "pop.tif")
	ds, err := godal.Create(godal.GTiff, path, 1, dtype, width, height,
		godal.CreationOption("TILED=YES", "BLOCKXSIZE=16", "BLOCKYSIZE=16"))
	if err != nil {
		t.Fatalf("failed to create dataset: %v", err)
	}

	data := make([]float32, width*height)
	for i := range data {
		data[i] = float32(i % 7)
	}
	if err := ds.SetGeoTransform([6]float64{100, 0.5, 0, 50, 0, -0.5}); err != nil {
		t.Fatalf("failed to set geotransform: %v", err)
	}
	if err := ds.SetNoData(-9999); err != nil {
		t.Fatalf("failed to set nodata: %v", err)
	}
	if err := ds.Bands()[0].Write(0, 0, data, width, height); err != nil {
		t.Fatalf("failed to write band: %v", err)
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("failed to close dataset: %v", err)
	}
	return path, data
}

func TestOpenMetadata(t *testing.T) {
	path, _ := writeTiledGeoTIFF(t, godal.Float32)

	ds, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer ds.Close()

	md := ds.Metadata()
	if md.Width != 20 || md.Height != 18 {
		t.Errorf("size = %dx%d, want 20x18", md.Width, md.Height)
	}
	if md.TileWidth != 16 || md.TileHeight != 16 {
		t.Errorf("tile size = %dx%d, want 16x16", md.TileWidth, md.TileHeight)
	}
	if md.BandCount != 1 || md.Bands[0].DataType != raster.Float32 {
		t.Errorf("bands = %+v", md.Bands)
	}
	if !md.Bands[0].HasNoData || md.Bands[0].NoData != -9999 {
		t.Errorf("nodata = %+v", md.Bands[0])
	}
	if md.GeoTransform != (raster.GeoTransform{100, 0.5, 0, 50, 0, -0.5}) {
		t.Errorf("geotransform = %v", md.GeoTransform)
	}
	if ds.Filename() != path {
		t.Errorf("Filename() = %s", ds.Filename())
	}
}

func TestReadTileEdgeBlock(t *testing.T) {
	path, data := writeTiledGeoTIFF(t, godal.Float32)

	ds, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer ds.Close()

	buf := make([]float32, 16*16)
	if err := ds.ReadTile(1, 1, 1, buf); err != nil {
		t.Fatalf("ReadTile returned error: %v", err)
	}
	// block (1,1) starts at pixel (16,16) and spans 4x2
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			want := data[(16+x)+(16+y)*20]
			if got := buf[x+y*16]; got != want {
				t.Errorf("buf[%d,%d] = %v, want %v", x, y, got, want)
			}
		}
	}

	if err := ds.ReadTile(1, 2, 0, buf); err == nil {
		t.Error("expected error for block outside raster")
	}
	if err := ds.ReadTile(2, 0, 0, buf); err == nil {
		t.Error("expected error for missing band")
	}
}

func TestReadBand(t *testing.T) {
	path, data := writeTiledGeoTIFF(t, godal.Int16)

	ds, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer ds.Close()

	if dt := ds.Metadata().Bands[0].DataType; dt != raster.Int16 {
		t.Errorf("data type = %s, want Int16", dt)
	}

	got, err := ds.ReadBand(1)
	if err != nil {
		t.Fatalf("ReadBand returned error: %v", err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], data[i])
		}
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(""); err != ErrEmptyFilename {
		t.Errorf("Open(\"\") error = %v", err)
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing.tif")); err == nil {
		t.Error("expected error for missing file")
	}
}
