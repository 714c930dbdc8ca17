package raster

import (
	"errors"
	"testing"
)

func TestIsNorthUp(t *testing.T) {
	testCases := []struct {
		name string
		gt   GeoTransform
		want bool
	}{
		{"north up", GeoTransform{100, 1, 0, 50, 0, -1}, true},
		{"row rotation", GeoTransform{100, 1, 0.1, 50, 0, -1}, false},
		{"column rotation", GeoTransform{100, 1, 0, 50, -0.1, -1}, false},
		{"zero pixel width", GeoTransform{100, 0, 0, 50, 0, -1}, false},
		{"negative pixel width", GeoTransform{100, -1, 0, 50, 0, -1}, false},
		{"zero pixel height", GeoTransform{100, 1, 0, 50, 0, 0}, false},
		{"south up", GeoTransform{100, 1, 0, 50, 0, 1}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.gt.IsNorthUp(); got != tc.want {
				t.Errorf("IsNorthUp() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCornersAndContains(t *testing.T) {
	e := Extent{Transform: GeoTransform{100, 1, 0, 50, 0, -1}, Width: 5, Height: 3}

	if tl := e.TopLeft(); tl != (Coords{Lng: 100, Lat: 50}) {
		t.Errorf("TopLeft() = %v", tl)
	}
	if br := e.BottomRight(); br != (Coords{Lng: 105, Lat: 47}) {
		t.Errorf("BottomRight() = %v", br)
	}

	testCases := []struct {
		name string
		c    Coords
		want bool
	}{
		{"top left corner", Coords{100, 50}, true},
		{"bottom right corner", Coords{105, 47}, true},
		{"top right corner", Coords{105, 50}, true},
		{"bottom left corner", Coords{100, 47}, true},
		{"inside", Coords{102.5, 48.2}, true},
		{"west", Coords{99.9, 50}, false},
		{"east", Coords{105.1, 48}, false},
		{"north", Coords{101, 50.01}, false},
		{"south", Coords{101, 46.99}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.Contains(tc.c); got != tc.want {
				t.Errorf("Contains(%v) = %v, want %v", tc.c, got, tc.want)
			}
		})
	}
}

func TestPixelCoords(t *testing.T) {
	gt := GeoTransform{100, 1, 0, 50, 0, -1}

	testCases := []struct {
		c    Coords
		want PixelCoords
	}{
		{Coords{100, 50}, PixelCoords{0, 0}},
		{Coords{100.99, 49.01}, PixelCoords{0, 0}},
		{Coords{101, 49}, PixelCoords{1, 1}},
		{Coords{104.5, 47.5}, PixelCoords{4, 2}},
		// truncation toward zero, not floor
		{Coords{99.5, 50.5}, PixelCoords{0, 0}},
	}
	for _, tc := range testCases {
		if got := gt.PixelCoords(tc.c); got != tc.want {
			t.Errorf("PixelCoords(%v) = %v, want %v", tc.c, got, tc.want)
		}
	}

	fine := GeoTransform{10, 0.25, 0, 20, 0, -0.5}
	if got := fine.PixelCoords(Coords{11, 18}); got != (PixelCoords{4, 4}) {
		t.Errorf("PixelCoords with fractional cells = %v, want (4, 4)", got)
	}
}

func TestBound(t *testing.T) {
	e := Extent{Transform: GeoTransform{100, 1, 0, 50, 0, -1}, Width: 5, Height: 3}
	b := e.Bound()
	if b.Min[0] != 100 || b.Min[1] != 47 || b.Max[0] != 105 || b.Max[1] != 50 {
		t.Errorf("Bound() = %v", b)
	}
}

func TestParseCoords(t *testing.T) {
	c, err := ParseCoords("12.5,45.0")
	if err != nil {
		t.Fatalf("ParseCoords returned error: %v", err)
	}
	if c != (Coords{Lng: 12.5, Lat: 45.0}) {
		t.Errorf("ParseCoords = %v", c)
	}

	c, err = ParseCoords("-0.5,-12")
	if err != nil || c != (Coords{Lng: -0.5, Lat: -12}) {
		t.Errorf("ParseCoords(negative) = %v, %v", c, err)
	}

	for _, bad := range []string{"bad", "", "12.5", "12.5,", ",45", "a,1", "1,b", "1,2,3", " 1,2"} {
		_, err := ParseCoords(bad)
		var parseErr *ParseCoordsError
		if !errors.As(err, &parseErr) {
			t.Errorf("ParseCoords(%q) error = %v, want ParseCoordsError", bad, err)
		}
	}
}

func TestMetadataBand(t *testing.T) {
	md := Metadata{BandCount: 1, Bands: []BandInfo{{DataType: Float32}}}

	if _, err := md.Band(1); err != nil {
		t.Errorf("Band(1) returned error: %v", err)
	}
	for _, band := range []int{0, 2, -1} {
		var pe *PreconditionError
		if _, err := md.Band(band); !errors.As(err, &pe) {
			t.Errorf("Band(%d) error = %v, want PreconditionError", band, err)
		}
	}
}

func TestDataTypeString(t *testing.T) {
	if Float32.String() != "Float32" {
		t.Errorf("Float32.String() = %s", Float32.String())
	}
	if DataType(42).String() != "DataType(42)" {
		t.Errorf("unknown data type String() = %s", DataType(42).String())
	}
}
