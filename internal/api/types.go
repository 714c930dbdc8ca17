// Package api contains the request and response bodies of the HTTP API.
package api

import "time"

// Defines values for HealthResponseStatus.
const (
	Healthy   HealthResponseStatus = "healthy"
	Unhealthy HealthResponseStatus = "unhealthy"
)

// Error codes
const (
	INVALIDJSON     = "INVALID_JSON"
	INVALIDREQUEST  = "INVALID_REQUEST"
	NOTFOUND        = "NOT_FOUND"
	NOTNORTHUP      = "NOT_NORTH_UP"
	OUTOFBOUNDS     = "OUT_OF_BOUNDS"
	PRECONDITION    = "PRECONDITION_FAILED"
	TILEREADERROR   = "TILE_READ_ERROR"
	NONFINITE       = "NON_FINITE_RESULT"
	INTERNALERROR   = "INTERNAL_ERROR"
	FORBIDDENPATH   = "FORBIDDEN_PATH"
	VALIDATIONERROR = "VALIDATION_ERROR"
)

// HealthResponseStatus defines model for HealthResponse.Status.
type HealthResponseStatus string

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status    HealthResponseStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`

	// Uptime in seconds
	Uptime  *int    `json:"uptime,omitempty"`
	Version *string `json:"version,omitempty"`
}

// AggregateRequest defines model for AggregateRequest.
type AggregateRequest struct {
	// Path of the raster, relative to the server data directory
	Path string `json:"path"`

	// Band is 1-based, defaults to the configured band
	Band *int `json:"band,omitempty"`
}

// AggregateResponse defines model for AggregateResponse.
type AggregateResponse struct {
	Sum   float64 `json:"sum"`
	Max   float32 `json:"max"`
	Count int64   `json:"count"`
	Tiles int     `json:"tiles"`

	// Summary is the "<sum> <max>" line printed by the CLI
	Summary string `json:"summary"`
}

// LocateRequest defines model for LocateRequest.
type LocateRequest struct {
	Path string `json:"path"`

	// Origin as "lng,lat"
	Origin string `json:"origin"`
}

// PixelCoords defines model for PixelCoords.
type PixelCoords struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LocateResponse defines model for LocateResponse.
type LocateResponse struct {
	NorthUp  bool `json:"north_up"`
	Contains bool `json:"contains"`

	// Pixel is only set when the origin lies within the raster
	Pixel *PixelCoords `json:"pixel,omitempty"`
}

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error     string                  `json:"error"`
	Message   string                  `json:"message"`
	RequestId *string                 `json:"request_id,omitempty"`
	Details   *map[string]interface{} `json:"details,omitempty"`
}
