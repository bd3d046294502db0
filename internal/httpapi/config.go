package httpapi

import (
	"github.com/go-chi/cors"

	"rembgd/internal/imaging"
)

// multipartOverhead is headroom on top of the upload limit for multipart
// boundaries and part headers so the body reader does not cut off a file
// that is itself within the limit.
const multipartOverhead = 1 << 20

var (
	maxUploadBytes int64 = 10 * 1 << 20
	allowedTypes         = []string{"image/jpeg", "image/png"}
)

// SetUploadLimits configures the per-request upload size limit in bytes and
// the accepted media types for the uploaded file part. A non-positive size or
// an empty type list leaves the corresponding default in place.
func SetUploadLimits(maxBytes int64, types []string) {
	if maxBytes > 0 {
		maxUploadBytes = maxBytes
	}
	if len(types) > 0 {
		allowedTypes = append([]string(nil), types...)
	}
}

func uploadLimits() imaging.Limits {
	return imaging.Limits{MaxBytes: maxUploadBytes, AllowedTypes: allowedTypes}
}

// corsOptions holds the CORS configuration used by NewMux.
// Defaults to a permissive policy suitable for local development.
var corsOptions = cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
	AllowedHeaders:   []string{"Accept", "Content-Type"},
	ExposedHeaders:   []string{"Content-Disposition"},
	AllowCredentials: false,
	MaxAge:           300,
}

// SetCORSOptions overrides the CORS policy applied to all routes.
func SetCORSOptions(opts cors.Options) {
	corsOptions = opts
}

// SetAllowedOrigins replaces only the origin list of the current CORS policy.
func SetAllowedOrigins(origins []string) {
	if len(origins) == 0 {
		return
	}
	corsOptions.AllowedOrigins = append([]string(nil), origins...)
}
