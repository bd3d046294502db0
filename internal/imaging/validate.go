package imaging

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	// Decoders for the formats the allow-list may be widened to cover.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gabriel-vasile/mimetype"
)

// Reason tags a validation rejection.
type Reason string

const (
	ReasonEmptyPayload    Reason = "empty_payload"
	ReasonTooLarge        Reason = "too_large"
	ReasonUnsupportedType Reason = "unsupported_type"
	ReasonMalformed       Reason = "malformed"
)

// ValidationError carries a machine-readable rejection reason alongside the
// human-readable message surfaced to clients.
type ValidationError struct {
	Reason Reason
	msg    string
}

func (e *ValidationError) Error() string { return e.msg }

func reject(reason Reason, format string, args ...any) *ValidationError {
	return &ValidationError{Reason: reason, msg: fmt.Sprintf(format, args...)}
}

// Rejected builds a ValidationError for callers that detect a violation
// before the validator runs, such as a transport-level size cap.
func Rejected(reason Reason, msg string) *ValidationError {
	return &ValidationError{Reason: reason, msg: msg}
}

// AsValidationError returns the ValidationError wrapped in err, if any.
func AsValidationError(err error) (*ValidationError, bool) {
	ve, ok := err.(*ValidationError)
	return ve, ok
}

// Limits configures the validator.
type Limits struct {
	// MaxBytes is the upload ceiling. Zero disables the size check.
	MaxBytes int64
	// AllowedTypes is the media type allow-list (e.g. image/jpeg, image/png).
	AllowedTypes []string
}

// SourceImage is a validated upload.
type SourceImage struct {
	Data   []byte
	MIME   string
	Format string
	Width  int
	Height int
}

// Validate checks an uploaded payload against the configured limits.
// It is a pure function of its inputs: size gate first, then the declared
// content type against the allow-list, then magic-byte sniffing so a renamed
// payload cannot pass on its declared header alone, and finally a header
// decode to confirm the bytes are an actual image.
func Validate(data []byte, declared string, lim Limits) (*SourceImage, error) {
	if len(data) == 0 {
		return nil, reject(ReasonEmptyPayload, "empty file uploaded")
	}
	if lim.MaxBytes > 0 && int64(len(data)) > lim.MaxBytes {
		return nil, reject(ReasonTooLarge, "file too large: %d bytes (max %d)", len(data), lim.MaxBytes)
	}
	if declared != "" && !typeAllowed(declared, lim.AllowedTypes) {
		return nil, reject(ReasonUnsupportedType, "unsupported content type %q (allowed: %s)",
			normalizeMediaType(declared), strings.Join(lim.AllowedTypes, ", "))
	}

	sniffed := mimetype.Detect(data)
	if !typeAllowed(sniffed.String(), lim.AllowedTypes) {
		// Declared type passed the allow-list but the bytes disagree.
		return nil, reject(ReasonMalformed, "file content does not match an allowed image type (detected %s)", sniffed.String())
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, reject(ReasonMalformed, "undecodable image data")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, reject(ReasonMalformed, "image has empty bounds")
	}

	return &SourceImage{
		Data:   data,
		MIME:   sniffed.String(),
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// typeAllowed matches a media type against the allow-list, ignoring
// parameters and case ("Image/JPEG; charset=binary" matches "image/jpeg").
func typeAllowed(mt string, allowed []string) bool {
	mt = normalizeMediaType(mt)
	for _, a := range allowed {
		if mt == normalizeMediaType(a) {
			return true
		}
	}
	// image/jpg shows up in the wild as an alias for image/jpeg
	if mt == "image/jpg" {
		return typeAllowed("image/jpeg", allowed)
	}
	return false
}

func normalizeMediaType(mt string) string {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
