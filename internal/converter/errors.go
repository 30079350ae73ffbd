package converter

import "errors"

// Sentinel errors of the conversion pipeline. Callers classify failures with
// errors.Is; every returned error wraps exactly one of these.
var (
	// ErrNoInput means no spreadsheet was supplied.
	ErrNoInput = errors.New("no input file")

	// ErrUnreadableInput means the upload is not a readable spreadsheet.
	ErrUnreadableInput = errors.New("unreadable input")

	// ErrMissingMetadata means one or more batch metadata fields are empty.
	ErrMissingMetadata = errors.New("missing batch metadata")

	// ErrSerialization means the document could not be rendered.
	ErrSerialization = errors.New("serialization failure")

	// ErrDelivery means the document or a temporary file could not be
	// written or released.
	ErrDelivery = errors.New("delivery failure")
)

// Kind returns a short, log-friendly name for the class of err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoInput):
		return "no_input"
	case errors.Is(err, ErrUnreadableInput):
		return "unreadable_input"
	case errors.Is(err, ErrMissingMetadata):
		return "missing_metadata"
	case errors.Is(err, ErrSerialization):
		return "serialization_failure"
	case errors.Is(err, ErrDelivery):
		return "delivery_failure"
	default:
		return "internal"
	}
}
