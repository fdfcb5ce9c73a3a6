package producer

import "errors"

// ErrNotReady means the source has no frame to offer yet: the device has
// no dimensions, is not playing, or returned an empty frame. The tick is
// skipped without logging.
var ErrNotReady = errors.New("source not ready")

// Source yields one JPEG-encoded frame per call.
type Source interface {
	Capture() ([]byte, error)
	Close() error
}

// scaleFor returns the factor that brings the longest side of a w x h image
// down to maxSide, or 1 when it already fits.
func scaleFor(w, h, maxSide int) float64 {
	longest := max(w, h)
	if maxSide <= 0 || longest <= maxSide {
		return 1
	}
	return float64(maxSide) / float64(longest)
}
