package model

import (
	"encoding/json"
	"fmt"
)

// Box is an axis-aligned bounding box in source-image pixel coordinates.
// On the wire it is the array [x, y, width, height].
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// MarshalJSON encodes the box as [x, y, width, height].
func (b Box) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{b.X, b.Y, b.Width, b.Height})
}

// UnmarshalJSON decodes a box from [x, y, width, height].
func (b *Box) UnmarshalJSON(data []byte) error {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("failed to decode bbox: %w", err)
	}
	if len(v) != 4 {
		return fmt.Errorf("bbox must have 4 elements, got %d", len(v))
	}
	b.X, b.Y, b.Width, b.Height = v[0], v[1], v[2], v[3]
	return nil
}

// Clamp returns the box with negative components raised to zero.
func (b Box) Clamp() Box {
	return Box{
		X:      max(b.X, 0),
		Y:      max(b.Y, 0),
		Width:  max(b.Width, 0),
		Height: max(b.Height, 0),
	}
}

// Detection is one labeled, scored, localized object found in a single frame.
type Detection struct {
	Label      string  `json:"class"`
	Confidence float64 `json:"score"`
	Box        Box     `json:"bbox"`
}

func (d Detection) String() string {
	return fmt.Sprintf("%s (%d%%)", d.Label, int(d.Confidence*100+0.5))
}
