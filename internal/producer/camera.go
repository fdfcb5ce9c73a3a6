package producer

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// CameraSource captures frames from a local video device.
type CameraSource struct {
	device   string
	capture  *gocv.VideoCapture
	frame    gocv.Mat
	maxWidth int
	quality  int
	mu       sync.Mutex
}

// OpenCamera acquires the video device. device is a numeric index ("0") or
// a path/URL understood by OpenCV.
func OpenCamera(device string, maxWidth, quality int) (*CameraSource, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %s: %w", device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("failed to open camera %s: device not available", device)
	}

	return &CameraSource{
		device:   device,
		capture:  capture,
		frame:    gocv.NewMat(),
		maxWidth: maxWidth,
		quality:  quality,
	}, nil
}

// Capture reads the next frame, scales it and encodes it as JPEG.
func (c *CameraSource) Capture() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, fmt.Errorf("camera %s is closed", c.device)
	}
	if ok := c.capture.Read(&c.frame); !ok || c.frame.Empty() {
		return nil, ErrNotReady
	}

	img := c.frame
	if scale := scaleFor(c.frame.Cols(), c.frame.Rows(), c.maxWidth); scale < 1 {
		scaled := gocv.NewMat()
		defer scaled.Close()
		if err := gocv.Resize(c.frame, &scaled, image.Point{}, scale, scale, gocv.InterpolationArea); err != nil {
			return nil, fmt.Errorf("failed to resize frame: %w", err)
		}
		img = scaled
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img, []int{gocv.IMWriteJpegQuality, c.quality})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}

// Close releases the device.
func (c *CameraSource) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	c.frame.Close()
	err := c.capture.Close()
	c.capture = nil
	return err
}
