package ai

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"burrowwatch/internal/config"
	"burrowwatch/internal/logger"
	"burrowwatch/internal/model"

	"gocv.io/x/gocv"
)

// prediction is one raw SSD output row with corners normalized to 0-1.
type prediction struct {
	classID    int
	confidence float32
	left       float32
	top        float32
	right      float32
	bottom     float32
}

// NetBackend runs SSD MobileNet v1 COCO through the OpenCV DNN module.
type NetBackend struct {
	net        gocv.Net
	modelPath  string
	configPath string
	threshold  float32
	allowed    map[string]bool
	mu         sync.Mutex // gocv.Net is not safe for concurrent Forward calls
	logger     *logger.Logger
}

// NewNetBackend loads the network described by cfg.
func NewNetBackend(cfg *config.Config, logger *logger.Logger) (*NetBackend, error) {
	b := &NetBackend{
		modelPath:  cfg.ModelPath,
		configPath: cfg.ConfigPath,
		threshold:  float32(cfg.ConfidenceThreshold),
		allowed:    allowSet(AnimalClasses),
		logger:     logger,
	}

	if err := b.initializeNet(); err != nil {
		return nil, err
	}
	return b, nil
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (b *NetBackend) initializeNet() error {
	if _, err := os.Stat(b.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: model file not found: %s", ErrNoModel, b.modelPath)
	}

	if _, err := os.Stat(b.configPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: config file not found: %s", ErrNoModel, b.configPath)
	}

	net := gocv.ReadNet(b.modelPath, b.configPath)
	if net.Empty() {
		return fmt.Errorf("%w: failed to load network", ErrNoModel)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	b.net = net
	b.logger.Info("🧠 Detection network loaded from %s", b.modelPath)
	return nil
}

// Detect decodes img and returns allow-listed detections above the threshold.
func (b *NetBackend) Detect(ctx context.Context, img []byte) ([]model.Detection, error) {
	if len(img) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	mat, err := gocv.IMDecode(img, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("decoded image is empty")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Parameters that fit the SSD COCO input
	blob := gocv.BlobFromImage(mat, 1.0/127.5, image.Pt(300, 300), gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	b.net.SetInput(blob, "")

	output := b.net.Forward("")
	defer output.Close()

	// Rows of [batch_id, class_id, confidence, x1, y1, x2, y2]
	rows := output.Reshape(1, output.Total()/7)
	defer rows.Close()

	preds := make([]prediction, 0, rows.Rows())
	for i := 0; i < rows.Rows(); i++ {
		preds = append(preds, prediction{
			classID:    int(rows.GetFloatAt(i, 1)),
			confidence: rows.GetFloatAt(i, 2),
			left:       rows.GetFloatAt(i, 3),
			top:        rows.GetFloatAt(i, 4),
			right:      rows.GetFloatAt(i, 5),
			bottom:     rows.GetFloatAt(i, 6),
		})
	}

	return filterPredictions(preds, b.allowed, b.threshold, mat.Cols(), mat.Rows()), nil
}

func (b *NetBackend) Kind() string { return KindModel }

func (b *NetBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.net.Close()
}

// filterPredictions keeps allow-listed classes scoring above threshold and
// converts their corners to pixel boxes for a width x height image.
func filterPredictions(preds []prediction, allowed map[string]bool, threshold float32, width, height int) []model.Detection {
	results := make([]model.Detection, 0)
	w := float64(width)
	h := float64(height)

	for _, p := range preds {
		if p.confidence <= threshold {
			continue
		}
		label := getClassLabel(p.classID)
		if !allowed[label] {
			continue
		}

		box := model.Box{
			X:      float64(p.left) * w,
			Y:      float64(p.top) * h,
			Width:  float64(p.right-p.left) * w,
			Height: float64(p.bottom-p.top) * h,
		}

		results = append(results, model.Detection{
			Label:      label,
			Confidence: float64(p.confidence),
			Box:        box.Clamp(),
		})
	}

	return results
}
