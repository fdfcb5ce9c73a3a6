package ai

import "fmt"

// cocoLabels maps SSD MobileNet v1 COCO class IDs to labels.
var cocoLabels = map[int]string{
	1:  "person",
	2:  "bicycle",
	3:  "car",
	4:  "motorcycle",
	5:  "airplane",
	6:  "bus",
	7:  "train",
	8:  "truck",
	9:  "boat",
	16: "bird",
	17: "cat",
	18: "dog",
	19: "horse",
	20: "sheep",
	21: "cow",
	22: "elephant",
	23: "bear",
	24: "zebra",
	25: "giraffe",
}

// AnimalClasses is the allow-list applied to model output.
var AnimalClasses = []string{
	"person", "cat", "dog", "bird", "horse", "sheep",
	"cow", "elephant", "bear", "zebra", "giraffe",
}

// MockLabels are the classes the mock backend draws from.
var MockLabels = []string{"cat", "dog", "bird", "person"}

// getClassLabel maps model class IDs to human-readable labels.
func getClassLabel(classID int) string {
	if label, exists := cocoLabels[classID]; exists {
		return label
	}
	return fmt.Sprintf("unknown%d", classID)
}

func allowSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}
