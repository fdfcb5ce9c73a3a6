package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDetection_WireFormat(t *testing.T) {
	d := Detection{Label: "cat", Confidence: 0.875, Box: Box{X: 10, Y: 20, Width: 30, Height: 40}}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `{"class":"cat","score":0.875,"bbox":[10,20,30,40]}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, string(data))
	}

	var back Detection
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back != d {
		t.Errorf("Expected %+v, got %+v", d, back)
	}
}

func TestBox_RejectsWrongArity(t *testing.T) {
	var b Box
	err := json.Unmarshal([]byte(`[1,2,3]`), &b)
	if err == nil || !strings.Contains(err.Error(), "4 elements") {
		t.Errorf("Expected arity error, got %v", err)
	}
}

func TestBox_Clamp(t *testing.T) {
	b := Box{X: -3, Y: 5, Width: -1, Height: 2}.Clamp()
	if b.X != 0 || b.Y != 5 || b.Width != 0 || b.Height != 2 {
		t.Errorf("Unexpected clamped box: %+v", b)
	}
}

func TestDetection_String(t *testing.T) {
	d := Detection{Label: "dog", Confidence: 0.914}
	if d.String() != "dog (91%)" {
		t.Errorf("Unexpected string: %q", d.String())
	}
}
