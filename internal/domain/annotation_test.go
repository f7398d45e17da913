package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAnnotations_Normalize(t *testing.T) {
	var a Annotations
	a.Normalize()

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got := string(data)
	if !strings.Contains(got, `"highlights":[]`) || !strings.Contains(got, `"numberMarkers":[]`) {
		t.Errorf("expected empty arrays, got %s", got)
	}
}

func TestAnnotations_JSONFieldNames(t *testing.T) {
	raw := `{"highlights":[{"id":"hl-1","color":"#ff0","areas":[{"pageIndex":2,"left":1,"top":2,"width":3,"height":4}],"text":"x"}],
		"numberMarkers":[{"number":3,"x":10,"y":20,"pageNumber":3}],"lastModified":"2024-05-01T12:00:00Z"}`

	var a Annotations
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(a.Highlights) != 1 || a.Highlights[0].Areas[0].PageIndex != 2 {
		t.Errorf("unexpected highlights %+v", a.Highlights)
	}
	if len(a.NumberMarkers) != 1 || a.NumberMarkers[0].PageIndex() != 2 {
		t.Errorf("expected marker on page index 2, got %+v", a.NumberMarkers)
	}
	if a.LastModified.Year() != 2024 {
		t.Errorf("unexpected lastModified %v", a.LastModified)
	}
}

func TestHighlight_Clone(t *testing.T) {
	h := Highlight{ID: "hl-1", Color: "#ff0", Areas: []Area{{PageIndex: 0, Width: 1}}}
	c := h.Clone()
	c.Areas[0].Width = 99

	if h.Areas[0].Width != 1 {
		t.Errorf("Clone() shares areas with the original")
	}
	if (Highlight{}).Clone().Areas != nil {
		t.Errorf("Clone() of nil areas should stay nil")
	}
}

func TestTool_Valid(t *testing.T) {
	tests := []struct {
		tool Tool
		want bool
	}{
		{ToolSelect, true},
		{ToolHighlighter, true},
		{ToolEraser, true},
		{ToolNumber, true},
		{ToolText, true},
		{Tool("lasso"), false},
		{Tool(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.tool), func(t *testing.T) {
			if got := tt.tool.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
