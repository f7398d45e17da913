package domain

import "time"

// Area is a bounding box on one page, expressed as percentages of the page
// width and height so it renders correctly at any zoom or rotation.
type Area struct {
	PageIndex int     `json:"pageIndex" yaml:"pageIndex" validate:"gte=0"`
	Left      float64 `json:"left" yaml:"left"`
	Top       float64 `json:"top" yaml:"top"`
	Width     float64 `json:"width" yaml:"width"`
	Height    float64 `json:"height" yaml:"height"`
}

// Highlight represents a colored region over selected document text.
type Highlight struct {
	ID    string `json:"id" validate:"required"`
	Color string `json:"color" validate:"required"`
	Areas []Area `json:"areas" validate:"required,min=1,dive"`
	Text  string `json:"text"`
}

// Clone returns a copy of the highlight that shares no memory with h.
func (h Highlight) Clone() Highlight {
	out := h
	if h.Areas != nil {
		out.Areas = make([]Area, len(h.Areas))
		copy(out.Areas, h.Areas)
	}
	return out
}

// NumberMarker is a discrete point annotation with a sequential label.
// X and Y are pixel offsets from the top-left of the page element at the
// zoom level active when the marker was placed.
type NumberMarker struct {
	Number     int     `json:"number" validate:"gte=1"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	PageNumber int     `json:"pageNumber" validate:"gte=1"`
}

// PageIndex returns the zero-based page index of the marker.
func (m NumberMarker) PageIndex() int {
	return m.PageNumber - 1
}

// Annotations is the persisted annotation payload for one document.
type Annotations struct {
	Highlights    []Highlight    `json:"highlights" validate:"dive"`
	NumberMarkers []NumberMarker `json:"numberMarkers" validate:"dive"`
	LastModified  time.Time      `json:"lastModified"`
}

// EmptyAnnotations returns a payload with non-nil, empty collections.
func EmptyAnnotations() *Annotations {
	return &Annotations{
		Highlights:    make([]Highlight, 0),
		NumberMarkers: make([]NumberMarker, 0),
	}
}

// Normalize replaces nil collections with empty ones so the payload always
// serializes as arrays.
func (a *Annotations) Normalize() {
	if a.Highlights == nil {
		a.Highlights = make([]Highlight, 0)
	}
	if a.NumberMarkers == nil {
		a.NumberMarkers = make([]NumberMarker, 0)
	}
}

// AnnotationRepository defines persistence operations for annotation payloads.
// token is the caller's access token, used by stores that enforce row level
// security; stores without such policies ignore it.
type AnnotationRepository interface {
	Get(userID, documentID, token string) (*Annotations, error)
	Put(userID, documentID string, annotations *Annotations, token string) error
	Delete(userID, documentID, token string) error
}

// AnnotationService defines the use-case operations for annotation payloads.
type AnnotationService interface {
	GetAnnotations(userID, documentID, token string) (*Annotations, error)
	SaveAnnotations(userID, documentID string, annotations *Annotations, token string) (*Annotations, error)
	DeleteAnnotations(userID, documentID, token string) error
}
