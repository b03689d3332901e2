package domain

// KeyPoint is one salient statement the analysis backend surfaced.
type KeyPoint struct {
	Text       string  `json:"text"`
	Context    string  `json:"context,omitempty"`
	Importance float64 `json:"importance"`
}

// Entities groups the named entities found in a text span.
type Entities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Dates         []string `json:"dates"`
}

// EntityRelationship links two entities the backend associated.
type EntityRelationship struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// Analysis is the structured response of the analysis backend for one
// text span. The engine treats the backend as opaque: it verifies the
// required fields are present and builds metadata from them, nothing more.
type Analysis struct {
	KeyPoints     []KeyPoint           `json:"key_points"`
	Entities      Entities             `json:"entities"`
	Relationships []EntityRelationship `json:"relationships"`
	Patterns      []string             `json:"patterns"`
	Confidence    float64              `json:"confidence"`
}
