package serpapi

import (
	"encoding/json"
	"strings"
)

// NewsResult is one raw article as returned by the provider. Stories holds
// related coverage the provider nests under a lead result.
type NewsResult struct {
	Title   string       `json:"title"`
	Link    string       `json:"link"`
	Date    string       `json:"date"`
	Source  SourceField  `json:"source"`
	Stories []NewsResult `json:"stories"`
}

// SourceField normalizes the provider's source value at the boundary. The
// field arrives either as a bare string or as an object with a name; both
// collapse to a plain display name here, "unknown" when absent or of an
// unexpected shape.
type SourceField struct {
	Name string
}

const unknownSource = "unknown"

func (s *SourceField) UnmarshalJSON(data []byte) error {
	s.Name = unknownSource

	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if v := strings.TrimSpace(asString); v != "" {
			s.Name = v
		}
		return nil
	}

	var asObject struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &asObject); err == nil {
		if v := strings.TrimSpace(asObject.Name); v != "" {
			s.Name = v
		}
		return nil
	}

	// Unexpected shape is not an error; the source is display-only.
	return nil
}

func (s SourceField) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Name)
}

// String returns the normalized display name.
func (s SourceField) String() string {
	if s.Name == "" {
		return unknownSource
	}
	return s.Name
}
