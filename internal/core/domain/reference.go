package domain

// Reference is a single retrieval result. Under a scope that does not
// reveal paths the Path is replaced with an ordinal placeholder and the
// Route and Anchor are cleared before the reference leaves the core.
type Reference struct {
	Title   string   `json:"title"`
	Path    string   `json:"path"`
	Route   string   `json:"route"`
	Anchor  string   `json:"anchor,omitempty"`
	Excerpt string   `json:"excerpt,omitempty"`
	Score   *float64 `json:"score,omitempty"`
}
