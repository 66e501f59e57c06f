package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every assertion held.
	Pass bool `json:"pass"`

	Scenario string `json:"scenario"`
	Seed     string `json:"seed"`
	RenderID string `json:"render_id"`
	DocHash  string `json:"doc_hash"`
	Events   int    `json:"events"`
	Triggers int    `json:"triggers"`
	Frames   uint64 `json:"frames"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Document is the exported timeline document.
	Document []byte `json:"-"`
}

// NewResult creates a new passing result.
func NewResult(scenario string) *Result {
	return &Result{
		Pass:     true,
		Scenario: scenario,
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
