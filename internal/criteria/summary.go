package criteria

import "fmt"

// Configured is a persisted criterion ready for evaluation.
type Configured struct {
	ID        string
	Name      string
	Criterion Criterion
}

// Result is the status of one configured criterion for one student.
type Result struct {
	Name string `json:"name"`
	StatusCheckResponse
}

// Summary is the schein status of one student.
type Summary struct {
	Passed  bool              `json:"passed"`
	Results map[string]Result `json:"results"`
}

// Evaluate runs one configured criterion against the input.
func Evaluate(cfg Configured, in *Input) (Result, error) {
	status, err := cfg.Criterion.Evaluate(in)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate criteria %s (%s): %w", cfg.ID, cfg.Name, err)
	}
	return Result{Name: cfg.Name, StatusCheckResponse: status}, nil
}

// Summarize evaluates every configured criterion. The student passes only if
// every criterion passes. The first evaluation error aborts the summary.
func Summarize(in *Input, configured []Configured) (Summary, error) {
	summary := Summary{
		Passed:  true,
		Results: make(map[string]Result, len(configured)),
	}
	for _, cfg := range configured {
		result, err := Evaluate(cfg, in)
		if err != nil {
			return Summary{}, err
		}
		summary.Results[cfg.ID] = result
		summary.Passed = summary.Passed && result.Passed
	}
	return summary, nil
}
