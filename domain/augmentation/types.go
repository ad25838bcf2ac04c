package augmentation

import (
	"textattack/domain/core"
)

// DroppedCandidate records why a candidate was rejected (audit trail).
type DroppedCandidate struct {
	CandidateIndex int    `json:"candidate_index"`
	Text           string `json:"text"`
	Constraint     string `json:"constraint"`
	Reason         string `json:"reason"`
}

// Drop reasons
const (
	ReasonDuplicate = "duplicate"
	ReasonUnchanged = "unchanged"
	ReasonRejected  = "rejected"
	ReasonOverCap   = "over_cap"
)

// Result is the full output of augmenting one input.
// Outputs is what the caller consumes; the rest is audit metadata.
type Result struct {
	Input          string             `json:"input"`
	InputHash      core.TextHash      `json:"input_hash"`
	Outputs        []string           `json:"outputs"`
	CandidateCount int                `json:"candidate_count"`
	WordCount      int                `json:"word_count"`
	WordsToSwap    int                `json:"words_to_swap"`
	Dropped        []DroppedCandidate `json:"dropped,omitempty"`
}

// AcceptedCount returns the number of candidates that survived every constraint,
// including those later cut by the output cap.
func (r Result) AcceptedCount() int {
	accepted := len(r.Outputs)
	for _, d := range r.Dropped {
		if d.Reason == ReasonOverCap {
			accepted++
		}
	}
	return accepted
}

// Params captures the recipe configuration a run was produced with.
type Params struct {
	Alpha            float64 `json:"alpha"`
	NumAugmentations int     `json:"n_aug"`
	Seed             int64   `json:"seed"`
	Language         string  `json:"language,omitempty"`
}

// Run is one recipe applied to a batch of inputs.
type Run struct {
	ID        core.RunID     `json:"id"`
	Recipe    string         `json:"recipe"`
	Params    Params         `json:"params"`
	Results   []Result       `json:"results"`
	Summary   *Summary       `json:"summary,omitempty"`
	CreatedAt core.Timestamp `json:"created_at"`
}

// Outputs flattens every output of the run in input order.
func (r *Run) Outputs() []string {
	var out []string
	for _, res := range r.Results {
		out = append(out, res.Outputs...)
	}
	return out
}

// Summary describes a run statistically.
type Summary struct {
	Inputs            int            `json:"inputs"`
	Outputs           int            `json:"outputs"`
	EmptyInputs       int            `json:"empty_inputs"`
	MeanOutputs       float64        `json:"mean_outputs"`
	MedianOutputs     float64        `json:"median_outputs"`
	MeanChangeRatio   float64        `json:"mean_change_ratio"`
	StdDevChangeRatio float64        `json:"stddev_change_ratio"`
	P90ChangeRatio    float64        `json:"p90_change_ratio"`
	AcceptanceRate    float64        `json:"acceptance_rate"`
	RejectionsByName  map[string]int `json:"rejections_by_constraint,omitempty"`
}
