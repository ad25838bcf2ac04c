package report

import (
	"math"
	"strings"

	"textattack/domain/augmentation"
	"textattack/domain/text"

	"github.com/montanaflynn/stats"
	"github.com/pmezard/go-difflib/difflib"
	"gonum.org/v1/gonum/stat"
)

// ChangeRatio is the share of input words an output rewrote, inserted or deleted,
// measured on a word-level alignment and capped at 1. An empty input has ratio 0.
func ChangeRatio(input, output string) float64 {
	a := text.New(input).Words()
	if len(a) == 0 {
		return 0
	}
	b := text.New(output).Words()

	changed := 0
	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		changed += max(op.I2-op.I1, op.J2-op.J1)
	}
	return math.Min(1, float64(changed)/float64(len(a)))
}

// Summarize describes a batch of results. Results with a blank input count
// towards EmptyInputs and are left out of the change ratios.
func Summarize(results []augmentation.Result) *augmentation.Summary {
	s := &augmentation.Summary{Inputs: len(results)}
	if len(results) == 0 {
		return s
	}

	perInput := make([]float64, 0, len(results))
	var ratios []float64
	candidates, accepted := 0, 0
	rejections := map[string]int{}

	for _, res := range results {
		s.Outputs += len(res.Outputs)
		perInput = append(perInput, float64(len(res.Outputs)))
		if strings.TrimSpace(res.Input) == "" {
			s.EmptyInputs++
		} else {
			for _, out := range res.Outputs {
				ratios = append(ratios, ChangeRatio(res.Input, out))
			}
		}

		candidates += res.CandidateCount
		accepted += res.AcceptedCount()
		for _, d := range res.Dropped {
			if d.Reason == augmentation.ReasonRejected && d.Constraint != "" {
				rejections[d.Constraint]++
			}
		}
	}

	s.MeanOutputs, _ = stats.Mean(perInput)
	s.MedianOutputs, _ = stats.Median(perInput)

	if len(ratios) > 0 {
		s.MeanChangeRatio, _ = stats.Mean(ratios)
		s.P90ChangeRatio, _ = stats.Percentile(ratios, 90)
		if len(ratios) > 1 {
			s.StdDevChangeRatio = stat.StdDev(ratios, nil)
		}
	}

	if candidates > 0 {
		s.AcceptanceRate = float64(accepted) / float64(candidates)
	}
	if len(rejections) > 0 {
		s.RejectionsByName = rejections
	}
	return s
}
