// Package simulate replays many weighted draws offline to check that spin
// outcomes follow the configured probabilities.
package simulate

import (
	"errors"

	"github.com/cheggaaa/pb/v3"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"prizewheel/internal/models"
	"prizewheel/internal/services"
)

var (
	ErrNoRounds     = errors.New("rounds must be > 0")
	ErrNothingToWin = errors.New("no prize can be won")
)

// Share compares how often a prize should and did come up.
type Share struct {
	Name     string
	Count    int
	Expected float64
	Observed float64
}

type Report struct {
	Rounds           int
	Shares           []Share
	ChiSquare        float64
	DegreesOfFreedom int
	// PValue is the chance of a chi-square at least this large if the draws
	// really follow the expected shares.
	PValue float64
}

// Run draws rounds outcomes with the same selection the server uses. Usage
// limits are checked once up front and are not consumed by the draws.
// bar is advanced once per draw and may be nil.
func Run(prizes []models.Prize, rounds int, randFloat func() float64, bar *pb.ProgressBar) (Report, error) {
	if rounds < 1 {
		return Report{}, ErrNoRounds
	}

	total := 0.0
	for _, p := range prizes {
		if p.Available() && p.Probability > 0 {
			total += p.Probability
		}
	}
	if total <= 0 {
		return Report{}, ErrNothingToWin
	}

	counts := make([]int, len(prizes))
	for i := 0; i < rounds; i++ {
		counts[services.Pick(prizes, randFloat())]++
		if bar != nil {
			bar.Increment()
		}
	}

	report := Report{Rounds: rounds}
	var observed, expected []float64
	for i, p := range prizes {
		if !p.Available() || p.Probability <= 0 {
			continue
		}
		share := Share{
			Name:     p.Name,
			Count:    counts[i],
			Expected: p.Probability / total,
			Observed: float64(counts[i]) / float64(rounds),
		}
		report.Shares = append(report.Shares, share)
		observed = append(observed, float64(share.Count))
		expected = append(expected, share.Expected*float64(rounds))
	}

	report.ChiSquare = stat.ChiSquare(observed, expected)
	report.DegreesOfFreedom = len(report.Shares) - 1
	report.PValue = 1
	if report.DegreesOfFreedom > 0 {
		report.PValue = distuv.ChiSquared{K: float64(report.DegreesOfFreedom)}.Survival(report.ChiSquare)
	}
	return report, nil
}
