// Package wheel turns a prize list into wheel segments and spin rotations.
//
// Angles are in degrees, measured clockwise from the pointer at the top of the
// wheel, the same reference a CSS conic-gradient uses.
package wheel

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"prizewheel/internal/models"
)

const (
	// BaseSpin is the ten full turns every spin makes before landing.
	BaseSpin = 3600.0
	fullTurn = 360.0

	// PlaceholderColor fills a wheel that has nothing to show.
	PlaceholderColor = "#bdc3c7"
)

// Palette is cycled through by segment index.
var Palette = []string{
	"#e74c3c",
	"#2ecc71",
	"#3498db",
	"#9b59b6",
	"#f1c40f",
	"#1abc9c",
	"#e67e22",
	"#c0392b",
}

var (
	ErrEmptyWheel = errors.New("wheel has no prizes with positive probability")
	ErrBadIndex   = errors.New("prize index out of range")
)

// Segment is one wedge of the wheel.
type Segment struct {
	Name        string
	Probability float64
	Start       float64
	Sweep       float64
	Color       string
}

// End is the angle where the segment stops.
func (s Segment) End() float64 {
	return s.Start + s.Sweep
}

// LabelAngle is the rotation that centres the segment's label.
func (s Segment) LabelAngle() float64 {
	return s.Start + s.Sweep/2
}

// Wheel is the state derived from one prize snapshot.
type Wheel struct {
	Prizes   []models.Prize
	Total    float64
	Segments []Segment
}

// Build lays the prizes out in list order. A list that is empty or whose
// weights sum to zero yields an empty wheel rather than NaN angles.
func Build(prizes []models.Prize) Wheel {
	w := Wheel{Prizes: append([]models.Prize(nil), prizes...)}
	for _, p := range prizes {
		w.Total += weight(p)
	}
	if w.Total <= 0 {
		w.Total = 0
		return w
	}

	w.Segments = make([]Segment, 0, len(prizes))
	cumulativeAngle := 0.0
	for i, p := range prizes {
		sweep := weight(p) / w.Total * fullTurn
		w.Segments = append(w.Segments, Segment{
			Name:        p.Name,
			Probability: p.Probability,
			Start:       cumulativeAngle,
			Sweep:       sweep,
			Color:       Palette[i%len(Palette)],
		})
		cumulativeAngle += sweep
	}
	return w
}

func weight(p models.Prize) float64 {
	if p.Probability < 0 || math.IsNaN(p.Probability) {
		return 0
	}
	return p.Probability
}

// Empty reports whether the wheel has no drawable segments.
func (w Wheel) Empty() bool {
	return len(w.Segments) == 0
}

// Gradient renders the segments as a CSS conic-gradient value.
func (w Wheel) Gradient() string {
	if w.Empty() {
		return "conic-gradient(" + PlaceholderColor + " 0deg 360deg)"
	}
	stops := make([]string, 0, len(w.Segments))
	for _, s := range w.Segments {
		stops = append(stops, s.Color+" "+FormatDegrees(s.Start)+" "+FormatDegrees(s.End()))
	}
	return "conic-gradient(" + strings.Join(stops, ", ") + ")"
}

// IndexOf returns the position of the first prize with the given name, or -1.
func (w Wheel) IndexOf(name string) int {
	for i, p := range w.Prizes {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// SpinDegrees returns the absolute rotation that lands the midpoint of the
// prize at index under the pointer after BaseSpin worth of turns.
func (w Wheel) SpinDegrees(index int) (float64, error) {
	if w.Empty() {
		return 0, ErrEmptyWheel
	}
	if index < 0 || index >= len(w.Prizes) {
		return 0, ErrBadIndex
	}
	cumulativeProbability := 0.0
	for i := 0; i < index; i++ {
		cumulativeProbability += weight(w.Prizes[i])
	}
	angleForPrize := (cumulativeProbability + weight(w.Prizes[index])/2) * fullTurn / w.Total
	return BaseSpin + (fullTurn - angleForPrize), nil
}

// NormalizeRotation folds an absolute rotation back into [0, 360) so the next
// spin starts from the same visual position without accumulating turns.
func NormalizeRotation(degrees float64) float64 {
	r := math.Mod(degrees, fullTurn)
	if r < 0 {
		r += fullTurn
	}
	return r
}

// FormatDegrees prints an angle as a CSS value such as "108deg".
func FormatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "deg"
}

// TransitionCSS is the transition applied while the wheel spins for d.
func TransitionCSS(d time.Duration) string {
	return "transform " + strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s cubic-bezier(0.1, 0.7, 1.0, 0.1)"
}
