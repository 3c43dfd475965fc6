package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"prizewheel/internal/models"
)

// ValidationError reports the first admin row that could not be accepted.
type ValidationError struct {
	Row    int
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("row %d (%s): %s", e.Row, e.Name, e.Reason)
}

// ParseRows converts raw admin rows into prizes. Rows are numbered from 1.
func ParseRows(rows []models.PrizeRow) ([]models.Prize, error) {
	prizes := make([]models.Prize, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		n := i + 1
		if strings.TrimSpace(row.Name) == "" {
			return nil, &ValidationError{Row: n, Reason: "name is required"}
		}
		if seen[row.Name] {
			return nil, &ValidationError{Row: n, Name: row.Name, Reason: "name is already used"}
		}
		seen[row.Name] = true

		probability, err := strconv.ParseFloat(strings.TrimSpace(string(row.Probability)), 64)
		if err != nil || probability < 0 || math.IsInf(probability, 0) || math.IsNaN(probability) {
			return nil, &ValidationError{Row: n, Name: row.Name, Reason: "probability must be a non-negative number"}
		}
		limit, err := strconv.Atoi(strings.TrimSpace(string(row.UsageLimit)))
		if err != nil || limit < 0 {
			return nil, &ValidationError{Row: n, Name: row.Name, Reason: "usage limit must be a non-negative whole number"}
		}

		prizes = append(prizes, models.Prize{
			Name:        row.Name,
			Probability: probability,
			UsageLimit:  limit,
		})
	}
	return prizes, nil
}

// Normalize rescales probabilities to percentages rounded to two decimals.
// A list whose weights sum to zero is returned unchanged.
func Normalize(prizes []models.Prize) []models.Prize {
	total := decimal.Zero
	for _, p := range prizes {
		total = total.Add(decimal.NewFromFloat(p.Probability))
	}
	if !total.IsPositive() {
		return prizes
	}

	hundred := decimal.NewFromInt(100)
	out := make([]models.Prize, len(prizes))
	for i, p := range prizes {
		out[i] = p
		out[i].Probability = decimal.NewFromFloat(p.Probability).
			Div(total).
			Mul(hundred).
			Round(2).
			InexactFloat64()
	}
	return out
}

// PrepareSeed runs a starting prize list through the same checks and
// normalisation as an admin save.
func PrepareSeed(seed []models.Prize) ([]models.Prize, error) {
	rows := make([]models.PrizeRow, len(seed))
	for i, p := range seed {
		rows[i] = models.RowFromPrize(p)
	}
	prizes, err := ParseRows(rows)
	if err != nil {
		return nil, err
	}
	return Normalize(prizes), nil
}
