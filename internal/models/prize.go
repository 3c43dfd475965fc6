package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Prize is one entry on the wheel.
// Probability is a relative weight, not a normalised 0-1 value.
// UsageLimit 0 means the prize can be won any number of times; Used counts wins
// against a positive limit and is owned by the server.
type Prize struct {
	Name        string  `json:"name" yaml:"name"`
	Probability float64 `json:"probability" yaml:"probability"`
	UsageLimit  int     `json:"usage_limit" yaml:"usage_limit"`
	Used        int     `json:"used" yaml:"-"`
}

// Available reports whether the prize can still be won.
func (p Prize) Available() bool {
	return p.UsageLimit == 0 || p.Used < p.UsageLimit
}

// PrizeList is the body of GET /api/prizes.
type PrizeList struct {
	Prizes []Prize `json:"prizes"`
}

// SpinResult is the body of GET /spin.
// An empty Outcome means no prize could be won. Index is the position of the
// winning prize in the server's list and Degrees the rotation that lands it
// under the pointer; both are absent when Outcome is.
type SpinResult struct {
	Outcome string   `json:"outcome,omitempty"`
	Index   *int     `json:"index,omitempty"`
	Degrees *float64 `json:"degrees,omitempty"`
}

// APIResult is the {success, message} body returned by the mutating endpoints.
type APIResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DeletePrizeRequest is the body of POST /delete_prize.
type DeletePrizeRequest struct {
	Name string `json:"name" binding:"required,notblank"`
}

// SavePrizesRequest is the body of POST /save_admin_changes.
type SavePrizesRequest struct {
	Prizes []PrizeRow `json:"prizes" binding:"required"`
}

// PrizeRow is one admin table row exactly as typed into its inputs.
type PrizeRow struct {
	Name        string     `json:"name" yaml:"name"`
	Probability RawNumeric `json:"probability" yaml:"probability"`
	UsageLimit  RawNumeric `json:"usage_limit" yaml:"usage_limit"`
}

// RowFromPrize formats a prize the way the admin table shows it.
func RowFromPrize(p Prize) PrizeRow {
	return PrizeRow{
		Name:        p.Name,
		Probability: RawNumeric(strconv.FormatFloat(p.Probability, 'f', -1, 64)),
		UsageLimit:  RawNumeric(strconv.Itoa(p.UsageLimit)),
	}
}

// RawNumeric carries an input value verbatim. It is sent as a JSON string and
// accepts either a string or a bare number when decoding.
type RawNumeric string

func (r RawNumeric) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r))
}

func (r *RawNumeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RawNumeric(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = RawNumeric(n.String())
	return nil
}
