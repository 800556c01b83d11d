package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ddublado/slush-bill-splitter/internal/money"
)

// EvenSplitRequest asks for the total to be divided evenly.
//
// Either Count or Participants sets the number of slots. When both are sent
// they must agree. When Participants is given, the amounts are paired with the
// names in order.
type EvenSplitRequest struct {
	Total        decimal.Decimal
	Count        int
	Participants []string

	// Policy names the remainder policy ("last" or "spread"). Empty selects
	// the server default.
	Policy string
}

// Slots returns the number of allocation slots requested.
func (r EvenSplitRequest) Slots() int {
	if len(r.Participants) > 0 {
		return len(r.Participants)
	}
	return r.Count
}

// UnmarshalJSON decodes {"total": number, "count": int, "participants": [...], "policy": string}.
func (r *EvenSplitRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Total        json.RawMessage `json:"total"`
		Count        *int            `json:"count"`
		Participants []string        `json:"participants"`
		Policy       string          `json:"policy"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if len(raw.Total) == 0 {
		return fmt.Errorf("%w: total is missing", ErrMalformedInput)
	}
	total, err := money.ParseNumber(string(raw.Total))
	if err != nil {
		return fmt.Errorf("%w: total: %v", ErrMalformedInput, err)
	}
	if raw.Count == nil && len(raw.Participants) == 0 {
		return fmt.Errorf("%w: count or participants is required", ErrMalformedInput)
	}
	if raw.Count != nil && len(raw.Participants) > 0 && *raw.Count != len(raw.Participants) {
		return fmt.Errorf("%w: count %d does not match %d participants", ErrMalformedInput, *raw.Count, len(raw.Participants))
	}
	for i, name := range raw.Participants {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("participant %d: %w", i+1, ErrEmptyName)
		}
	}

	r.Total = total
	r.Participants = raw.Participants
	r.Policy = raw.Policy
	r.Count = 0
	if raw.Count != nil {
		r.Count = *raw.Count
	}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (r EvenSplitRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Total        json.Number `json:"total"`
		Count        int         `json:"count,omitempty"`
		Participants []string    `json:"participants,omitempty"`
		Policy       string      `json:"policy,omitempty"`
	}{
		Total:        json.Number(r.Total.String()),
		Count:        r.Count,
		Participants: r.Participants,
		Policy:       r.Policy,
	})
}

// Share is one slot of an even split, optionally named.
type Share struct {
	Name   string      `json:"name,omitempty"`
	Amount money.Cents `json:"amount"`
}

// EvenSplitResponse carries an allocation whose amounts sum to the rounded total.
type EvenSplitResponse struct {
	Success bool          `json:"success"`
	Amounts []money.Cents `json:"amounts"`
	Shares  []Share       `json:"shares,omitempty"`
}

// ErrorResponse is the body of a rejected request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
