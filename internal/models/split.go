package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ddublado/slush-bill-splitter/internal/money"
)

// Participant is one named share of a bill.
type Participant struct {
	// Name identifies the participant. Required, but not required to be unique.
	Name string `json:"name"`

	// Amount is the share assigned to this participant.
	Amount decimal.Decimal `json:"amount"`
}

// SplitRequest is a proposed division of a bill.
//
// On the wire it is {"total": number, "splits": {name: number, ...}}.
// Decoding keeps the key order of splits, and a repeated key becomes a
// separate participant rather than overwriting the earlier one.
type SplitRequest struct {
	Total  decimal.Decimal
	Splits []Participant
}

// SplitResult is the verdict on a SplitRequest.
// Success is true iff Difference is zero.
type SplitResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	// Difference is round2(total) - round2(sum). Positive means the splits
	// under-assign the total, negative means they over-assign it.
	Difference money.Cents `json:"difference"`
}

// Amounts returns the participant amounts in order.
func (r SplitRequest) Amounts() []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(r.Splits))
	for i, p := range r.Splits {
		amounts[i] = p.Amount
	}
	return amounts
}

// MarshalJSON writes splits as an object in participant order. Repeated
// names are written as repeated keys.
func (r SplitRequest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"total":`)
	buf.WriteString(r.Total.String())
	buf.WriteString(`,"splits":{`)
	for i, p := range r.Splits {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(p.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.WriteString(p.Amount.String())
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a SplitRequest. Any structural problem is reported
// as ErrMalformedInput; range checks are left to the validator.
func (r *SplitRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Total  json.RawMessage `json:"total"`
		Splits json.RawMessage `json:"splits"`
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
	splits, err := decodeSplits(raw.Splits)
	if err != nil {
		return err
	}

	r.Total = total
	r.Splits = splits
	return nil
}

func decodeSplits(raw json.RawMessage) ([]Participant, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: splits is missing", ErrMalformedInput)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: splits: %v", ErrMalformedInput, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: splits is not an object", ErrMalformedInput)
	}

	splits := []Participant{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: splits: %v", ErrMalformedInput, err)
		}
		name, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: splits[%q]: %v", ErrMalformedInput, name, err)
		}
		amount, err := money.ParseNumber(string(value))
		if err != nil {
			return nil, fmt.Errorf("%w: splits[%q]: %v", ErrMalformedInput, name, err)
		}
		splits = append(splits, Participant{Name: name, Amount: amount})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: splits: %v", ErrMalformedInput, err)
	}
	return splits, nil
}
