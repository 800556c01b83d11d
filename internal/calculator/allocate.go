package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ddublado/slush-bill-splitter/internal/models"
	"github.com/ddublado/slush-bill-splitter/internal/money"
)

// Policy decides which slots absorb the cents left over when a total does not
// divide evenly. Every policy keeps the parts summing to the rounded total.
type Policy string

const (
	// PolicyLast gives all leftover cents to the final slot: 10 / 3 -> 3.33, 3.33, 3.34.
	PolicyLast Policy = "last"

	// PolicySpread gives one leftover cent to each slot from the first:
	// 10 / 3 -> 3.34, 3.33, 3.33. No two slots differ by more than a cent.
	PolicySpread Policy = "spread"
)

// DefaultPolicy is used when a caller does not name one.
const DefaultPolicy = PolicyLast

// ParsePolicy maps a policy name to a Policy. The empty string selects
// DefaultPolicy.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultPolicy, nil
	case PolicyLast:
		return PolicyLast, nil
	case PolicySpread:
		return PolicySpread, nil
	default:
		return "", fmt.Errorf("%w: unknown remainder policy %q", models.ErrMalformedInput, name)
	}
}

// MaxSlots is the largest number of shares EvenSplit will produce.
const MaxSlots = 10_000

// EvenSplit divides total into count shares using DefaultPolicy.
func EvenSplit(total decimal.Decimal, count int) ([]money.Cents, error) {
	return EvenSplitWithPolicy(total, count, DefaultPolicy)
}

// EvenSplitWithPolicy divides total into count shares.
//
// Every slot receives floor(cents(total) / count); the count-1 or fewer cents
// left over are placed according to policy. The result is deterministic and
// sums exactly to round2(total).
func EvenSplitWithPolicy(total decimal.Decimal, count int, policy Policy) ([]money.Cents, error) {
	if count < 1 || count > MaxSlots {
		return nil, fmt.Errorf("count %d not in 1..%d: %w", count, MaxSlots, models.ErrInvalidCount)
	}
	cents, err := money.FromDecimal(total)
	if err != nil {
		return nil, fmt.Errorf("%w: total: %v", models.ErrMalformedInput, err)
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("total %s: %w", total, models.ErrNegativeValue)
	}

	n := money.Cents(count)
	share := cents / n
	leftover := cents - share*n

	shares := make([]money.Cents, count)
	for i := range shares {
		shares[i] = share
	}

	switch policy {
	case PolicyLast:
		shares[count-1] += leftover
	case PolicySpread:
		for i := money.Cents(0); i < leftover; i++ {
			shares[i]++
		}
	default:
		return nil, fmt.Errorf("%w: unknown remainder policy %q", models.ErrMalformedInput, policy)
	}

	return shares, nil
}

// SplitEvenly divides total among the named participants in order and returns
// the resulting participant list, ready to be passed to ValidateSplit.
func SplitEvenly(total decimal.Decimal, names []string, policy Policy) ([]models.Participant, error) {
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("participant %d: %w", i+1, models.ErrEmptyName)
		}
	}
	shares, err := EvenSplitWithPolicy(total, len(names), policy)
	if err != nil {
		return nil, err
	}
	participants := make([]models.Participant, len(names))
	for i, name := range names {
		participants[i] = models.Participant{Name: name, Amount: shares[i].Decimal()}
	}
	return participants, nil
}
