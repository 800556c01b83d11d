package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ddublado/slush-bill-splitter/internal/models"
	"github.com/ddublado/slush-bill-splitter/internal/money"
)

// ValidateSplit decides whether the participant amounts account for total to
// the cent.
//
// Input problems (blank name, amount out of range, negative total or amount,
// no participants) are returned as errors wrapping the models sentinels. An imbalance is not an
// error: it is a SplitResult with Success false and a signed Difference.
//
// The amounts are summed exactly and only the sum is rounded, so
// round2(total) is compared with round2(sum), never with a sum of rounded parts.
func ValidateSplit(total decimal.Decimal, splits []models.Participant) (models.SplitResult, error) {
	for i, p := range splits {
		if strings.TrimSpace(p.Name) == "" {
			return models.SplitResult{}, fmt.Errorf("participant %d: %w", i+1, models.ErrEmptyName)
		}
	}

	// Bounded before anything formats or sums them.
	if err := money.CheckRange(total); err != nil {
		return models.SplitResult{}, fmt.Errorf("%w: total: %v", models.ErrMalformedInput, err)
	}
	for i, p := range splits {
		if err := money.CheckRange(p.Amount); err != nil {
			return models.SplitResult{}, fmt.Errorf("%w: participant %d: %v", models.ErrMalformedInput, i+1, err)
		}
	}

	if total.IsNegative() {
		return models.SplitResult{}, fmt.Errorf("total %s: %w", total, models.ErrNegativeValue)
	}
	for _, p := range splits {
		if p.Amount.IsNegative() {
			return models.SplitResult{}, fmt.Errorf("participant %q amount %s: %w", p.Name, p.Amount, models.ErrNegativeValue)
		}
	}

	if len(splits) == 0 {
		return models.SplitResult{}, models.ErrNoParticipants
	}

	amounts := make([]decimal.Decimal, len(splits))
	for i, p := range splits {
		amounts[i] = p.Amount
	}

	totalCents, err := money.FromDecimal(total)
	if err != nil {
		return models.SplitResult{}, fmt.Errorf("%w: total: %v", models.ErrMalformedInput, err)
	}
	sumCents, err := money.FromDecimal(money.Sum(amounts...))
	if err != nil {
		return models.SplitResult{}, fmt.Errorf("%w: sum of splits: %v", models.ErrMalformedInput, err)
	}

	diff := totalCents - sumCents
	if diff == 0 {
		return models.SplitResult{
			Success:    true,
			Message:    "Split is valid.",
			Difference: 0,
		}, nil
	}

	return models.SplitResult{
		Success:    false,
		Message:    fmt.Sprintf("Split is invalid. Total is %s but sum of splits is %s.", total.String(), sumCents),
		Difference: diff,
	}, nil
}

// Validate is ValidateSplit applied to a decoded request.
func Validate(req models.SplitRequest) (models.SplitResult, error) {
	return ValidateSplit(req.Total, req.Splits)
}
