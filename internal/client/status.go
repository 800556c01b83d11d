package client

import (
	"github.com/ddublado/slush-bill-splitter/internal/models"
)

// Status summarizes a validation result the way the split form shows it
// while the user is still typing.
func Status(res models.SplitResult) string {
	switch {
	case res.Difference == 0:
		return "Split is balanced!"
	case res.Difference > 0:
		return res.Difference.String() + " still needs to be assigned"
	default:
		return "Split exceeds total by " + res.Difference.Abs().String()
	}
}
