package adventure

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/adventure-scaler/scaler/internal/errors"
)

// Accepted scale ratio range, inclusive.
var (
	MinRatio = decimal.RequireFromString("0.1")
	MaxRatio = decimal.NewFromInt(10)
)

// ParseRatio parses a scale ratio exactly as written and checks its range.
func ParseRatio(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.CodeInvalidScale, fmt.Sprintf("scale ratio %q is not a number", s), err)
	}
	if err := ValidateRatio(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateRatio rejects ratios outside [MinRatio, MaxRatio].
func ValidateRatio(d decimal.Decimal) error {
	if d.LessThan(MinRatio) || d.GreaterThan(MaxRatio) {
		return apperrors.New(apperrors.CodeInvalidScale,
			fmt.Sprintf("scale ratio %s is outside [%s, %s]", d.String(), MinRatio.String(), MaxRatio.String()))
	}
	return nil
}

// ScaledName derives an output file name, e.g. "cave.fvttadv" scaled by 2
// becomes "cave-x2.fvttadv".
func ScaledName(name string, ratio decimal.Decimal) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s-x%s%s", strings.TrimSuffix(name, ext), ratio.String(), ext)
}
