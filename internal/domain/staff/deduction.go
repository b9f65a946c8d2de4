package staff

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type DeductionKind string

const (
	DeductionFixed   DeductionKind = "fixed"
	DeductionPercent DeductionKind = "percent"
)

// DeductionValue is either Fixed(amount) or Percent(rate), resolved against
// gross pay at computation time. Percent rates are fractions (0.075 = 7.5%).
type DeductionValue struct {
	kind  DeductionKind
	value decimal.Decimal
}

func Fixed(amount decimal.Decimal) DeductionValue {
	return DeductionValue{kind: DeductionFixed, value: amount}
}

func Percent(rate decimal.Decimal) DeductionValue {
	return DeductionValue{kind: DeductionPercent, value: rate}
}

func (v DeductionValue) Kind() DeductionKind {
	if v.kind == "" {
		return DeductionFixed
	}
	return v.kind
}

// Value returns the fixed amount or the percent rate.
func (v DeductionValue) Value() decimal.Decimal {
	return v.value
}

func (v DeductionValue) IsZero() bool {
	return v.value.IsZero()
}

// Resolve returns the rand amount of the deduction for the given gross pay,
// rounded to cents.
func (v DeductionValue) Resolve(gross decimal.Decimal) decimal.Decimal {
	switch v.Kind() {
	case DeductionPercent:
		return gross.Mul(v.value).Round(2)
	default:
		return v.value.Round(2)
	}
}

// Validate rejects negative amounts and percent rates above 1.
func (v DeductionValue) Validate() error {
	if v.value.IsNegative() {
		return fmt.Errorf("must be non-negative")
	}
	if v.Kind() == DeductionPercent && v.value.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("percent rate must be a fraction between 0 and 1")
	}
	return nil
}

type deductionValueJSON struct {
	Kind   DeductionKind    `json:"kind"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Rate   *decimal.Decimal `json:"rate,omitempty"`
}

func (v DeductionValue) MarshalJSON() ([]byte, error) {
	out := deductionValueJSON{Kind: v.Kind()}
	value := v.value
	if out.Kind == DeductionPercent {
		out.Rate = &value
	} else {
		out.Amount = &value
	}
	return json.Marshal(out)
}

func (v *DeductionValue) UnmarshalJSON(data []byte) error {
	var in deductionValueJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case DeductionFixed:
		if in.Amount == nil {
			return fmt.Errorf("fixed deduction requires amount")
		}
		*v = Fixed(*in.Amount)
	case DeductionPercent:
		if in.Rate == nil {
			return fmt.Errorf("percent deduction requires rate")
		}
		*v = Percent(*in.Rate)
	default:
		return fmt.Errorf("unknown deduction kind %q", in.Kind)
	}
	return nil
}
