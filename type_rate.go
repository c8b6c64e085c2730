package flagship

import "github.com/shopspring/decimal"

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Rate is an exchange rate: units of local currency for one DefaultCurrency unit.
//
// Rates are informational only, nothing in the ledger converts with them.
type Rate struct {
	value decimal.Decimal
}

func R[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Rate {
	return Rate{value: newDecimal(value)}
}

// ParseRate parses a decimal string like "12210".
func ParseRate(s string) (Rate, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, err
	}
	return Rate{value: v}, nil
}

func (r Rate) Equal(p Rate) bool       { return r.value.Equal(p.value) }
func (r Rate) Add(p Rate) Rate         { return Rate{value: r.value.Add(p.value)} }
func (r Rate) Sub(p Rate) Rate         { return Rate{value: r.value.Sub(p.value)} }
func (r Rate) Abs() Rate               { return Rate{value: r.value.Abs()} }
func (r Rate) Round(places int32) Rate { return Rate{value: r.value.Round(places)} }
func (r Rate) GreaterThan(p Rate) bool { return r.value.GreaterThan(p.value) }
func (r Rate) IsPositive() bool        { return r.value.IsPositive() }
func (r Rate) IsZero() bool            { return r.value.IsZero() }
func (r Rate) String() string          { return r.value.String() }

// MarshalJSON writes the rate as a bare JSON number.
func (r Rate) MarshalJSON() ([]byte, error) {
	return []byte(r.value.String()), nil
}

func (r *Rate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		r.value = decimal.Zero
		return nil
	}
	return r.value.UnmarshalJSON(b)
}
