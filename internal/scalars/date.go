package scalars

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vektah/gqlparser/v2/ast"
)

// ErrInvalidDate is wrapped by every Date coercion failure.
var ErrInvalidDate = errors.New("invalid Date value")

// Date is the `Date` scalar. On the wire it is a number of milliseconds since
// the Unix epoch, inside resolvers it is a time.Time.
var Date Coercer = dateScalar{}

type dateScalar struct{}

func (dateScalar) ParseValue(raw interface{}) (interface{}, error) {
	return UnmarshalDate(raw)
}

func (dateScalar) ParseLiteral(value *ast.Value) (interface{}, error) {
	return ParseDateLiteral(value)
}

func (dateScalar) Serialize(value interface{}) (interface{}, error) {
	return SerializeDate(value)
}

// accepted string forms besides plain epoch milliseconds.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalDate builds a time from a variable value. Numbers are epoch
// milliseconds, strings are either epoch milliseconds or ISO 8601 dates.
func UnmarshalDate(v interface{}) (time.Time, error) {
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("%w: nil time", ErrInvalidDate)
		}
		return *v, nil
	case int:
		return time.UnixMilli(int64(v)), nil
	case int32:
		return time.UnixMilli(int64(v)), nil
	case int64:
		return time.UnixMilli(v), nil
	case float64:
		return dateFromFloat(v)
	case json.Number:
		if ms, err := v.Int64(); err == nil {
			return time.UnixMilli(ms), nil
		}
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s is not a number", ErrInvalidDate, v.String())
		}
		return dateFromFloat(f)
	case string:
		return parseDateString(v)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported input type %T", ErrInvalidDate, v)
	}
}

func dateFromFloat(f float64) (time.Time, error) {
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return time.Time{}, fmt.Errorf("%w: %v is out of range", ErrInvalidDate, f)
	}
	return time.UnixMilli(int64(f)), nil
}

func parseDateString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidDate, s)
}

// ParseDateLiteral accepts integer literals only.
func ParseDateLiteral(value *ast.Value) (time.Time, error) {
	if value == nil {
		return time.Time{}, fmt.Errorf("%w: missing literal", ErrInvalidDate)
	}
	if value.Kind != ast.IntValue {
		return time.Time{}, fmt.Errorf("%w: expected an integer literal, found %s", ErrInvalidDate, value.String())
	}
	ms, err := strconv.ParseInt(value.Raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s does not fit in 64 bits", ErrInvalidDate, value.Raw)
	}
	return time.UnixMilli(ms), nil
}

// SerializeDate returns the epoch milliseconds of a time.
func SerializeDate(v interface{}) (int64, error) {
	switch v := v.(type) {
	case time.Time:
		return v.UnixMilli(), nil
	case *time.Time:
		if v != nil {
			return v.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("%w: cannot serialize %T", ErrInvalidDate, v)
}
