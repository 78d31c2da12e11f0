package projection

import (
	"errors"
	"fmt"
	"math/big"
	"slices"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cast"

	"avro-projector/internal/datum"
	"avro-projector/internal/errs"
	"avro-projector/internal/schema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// convert turns a decoded leaf value into the declared output type:
// string, int64, float64, bool, []byte or time.Time. s may be nil when the
// branch of a union value could not be told.
func convert(v any, s *schema.Schema, l Leaf) (any, error) {
	if v == nil {
		return nil, nil
	}

	var (
		out any
		err error
	)

	switch l.Type {
	case TypeString:
		out, err = toString(v, s)
	case TypeInteger:
		out, err = toInteger(v, s)
	case TypeNumber:
		out, err = toNumber(v)
	case TypeBoolean:
		out, err = cast.ToBoolE(datum.Native(v))
	case TypeBinary:
		out, err = toBinary(v)
	case TypeDate:
		out, err = toDate(v)
	default:
		err = fmt.Errorf("unsupported output type %d", l.Type)
	}

	if err != nil {
		return nil, &errs.ConversionError{Leaf: l.Name, Type: l.Type.String(), Err: err}
	}

	return out, nil
}

func toString(v any, s *schema.Schema) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case datum.Enum:
		return t.Symbol, nil
	case datum.Fixed:
		return string(t.Bytes), nil
	case []byte:
		return string(t), nil
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case *big.Rat:
		if s != nil && s.LogicalType == "decimal" {
			return t.FloatString(s.Scale), nil
		}

		return t.RatString(), nil
	case *datum.Record, *datum.Array, *datum.Map:
		b, err := json.Marshal(datum.Native(t))
		if err != nil {
			return "", err
		}

		return string(b), nil
	default:
		return cast.ToStringE(v)
	}
}

func toInteger(v any, s *schema.Schema) (int64, error) {
	switch t := v.(type) {
	case datum.Enum:
		if i := slices.Index(t.Schema.Symbols, t.Symbol); i >= 0 {
			return int64(i), nil
		}

		return 0, fmt.Errorf("symbol %q is not in enum %s", t.Symbol, t.Schema.FullName())
	case time.Time:
		if s != nil && s.LogicalType == "date" {
			return t.Unix() / int64(24*time.Hour/time.Second), nil
		}

		return t.UnixMilli(), nil
	case *big.Rat:
		if !t.IsInt() {
			return 0, fmt.Errorf("decimal %s is not integral", t.RatString())
		}

		if !t.Num().IsInt64() {
			return 0, errors.New("decimal overflows int64")
		}

		return t.Num().Int64(), nil
	case []byte, datum.Fixed:
		return 0, errors.New("binary value has no integer form")
	default:
		return cast.ToInt64E(v)
	}
}

func toNumber(v any) (float64, error) {
	switch t := v.(type) {
	case *big.Rat:
		f, _ := t.Float64()
		return f, nil
	case datum.Enum:
		return 0, errors.New("enum value has no numeric form")
	default:
		return cast.ToFloat64E(v)
	}
}

func toBinary(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case datum.Fixed:
		return t.Bytes, nil
	case string:
		return []byte(t), nil
	case datum.Enum:
		return []byte(t.Symbol), nil
	default:
		return nil, fmt.Errorf("%T has no binary form", v)
	}
}

// toDate reads integers as milliseconds since the epoch and strings in any
// layout cast understands.
func toDate(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case int32:
		return time.UnixMilli(int64(t)).UTC(), nil
	case int64:
		return time.UnixMilli(t).UTC(), nil
	case string:
		return cast.ToTimeE(t)
	default:
		return time.Time{}, fmt.Errorf("%T has no date form", v)
	}
}
