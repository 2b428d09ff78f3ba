package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidItemID = errors.New("invalid item id")

// ItemID identifies a line within one cart. Callers hand it around as a
// string or a number, so parsing accepts both.
type ItemID int64

func (id ItemID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseItemID coerces v into a positive ItemID.
func ParseItemID(v interface{}) (ItemID, error) {
	var n int64
	switch t := v.(type) {
	case ItemID:
		n = int64(t)
	case int:
		n = int64(t)
	case int8:
		n = int64(t)
	case int16:
		n = int64(t)
	case int32:
		n = int64(t)
	case int64:
		n = t
	case uint:
		if uint64(t) > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v out of range", ErrInvalidItemID, t)
		}
		n = int64(t)
	case uint8:
		n = int64(t)
	case uint16:
		n = int64(t)
	case uint32:
		n = int64(t)
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %v out of range", ErrInvalidItemID, t)
		}
		n = int64(t)
	case float32:
		return parseFloatID(float64(t))
	case float64:
		return parseFloatID(t)
	case json.Number:
		return parseStringID(t.String())
	case string:
		return parseStringID(t)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidItemID, v)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d is not positive", ErrInvalidItemID, n)
	}
	return ItemID(n), nil
}

func parseStringID(s string) (ItemID, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidItemID, s)
		}
		return parseFloatID(f)
	}
	return ParseItemID(n)
}

func parseFloatID(f float64) (ItemID, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalidItemID, f)
	}
	return ParseItemID(int64(f))
}

func (id ItemID) MarshalJSON() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := parseStringID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	parsed, err := parseStringID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
