package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxOptions is the number of choices an MCQ question may have.
const MaxOptions = 8

// Option is the canonical encoding of an MCQ choice: a one-based index that
// renders as an uppercase letter (1 = "A"). The zero value is not a valid option.
type Option uint8

// ParseOption normalizes a letter ("b", " B ") or a one-based index ("2") into an Option.
func ParseOption(raw string) (Option, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("option is empty")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return OptionFromIndex(n)
	}
	if len(s) != 1 {
		return 0, fmt.Errorf("option %q is not a single letter or index", raw)
	}
	c := s[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c >= 'A'+MaxOptions {
		return 0, fmt.Errorf("option %q is outside A-%c", raw, 'A'+MaxOptions-1)
	}
	return Option(c - 'A' + 1), nil
}

// OptionFromIndex converts a one-based index into an Option.
func OptionFromIndex(n int) (Option, error) {
	if n < 1 || n > MaxOptions {
		return 0, fmt.Errorf("option index %d is outside 1-%d", n, MaxOptions)
	}
	return Option(n), nil
}

// Valid reports whether o is inside the accepted domain.
func (o Option) Valid() bool {
	return o >= 1 && o <= MaxOptions
}

func (o Option) String() string {
	if !o.Valid() {
		return ""
	}
	return string(rune('A' + o - 1))
}

func (o Option) MarshalJSON() ([]byte, error) {
	if !o.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(o.String())
}

// UnmarshalJSON accepts either a letter string or a one-based JSON number.
func (o *Option) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		v, err := OptionFromIndex(n)
		if err != nil {
			return err
		}
		*o = v
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("option must be a letter or an index")
	}
	v, err := ParseOption(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Value stores the option as its letter.
func (o Option) Value() (driver.Value, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid option %d", uint8(o))
	}
	return o.String(), nil
}

func (o *Option) Scan(src any) error {
	switch v := src.(type) {
	case string:
		p, err := ParseOption(v)
		if err != nil {
			return err
		}
		*o = p
	case []byte:
		p, err := ParseOption(string(v))
		if err != nil {
			return err
		}
		*o = p
	case int64:
		p, err := OptionFromIndex(int(v))
		if err != nil {
			return err
		}
		*o = p
	default:
		return fmt.Errorf("cannot scan %T into Option", src)
	}
	return nil
}
