package manifest

import (
	"bytes"
	"fmt"
	"strconv"
)

// Unknown is the terminal value probe-derived fields take when the prober
// could not determine them.
const Unknown = "unknown"

var unknownJSON = []byte(`"` + Unknown + `"`)

// Duration is a millisecond count that may be unknown. It serializes as a
// JSON number when known and as the string "unknown" otherwise, and accepts
// either form (plus null and numeric strings) on input.
type Duration struct {
	ms    int64
	known bool
}

// DurationMS returns a known duration.
func DurationMS(ms int64) Duration {
	return Duration{ms: ms, known: true}
}

// UnknownDuration returns the unknown terminal value.
func UnknownDuration() Duration {
	return Duration{}
}

// MS reports the millisecond value and whether it is known.
func (d Duration) MS() (int64, bool) {
	return d.ms, d.known
}

func (d Duration) String() string {
	if !d.known {
		return Unknown
	}
	return strconv.FormatInt(d.ms, 10)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	if !d.known {
		return append([]byte(nil), unknownJSON...), nil
	}
	return strconv.AppendInt(nil, d.ms, 10), nil
}

// UnmarshalJSON implements json.Unmarshaler. Anything that is not a number
// (or a numeric string) degrades to unknown rather than failing the parse;
// absence of probe data is never a structural error.
func (d *Duration) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = UnknownDuration()
		return nil
	}
	if trimmed[0] == '"' {
		unquoted, err := strconv.Unquote(string(trimmed))
		if err != nil {
			return fmt.Errorf("duration_ms: %w", err)
		}
		if ms, err := strconv.ParseInt(unquoted, 10, 64); err == nil {
			*d = DurationMS(ms)
		} else {
			*d = UnknownDuration()
		}
		return nil
	}
	ms, err := strconv.ParseInt(string(trimmed), 10, 64)
	if err != nil {
		// Some producers emit fractional milliseconds.
		f, ferr := strconv.ParseFloat(string(trimmed), 64)
		if ferr != nil {
			return fmt.Errorf("duration_ms: invalid value %s", trimmed)
		}
		ms = int64(f)
	}
	*d = DurationMS(ms)
	return nil
}

// FrameRate is a frames-per-second value that may be unknown. Callers must
// treat it as a tagged union; it is never coerced to a number when unknown.
type FrameRate struct {
	fps   float64
	known bool
}

// FPS returns a known frame rate.
func FPS(fps float64) FrameRate {
	return FrameRate{fps: fps, known: true}
}

// UnknownFrameRate returns the unknown terminal value.
func UnknownFrameRate() FrameRate {
	return FrameRate{}
}

// Value reports the frames-per-second value and whether it is known.
func (f FrameRate) Value() (float64, bool) {
	return f.fps, f.known
}

func (f FrameRate) String() string {
	if !f.known {
		return Unknown
	}
	return strconv.FormatFloat(f.fps, 'f', -1, 64)
}

// MarshalJSON implements json.Marshaler.
func (f FrameRate) MarshalJSON() ([]byte, error) {
	if !f.known {
		return append([]byte(nil), unknownJSON...), nil
	}
	return strconv.AppendFloat(nil, f.fps, 'f', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler. Non-numeric values degrade to
// unknown.
func (f *FrameRate) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = UnknownFrameRate()
		return nil
	}
	if trimmed[0] == '"' {
		unquoted, err := strconv.Unquote(string(trimmed))
		if err != nil {
			return fmt.Errorf("frame_rate: %w", err)
		}
		if fps, err := strconv.ParseFloat(unquoted, 64); err == nil {
			*f = FPS(fps)
		} else {
			*f = UnknownFrameRate()
		}
		return nil
	}
	fps, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil {
		return fmt.Errorf("frame_rate: invalid value %s", trimmed)
	}
	*f = FPS(fps)
	return nil
}
