package interp

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format renders v the way println prints it.
func Format(v Value) string {
	switch n := v.(type) {
	case UnitValue:
		return "kotlin.Unit"
	case BoolValue:
		return strconv.FormatBool(n.Val)
	case IntValue:
		return strconv.FormatInt(int64(n.Val), 10)
	case DoubleValue:
		return FormatFloat(n.Val, 64)
	case FloatValue:
		return FormatFloat(float64(n.Val), 32)
	case StringValue:
		return n.Val
	case RangeValue:
		if n.Step == 1 {
			return fmt.Sprintf("%d..%d", n.Start, n.End)
		}
		if n.Step > 0 {
			return fmt.Sprintf("%d..%d step %d", n.Start, n.End, n.Step)
		}
		return fmt.Sprintf("%d downTo %d step %d", n.Start, n.End, -n.Step)
	case *ArrayValue:
		return fmt.Sprintf("[Ljava.lang.Object;@%p", n)
	case *ObjectValue:
		return fmt.Sprintf("%s@%p", n.Class.Type.Name, n)
	}
	return fmt.Sprintf("<%s>", v.Kind())
}

// FormatFloat renders a Double (bits 64) or Float (bits 32) with the
// shortest digits that round-trip. Magnitudes in [1e-3, 1e7) print as
// plain decimals with at least one fractional digit, others as
// d.dddE±n.
func FormatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	s := strconv.FormatFloat(f, 'e', -1, bits)
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	mantissa, expText, _ := strings.Cut(s, "e")
	exp, _ := strconv.Atoi(expText)
	digits := strings.Replace(mantissa, ".", "", 1)

	if abs := math.Abs(f); abs >= 1e-3 && abs < 1e7 {
		point := exp + 1
		switch {
		case point <= 0:
			return sign + "0." + strings.Repeat("0", -point) + digits
		case point >= len(digits):
			return sign + digits + strings.Repeat("0", point-len(digits)) + ".0"
		default:
			return sign + digits[:point] + "." + digits[point:]
		}
	}

	frac := digits[1:]
	if frac == "" {
		frac = "0"
	}
	return sign + digits[:1] + "." + frac + "E" + strconv.Itoa(exp)
}
