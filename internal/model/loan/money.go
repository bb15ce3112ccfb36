package loan

import "strconv"

// FormatINR renders a rupee amount with thousand separators,
// e.g. 300000 becomes "300,000".
func FormatINR(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		if neg {
			return "-" + digits
		}
		return digits
	}
	var out []byte
	lead := len(digits) % 3
	if lead > 0 {
		out = append(out, digits[:lead]...)
	}
	for i := lead; i < len(digits); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i:i+3]...)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
