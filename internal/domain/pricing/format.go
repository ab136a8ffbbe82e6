package pricing

import (
	"strconv"
	"strings"
	"time"
)

// FormatMoney renders a monetary value the way the dashboard table does:
// two decimals, comma decimal separator, dot thousands separator (pt-BR).
func FormatMoney(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, decPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}

	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}

	b.WriteByte(',')
	b.WriteString(decPart)

	return b.String()
}

// FormatUpdateDate is the human-readable lastUpdate stamp shown in the
// header and stored on the dataset document.
func FormatUpdateDate(t time.Time) string {
	return t.Format("02/01/2006 15:04:05")
}
