package motorista

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	emptyValue = "-"
	dateLayout = "02/01/2006"

	cpfLen      = 11
	cnhLen      = 11
	telefoneLen = 11
	placaLen    = 7
)

// Unmask keeps only the digits of v.
func Unmask(v string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, v)
}

func SanitizeCPF(v string) string { return truncate(Unmask(v), cpfLen) }
func SanitizeTelefone(v string) string { return truncate(Unmask(v), telefoneLen) }
func SanitizeCNH(v string) string { return truncate(Unmask(v), cnhLen) }
func SanitizeEmail(v string) string { return strings.TrimSpace(v) }
func SanitizeNome(v string) string { return strings.Join(strings.Fields(v), " ") }

func SanitizeCategoria(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// SanitizePlaca upper cases the plate and drops anything that is not A-Z or 0-9.
func SanitizePlaca(v string) string {
	p := strings.Map(func(r rune) rune {
		r = unicode.ToUpper(r)
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, v)
	return truncate(p, placaLen)
}

// FormatCPF renders 11 digits as 000.000.000-00, anything else as given.
func FormatCPF(cpf string) string {
	if cpf == "" {
		return emptyValue
	}
	d := Unmask(cpf)
	if len(d) != cpfLen {
		return cpf
	}
	return fmt.Sprintf("%s.%s.%s-%s", d[0:3], d[3:6], d[6:9], d[9:11])
}

// FormatTelefone renders mobile (11) and landline (10) numbers as (00) 0000-0000.
func FormatTelefone(t string) string {
	if t == "" {
		return emptyValue
	}
	d := Unmask(t)
	switch len(d) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", d[0:2], d[2:7], d[7:11])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", d[0:2], d[2:6], d[6:10])
	default:
		return t
	}
}

func FormatPlaca(p string) string {
	if p == "" {
		return emptyValue
	}
	return strings.ToUpper(p)
}

// FormatDate renders the date as DD/MM/YYYY.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return emptyValue
	}
	return t.Format(dateLayout)
}

// ParseDate parses a DD/MM/AAAA date.
func ParseDate(v string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(v), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", v, err)
	}
	return t, nil
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
