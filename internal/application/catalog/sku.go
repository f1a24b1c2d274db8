package catalog

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// GenerateSKU arma WM-{3 letras del nombre}-{5 alfanuméricos de la especificación}-{4 dígitos del reloj}.
func GenerateSKU(productName, specification string, now time.Time) string {
	code := take(productName, 3, unicode.IsLetter)
	if code == "" {
		code = "PRD"
	}
	spec := take(specification, 5, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) })
	if spec == "" {
		spec = "STD"
	}
	return fmt.Sprintf("WM-%s-%s-%04d", strings.ToUpper(code), spec, (now.UnixNano()/100)%10000)
}

func take(s string, n int, keep func(rune) bool) string {
	var b strings.Builder
	count := 0
	for _, r := range s {
		if count == n {
			break
		}
		if keep(r) {
			b.WriteRune(r)
			count++
		}
	}
	return b.String()
}
