// Package document validates and formats Brazilian identification numbers
// (CPF, CNPJ) and postal codes (CEP).
package document

import "strings"

var (
	cnpjFirstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjSecondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// OnlyDigits drops every rune that is not an ASCII digit.
func OnlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF reports whether cpf, masked or not, carries valid check digits.
func ValidCPF(cpf string) bool {
	d := OnlyDigits(cpf)
	if len(d) != 11 || allSame(d) {
		return false
	}

	if cpfDigit(d, 9) != int(d[9]-'0') {
		return false
	}
	return cpfDigit(d, 10) == int(d[10]-'0')
}

// cpfDigit computes the check digit at position n from the n digits before it.
func cpfDigit(d string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(d[i]-'0') * (n + 1 - i)
	}
	r := (sum * 10) % 11
	if r == 10 {
		r = 0
	}
	return r
}

// ValidCNPJ reports whether cnpj, masked or not, carries valid check digits.
func ValidCNPJ(cnpj string) bool {
	d := OnlyDigits(cnpj)
	if len(d) != 14 || allSame(d) {
		return false
	}

	if cnpjDigit(d, cnpjFirstWeights) != int(d[12]-'0') {
		return false
	}
	return cnpjDigit(d, cnpjSecondWeights) == int(d[13]-'0')
}

func cnpjDigit(d string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(d[i]-'0') * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

// ValidCEP reports whether cep has exactly eight digits once the mask is removed.
func ValidCEP(cep string) bool {
	return len(OnlyDigits(cep)) == 8
}

// FormatCPF renders 11 digits as XXX.XXX.XXX-XX. Other input is returned unchanged.
func FormatCPF(cpf string) string {
	d := OnlyDigits(cpf)
	if len(d) != 11 {
		return cpf
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}

// FormatCNPJ renders 14 digits as XX.XXX.XXX/XXXX-XX. Other input is returned unchanged.
func FormatCNPJ(cnpj string) string {
	d := OnlyDigits(cnpj)
	if len(d) != 14 {
		return cnpj
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}

// FormatCEP renders 8 digits as XXXXX-XXX. Other input is returned unchanged.
func FormatCEP(cep string) string {
	d := OnlyDigits(cep)
	if len(d) != 8 {
		return cep
	}
	return d[0:5] + "-" + d[5:8]
}

func allSame(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}
