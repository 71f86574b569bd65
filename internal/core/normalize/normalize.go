// Package normalize concentra as conversões de valores, datas e textos usadas
// tanto pelo gerador CNAB quanto pelos extratores de comprovantes.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"pagamentos-service/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LayoutDataBR é o layout DD/MM/YYYY usado nos comprovantes e planilhas.
const LayoutDataBR = "02/01/2006"

// LayoutDataCNAB é o layout DDMMYYYY dos campos de data do CNAB240.
const LayoutDataCNAB = "02012006"

var numericRegex = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
var whitespaceRegex = regexp.MustCompile(`\s+`)
var nonASCIIPrintable = regexp.MustCompile(`[^\x20-\x7E]`)

// ToCents converte um valor no formato brasileiro ("1.234,56", "R$ 402,52") para centavos.
func ToCents(text string) (domain.Centavos, error) {
	s := whitespaceRegex.ReplaceAllString(text, "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	if !numericRegex.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", domain.ErrMalformedAmount, text)
	}
	return decimalToCents(s, text)
}

// DecimalToCents converte um valor com ponto decimal ("402.52"), como os números
// recebidos em JSON ou em células numéricas de planilha, para centavos.
func DecimalToCents(text string) (domain.Centavos, error) {
	s := strings.TrimSpace(text)
	if !numericRegex.MatchString(s) {
		return 0, fmt.Errorf("%w: %q", domain.ErrMalformedAmount, text)
	}
	return decimalToCents(s, text)
}

func decimalToCents(s, original string) (domain.Centavos, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrMalformedAmount, original)
	}
	return domain.Centavos(d.Shift(2).Round(0).IntPart()), nil
}

// PadNumeric completa value com zeros à esquerda até width. Diferente dos campos
// de texto, um número mais largo que o campo nunca é truncado.
func PadNumeric(value string, width int) (string, error) {
	if len(value) > width {
		return "", fmt.Errorf("%w: %q tem %d dígitos, campo comporta %d", domain.ErrFieldWidthExceeded, value, len(value), width)
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", domain.ErrNotNumeric, value)
		}
	}
	return strings.Repeat("0", width-len(value)) + value, nil
}

// PadText completa value com espaços à direita ou trunca silenciosamente em width.
// O texto é convertido para ASCII maiúsculo antes, para que largura em bytes e em
// caracteres coincidam.
func PadText(value string, width int) string {
	s := ASCIIUpper(value)
	if len(s) > width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// CheckDigitMod11 calcula o dígito verificador módulo 11 com pesos 2..9 a partir
// do dígito mais à direita. Restos 0 e 1 resultam em '0'.
func CheckDigitMod11(digits string) (byte, error) {
	sum, weight := 0, 2
	for i := len(digits) - 1; i >= 0; i-- {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("dígito inválido %q em %q", c, digits)
		}
		sum += int(c-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	rest := sum % 11
	if rest < 2 {
		return '0', nil
	}
	return byte('0' + 11 - rest), nil
}

// ValidCNPJ confere os dois dígitos verificadores de um CNPJ (apenas dígitos).
func ValidCNPJ(cnpj string) bool {
	if len(cnpj) != 14 || strings.Count(cnpj, cnpj[:1]) == 14 {
		return false
	}
	d1, err := CheckDigitMod11(cnpj[:12])
	if err != nil || d1 != cnpj[12] {
		return false
	}
	d2, err := CheckDigitMod11(cnpj[:13])
	return err == nil && d2 == cnpj[13]
}

// FormatDateDDMMYYYY formata a data no layout DDMMYYYY do CNAB.
func FormatDateDDMMYYYY(t time.Time) string {
	return t.Format(LayoutDataCNAB)
}

// ParseDateBR interpreta DD/MM/YYYY. Dia ou mês fora do intervalo do calendário
// são rejeitados, nunca normalizados para outra data.
func ParseDateBR(text string) (time.Time, error) {
	t, err := time.Parse(LayoutDataBR, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrMalformedDate, text)
	}
	return t, nil
}

// ParseDateCNAB interpreta o layout DDMMYYYY.
func ParseDateCNAB(text string) (time.Time, error) {
	t, err := time.Parse(LayoutDataCNAB, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrMalformedDate, text)
	}
	return t, nil
}

// OnlyDigits remove tudo que não for dígito (pontuação de CPF/CNPJ, agência, conta).
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

// StripAccents remove diacríticos preservando as letras base.
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// ASCIIUpper remove acentos, converte para maiúsculas e troca qualquer caractere
// fora do ASCII imprimível por espaço.
func ASCIIUpper(s string) string {
	s = strings.ToUpper(StripAccents(s))
	return nonASCIIPrintable.ReplaceAllString(s, " ")
}

// NormalizeText prepara texto livre para comparação: sem acentos, maiúsculo e
// com espaços colapsados.
func NormalizeText(s string) string {
	s = strings.ToUpper(StripAccents(s))
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
