package domain

import (
	"errors"
	"fmt"
)

// Erros de domínio. Use errors.Is para testá-los.
var (
	ErrMalformedAmount    = errors.New("valor monetário inválido")
	ErrMalformedDate      = errors.New("data inválida")
	ErrFieldWidthExceeded = errors.New("valor excede a largura do campo")
	ErrNotNumeric         = errors.New("valor não numérico em campo numérico")
	ErrInvalidTaxID       = errors.New("CPF/CNPJ inválido")
	ErrNoExtractableText  = errors.New("o PDF parece ser uma imagem digitalizada, sem texto extraível")
	ErrUnsupportedFile    = errors.New("formato de arquivo não suportado")
	ErrNoInstallments     = errors.New("nenhuma parcela informada")
)

// FieldError associa um erro de domínio ao campo do registro que o causou.
type FieldError struct {
	Registro string
	Campo    string
	Valor    string
	Err      error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s/%s (%q): %v", e.Registro, e.Campo, e.Valor, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
