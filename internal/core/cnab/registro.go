package cnab

import (
	"fmt"
	"strings"

	"pagamentos-service/internal/core/normalize"
	"pagamentos-service/internal/domain"
)

// TamanhoLinha é a largura fixa de toda linha CNAB240.
const TamanhoLinha = 240

// Tipos de registro (posição 1 da linha).
const (
	RegistroHeaderArquivo  = '0'
	RegistroHeaderLote     = '1'
	RegistroDetalhe        = '3'
	RegistroTrailerLote    = '5'
	RegistroTrailerArquivo = '9'
)

type tipoCampo int

const (
	campoNumerico tipoCampo = iota
	campoTexto
)

// campo ocupa as posições [inicio, fim], 1-indexadas e inclusivas, como no manual FEBRABAN.
type campo struct {
	nome   string
	inicio int
	fim    int
	tipo   tipoCampo
	valor  string
}

func (c campo) largura() int { return c.fim - c.inicio + 1 }

// registro é uma sequência ordenada de campos que precisa cobrir exatamente as 240 posições.
type registro struct {
	nome   string
	campos []campo
}

func novoRegistro(nome string) *registro {
	return &registro{nome: nome}
}

// num adiciona um campo numérico, completado com zeros à esquerda.
func (r *registro) num(inicio, fim int, nome, valor string) *registro {
	r.campos = append(r.campos, campo{nome: nome, inicio: inicio, fim: fim, tipo: campoNumerico, valor: valor})
	return r
}

// txt adiciona um campo alfanumérico, completado com espaços ou truncado.
func (r *registro) txt(inicio, fim int, nome, valor string) *registro {
	r.campos = append(r.campos, campo{nome: nome, inicio: inicio, fim: fim, tipo: campoTexto, valor: valor})
	return r
}

// brancos adiciona um campo de uso exclusivo FEBRABAN preenchido com espaços.
func (r *registro) brancos(inicio, fim int) *registro {
	return r.txt(inicio, fim, "brancos", "")
}

// montar formata os campos e garante que a linha tenha exatamente 240 posições,
// sem lacunas nem sobreposição entre campos.
func (r *registro) montar() (string, error) {
	var b strings.Builder
	b.Grow(TamanhoLinha)

	proxima := 1
	for _, c := range r.campos {
		if c.inicio != proxima || c.fim < c.inicio {
			return "", fmt.Errorf("layout %s: campo %s em %d-%d, esperado início em %d", r.nome, c.nome, c.inicio, c.fim, proxima)
		}
		switch c.tipo {
		case campoNumerico:
			v, err := normalize.PadNumeric(c.valor, c.largura())
			if err != nil {
				return "", &domain.FieldError{Registro: r.nome, Campo: c.nome, Valor: c.valor, Err: err}
			}
			b.WriteString(v)
		case campoTexto:
			b.WriteString(normalize.PadText(c.valor, c.largura()))
		}
		proxima = c.fim + 1
	}

	if proxima != TamanhoLinha+1 || b.Len() != TamanhoLinha {
		return "", fmt.Errorf("layout %s: linha com %d posições, esperado %d", r.nome, b.Len(), TamanhoLinha)
	}
	return b.String(), nil
}

// campoLinha recorta as posições [inicio, fim] (1-indexadas) de uma linha já montada.
func campoLinha(linha string, inicio, fim int) string {
	if len(linha) < fim {
		return ""
	}
	return linha[inicio-1 : fim]
}
