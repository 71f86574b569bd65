package comprovante

import (
	"regexp"
	"strings"

	"pagamentos-service/internal/core/normalize"
	"pagamentos-service/internal/domain"
)

// Classificacao é o par (banco, tipo de documento) detectado em um comprovante.
// TipoPresumido indica que nenhum marcador de tipo foi encontrado e o tipo é o padrão.
type Classificacao struct {
	Banco         domain.Banco
	Tipo          domain.TipoDocumento
	TipoPresumido bool
}

var (
	tedTokenRegex          = regexp.MustCompile(`\bTED\b`)
	docTokenRegex          = regexp.MustCompile(`\bDOC\b`)
	transferenciaCCRegex   = regexp.MustCompile(`TRANSFERENCIA.*DE CONTA CORRENTE PARA CONTA CORRENTE`)
	marcadoresBoleto       = []string{"BOLETO DE COBRANCA", "PAGAMENTO DE BOLETO", "BOLETO BANCARIO", "VALOR DO DOCUMENTO", "VALORDODOCUMENTO", "VALOR COBRADO", "VALORCOBRADO"}
	marcadoresTEDExtendido = []string{"TRANSFERENCIA ELETRONICA DISPONIVEL"}
)

// Classificar detecta banco e tipo de documento. As duas cadeias são independentes e
// cada uma devolve a primeira regra que casar, nunca a "melhor".
func Classificar(texto string) Classificacao {
	tipo, presumido := DetectarTipoDocumento(texto)
	return Classificacao{Banco: DetectarBanco(texto), Tipo: tipo, TipoPresumido: presumido}
}

// DetectarBanco identifica o banco emissor pelo texto do comprovante.
func DetectarBanco(texto string) domain.Banco {
	t := strings.ToUpper(texto)
	s := " " + normalize.NormalizeText(texto) + " "
	switch {
	case strings.Contains(s, "ITAU") || strings.Contains(t, "ITAÚ"):
		return domain.BancoItau
	case strings.Contains(s, "BRADESCO"):
		return domain.BancoBradesco
	case strings.Contains(s, "SANTANDER"):
		return domain.BancoSantander
	case strings.Contains(s, "SISBB") || strings.Contains(s, "BANCO DO BRASIL") ||
		(strings.Contains(s, " BB ") && !strings.Contains(s, "BRADESCO")):
		return domain.BancoDoBrasil
	}
	return domain.BancoDesconhecido
}

// DetectarTipoDocumento aplica os marcadores em ordem de prioridade, pois os tokens se
// sobrepõem: boleto, TED, transferência e DOC. Sem marcador algum, o tipo é BOLETO e
// o segundo retorno é true.
func DetectarTipoDocumento(texto string) (domain.TipoDocumento, bool) {
	s := " " + normalize.NormalizeText(texto) + " "
	temBoleto := strings.Contains(s, "BOLETO")
	temTED := tedTokenRegex.MatchString(s) || strings.HasPrefix(strings.TrimSpace(s), "TED") || strings.Contains(s, "TED-") || contemAlgum(s, marcadoresTEDExtendido)

	switch {
	case contemAlgum(s, marcadoresBoleto):
		return domain.TipoBoleto, false
	case temTED && !temBoleto:
		return domain.TipoTED, false
	case !temBoleto && !temTED && (transferenciaCCRegex.MatchString(s) || strings.Contains(s, "COMPROVANTE DE TRANSFERENCIA")):
		return domain.TipoTransferencia, false
	case !temBoleto && !temTED && docTokenRegex.MatchString(s):
		return domain.TipoDOC, false
	}
	return domain.TipoBoleto, true
}

func contemAlgum(s string, marcadores []string) bool {
	for _, m := range marcadores {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
