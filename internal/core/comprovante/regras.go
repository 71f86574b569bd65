package comprovante

import (
	"regexp"
	"strings"

	"pagamentos-service/internal/core/normalize"
	"pagamentos-service/internal/domain"
)

// Evento registra o resultado de uma etapa da extração: qual regra preencheu um
// campo, ou que nenhuma regra casou.
type Evento struct {
	Campo      string `json:"campo"`
	Regra      string `json:"regra,omitempty"`
	Valor      string `json:"valor,omitempty"`
	Encontrado bool   `json:"encontrado"`
	Mensagem   string `json:"mensagem,omitempty"`
}

// regra é uma alternativa de extração para um campo. Os grupos de captura da
// expressão são o resultado.
type regra struct {
	nome string
	re   *regexp.Regexp
}

func novaRegra(nome, expr string) regra {
	return regra{nome: nome, re: regexp.MustCompile(expr)}
}

// cadeia é a lista ordenada de alternativas de um campo. A primeira que casar vence.
type cadeia []regra

// mais devolve uma nova cadeia com as regras de c seguidas das de outras.
func (c cadeia) mais(outras ...cadeia) cadeia {
	out := append(cadeia{}, c...)
	for _, o := range outras {
		out = append(out, o...)
	}
	return out
}

// rastreador acumula os eventos de uma extração.
type rastreador struct {
	eventos []Evento
}

func (rt *rastreador) registrar(e Evento) {
	rt.eventos = append(rt.eventos, e)
}

// aplicar percorre a cadeia e devolve os grupos da primeira regra cujo resultado
// for aceito. aceitar nil aceita qualquer casamento com o primeiro grupo não vazio.
func (rt *rastreador) aplicar(campo string, c cadeia, texto string, aceitar func([]string) bool) []string {
	for _, r := range c {
		m := r.re.FindStringSubmatch(texto)
		if m == nil {
			continue
		}
		grupos := m[1:]
		for i := range grupos {
			grupos[i] = strings.TrimSpace(grupos[i])
		}
		if len(grupos) == 0 || grupos[0] == "" {
			continue
		}
		if aceitar != nil && !aceitar(grupos) {
			rt.registrar(Evento{Campo: campo, Regra: r.nome, Valor: strings.Join(grupos, " "), Mensagem: "valor rejeitado"})
			continue
		}
		rt.registrar(Evento{Campo: campo, Regra: r.nome, Valor: strings.Join(grupos, " "), Encontrado: true})
		return grupos
	}
	rt.registrar(Evento{Campo: campo})
	return nil
}

func (rt *rastreador) texto(campo string, c cadeia, texto string) string {
	if g := rt.aplicar(campo, c, texto, nil); g != nil {
		return g[0]
	}
	return ""
}

// juntar concatena todos os grupos com espaço, para campos como data e hora.
func (rt *rastreador) juntar(campo string, c cadeia, texto string) string {
	if g := rt.aplicar(campo, c, texto, nil); g != nil {
		return strings.TrimSpace(strings.Join(g, " "))
	}
	return ""
}

func (rt *rastreador) data(campo string, c cadeia, texto string) string {
	g := rt.aplicar(campo, c, texto, func(g []string) bool {
		_, err := normalize.ParseDateBR(g[0])
		return err == nil
	})
	if g == nil {
		return ""
	}
	return g[0]
}

func (rt *rastreador) valor(campo string, c cadeia, texto string) *domain.Centavos {
	var cents domain.Centavos
	g := rt.aplicar(campo, c, texto, func(g []string) bool {
		v, err := normalize.ToCents(g[0])
		cents = v
		return err == nil
	})
	if g == nil {
		return nil
	}
	return &cents
}

func (rt *rastreador) par(campo string, c cadeia, texto string) (string, string) {
	g := rt.aplicar(campo, c, texto, func(g []string) bool { return len(g) >= 2 && g[1] != "" })
	if g == nil {
		return "", ""
	}
	return g[0], g[1]
}

// Fragmentos comuns às expressões.
const (
	exprValor   = `(?:R\$\s*)?([\d.]+,\d{2})`
	exprData    = `(\d{2}/\d{2}/\d{4})`
	exprAgencia = `(\d{1,5}(?:-[\dXx])?)`
	exprConta   = `(\d[\d.]*(?:-[\dXx])?)`
	exprDoc     = `(\d{2,3}\.?\d{3}\.?\d{3}[/.-]?\d{0,4}-?\d{2})`
	exprNome    = `[ \t]*\n?[ \t]*([^\n|]+)`
)

// Regras genéricas, usadas por todos os extratores depois das específicas de cada banco.
var (
	regrasLinhaDigitavel = cadeia{
		novaRegra("linha digitável 47/48", `(\d{5})[.\s]?(\d{5})\s+(\d{5})[.\s]?(\d{6})\s+(\d{5})[.\s]?(\d{6})\s+(\d)\s+(\d{14,15})\b`),
		novaRegra("arrecadação 48", `\b(\d{11})[-\s]?(\d)\s+(\d{11})[-\s]?(\d)\s+(\d{11})[-\s]?(\d)\s+(\d{11})[-\s]?(\d)\b`),
	}

	// A ordem é significativa: o layout "Conta de débito" contém o layout
	// "Agência: | Conta:" e precisa ser tentado antes.
	regrasAgenciaConta = cadeia{
		novaRegra("conta de débito", `(?i)Conta\s*de\s*d[ée]bito:?\s*Ag[êe]ncia:?\s*`+exprAgencia+`\s*\|?\s*Conta:?\s*`+exprConta),
		novaRegra("agência/conta", `(?i)Ag[êe]ncia\s*/\s*conta:?\s*`+exprAgencia+`\s*/\s*`+exprConta),
		novaRegra("agência | conta", `(?i)Ag[êe]ncia:?\s*`+exprAgencia+`\s*\|?\s*Conta(?:\s*corrente)?:?\s*`+exprConta),
	}

	regrasPagador = cadeia{
		novaRegra("pagador", `(?im)^Pagador:?`+exprNome),
		novaRegra("nome do pagador", `(?im)^Nome\s*do\s*pagador:?`+exprNome),
		novaRegra("empresa", `(?im)^Empresa:`+exprNome),
		novaRegra("nome", `(?im)^Nome:`+exprNome),
	}

	regrasBeneficiario = cadeia{
		novaRegra("beneficiário", `(?im)^Benefici[áa]rio:?`+exprNome),
		novaRegra("nome do beneficiário", `(?im)^Nome\s*do\s*benefici[áa]rio:?`+exprNome),
		novaRegra("favorecido", `(?im)^(?:Nome\s*do\s*)?favorecido:?`+exprNome),
		novaRegra("cedente", `(?im)^Cedente:?`+exprNome),
	}

	regrasDocumentoBeneficiario = cadeia{
		novaRegra("cpf/cnpj do beneficiário", `(?i)CPF\s*/\s*CNPJ\s*do\s*benefici[áa]rio:?\s*`+exprDoc),
		novaRegra("cpf/cnpj", `(?im)^(?:CPF\s*/\s*CNPJ|CNPJ\s*/\s*CPF|CNPJ|CPF):?[ \t]*`+exprDoc),
	}

	regrasVencimento = cadeia{
		novaRegra("data de vencimento", `(?i)Data\s*de\s*vencimento:?\s*`+exprData),
		novaRegra("vencimento", `(?i)Vencimento:?\s*`+exprData),
	}

	regrasDataPagamento = cadeia{
		novaRegra("data do pagamento", `(?i)Data\s*d[oe]\s*pagamento:?\s*`+exprData),
		novaRegra("data de débito", `(?i)Data\s*d[oe]\s*d[ée]bito:?\s*`+exprData),
		novaRegra("pago em", `(?i)Pago\s*em:?\s*`+exprData),
		novaRegra("data da operação", `(?i)Data\s*da\s*(?:opera[çc][ãa]o|transa[çc][ãa]o|transfer[êe]ncia):?\s*`+exprData),
	}

	regrasValorDocumento = cadeia{
		novaRegra("valor do documento", `(?i)Valor\s*do\s*documento(?:\s*\(R\$\))?:?\s*`+exprValor),
		novaRegra("valor do boleto", `(?i)Valor\s*do\s*boleto(?:\s*\(R\$\))?:?\s*`+exprValor),
		novaRegra("valor nominal", `(?i)Valor\s*nominal:?\s*`+exprValor),
	}

	regrasValorCobrado = cadeia{
		novaRegra("valor cobrado", `(?i)Valor\s*cobrado(?:\s*\(R\$\))?:?\s*`+exprValor),
		novaRegra("valor do pagamento", `(?i)Valor\s*do\s*pagamento(?:\s*\(R\$\))?:?\s*`+exprValor),
		novaRegra("valor pago", `(?i)Valor\s*pago:?\s*`+exprValor),
		novaRegra("valor total", `(?i)Valor\s*total:?\s*`+exprValor),
	}

	regrasValorSimples = cadeia{
		novaRegra("valor", `(?im)^Valor(?:\s*\(R\$\))?:?[ \t]*`+exprValor),
	}
)

// Regras da seção "Dados da TED".
var (
	regrasBancoDestino = cadeia{
		novaRegra("banco", `(?im)^Banco(?:\s*destino)?:?[ \t]*(\d{3})`),
		novaRegra("banco favorecido", `(?i)Banco\s*(?:do\s*)?favorecido:?\s*(\d{3})`),
	}
	regrasISPB = cadeia{
		novaRegra("ispb", `(?i)ISPB:?\s*(\d{8})`),
	}
	regrasAgenciaDestino = cadeia{
		novaRegra("agência", `(?i)Ag[êe]ncia:?\s*`+exprAgencia),
	}
	regrasContaDestino = cadeia{
		novaRegra("conta", `(?im)^Conta(?:\s*corrente|\s*poupan[çc]a)?:?\s*`+exprConta),
	}
	regrasFinalidade = cadeia{
		novaRegra("finalidade", `(?im)^Finalidade:?`+exprNome),
	}
	regrasNumeroControle = cadeia{
		novaRegra("número de controle", `(?i)N(?:[úu]mero|º|°|o\.?)\s*de\s*controle:?\s*([A-Za-z0-9][A-Za-z0-9.\-]*)`),
		novaRegra("controle", `(?im)^Controle:?\s*([A-Za-z0-9][A-Za-z0-9.\-]*)`),
	}
	regrasDataHoraSolicitacao = cadeia{
		novaRegra("data/hora da solicitação", `(?i)Data\s*(?:/|e)\s*hora\s*da\s*solicita[çc][ãa]o:?\s*`+exprData+`\s*(?:[àa]s|-)?\s*(\d{2}:\d{2}(?::\d{2})?)`),
		novaRegra("efetuada em", `(?i)efetuada\s*em:?\s*`+exprData+`\s*(?:[àa]s|-)?\s*(\d{2}:\d{2}(?::\d{2})?)`),
		novaRegra("data da operação com hora", `(?i)Data\s*da\s*opera[çc][ãa]o:?\s*`+exprData+`\s*(?:[àa]s|-)\s*(\d{2}:\d{2}(?::\d{2})?)`),
	}
)
