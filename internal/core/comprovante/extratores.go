package comprovante

import (
	"regexp"
	"strings"

	"pagamentos-service/internal/core/normalize"
	"pagamentos-service/internal/domain"
)

// janelaTED é quantos caracteres após o cabeçalho "Dados da TED" são considerados
// dados do destino.
const janelaTED = 800

var dadosTEDRegex = regexp.MustCompile(`(?i)Dados\s*da\s*TED`)

type extrator func(texto string, rt *rastreador) domain.PagamentoBoleto

// Estrategia é o extrator escolhido para um par (banco, tipo de documento).
type Estrategia struct {
	Nome    string
	extrair extrator
}

// EstrategiaPara mapeia cada combinação de banco e tipo de documento para seu extrator.
// Banco desconhecido é uma variante explícita que usa apenas as regras genéricas.
func EstrategiaPara(banco domain.Banco, tipo domain.TipoDocumento) Estrategia {
	switch banco {
	case domain.BancoItau:
		switch tipo {
		case domain.TipoBoleto:
			return Estrategia{"ItauBoleto", itauBoleto}
		case domain.TipoTED:
			return Estrategia{"ItauTED", itauTED}
		case domain.TipoTransferencia, domain.TipoDOC:
			return Estrategia{"ItauGenerico", generico(domain.BancoItau)}
		}
	case domain.BancoBradesco:
		switch tipo {
		case domain.TipoBoleto:
			return Estrategia{"BradescoBoleto", bradescoBoleto}
		case domain.TipoTED:
			return Estrategia{"BradescoTED", bradescoTED}
		case domain.TipoTransferencia:
			return Estrategia{"BradescoTransferencia", bradescoTransferencia}
		case domain.TipoDOC:
			return Estrategia{"BradescoGenerico", generico(domain.BancoBradesco)}
		}
	case domain.BancoSantander:
		switch tipo {
		case domain.TipoBoleto:
			return Estrategia{"SantanderBoleto", generico(domain.BancoSantander)}
		case domain.TipoTED:
			return Estrategia{"SantanderTED", generico(domain.BancoSantander)}
		case domain.TipoTransferencia:
			return Estrategia{"SantanderTransferencia", generico(domain.BancoSantander)}
		case domain.TipoDOC:
			return Estrategia{"SantanderGenerico", generico(domain.BancoSantander)}
		}
	case domain.BancoDoBrasil:
		return Estrategia{"BancoDoBrasilGenerico", bancoDoBrasil}
	case domain.BancoDesconhecido:
		return Estrategia{"Generico", generico(domain.BancoDesconhecido)}
	}
	return Estrategia{"Generico", generico(domain.BancoDesconhecido)}
}

// Extrair roda a estratégia da classificação sobre o texto. Nunca falha: campos sem
// correspondência ficam vazios e cada tentativa aparece nos eventos devolvidos.
func Extrair(c Classificacao, texto string) (domain.PagamentoBoleto, []Evento) {
	rt := &rastreador{}
	rt.registrar(Evento{Campo: "banco", Valor: string(c.Banco), Encontrado: c.Banco != domain.BancoDesconhecido})
	if c.TipoPresumido {
		rt.registrar(Evento{Campo: "tipoDocumento", Regra: "padrão", Valor: string(c.Tipo), Mensagem: "nenhum marcador de tipo encontrado; assumindo BOLETO"})
	}

	e := EstrategiaPara(c.Banco, c.Tipo)
	rt.registrar(Evento{Campo: "estrategia", Valor: e.Nome, Encontrado: true})

	p := e.extrair(texto, rt)
	p.TipoDocumento = c.Tipo
	if p.CodigoBanco == "" {
		p.CodigoBanco = c.Banco.Codigo()
	}
	return p, rt.eventos
}

// secoes divide o texto em pagador (antes de "Dados da TED") e janela do destino.
// Sem o cabeçalho, o texto inteiro é usado nas duas partes.
func secoes(texto string) (pagador, destino string) {
	loc := dadosTEDRegex.FindStringIndex(texto)
	if loc == nil {
		return texto, texto
	}
	r := []rune(texto[loc[0]:])
	if len(r) > janelaTED {
		r = r[:janelaTED]
	}
	return texto[:loc[0]], string(r)
}

// comuns preenche os campos presentes em qualquer comprovante.
func comuns(p *domain.PagamentoBoleto, texto string, rt *rastreador, vDoc, vCobrado cadeia) {
	p.Agencia, p.Conta = rt.par("agencia/conta", regrasAgenciaConta, texto)
	p.NomePagador = rt.texto("nomePagador", regrasPagador, texto)
	p.NomeBeneficiario = rt.texto("nomeBeneficiario", regrasBeneficiario, texto)
	p.DocumentoBeneficiario = rt.texto("documentoBeneficiario", regrasDocumentoBeneficiario, texto)
	p.LinhaDigitavel = linhaDigitavel(texto, rt)
	p.DataVencimento = rt.data("dataVencimento", regrasVencimento, texto)
	p.DataPagamento = rt.data("dataPagamento", regrasDataPagamento, texto)
	p.ValorDocumento = rt.valor("valorDocumento", vDoc, texto)
	p.ValorCobrado = rt.valor("valorCobrado", vCobrado, texto)
}

func linhaDigitavel(texto string, rt *rastreador) string {
	g := rt.aplicar("linhaDigitavel", regrasLinhaDigitavel, texto, nil)
	if g == nil {
		return ""
	}
	return normalize.OnlyDigits(strings.Join(g, ""))
}

// dadosTED preenche os campos de destino a partir da janela "Dados da TED".
func dadosTED(p *domain.PagamentoBoleto, destino string, rt *rastreador) {
	p.BancoDestino = rt.texto("bancoDestino", regrasBancoDestino, destino)
	p.ISPBDestino = rt.texto("ispbDestino", regrasISPB, destino)
	p.AgenciaDestino = rt.texto("agenciaDestino", regrasAgenciaDestino, destino)
	p.ContaDestino = rt.texto("contaDestino", regrasContaDestino, destino)
	p.Finalidade = rt.texto("finalidade", regrasFinalidade, destino)
	p.NumeroControle = rt.texto("numeroControle", regrasNumeroControle, destino)
	p.DataHoraSolicitacao = rt.juntar("dataHoraSolicitacao", regrasDataHoraSolicitacao, destino)
}

// copiaValor devolve um ponteiro próprio para o mesmo valor.
func copiaValor(v *domain.Centavos) *domain.Centavos {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// ted extrai um comprovante de TED: conta e pagador vêm da seção anterior ao destino,
// favorecido, valor e dados de roteamento vêm da janela do destino.
func ted(texto string, rt *rastreador, vDoc cadeia) domain.PagamentoBoleto {
	var p domain.PagamentoBoleto
	pagador, destino := secoes(texto)

	p.Agencia, p.Conta = rt.par("agencia/conta", regrasAgenciaConta, pagador)
	p.NomePagador = rt.texto("nomePagador", regrasPagador, pagador)
	p.NomeBeneficiario = rt.texto("nomeBeneficiario", regrasBeneficiario, destino)
	p.DocumentoBeneficiario = rt.texto("documentoBeneficiario", regrasDocumentoBeneficiario, destino)
	p.DataPagamento = rt.data("dataPagamento", regrasDataPagamento, texto)
	p.ValorDocumento = rt.valor("valorDocumento", vDoc, destino)
	p.ValorCobrado = copiaValor(p.ValorDocumento)
	dadosTED(&p, destino, rt)
	return p
}

// --- Itaú ---

var (
	regrasItauValorDocumento = cadeia{
		novaRegra("itaú valor do boleto", `(?i)Valor\s*do\s*boleto\s*\(R\$\):?\s*`+exprValor),
	}
	regrasItauValorCobrado = cadeia{
		novaRegra("itaú (=) valor do pagamento", `(?i)\(=\)\s*Valor\s*do\s*pagamento\s*\(R\$\):?\s*`+exprValor),
	}
	regrasItauPagador = cadeia{
		novaRegra("itaú conta debitada", `(?i)Dados\s*da\s*conta\s*debitada:?\s*Nome:`+exprNome),
	}
)

func itauBoleto(texto string, rt *rastreador) domain.PagamentoBoleto {
	var p domain.PagamentoBoleto
	comuns(&p, texto, rt,
		regrasItauValorDocumento.mais(regrasValorDocumento),
		regrasItauValorCobrado.mais(regrasValorCobrado),
	)
	if nome := rt.texto("nomePagador", regrasItauPagador, texto); nome != "" {
		p.NomePagador = nome
	}
	return p
}

func itauTED(texto string, rt *rastreador) domain.PagamentoBoleto {
	return ted(texto, rt, regrasValorSimples.mais(regrasValorCobrado))
}

// --- Bradesco ---

// O texto extraído dos PDFs do Bradesco perde os espaços entre palavras
// ("Valordodocumento"), por isso as regras casam o token concatenado.
var (
	regrasBradescoValorDocumento = cadeia{
		novaRegra("bradesco valordodocumento", `(?i)\(=\)\s*Valordodocumento:?\s*`+exprValor),
		novaRegra("bradesco valordodocumento sem sinal", `(?i)Valordodocumento:?\s*`+exprValor),
	}
	regrasBradescoValorCobrado = cadeia{
		novaRegra("bradesco valorcobrado", `(?i)\(=\)\s*Valorcobrado:?\s*`+exprValor),
		novaRegra("bradesco valortotal", `(?i)Valortotal:?\s*`+exprValor),
	}
	regrasBradescoContaCredito = cadeia{
		novaRegra("conta de crédito", `(?i)Conta\s*de\s*cr[ée]dito:?\s*Ag[êe]ncia:?\s*`+exprAgencia+`\s*\|?\s*Conta:?\s*`+exprConta),
	}
)

func bradescoBoleto(texto string, rt *rastreador) domain.PagamentoBoleto {
	var p domain.PagamentoBoleto
	comuns(&p, texto, rt,
		regrasBradescoValorDocumento.mais(regrasValorDocumento),
		regrasBradescoValorCobrado.mais(regrasValorCobrado),
	)
	return p
}

func bradescoTED(texto string, rt *rastreador) domain.PagamentoBoleto {
	return ted(texto, rt, regrasValorSimples.mais(regrasBradescoValorCobrado, regrasValorCobrado))
}

func bradescoTransferencia(texto string, rt *rastreador) domain.PagamentoBoleto {
	var p domain.PagamentoBoleto
	p.Agencia, p.Conta = rt.par("agencia/conta", regrasAgenciaConta, texto)
	p.AgenciaDestino, p.ContaDestino = rt.par("agenciaDestino/contaDestino", regrasBradescoContaCredito, texto)
	p.NomePagador = rt.texto("nomePagador", regrasPagador, texto)
	p.NomeBeneficiario = rt.texto("nomeBeneficiario", regrasBeneficiario, texto)
	p.DocumentoBeneficiario = rt.texto("documentoBeneficiario", regrasDocumentoBeneficiario, texto)
	p.DataPagamento = rt.data("dataPagamento", regrasDataPagamento, texto)
	p.ValorDocumento = rt.valor("valorDocumento", regrasValorSimples.mais(regrasValorCobrado), texto)
	p.ValorCobrado = copiaValor(p.ValorDocumento)
	return p
}

// --- Banco do Brasil ---

// Os comprovantes do SISBB vêm em caixa alta e, em geral, sem dois-pontos.
var (
	regrasBBValorDocumento = cadeia{
		novaRegra("bb valor documento", `(?i)VALOR\s*(?:DO\s*)?DOCUMENTO:?\s*`+exprValor),
	}
	regrasBBValorCobrado = cadeia{
		novaRegra("bb valor cobrado", `(?i)VALOR\s*COBRADO:?\s*`+exprValor),
	}
	regrasBBDataPagamento = cadeia{
		novaRegra("bb data do pagamento", `(?i)DATA\s*DO\s*PAGAMENTO:?\s*`+exprData),
	}
	regrasBBBeneficiario = cadeia{
		novaRegra("bb nome fantasia", `(?im)^NOME\s*FANTASIA:?`+exprNome),
	}
)

func bancoDoBrasil(texto string, rt *rastreador) domain.PagamentoBoleto {
	var p domain.PagamentoBoleto
	comuns(&p, texto, rt,
		regrasBBValorDocumento.mais(regrasValorDocumento),
		regrasBBValorCobrado.mais(regrasValorCobrado, regrasValorSimples),
	)
	if p.DataPagamento == "" {
		p.DataPagamento = rt.data("dataPagamento", regrasBBDataPagamento, texto)
	}
	if p.NomeBeneficiario == "" {
		p.NomeBeneficiario = rt.texto("nomeBeneficiario", regrasBBBeneficiario, texto)
	}
	if dadosTEDRegex.MatchString(texto) {
		_, destino := secoes(texto)
		dadosTED(&p, destino, rt)
	}
	return p
}

// --- genérico ---

// generico aplica apenas as regras comuns. Serve ao banco desconhecido e aos layouts
// ainda sem regras próprias.
func generico(banco domain.Banco) extrator {
	return func(texto string, rt *rastreador) domain.PagamentoBoleto {
		if dadosTEDRegex.MatchString(texto) {
			p := ted(texto, rt, regrasValorSimples.mais(regrasValorDocumento, regrasValorCobrado))
			p.CodigoBanco = banco.Codigo()
			return p
		}
		var p domain.PagamentoBoleto
		comuns(&p, texto, rt, regrasValorDocumento, regrasValorCobrado.mais(regrasValorSimples))
		p.CodigoBanco = banco.Codigo()
		return p
	}
}
