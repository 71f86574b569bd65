package cnab

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pagamentos-service/internal/core/normalize"
	"pagamentos-service/internal/domain"
)

const (
	loteUnico        = "1"
	servicoPagamento = "20"
	formaLancamento  = "01"
	versaoArquivo    = "089"
	versaoLote       = "045"
	moeda            = "REA"
)

// Remessa é o arquivo CNAB240 gerado, pronto para download.
type Remessa struct {
	Conteudo      []byte
	NomeArquivo   string
	Sequencia     int
	Linhas        int
	TotalParcelas int
	ValorTotal    domain.Centavos
}

// EncodeRemessa monta o arquivo de remessa completo: header de arquivo, um lote com
// um par de segmentos A/B por parcela, trailer de lote e trailer de arquivo.
// Qualquer valor monetário inválido ou largo demais para o campo aborta a geração.
func EncodeRemessa(empresa domain.EmpresaCNAB, parcelas []domain.ParcelaCNAB, sequencia int, geracao time.Time) (*Remessa, error) {
	if len(parcelas) == 0 {
		return nil, domain.ErrNoInstallments
	}

	cnpj := normalize.OnlyDigits(empresa.CNPJ)
	tipoInscricao, err := tipoInscricaoEmpresa(cnpj)
	if err != nil {
		return nil, err
	}

	linhas := make([]string, 0, 2*len(parcelas)+4)
	add := func(r *registro) error {
		linha, err := r.montar()
		if err != nil {
			return err
		}
		linhas = append(linhas, linha)
		return nil
	}

	if err := add(headerArquivo(empresa, cnpj, sequencia, geracao)); err != nil {
		return nil, fmt.Errorf("header de arquivo: %w", err)
	}
	if err := add(headerLote(empresa, cnpj, tipoInscricao)); err != nil {
		return nil, fmt.Errorf("header de lote: %w", err)
	}

	var total domain.Centavos
	seq := 0
	for _, p := range parcelas {
		if p.Valor <= 0 {
			return nil, fmt.Errorf("parcela %d: %w", p.ID, &domain.FieldError{
				Registro: "segmento A", Campo: "valor", Valor: p.Valor.String(), Err: domain.ErrMalformedAmount,
			})
		}
		if p.Vencimento.IsZero() {
			return nil, fmt.Errorf("parcela %d: %w", p.ID, &domain.FieldError{
				Registro: "segmento A", Campo: "data de pagamento", Err: domain.ErrMalformedDate,
			})
		}
		doc := normalize.OnlyDigits(p.DocumentoFavorecido)
		tipoFavorecido, err := tipoInscricaoFavorecido(doc)
		if err != nil {
			return nil, fmt.Errorf("parcela %d: %w", p.ID, err)
		}

		seq++
		if err := add(segmentoA(empresa, p, seq)); err != nil {
			return nil, fmt.Errorf("parcela %d: %w", p.ID, err)
		}
		seq++
		if err := add(segmentoB(p, doc, tipoFavorecido, seq)); err != nil {
			return nil, fmt.Errorf("parcela %d: %w", p.ID, err)
		}
		total += p.Valor
	}

	qtdRegistrosLote := 2 + 2*len(parcelas)
	if err := add(trailerLote(qtdRegistrosLote, total)); err != nil {
		return nil, fmt.Errorf("trailer de lote: %w", err)
	}
	if err := add(trailerArquivo(len(linhas) + 1)); err != nil {
		return nil, fmt.Errorf("trailer de arquivo: %w", err)
	}

	return &Remessa{
		Conteudo:      []byte(strings.Join(linhas, "\r\n")),
		NomeArquivo:   fmt.Sprintf("REM%s%06d.rem", normalize.FormatDateDDMMYYYY(geracao), sequencia),
		Sequencia:     sequencia,
		Linhas:        len(linhas),
		TotalParcelas: len(parcelas),
		ValorTotal:    total,
	}, nil
}

func headerArquivo(empresa domain.EmpresaCNAB, cnpj string, sequencia int, geracao time.Time) *registro {
	banco := normalize.OnlyDigits(empresa.Banco)
	return novoRegistro("header de arquivo").
		num(1, 1, "tipo de registro", string(RegistroHeaderArquivo)).
		num(2, 2, "código de remessa", "1").
		txt(3, 9, "literal remessa", "REMESSA").
		num(10, 11, "código do serviço", servicoPagamento).
		txt(12, 26, "literal serviço", "PAGAMENTOS").
		num(27, 46, "inscrição da empresa", cnpj).
		txt(47, 76, "nome da empresa", empresa.Nome).
		num(77, 79, "código do banco", banco).
		txt(80, 94, "nome do banco", domain.NomesBancos[banco]).
		num(95, 102, "data de geração", normalize.FormatDateDDMMYYYY(geracao)).
		num(103, 108, "sequência do arquivo", strconv.Itoa(sequencia)).
		num(109, 111, "versão do layout", versaoArquivo).
		brancos(112, 240)
}

func headerLote(empresa domain.EmpresaCNAB, cnpj, tipoInscricao string) *registro {
	agencia, dvAgencia := separarDV(empresa.Agencia)
	conta, dvConta := separarDV(empresa.Conta)
	return novoRegistro("header de lote").
		num(1, 1, "tipo de registro", string(RegistroHeaderLote)).
		num(2, 5, "lote", loteUnico).
		txt(6, 6, "tipo de operação", "C").
		num(7, 8, "tipo de serviço", servicoPagamento).
		num(9, 10, "forma de lançamento", formaLancamento).
		num(11, 13, "versão do lote", versaoLote).
		brancos(14, 14).
		num(15, 15, "tipo de inscrição", tipoInscricao).
		num(16, 30, "inscrição da empresa", cnpj).
		txt(31, 60, "nome da empresa", empresa.Nome).
		num(61, 65, "agência", agencia).
		txt(66, 66, "dv agência", dvAgencia).
		num(67, 78, "conta", conta).
		txt(79, 79, "dv conta", dvConta).
		num(80, 80, "tipo de conta", empresa.TipoConta.Codigo()).
		brancos(81, 240)
}

func segmentoA(empresa domain.EmpresaCNAB, p domain.ParcelaCNAB, seq int) *registro {
	banco := normalize.OnlyDigits(p.Banco)
	agencia, dvAgencia := separarDV(p.Agencia)
	conta, dvConta := separarDV(p.Conta)

	camara := "018"
	if banco == normalize.OnlyDigits(empresa.Banco) {
		camara = "000"
	}

	return novoRegistro("segmento A").
		num(1, 1, "tipo de registro", string(RegistroDetalhe)).
		num(2, 5, "lote", loteUnico).
		num(6, 10, "sequência do registro", strconv.Itoa(seq)).
		txt(11, 11, "segmento", "A").
		num(12, 12, "tipo de movimento", "0").
		num(13, 14, "código da instrução", "00").
		num(15, 17, "câmara centralizadora", camara).
		num(18, 20, "banco favorecido", banco).
		num(21, 25, "agência favorecido", agencia).
		txt(26, 26, "dv agência", dvAgencia).
		num(27, 38, "conta favorecido", conta).
		txt(39, 39, "dv conta", dvConta).
		brancos(40, 40).
		txt(41, 70, "nome do favorecido", p.NomeFavorecido).
		num(71, 88, "inscrição do favorecido", normalize.OnlyDigits(p.DocumentoFavorecido)).
		num(89, 96, "data do pagamento", normalize.FormatDateDDMMYYYY(p.Vencimento)).
		txt(97, 99, "tipo da moeda", moeda).
		num(100, 114, "quantidade da moeda", "").
		num(115, 129, "valor do pagamento", strconv.FormatInt(int64(p.Valor), 10)).
		brancos(130, 130).
		num(131, 150, "nosso número", strconv.FormatInt(p.ID, 10)).
		num(151, 158, "data real", "").
		num(159, 173, "valor real", "").
		txt(174, 213, "informação", fmt.Sprintf("PARCELA %d", p.ID)).
		txt(214, 218, "finalidade", p.Finalidade).
		num(219, 219, "aviso ao favorecido", "0").
		brancos(220, 220).
		txt(221, 230, "ocorrências", "").
		brancos(231, 240)
}

func segmentoB(p domain.ParcelaCNAB, doc, tipoFavorecido string, seq int) *registro {
	agencia, dvAgencia := separarDV(p.Agencia)
	conta, dvConta := separarDV(p.Conta)
	r := novoRegistro("segmento B").
		num(1, 1, "tipo de registro", string(RegistroDetalhe)).
		num(2, 5, "lote", loteUnico).
		num(6, 10, "sequência do registro", strconv.Itoa(seq)).
		txt(11, 11, "segmento", "B").
		brancos(12, 13).
		num(14, 16, "banco destino", normalize.OnlyDigits(p.Banco)).
		num(17, 21, "agência destino", agencia).
		txt(22, 22, "dv agência", dvAgencia).
		num(23, 34, "conta destino", conta).
		txt(35, 35, "dv conta", dvConta).
		num(36, 36, "tipo de conta", p.TipoConta.Codigo()).
		txt(37, 66, "nome do favorecido", p.NomeFavorecido).
		num(67, 67, "tipo de inscrição", tipoFavorecido).
		num(68, 81, "inscrição do favorecido", doc).
		num(82, 89, "data de vencimento", normalize.FormatDateDDMMYYYY(p.Vencimento)).
		num(90, 104, "valor do desconto", "").
		num(105, 119, "valor da multa", "").
		num(120, 134, "valor do IOF", "").
		num(135, 149, "valor líquido", "")

	// o nosso número do segmento A é sempre o código da parcela
	if nn := strings.TrimSpace(p.NossoNumero); nn != "" {
		r.num(150, 169, "nosso número da empresa", nn)
	} else {
		r.brancos(150, 169)
	}
	return r.brancos(170, 240)
}

func trailerLote(qtdRegistros int, total domain.Centavos) *registro {
	return novoRegistro("trailer de lote").
		num(1, 1, "tipo de registro", string(RegistroTrailerLote)).
		num(2, 5, "lote", loteUnico).
		brancos(6, 14).
		num(15, 20, "quantidade de registros", strconv.Itoa(qtdRegistros)).
		brancos(21, 38).
		num(39, 53, "somatória dos valores", strconv.FormatInt(int64(total), 10)).
		brancos(54, 240)
}

func trailerArquivo(qtdRegistros int) *registro {
	return novoRegistro("trailer de arquivo").
		num(1, 1, "tipo de registro", string(RegistroTrailerArquivo)).
		brancos(2, 10).
		num(11, 16, "quantidade de lotes", "1").
		num(17, 22, "quantidade de registros", strconv.Itoa(qtdRegistros)).
		brancos(23, 240)
}

// tipoInscricaoEmpresa retorna '2' para CNPJ com dígitos verificadores válidos e
// '1' para CPF.
func tipoInscricaoEmpresa(doc string) (string, error) {
	switch len(doc) {
	case 14:
		if !normalize.ValidCNPJ(doc) {
			return "", fmt.Errorf("empresa: %w: %s", domain.ErrInvalidTaxID, doc)
		}
		return "2", nil
	case 11:
		return "1", nil
	}
	return "", fmt.Errorf("empresa: %w: %q", domain.ErrInvalidTaxID, doc)
}

func tipoInscricaoFavorecido(doc string) (string, error) {
	switch len(doc) {
	case 14:
		return "2", nil
	case 11:
		return "1", nil
	}
	return "", fmt.Errorf("favorecido: %w: %q", domain.ErrInvalidTaxID, doc)
}

// separarDV divide "1234-5" em ("1234", "5"). Sem hífen, o valor inteiro é o número
// e o dígito fica em branco.
func separarDV(s string) (numero, dv string) {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "-"); i >= 0 {
		dv = normalize.ASCIIUpper(strings.TrimSpace(s[i+1:]))
		if len(dv) > 1 {
			dv = dv[:1]
		}
		return normalize.OnlyDigits(s[:i]), dv
	}
	return normalize.OnlyDigits(s), ""
}
