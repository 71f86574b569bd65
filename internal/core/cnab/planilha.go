package cnab

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pagamentos-service/internal/core/normalize"
	"pagamentos-service/internal/domain"

	"github.com/schollz/closestmatch"
	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

var codigoBancoRegex = regexp.MustCompile(`^\s*(\d{1,3})\b`)

// apelidosBancos complementa NomesBancos com as grafias comuns nas planilhas.
var apelidosBancos = map[string]string{
	"BB":              "001",
	"ITAU":            "341",
	"CAIXA":           "104",
	"CEF":             "104",
	"INTER":           "077",
	"NU PAGAMENTOS":   "260",
	"BANCO SANTANDER": "033",
	"BANCO BRADESCO":  "237",
	"BANCOOB":         "756",
}

// colunasParcela guarda o índice de cada coluna reconhecida no cabeçalho (-1 se ausente).
type colunasParcela struct {
	id, valor, vencimento, nome, documento, banco, agencia, conta, tipoConta, finalidade, nossoNumero int
}

// leitorPlanilha converte linhas de planilha em parcelas.
type leitorPlanilha struct {
	codigos   map[string]string
	bancosCM  *closestmatch.ClosestMatch
	resolvido map[string]string
}

func novoLeitorPlanilha() *leitorPlanilha {
	codigos := make(map[string]string, len(domain.NomesBancos)+len(apelidosBancos))
	for codigo, nome := range domain.NomesBancos {
		codigos[nome] = codigo
	}
	for nome, codigo := range apelidosBancos {
		codigos[nome] = codigo
	}
	nomes := make([]string, 0, len(codigos))
	for nome := range codigos {
		nomes = append(nomes, nome)
	}
	return &leitorPlanilha{
		codigos:   codigos,
		bancosCM:  closestmatch.New(nomes, []int{2, 3}),
		resolvido: make(map[string]string),
	}
}

// CarregarParcelas lê a primeira aba de uma planilha .xlsx ou .xls com uma parcela por linha.
func CarregarParcelas(r io.Reader, filename string) ([]domain.ParcelaCNAB, error) {
	var rows [][]string
	var err error

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		rows, err = lerXLSX(r)
	case ".xls":
		rows, err = lerXLS(r)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFile, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao ler planilha de parcelas: %w", err)
	}
	return novoLeitorPlanilha().parcelas(rows)
}

func lerXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("o arquivo .xlsx não contém planilhas")
	}
	// valores brutos: células numéricas formatadas ("1,234.56") voltam como 1234.56
	return f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
}

func lerXLS(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, fmt.Errorf("o arquivo .xls não contém planilhas")
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("erro ao obter planilha do arquivo .xls: %w", err)
	}
	var rows [][]string
	for _, row := range sheet.GetRows() {
		var cols []string
		for _, cell := range row.GetCols() {
			cols = append(cols, cell.GetString())
		}
		rows = append(rows, cols)
	}
	return rows, nil
}

func (lp *leitorPlanilha) parcelas(rows [][]string) ([]domain.ParcelaCNAB, error) {
	headerIdx := encontrarCabecalho(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("cabeçalho com colunas 'Valor' e 'Favorecido' não encontrado")
	}
	cols := mapearColunas(rows[headerIdx])
	for nome, idx := range map[string]int{"parcela": cols.id, "valor": cols.valor, "vencimento": cols.vencimento, "documento": cols.documento, "banco": cols.banco} {
		if idx == -1 {
			return nil, fmt.Errorf("coluna '%s' não encontrada na planilha", nome)
		}
	}

	var parcelas []domain.ParcelaCNAB
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		get := func(idx int) string {
			if idx != -1 && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		nome := get(cols.nome)
		if nome == "" || strings.Contains(normalize.NormalizeText(nome), "TOTAL") {
			continue
		}

		p, err := lp.parcela(get, cols)
		if err != nil {
			return nil, fmt.Errorf("linha %d da planilha: %w", i+1, err)
		}
		parcelas = append(parcelas, p)
	}
	if len(parcelas) == 0 {
		return nil, domain.ErrNoInstallments
	}
	return parcelas, nil
}

func (lp *leitorPlanilha) parcela(get func(int) string, cols colunasParcela) (domain.ParcelaCNAB, error) {
	id, err := strconv.ParseInt(normalize.OnlyDigits(get(cols.id)), 10, 64)
	if err != nil || id <= 0 {
		return domain.ParcelaCNAB{}, fmt.Errorf("código da parcela inválido: %q", get(cols.id))
	}
	valor, err := valorCelula(get(cols.valor))
	if err != nil {
		return domain.ParcelaCNAB{}, err
	}
	vencimento, err := dataCelula(get(cols.vencimento))
	if err != nil {
		return domain.ParcelaCNAB{}, err
	}
	banco, err := lp.resolverBanco(get(cols.banco))
	if err != nil {
		return domain.ParcelaCNAB{}, err
	}

	tipoConta := domain.ContaCorrente
	if strings.Contains(normalize.NormalizeText(get(cols.tipoConta)), "POUP") {
		tipoConta = domain.ContaPoupanca
	}

	return domain.ParcelaCNAB{
		ID:                  id,
		Valor:               valor,
		Vencimento:          vencimento,
		NomeFavorecido:      get(cols.nome),
		DocumentoFavorecido: get(cols.documento),
		Banco:               banco,
		Agencia:             get(cols.agencia),
		Conta:               get(cols.conta),
		TipoConta:           tipoConta,
		Finalidade:          get(cols.finalidade),
		NossoNumero:         get(cols.nossoNumero),
	}, nil
}

// resolverBanco aceita "341", "341 - Itaú" ou apenas o nome do banco. Nomes são
// resolvidos por aproximação sobre a tabela de bancos conhecidos.
func (lp *leitorPlanilha) resolverBanco(valor string) (string, error) {
	if m := codigoBancoRegex.FindStringSubmatch(valor); m != nil {
		return normalize.PadNumeric(m[1], 3)
	}
	nome := normalize.NormalizeText(valor)
	if nome == "" {
		return "", fmt.Errorf("banco do favorecido não informado")
	}
	if codigo, ok := lp.codigos[nome]; ok {
		return codigo, nil
	}
	if codigo, ok := lp.resolvido[nome]; ok {
		return codigo, nil
	}
	match := lp.bancosCM.Closest(nome)
	if match == "" {
		return "", fmt.Errorf("banco não reconhecido: %q", valor)
	}
	codigo := lp.codigos[match]
	lp.resolvido[nome] = codigo
	return codigo, nil
}

func encontrarCabecalho(rows [][]string) int {
	maxRowsSearch := 40
	if len(rows) < maxRowsSearch {
		maxRowsSearch = len(rows)
	}
	for i := 0; i < maxRowsSearch; i++ {
		var temValor, temNome bool
		for _, cell := range rows[i] {
			c := normalize.NormalizeText(cell)
			temValor = temValor || strings.Contains(c, "VALOR")
			temNome = temNome || strings.Contains(c, "FAVORECIDO") || strings.Contains(c, "BENEFICIARIO")
		}
		if temValor && temNome {
			return i
		}
	}
	return -1
}

func mapearColunas(header []string) colunasParcela {
	normCols := make([]string, len(header))
	for i, h := range header {
		normCols[i] = normalize.NormalizeText(h)
	}
	usadas := make(map[int]bool)
	pick := func(keywords ...string) int {
		idx := escolherColuna(normCols, keywords, usadas)
		if idx != -1 {
			usadas[idx] = true
		}
		return idx
	}

	var c colunasParcela
	c.tipoConta = pick("TIPO CONTA", "TIPO DE CONTA")
	c.nossoNumero = pick("NOSSO NUMERO")
	c.id = pick("CD PARCELA", "CODIGO PARCELA", "PARCELA")
	c.valor = pick("VALOR")
	c.vencimento = pick("VENCIMENTO", "DATA PAGAMENTO", "DATA")
	c.documento = pick("CPF/CNPJ", "CNPJ", "CPF", "DOCUMENTO")
	c.nome = pick("FAVORECIDO", "BENEFICIARIO", "NOME")
	c.banco = pick("BANCO")
	c.agencia = pick("AGENCIA")
	c.conta = pick("CONTA")
	c.finalidade = pick("FINALIDADE")
	return c
}

// escolherColuna tenta primeiro correspondência exata e depois substring, na ordem
// das palavras-chave, ignorando colunas já atribuídas.
func escolherColuna(normCols []string, keywords []string, usadas map[int]bool) int {
	for _, kw := range keywords {
		for idx, nc := range normCols {
			if !usadas[idx] && nc == kw {
				return idx
			}
		}
	}
	for _, kw := range keywords {
		for idx, nc := range normCols {
			if !usadas[idx] && strings.Contains(nc, kw) {
				return idx
			}
		}
	}
	return -1
}

// valorCelula aceita "1.234,56", "R$ 402,52", "1,234.56" ou números com ponto
// decimal vindos do Excel. O último separador presente é o decimal; formas que
// não fecham com isso são rejeitadas.
func valorCelula(s string) (domain.Centavos, error) {
	v := strings.TrimPrefix(strings.ReplaceAll(strings.TrimSpace(s), " ", ""), "R$")
	virgula, ponto := strings.LastIndex(v, ","), strings.LastIndex(v, ".")
	switch {
	case virgula > ponto:
		return normalize.ToCents(v)
	case virgula >= 0:
		v = strings.ReplaceAll(v, ",", "")
	case strings.Count(v, ".") > 1:
		return normalize.ToCents(v)
	}
	c, err := normalize.DecimalToCents(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrMalformedAmount, s)
	}
	return c, nil
}

func dataCelula(s string) (time.Time, error) {
	if t, err := normalize.ParseDateBR(s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 35000 && f < 60000 {
		return excelSerialToDate(f), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrMalformedDate, s)
}

func excelSerialToDate(serial float64) time.Time {
	// base Excel serial -> 1899-12-30
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, int(serial))
}
