package comprovante

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"sort"
	"strings"
	"unicode"

	"pagamentos-service/internal/domain"

	"go.uber.org/zap"
	"rsc.io/pdf"
)

// minCaracteresTexto abaixo deste total de caracteres visíveis o PDF é tratado como imagem.
const minCaracteresTexto = 20

// ExtratorTexto converte os bytes de um PDF no texto usado pela classificação.
type ExtratorTexto interface {
	ExtrairTexto(ctx context.Context, pdf []byte) (string, error)
}

// LeitorPDF usa o pdftotext quando disponível e recorre ao leitor nativo em Go.
type LeitorPDF struct {
	CaminhoPdftotext string
	Logger           *zap.Logger
}

// NewLeitorPDF cria o leitor. caminho vazio procura "pdftotext" no PATH.
func NewLeitorPDF(caminho string, logger *zap.Logger) *LeitorPDF {
	if logger == nil {
		logger = zap.NewNop()
	}
	if caminho == "" {
		if p, err := exec.LookPath("pdftotext"); err == nil {
			caminho = p
		}
	}
	return &LeitorPDF{CaminhoPdftotext: caminho, Logger: logger}
}

func (l *LeitorPDF) ExtrairTexto(ctx context.Context, dados []byte) (string, error) {
	if l.CaminhoPdftotext != "" {
		texto, err := pdftotext(ctx, l.CaminhoPdftotext, dados)
		if err == nil && caracteresVisiveis(texto) >= minCaracteresTexto {
			return NormalizarTexto(texto), nil
		}
		l.Logger.Debug("pdftotext sem resultado, usando leitor nativo", zap.Error(err))
	}

	texto, err := textoNativo(dados)
	if err != nil {
		return "", fmt.Errorf("erro ao ler PDF: %w", err)
	}
	if caracteresVisiveis(texto) < minCaracteresTexto {
		return "", domain.ErrNoExtractableText
	}
	return NormalizarTexto(texto), nil
}

func pdftotext(ctx context.Context, caminho string, dados []byte) (string, error) {
	cmd := exec.CommandContext(ctx, caminho, "-enc", "UTF-8", "-", "-")
	cmd.Stdin = bytes.NewReader(dados)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}

// textoNativo agrupa os trechos de texto de cada página pela linha de base (Y) e os
// ordena de cima para baixo e da esquerda para a direita.
func textoNativo(dados []byte) (texto string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF malformado: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(dados), int64(len(dados)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		for _, linha := range agruparLinhas(p.Content().Text) {
			b.WriteString(linha)
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func agruparLinhas(trechos []pdf.Text) []string {
	porY := make(map[float64][]pdf.Text)
	for _, t := range trechos {
		y := math.Round(t.Y)
		porY[y] = append(porY[y], t)
	}
	ys := make([]float64, 0, len(porY))
	for y := range porY {
		ys = append(ys, y)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(ys)))

	linhas := make([]string, 0, len(ys))
	for _, y := range ys {
		ts := porY[y]
		sort.SliceStable(ts, func(i, j int) bool { return ts[i].X < ts[j].X })
		var b strings.Builder
		fim := 0.0
		for i, t := range ts {
			if i > 0 && t.X-fim > t.FontSize*0.2 {
				b.WriteByte(' ')
			}
			b.WriteString(t.S)
			fim = t.X + t.W
		}
		linhas = append(linhas, b.String())
	}
	return linhas
}

func caracteresVisiveis(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

// NormalizarTexto troca espaços não separáveis por espaço, unifica quebras de linha
// em LF e remove espaços ao fim de cada linha.
func NormalizarTexto(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\f", "\n")
	linhas := strings.Split(s, "\n")
	for i, l := range linhas {
		linhas[i] = strings.TrimRightFunc(l, unicode.IsSpace)
	}
	return strings.Trim(strings.Join(linhas, "\n"), "\n")
}
