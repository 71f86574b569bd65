package cnab

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"pagamentos-service/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// linhaSegmentoA monta um segmento A de retorno com nosso número e ocorrência nas
// posições lidas pelo decodificador.
func linhaSegmentoA(nossoNumero string, ocorrencia byte) string {
	linha := []byte(strings.Repeat(" ", TamanhoLinha))
	linha[0] = RegistroDetalhe
	linha[10] = 'A'
	copy(linha[posNossoNumeroInicio:posNossoNumeroFim], nossoNumero)
	linha[posOcorrencia] = ocorrencia
	return string(linha)
}

func TestLeitorRetornoConfirmaParcela(t *testing.T) {
	t.Parallel()

	arquivo := linhaSegmentoA("00000000000000000042", '0')
	leitor := NovoLeitorRetorno(context.Background(), strings.NewReader(arquivo), zaptest.NewLogger(t))

	require.True(t, leitor.Next())
	require.Equal(t, domain.ConfirmacaoParcela{CdParcela: 42, Status: domain.StatusParcelaPaga, Linha: 1}, leitor.Confirmacao())
	require.Equal(t, 1, leitor.TotalProcessadas())

	require.False(t, leitor.Next())
	require.NoError(t, leitor.Err())

	resumo := leitor.Resumo()
	require.Equal(t, 1, resumo.TotalProcessadas)
	require.Equal(t, 1, resumo.TotalLinhas)
	require.False(t, resumo.Interrompido)

	// esgotado: não reinicia
	require.False(t, leitor.Next())
}

func TestLeitorRetornoIgnoraLinhas(t *testing.T) {
	t.Parallel()

	linhas := []string{
		"0" + strings.Repeat(" ", TamanhoLinha-1),
		"1" + strings.Repeat(" ", TamanhoLinha-1),
		linhaSegmentoA("00000000000000000010", '0'),
		"3    00002B" + strings.Repeat(" ", TamanhoLinha-11),
		"",
		linhaSegmentoA("0000000000000000ABCD", '0'),
		linhaSegmentoA("00000000000000000011", 'B'),
		"3    00003A curto",
		linhaSegmentoA("00000000000000000000", '0'),
		linhaSegmentoA("00000000000000000012", '0'),
		"5" + strings.Repeat(" ", TamanhoLinha-1),
		"9" + strings.Repeat(" ", TamanhoLinha-1),
	}
	arquivo := strings.Join(linhas, "\r\n") + "\r\n"

	resumo, err := DecodeRetorno(context.Background(), strings.NewReader(arquivo), zaptest.NewLogger(t))
	require.NoError(t, err)

	require.Equal(t, len(linhas), resumo.TotalLinhas)
	require.Equal(t, 2, resumo.TotalProcessadas)
	require.Equal(t, []domain.ConfirmacaoParcela{
		{CdParcela: 10, Status: domain.StatusParcelaPaga, Linha: 3},
		{CdParcela: 12, Status: domain.StatusParcelaPaga, Linha: 10},
	}, resumo.ParcelasProcessadas)

	require.Len(t, resumo.LinhasIgnoradas, 3)
	require.Equal(t, 6, resumo.LinhasIgnoradas[0].Linha)
	require.Contains(t, resumo.LinhasIgnoradas[0].Motivo, "nosso número")
	require.Equal(t, 8, resumo.LinhasIgnoradas[1].Linha)
	require.Contains(t, resumo.LinhasIgnoradas[1].Motivo, "incompleto")
	require.Equal(t, 9, resumo.LinhasIgnoradas[2].Linha)
}

func TestLeitorRetornoDescartaLinhaLonga(t *testing.T) {
	t.Parallel()

	arquivo := strings.Join([]string{
		linhaSegmentoA("00000000000000000041", '0'),
		strings.Repeat("X", 2<<20),
		linhaSegmentoA("00000000000000000042", '0'),
	}, "\r\n")

	resumo, err := DecodeRetorno(context.Background(), strings.NewReader(arquivo), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, 3, resumo.TotalLinhas)
	require.Equal(t, 2, resumo.TotalProcessadas)
	require.Equal(t, int64(41), resumo.ParcelasProcessadas[0].CdParcela)
	require.Equal(t, domain.ConfirmacaoParcela{CdParcela: 42, Status: domain.StatusParcelaPaga, Linha: 3}, resumo.ParcelasProcessadas[1])

	require.Len(t, resumo.LinhasIgnoradas, 1)
	require.Equal(t, 2, resumo.LinhasIgnoradas[0].Linha)
	require.Contains(t, resumo.LinhasIgnoradas[0].Motivo, "descartada")
}

func TestLeitorRetornoDataPagamento(t *testing.T) {
	t.Parallel()

	comData := []byte(linhaSegmentoA("00000000000000000042", '0'))
	copy(comData[posDataRealInicio:posDataRealFim], "15052024")
	zerada := []byte(linhaSegmentoA("00000000000000000043", '0'))
	copy(zerada[posDataRealInicio:posDataRealFim], "00000000")

	arquivo := string(comData) + "\r\n" + string(zerada)
	resumo, err := DecodeRetorno(context.Background(), strings.NewReader(arquivo), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Len(t, resumo.ParcelasProcessadas, 2)
	require.Equal(t, "15/05/2024", resumo.ParcelasProcessadas[0].DataPagamento)
	require.Empty(t, resumo.ParcelasProcessadas[1].DataPagamento)
}

func TestLeitorRetornoArquivoVazio(t *testing.T) {
	t.Parallel()

	resumo, err := DecodeRetorno(context.Background(), strings.NewReader(""), nil)
	require.NoError(t, err)
	require.Zero(t, resumo.TotalProcessadas)
	require.NotNil(t, resumo.ParcelasProcessadas)
	require.Empty(t, resumo.ParcelasProcessadas)
}

func TestLeitorRetornoLatin1(t *testing.T) {
	t.Parallel()

	// nome com bytes ISO-8859-1 antes do nosso número não desloca as posições
	linha := []byte(linhaSegmentoA("00000000000000000077", '0'))
	copy(linha[40:], []byte{'J', 'O', 0xC3, 'O', ' ', 'C', 0xC9, 'S', 'A', 'R'})

	resumo, err := DecodeRetorno(context.Background(), bytes.NewReader(linha), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.Equal(t, 1, resumo.TotalProcessadas)
	require.Equal(t, int64(77), resumo.ParcelasProcessadas[0].CdParcela)
}

func TestLeitorRetornoCancelado(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 100; i++ {
		b.WriteString(linhaSegmentoA("00000000000000000001", '0'))
		b.WriteString("\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	leitor := NovoLeitorRetorno(ctx, strings.NewReader(b.String()), zaptest.NewLogger(t))

	require.True(t, leitor.Next())
	require.True(t, leitor.Next())
	cancel()
	require.False(t, leitor.Next())

	require.ErrorIs(t, leitor.Err(), context.Canceled)
	resumo := leitor.Resumo()
	require.True(t, resumo.Interrompido)
	require.Equal(t, 2, resumo.TotalProcessadas)
}

func TestServiceLerRetorno(t *testing.T) {
	t.Parallel()

	svc := NewService(zaptest.NewLogger(t), 1)
	leitor := svc.LerRetorno(context.Background(), strings.NewReader(linhaSegmentoA("00000000000000000005", '0')))

	var ids []int64
	for leitor.Next() {
		ids = append(ids, leitor.Confirmacao().CdParcela)
	}
	require.NoError(t, leitor.Err())
	require.Equal(t, []int64{5}, ids)
}
