package comprovante

import (
	"context"
	"testing"

	"pagamentos-service/internal/domain"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"rsc.io/pdf"
)

func TestNormalizarTexto(t *testing.T) {
	t.Parallel()

	entrada := "Valor: R$ 402,52   \r\nBeneficiário: X\t \rFim\f\n\n"
	require.Equal(t, "Valor: R$ 402,52\nBeneficiário: X\nFim", NormalizarTexto(entrada))
}

func TestAgruparLinhas(t *testing.T) {
	t.Parallel()

	trechos := []pdf.Text{
		{FontSize: 10, X: 45, Y: 700.2, W: 30, S: "402,52"},
		{FontSize: 10, X: 10, Y: 720, W: 40, S: "Bradesco"},
		{FontSize: 10, X: 10, Y: 699.8, W: 30, S: "Valor:"},
		{FontSize: 10, X: 10, Y: 680, W: 20, S: "Valordo"},
		{FontSize: 10, X: 30, Y: 680, W: 40, S: "documento"},
	}
	require.Equal(t, []string{"Bradesco", "Valor: 402,52", "Valordodocumento"}, agruparLinhas(trechos))
}

func TestLeitorPDFInvalido(t *testing.T) {
	t.Parallel()

	l := &LeitorPDF{Logger: zaptest.NewLogger(t)}
	_, err := l.ExtrairTexto(context.Background(), []byte("isto não é um pdf"))
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrNoExtractableText)
}

func TestCaracteresVisiveis(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, caracteresVisiveis(" \n\t "))
	require.Equal(t, 6, caracteresVisiveis("ab c\nd é f"))
}
