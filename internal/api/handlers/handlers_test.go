package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pagamentos-service/internal/core/cnab"
	"pagamentos-service/internal/core/comprovante"
	"pagamentos-service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const limiteTeste = 64 << 10

var empresaPadrao = domain.EmpresaCNAB{
	Nome:      "Transmissora de Energia",
	CNPJ:      "11.222.333/0001-81",
	Banco:     "341",
	Agencia:   "1234-5",
	Conta:     "56789-0",
	TipoConta: domain.ContaCorrente,
}

type extratorTexto string

func (e extratorTexto) ExtrairTexto(_ context.Context, _ []byte) (string, error) {
	return string(e), nil
}

func novoRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	textoComprovante := extratorTexto("Bradesco\nBoleto de Cobrança\nBeneficiário: FORNECEDOR LTDA\n(=)Valordodocumento:402,52")
	ch := NewComprovanteHandler(comprovante.NewService(logger, textoComprovante), limiteTeste)
	cn := NewCnabHandler(cnab.NewService(logger, 7), empresaPadrao, limiteTeste, logger)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/comprovantes/processar", ch.HandleProcessarPDF)
	api.POST("/comprovantes/texto", ch.HandleProcessarTexto)
	api.POST("/cnab/remessa", cn.HandleGerarRemessa)
	api.POST("/cnab/remessa/planilha", cn.HandleGerarRemessaPlanilha)
	api.POST("/cnab/retorno", cn.HandleLerRetorno)
	return r
}

func multipartRequest(t *testing.T, path, filename string, conteudo []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(campoArquivo, filename)
	require.NoError(t, err)
	_, err = part.Write(conteudo)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleProcessarTexto(t *testing.T) {
	r := novoRouter(t)

	body := `{"texto":"Bradesco\nBoleto de Cobrança\n(=)Valordodocumento:402,52"}`
	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/comprovantes/texto", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Sucesso         bool                   `json:"sucesso"`
		BancoDetectado  string                 `json:"bancoDetectado"`
		TipoDocumento   string                 `json:"tipoDocumento"`
		IDProcessamento string                 `json:"idProcessamento"`
		Dados           map[string]interface{} `json:"dados"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Sucesso)
	require.Equal(t, "BRADESCO", res.BancoDetectado)
	require.Equal(t, "BOLETO", res.TipoDocumento)
	require.NotEmpty(t, res.IDProcessamento)
	require.Equal(t, 402.52, res.Dados["valorDocumento"])
}

func TestHandleProcessarTextoSemCorpo(t *testing.T) {
	r := novoRouter(t)

	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/comprovantes/texto", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"status":"error"`)
}

func TestHandleProcessarPDF(t *testing.T) {
	r := novoRouter(t)

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	w := serve(r, multipartRequest(t, "/api/v1/comprovantes/processar", "comprovante.pdf", pdf))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"sucesso":true`)
	require.Contains(t, w.Body.String(), `"valorDocumento":402.52`)
}

func TestHandleProcessarPDFRejeitaOutrosTipos(t *testing.T) {
	r := novoRouter(t)

	w := serve(r, multipartRequest(t, "/api/v1/comprovantes/processar", "comprovante.pdf", []byte("texto simples")))
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestHandleUploadLimites(t *testing.T) {
	r := novoRouter(t)

	w := serve(r, multipartRequest(t, "/api/v1/cnab/retorno", "retorno.ret", bytes.Repeat([]byte("3"), limiteTeste+1)))
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = serve(r, multipartRequest(t, "/api/v1/cnab/retorno", "retorno.ret", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cnab/retorno", strings.NewReader("sem multipart"))
	w = serve(r, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGerarRemessa(t *testing.T) {
	r := novoRouter(t)

	body := `{
		"parcelas": [
			{"cdParcela": 42, "valor": 402.52, "vencimento": "10/05/2024", "nomeFavorecido": "Fornecedor",
			 "documentoFavorecido": "12.345.678/0001-95", "banco": "237", "agencia": "0001", "conta": "12345-6"},
			{"cdParcela": 43, "valor": "10", "vencimento": "2024-05-11", "nomeFavorecido": "Maria",
			 "documentoFavorecido": "123.456.789-09", "banco": "341", "agencia": "4321", "conta": "9876-5", "tipoConta": "poupança"}
		]
	}`
	w := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/cnab/remessa", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Header().Get("Content-Disposition"), "000007.rem")
	require.Equal(t, "2", w.Header().Get("X-Total-Parcelas"))
	require.Equal(t, "412.52", w.Header().Get("X-Valor-Total"))

	linhas := strings.Split(w.Body.String(), "\r\n")
	require.Len(t, linhas, 8)
	for _, l := range linhas {
		require.Len(t, l, cnab.TamanhoLinha)
	}
}

func TestHandleGerarRemessaErros(t *testing.T) {
	r := novoRouter(t)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"sem parcelas", `{"parcelas": []}`, http.StatusBadRequest},
		{"json inválido", `{"parcelas":`, http.StatusBadRequest},
		{"data inválida", `{"parcelas":[{"cdParcela":1,"valor":1,"vencimento":"31/02/2024","documentoFavorecido":"12345678909"}]}`, http.StatusBadRequest},
		{"valor largo demais", `{"parcelas":[{"cdParcela":1,"valor":99999999999999,"vencimento":"10/05/2024","documentoFavorecido":"12345678909","banco":"237"}]}`, http.StatusBadRequest},
		{"cnpj da empresa", `{"empresa":{"nome":"X","cnpj":"11222333000182","banco":"341"},"parcelas":[{"cdParcela":1,"valor":1,"vencimento":"10/05/2024","documentoFavorecido":"12345678909"}]}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/cnab/remessa", strings.NewReader(tc.body)))
			require.Equal(t, tc.status, w.Code, w.Body.String())
			require.Contains(t, w.Body.String(), `"status":"error"`)
		})
	}
}

func TestHandleGerarRemessaPlanilhaExtensao(t *testing.T) {
	r := novoRouter(t)

	w := serve(r, multipartRequest(t, "/api/v1/cnab/remessa/planilha", "parcelas.csv", []byte("a;b")))
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestHandleLerRetornoStream(t *testing.T) {
	r := novoRouter(t)

	linha := func(nossoNumero string, ocorrencia byte) string {
		b := []byte(strings.Repeat(" ", cnab.TamanhoLinha))
		b[0], b[10] = '3', 'A'
		copy(b[130:150], nossoNumero)
		b[220] = ocorrencia
		return string(b)
	}
	arquivo := strings.Join([]string{
		"0" + strings.Repeat(" ", cnab.TamanhoLinha-1),
		linha("00000000000000000042", '0'),
		linha("00000000000000000043", 'B'),
		linha("0000000000000000XXXX", '0'),
		linha("00000000000000000044", '0'),
		"9" + strings.Repeat(" ", cnab.TamanhoLinha-1),
	}, "\r\n")

	w := serve(r, multipartRequest(t, "/api/v1/cnab/retorno", "retorno.ret", []byte(arquivo)))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "application/x-ndjson")

	var eventos []map[string]interface{}
	sc := bufio.NewScanner(w.Body)
	for sc.Scan() {
		var ev map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &ev))
		eventos = append(eventos, ev)
	}
	require.Len(t, eventos, 3)

	require.Equal(t, "atualizacao", eventos[0]["tipo"])
	require.Equal(t, float64(42), eventos[0]["cdParcela"])
	require.Equal(t, "PAID", eventos[0]["status"])
	require.Equal(t, float64(1), eventos[0]["totalProcessadas"])

	require.Equal(t, float64(44), eventos[1]["cdParcela"])
	require.Equal(t, float64(2), eventos[1]["totalProcessadas"])

	final := eventos[2]
	require.Equal(t, "final", final["tipo"])
	require.Equal(t, true, final["sucesso"])
	require.Equal(t, float64(2), final["totalProcessadas"])
	require.Len(t, final["parcelasProcessadas"], 2)
	require.Len(t, final["linhasIgnoradas"], 1)
	require.NotEmpty(t, final["mensagem"])
}

func TestHandleLerRetornoRejeitaBinario(t *testing.T) {
	r := novoRouter(t)

	w := serve(r, multipartRequest(t, "/api/v1/cnab/retorno", "retorno.ret", []byte("%PDF-1.4\n%âãÏÓ\n")))
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestStatusPara(t *testing.T) {
	t.Parallel()

	require.Equal(t, http.StatusBadRequest, statusPara(&domain.FieldError{Err: domain.ErrFieldWidthExceeded}))
	require.Equal(t, http.StatusUnsupportedMediaType, statusPara(domain.ErrUnsupportedFile))
	require.Equal(t, http.StatusInternalServerError, statusPara(bytes.ErrTooLarge))
}
