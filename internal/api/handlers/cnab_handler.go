package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pagamentos-service/internal/api/responses"
	"pagamentos-service/internal/core/cnab"
	"pagamentos-service/internal/core/normalize"
	"pagamentos-service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CnabHandler lida com a geração de remessas e a leitura de retornos CNAB240.
type CnabHandler struct {
	service cnab.Service
	empresa domain.EmpresaCNAB
	limite  int64
	logger  *zap.Logger
}

// NewCnabHandler cria um novo handler CNAB. empresa é o remetente padrão das remessas.
func NewCnabHandler(service cnab.Service, empresa domain.EmpresaCNAB, limiteUpload int64, logger *zap.Logger) *CnabHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CnabHandler{
		service: service,
		empresa: empresa,
		limite:  limiteUpload,
		logger:  logger,
	}
}

type empresaRequest struct {
	Nome      string `json:"nome"`
	CNPJ      string `json:"cnpj"`
	Banco     string `json:"banco"`
	Agencia   string `json:"agencia"`
	Conta     string `json:"conta"`
	TipoConta string `json:"tipoConta"`
}

type parcelaRequest struct {
	CdParcela           int64           `json:"cdParcela" binding:"required"`
	Valor               decimal.Decimal `json:"valor"`
	Vencimento          string          `json:"vencimento" binding:"required"`
	NomeFavorecido      string          `json:"nomeFavorecido"`
	DocumentoFavorecido string          `json:"documentoFavorecido"`
	Banco               string          `json:"banco"`
	Agencia             string          `json:"agencia"`
	Conta               string          `json:"conta"`
	TipoConta           string          `json:"tipoConta"`
	Finalidade          string          `json:"finalidade"`
	NossoNumero         string          `json:"nossoNumero"`
}

type remessaRequest struct {
	Empresa   *empresaRequest  `json:"empresa"`
	Parcelas  []parcelaRequest `json:"parcelas" binding:"required,min=1,dive"`
	Sequencia int              `json:"sequencia"`
}

type eventoAtualizacao struct {
	Tipo             string               `json:"tipo"`
	CdParcela        int64                `json:"cdParcela"`
	Status           domain.StatusParcela `json:"status"`
	DataPagamento    string               `json:"dataPagamento,omitempty"`
	TotalProcessadas int                  `json:"totalProcessadas"`
}

type eventoFinal struct {
	Tipo                string                      `json:"tipo"`
	Sucesso             bool                        `json:"sucesso"`
	TotalProcessadas    int                         `json:"totalProcessadas"`
	ParcelasProcessadas []domain.ConfirmacaoParcela `json:"parcelasProcessadas"`
	LinhasIgnoradas     []domain.LinhaIgnorada      `json:"linhasIgnoradas,omitempty"`
	Mensagem            string                      `json:"mensagem"`
}

func tipoConta(s string) domain.TipoConta {
	if strings.HasPrefix(normalize.NormalizeText(s), "POUP") {
		return domain.ContaPoupanca
	}
	return domain.ContaCorrente
}

func (r parcelaRequest) parcela() (domain.ParcelaCNAB, error) {
	valor, err := normalize.DecimalToCents(r.Valor.String())
	if err != nil {
		return domain.ParcelaCNAB{}, err
	}
	vencimento, err := normalize.ParseDateBR(r.Vencimento)
	if err != nil {
		if t, errISO := time.Parse("2006-01-02", r.Vencimento); errISO == nil {
			vencimento, err = t, nil
		}
	}
	if err != nil {
		return domain.ParcelaCNAB{}, err
	}
	return domain.ParcelaCNAB{
		ID:                  r.CdParcela,
		Valor:               valor,
		Vencimento:          vencimento,
		NomeFavorecido:      r.NomeFavorecido,
		DocumentoFavorecido: r.DocumentoFavorecido,
		Banco:               r.Banco,
		Agencia:             r.Agencia,
		Conta:               r.Conta,
		TipoConta:           tipoConta(r.TipoConta),
		Finalidade:          r.Finalidade,
		NossoNumero:         r.NossoNumero,
	}, nil
}

func (r *empresaRequest) empresa() domain.EmpresaCNAB {
	return domain.EmpresaCNAB{
		Nome:      r.Nome,
		CNPJ:      r.CNPJ,
		Banco:     r.Banco,
		Agencia:   r.Agencia,
		Conta:     r.Conta,
		TipoConta: tipoConta(r.TipoConta),
	}
}

func enviarRemessa(c *gin.Context, remessa *cnab.Remessa) {
	c.Header("X-Total-Parcelas", strconv.Itoa(remessa.TotalParcelas))
	c.Header("X-Valor-Total", remessa.ValorTotal.String())
	responses.Download(c, remessa.NomeArquivo, "text/plain; charset=utf-8", remessa.Conteudo)
}

// HandleGerarRemessa gera um arquivo de remessa a partir de parcelas em JSON.
func (h *CnabHandler) HandleGerarRemessa(c *gin.Context) {
	var req remessaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Corpo da requisição inválido", err.Error())
		return
	}

	empresa := h.empresa
	if req.Empresa != nil {
		empresa = req.Empresa.empresa()
	}

	parcelas := make([]domain.ParcelaCNAB, 0, len(req.Parcelas))
	for i, p := range req.Parcelas {
		parcela, err := p.parcela()
		if err != nil {
			responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Parcela %d inválida", i+1), err.Error())
			return
		}
		parcelas = append(parcelas, parcela)
	}

	remessa, err := h.service.GerarRemessa(empresa, parcelas, cnab.OpcoesRemessa{Sequencia: req.Sequencia})
	if err != nil {
		responses.Error(c, statusPara(err), "Erro ao gerar o arquivo de remessa", err.Error())
		return
	}
	enviarRemessa(c, remessa)
}

// HandleGerarRemessaPlanilha gera um arquivo de remessa a partir de uma planilha de parcelas.
func (h *CnabHandler) HandleGerarRemessaPlanilha(c *gin.Context) {
	data, filename, ok := lerUpload(c, h.limite, "Arquivo de parcelas (.xls, .xlsx)")
	if !ok {
		return
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xls" && ext != ".xlsx" {
		responses.Error(c, http.StatusUnsupportedMediaType, fmt.Sprintf("Extensão de arquivo de parcelas não suportada: %s", ext))
		return
	}

	remessa, err := h.service.GerarRemessaPlanilha(h.empresa, bytes.NewReader(data), filename)
	if err != nil {
		responses.Error(c, statusPara(err), "Erro ao processar a planilha de parcelas", err.Error())
		return
	}
	enviarRemessa(c, remessa)
}

// HandleLerRetorno lê um arquivo de retorno e transmite uma linha NDJSON por parcela
// paga, na ordem do arquivo, seguida do resumo final.
func (h *CnabHandler) HandleLerRetorno(c *gin.Context) {
	data, filename, ok := lerUpload(c, h.limite, "Arquivo de retorno (.txt, .ret)")
	if !ok {
		return
	}
	if !exigirTipo(c, data, "text/plain") {
		return
	}

	leitor := h.service.LerRetorno(c.Request.Context(), bytes.NewReader(data))
	stream := responses.NewNDJSON(c)
	defer stream.Close()

	for leitor.Next() {
		conf := leitor.Confirmacao()
		err := stream.Send(eventoAtualizacao{
			Tipo:             "atualizacao",
			CdParcela:        conf.CdParcela,
			Status:           conf.Status,
			DataPagamento:    conf.DataPagamento,
			TotalProcessadas: leitor.TotalProcessadas(),
		})
		if err != nil {
			return
		}
	}

	resumo := leitor.Resumo()
	final := eventoFinal{
		Tipo:                "final",
		Sucesso:             leitor.Err() == nil,
		TotalProcessadas:    resumo.TotalProcessadas,
		ParcelasProcessadas: resumo.ParcelasProcessadas,
		LinhasIgnoradas:     resumo.LinhasIgnoradas,
		Mensagem:            fmt.Sprintf("%d parcela(s) confirmada(s) em %d linha(s)", resumo.TotalProcessadas, resumo.TotalLinhas),
	}
	if err := leitor.Err(); err != nil {
		final.Mensagem = fmt.Sprintf("leitura interrompida: %v", err)
	}

	h.logger.Info("retorno CNAB processado",
		zap.String("arquivo", filename),
		zap.Int("linhas", resumo.TotalLinhas),
		zap.Int("confirmadas", resumo.TotalProcessadas),
		zap.Int("ignoradas", len(resumo.LinhasIgnoradas)),
		zap.Bool("interrompido", resumo.Interrompido),
	)
	_ = stream.Send(final)
}
