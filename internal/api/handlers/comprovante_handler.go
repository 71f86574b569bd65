package handlers

import (
	"net/http"

	"pagamentos-service/internal/api/responses"
	"pagamentos-service/internal/core/comprovante"

	"github.com/gin-gonic/gin"
)

// ComprovanteHandler lida com as requisições de leitura de comprovantes bancários.
type ComprovanteHandler struct {
	service comprovante.Service
	limite  int64
}

// NewComprovanteHandler cria um novo handler de comprovantes.
func NewComprovanteHandler(service comprovante.Service, limiteUpload int64) *ComprovanteHandler {
	return &ComprovanteHandler{
		service: service,
		limite:  limiteUpload,
	}
}

type textoRequest struct {
	Texto string `json:"texto" binding:"required"`
}

// HandleProcessarPDF extrai os dados de um comprovante em PDF. Falhas do pipeline
// voltam com status 200 e sucesso=false.
func (h *ComprovanteHandler) HandleProcessarPDF(c *gin.Context) {
	data, _, ok := lerUpload(c, h.limite, "Arquivo do comprovante (.pdf)")
	if !ok {
		return
	}
	if !exigirTipo(c, data, "application/pdf") {
		return
	}

	resultado := h.service.ProcessarPDF(c.Request.Context(), data)
	responses.Raw(c, http.StatusOK, resultado)
}

// HandleProcessarTexto extrai os dados de um comprovante já convertido em texto.
func (h *ComprovanteHandler) HandleProcessarTexto(c *gin.Context) {
	var req textoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Corpo da requisição inválido", err.Error())
		return
	}

	resultado := h.service.ProcessarTexto(c.Request.Context(), req.Texto)
	responses.Raw(c, http.StatusOK, resultado)
}
