package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"pagamentos-service/internal/api/responses"
	"pagamentos-service/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// campoArquivo é o nome do campo multipart usado por todos os uploads.
const campoArquivo = "arquivo"

// lerUpload lê o arquivo do formulário respeitando o limite de tamanho. Em caso de
// falha a resposta de erro já foi enviada e ok é false.
func lerUpload(c *gin.Context, limite int64, descricao string) (data []byte, filename string, ok bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limite+1<<20)

	header, err := c.FormFile(campoArquivo)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			responses.Error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("%s excede o limite de %d MB", descricao, limite>>20))
			return nil, "", false
		}
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("%s não encontrado ou inválido", descricao))
		return nil, "", false
	}
	if header.Size > limite {
		responses.Error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("%s excede o limite de %d MB", descricao, limite>>20))
		return nil, "", false
	}

	file, err := header.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, fmt.Sprintf("Não foi possível abrir o %s", descricao))
		return nil, "", false
	}
	defer file.Close()

	data, err = io.ReadAll(io.LimitReader(file, limite+1))
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, fmt.Sprintf("Não foi possível ler o %s", descricao), err.Error())
		return nil, "", false
	}
	if int64(len(data)) > limite {
		responses.Error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("%s excede o limite de %d MB", descricao, limite>>20))
		return nil, "", false
	}
	if len(data) == 0 {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("%s está vazio", descricao))
		return nil, "", false
	}
	return data, header.Filename, true
}

// exigirTipo confere o tipo real do conteúdo, sem confiar no Content-Type enviado.
func exigirTipo(c *gin.Context, data []byte, esperado string) bool {
	mime := mimetype.Detect(data)
	if !mime.Is(esperado) {
		responses.Error(c, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Tipo de arquivo não suportado: %s (esperado %s)", mime.String(), esperado))
		return false
	}
	return true
}

// statusPara traduz erros de domínio em status HTTP.
func statusPara(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrMalformedAmount),
		errors.Is(err, domain.ErrMalformedDate),
		errors.Is(err, domain.ErrFieldWidthExceeded),
		errors.Is(err, domain.ErrNotNumeric),
		errors.Is(err, domain.ErrInvalidTaxID),
		errors.Is(err, domain.ErrNoInstallments):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
