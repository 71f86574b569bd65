// internal/api/responses/responses.go
package responses

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// APIResponse defines the standard envelope for API responses.
type APIResponse struct {
	Status  string      `json:"status"` // "success" or "error"
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// InitLogger define o logger usado pelas respostas da API. Com nil, usa o logger de produção.
func InitLogger(l *zap.Logger) {
	if l == nil {
		l, _ = zap.NewProduction()
	}
	logger = l
}

// Error sends an error response with the provided code, message, and optional errors.
func Error(c *gin.Context, code int, message string, errs ...string) {
	resp := APIResponse{Status: "error", Message: message, Errors: errs}
	c.JSON(code, resp)
	logger.Error("API error", zap.String("path", c.Request.URL.Path), zap.Int("status", code), zap.Strings("errors", errs))
}

// Raw envia data como corpo JSON sem o envelope, para contratos com formato próprio.
func Raw(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
	logger.Info("API response", zap.String("path", c.Request.URL.Path), zap.Int("status", code))
}

// Download envia um arquivo para download.
func Download(c *gin.Context, fileName, contentType string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, contentType, data)
	logger.Info("API download", zap.String("path", c.Request.URL.Path), zap.String("arquivo", fileName), zap.Int("bytes", len(data)))
}

// NDJSON escreve uma sequência de objetos JSON, um por linha, enviando cada um ao
// cliente assim que é produzido.
type NDJSON struct {
	c   *gin.Context
	enc *json.Encoder
	n   int
}

// NewNDJSON inicia a resposta em streaming com status 200.
func NewNDJSON(c *gin.Context) *NDJSON {
	c.Header("Content-Type", "application/x-ndjson; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Status(http.StatusOK)
	return &NDJSON{c: c, enc: json.NewEncoder(c.Writer)}
}

// Send escreve v seguido de quebra de linha e faz flush.
func (s *NDJSON) Send(v interface{}) error {
	if err := s.enc.Encode(v); err != nil {
		logger.Warn("API stream interrompido", zap.String("path", s.c.Request.URL.Path), zap.Int("enviados", s.n), zap.Error(err))
		return err
	}
	s.c.Writer.Flush()
	s.n++
	return nil
}

// Close registra o fim do stream.
func (s *NDJSON) Close() {
	logger.Info("API stream", zap.String("path", s.c.Request.URL.Path), zap.Int("status", http.StatusOK), zap.Int("enviados", s.n))
}
