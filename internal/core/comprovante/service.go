// Package comprovante classifica comprovantes bancários (boleto, TED, transferência, DOC)
// e extrai deles um PagamentoBoleto estruturado.
package comprovante

import (
	"context"
	"errors"

	"pagamentos-service/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service define a interface do serviço de comprovantes.
type Service interface {
	ProcessarPDF(ctx context.Context, pdf []byte) domain.ResultadoComprovante
	ProcessarTexto(ctx context.Context, texto string) domain.ResultadoComprovante
}

type service struct {
	logger *zap.Logger
	leitor ExtratorTexto
}

// NewService cria o serviço. leitor converte o PDF em texto antes da classificação.
func NewService(logger *zap.Logger, leitor ExtratorTexto) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{logger: logger, leitor: leitor}
}

func (s *service) ProcessarPDF(ctx context.Context, pdf []byte) domain.ResultadoComprovante {
	id := uuid.NewString()
	log := s.logger.With(zap.String("idProcessamento", id))

	texto, err := s.leitor.ExtrairTexto(ctx, pdf)
	if err != nil {
		log.Warn("falha ao extrair texto do PDF", zap.Int("bytes", len(pdf)), zap.Error(err))
		msg := "não foi possível ler o texto do PDF"
		if errors.Is(err, domain.ErrNoExtractableText) {
			msg = domain.ErrNoExtractableText.Error()
		}
		return domain.ResultadoComprovante{Sucesso: false, IDProcessamento: id, Erro: msg}
	}
	return s.processar(log, id, texto)
}

func (s *service) ProcessarTexto(_ context.Context, texto string) domain.ResultadoComprovante {
	id := uuid.NewString()
	texto = NormalizarTexto(texto)
	if caracteresVisiveis(texto) < minCaracteresTexto {
		return domain.ResultadoComprovante{Sucesso: false, IDProcessamento: id, Erro: domain.ErrNoExtractableText.Error()}
	}
	return s.processar(s.logger.With(zap.String("idProcessamento", id)), id, texto)
}

func (s *service) processar(log *zap.Logger, id, texto string) domain.ResultadoComprovante {
	c := Classificar(texto)
	dados, eventos := Extrair(c, texto)

	for _, e := range eventos {
		log.Debug("extração",
			zap.String("campo", e.Campo),
			zap.String("regra", e.Regra),
			zap.String("valor", e.Valor),
			zap.Bool("encontrado", e.Encontrado),
			zap.String("mensagem", e.Mensagem),
		)
	}
	if c.TipoPresumido {
		log.Warn("tipo de documento não identificado, assumindo BOLETO")
	}
	log.Info("comprovante processado",
		zap.String("banco", string(c.Banco)),
		zap.String("tipoDocumento", string(c.Tipo)),
	)

	return domain.ResultadoComprovante{
		Sucesso:         true,
		Dados:           &dados,
		BancoDetectado:  c.Banco,
		TipoDocumento:   c.Tipo,
		IDProcessamento: id,
	}
}
