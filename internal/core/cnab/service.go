// Package cnab gera arquivos de remessa CNAB240 e lê os arquivos de retorno devolvidos pelo banco.
package cnab

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"pagamentos-service/internal/domain"

	"go.uber.org/zap"
)

// Service define a interface do serviço de arquivos CNAB240.
type Service interface {
	GerarRemessa(empresa domain.EmpresaCNAB, parcelas []domain.ParcelaCNAB, opts OpcoesRemessa) (*Remessa, error)
	GerarRemessaPlanilha(empresa domain.EmpresaCNAB, planilha io.Reader, filename string) (*Remessa, error)
	LerRetorno(ctx context.Context, arquivo io.Reader) *LeitorRetorno
}

// OpcoesRemessa permite fixar a sequência e a data de geração do arquivo.
// Valores zero usam o contador do serviço e o relógio.
type OpcoesRemessa struct {
	Sequencia   int
	DataGeracao time.Time
}

type service struct {
	logger    *zap.Logger
	sequencia atomic.Int64
	agora     func() time.Time
}

// NewService cria o serviço CNAB. sequenciaInicial é o número do próximo arquivo gerado.
func NewService(logger *zap.Logger, sequenciaInicial int) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sequenciaInicial < 1 {
		sequenciaInicial = 1
	}
	s := &service{logger: logger, agora: time.Now}
	s.sequencia.Store(int64(sequenciaInicial) - 1)
	return s
}

func (s *service) GerarRemessa(empresa domain.EmpresaCNAB, parcelas []domain.ParcelaCNAB, opts OpcoesRemessa) (*Remessa, error) {
	geracao := opts.DataGeracao
	if geracao.IsZero() {
		geracao = s.agora()
	}

	// o contador só avança quando o arquivo é gerado
	for {
		atual := s.sequencia.Load()
		sequencia := opts.Sequencia
		if sequencia <= 0 {
			sequencia = int(atual) + 1
		}

		remessa, err := EncodeRemessa(empresa, parcelas, sequencia, geracao)
		if err != nil {
			s.logger.Error("falha ao gerar remessa CNAB240",
				zap.Int("sequencia", sequencia),
				zap.Int("parcelas", len(parcelas)),
				zap.Error(err),
			)
			return nil, err
		}
		if opts.Sequencia <= 0 && !s.sequencia.CompareAndSwap(atual, atual+1) {
			continue
		}

		s.logger.Info("remessa CNAB240 gerada",
			zap.String("arquivo", remessa.NomeArquivo),
			zap.Int("sequencia", remessa.Sequencia),
			zap.Int("parcelas", remessa.TotalParcelas),
			zap.Int("linhas", remessa.Linhas),
			zap.Int64("valorTotalCentavos", int64(remessa.ValorTotal)),
		)
		return remessa, nil
	}
}

func (s *service) GerarRemessaPlanilha(empresa domain.EmpresaCNAB, planilha io.Reader, filename string) (*Remessa, error) {
	parcelas, err := CarregarParcelas(planilha, filename)
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar parcelas: %w", err)
	}
	s.logger.Info("parcelas carregadas da planilha", zap.String("planilha", filename), zap.Int("parcelas", len(parcelas)))
	return s.GerarRemessa(empresa, parcelas, OpcoesRemessa{})
}

func (s *service) LerRetorno(ctx context.Context, arquivo io.Reader) *LeitorRetorno {
	return NovoLeitorRetorno(ctx, arquivo, s.logger)
}
