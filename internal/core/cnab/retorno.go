package cnab

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"pagamentos-service/internal/core/normalize"
	"pagamentos-service/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Posições do segmento A lidas no retorno, como offsets 0-indexados [início, fim).
const (
	posNossoNumeroInicio = 130
	posNossoNumeroFim    = 150
	posDataRealInicio    = 150
	posDataRealFim       = 158
	posOcorrencia        = 220
	ocorrenciaPaga       = '0'
	maxTamanhoLinha      = 64 * 1024
)

// LeitorRetorno percorre um arquivo de retorno CNAB240 linha a linha e entrega uma
// confirmação por segmento A pago, na ordem do arquivo. É uma sequência finita e
// não reiniciável: depois que Next retorna false, o leitor está esgotado.
//
//	leitor := cnab.NovoLeitorRetorno(ctx, arquivo, logger)
//	for leitor.Next() {
//		c := leitor.Confirmacao()
//	}
//	resumo := leitor.Resumo()
type LeitorRetorno struct {
	ctx    context.Context
	reader *bufio.Reader
	logger *zap.Logger
	atual  domain.ConfirmacaoParcela
	resumo domain.ResumoRetorno
	err    error
	fim    bool
}

// NovoLeitorRetorno prepara a leitura de r. O conteúdo é decodificado como ISO-8859-1,
// de modo que cada byte original vira exatamente um caractere e as posições do
// layout continuam válidas mesmo com acentos nos nomes.
func NovoLeitorRetorno(ctx context.Context, r io.Reader, logger *zap.Logger) *LeitorRetorno {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeitorRetorno{
		ctx:    ctx,
		reader: bufio.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder())),
		logger: logger,
		resumo: domain.ResumoRetorno{ParcelasProcessadas: []domain.ConfirmacaoParcela{}},
	}
}

// Next avança até a próxima parcela confirmada. Linhas malformadas são registradas e
// ignoradas; apenas cancelamento do contexto ou erro de leitura encerram a varredura.
func (l *LeitorRetorno) Next() bool {
	if l.fim {
		return false
	}
	for {
		if err := l.ctx.Err(); err != nil {
			l.encerrar(err)
			l.resumo.Interrompido = true
			return false
		}
		texto, longa, err := l.lerLinha()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			l.encerrar(err)
			return false
		}
		l.resumo.TotalLinhas++
		if longa {
			l.ignorar(l.resumo.TotalLinhas, "linha com mais de "+strconv.Itoa(maxTamanhoLinha)+" bytes descartada")
			continue
		}
		if c, ok := l.processarLinha(texto, l.resumo.TotalLinhas); ok {
			l.resumo.TotalProcessadas++
			l.resumo.ParcelasProcessadas = append(l.resumo.ParcelasProcessadas, c)
			l.atual = c
			return true
		}
	}
}

// Confirmacao devolve a confirmação corrente, válida após Next retornar true.
func (l *LeitorRetorno) Confirmacao() domain.ConfirmacaoParcela { return l.atual }

// TotalProcessadas é a contagem de confirmações emitidas até agora.
func (l *LeitorRetorno) TotalProcessadas() int { return l.resumo.TotalProcessadas }

// Err retorna o erro que interrompeu a leitura, se houver.
func (l *LeitorRetorno) Err() error { return l.err }

// Resumo consolida a varredura. Só é definitivo depois que Next retorna false.
func (l *LeitorRetorno) Resumo() domain.ResumoRetorno { return l.resumo }

// lerLinha devolve a próxima linha sem o terminador. Uma linha maior que
// maxTamanhoLinha é consumida até o fim e descartada, com longa=true.
func (l *LeitorRetorno) lerLinha() (texto string, longa bool, err error) {
	var buf []byte
	lido := false
	for {
		frag, err := l.reader.ReadSlice('\n')
		lido = lido || len(frag) > 0
		if !longa {
			if len(buf)+len(frag) > maxTamanhoLinha {
				longa, buf = true, nil
			} else {
				buf = append(buf, frag...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && !(errors.Is(err, io.EOF) && lido) {
			return "", false, err
		}
		return strings.TrimRight(string(buf), "\r\n"), longa, nil
	}
}

func (l *LeitorRetorno) encerrar(err error) {
	l.fim = true
	l.err = err
}

func (l *LeitorRetorno) processarLinha(texto string, numero int) (domain.ConfirmacaoParcela, bool) {
	if strings.TrimSpace(texto) == "" {
		return domain.ConfirmacaoParcela{}, false
	}
	linha := []rune(texto)
	if len(linha) < 11 || linha[0] != RegistroDetalhe || linha[10] != 'A' {
		return domain.ConfirmacaoParcela{}, false
	}
	if len(linha) <= posOcorrencia {
		l.ignorar(numero, "segmento A incompleto: "+strconv.Itoa(len(linha))+" posições")
		return domain.ConfirmacaoParcela{}, false
	}

	nossoNumero := strings.TrimSpace(string(linha[posNossoNumeroInicio:posNossoNumeroFim]))
	id, err := strconv.ParseInt(nossoNumero, 10, 64)
	if err != nil || id <= 0 {
		l.ignorar(numero, "nosso número inválido: "+strconv.Quote(nossoNumero))
		return domain.ConfirmacaoParcela{}, false
	}

	if ocorrencia := linha[posOcorrencia]; ocorrencia != ocorrenciaPaga {
		l.logger.Debug("segmento A sem confirmação de pagamento",
			zap.Int("linha", numero),
			zap.Int64("cdParcela", id),
			zap.String("ocorrencia", string(ocorrencia)),
		)
		return domain.ConfirmacaoParcela{}, false
	}

	conf := domain.ConfirmacaoParcela{CdParcela: id, Status: domain.StatusParcelaPaga, Linha: numero}
	if data, err := normalize.ParseDateCNAB(string(linha[posDataRealInicio:posDataRealFim])); err == nil {
		conf.DataPagamento = data.Format(normalize.LayoutDataBR)
	}
	return conf, true
}

func (l *LeitorRetorno) ignorar(numero int, motivo string) {
	l.resumo.LinhasIgnoradas = append(l.resumo.LinhasIgnoradas, domain.LinhaIgnorada{Linha: numero, Motivo: motivo})
	l.logger.Warn("linha do retorno ignorada", zap.Int("linha", numero), zap.String("motivo", motivo))
}

// DecodeRetorno lê o arquivo inteiro e devolve apenas o resumo.
func DecodeRetorno(ctx context.Context, r io.Reader, logger *zap.Logger) (domain.ResumoRetorno, error) {
	leitor := NovoLeitorRetorno(ctx, r, logger)
	for leitor.Next() {
	}
	return leitor.Resumo(), leitor.Err()
}
