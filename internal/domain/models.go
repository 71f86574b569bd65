// package domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Centavos representa um valor monetário em centavos. Nenhum valor financeiro
// trafega como ponto flutuante dentro do serviço.
type Centavos int64

// Decimal converte o valor para reais com duas casas.
func (c Centavos) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

func (c Centavos) String() string {
	return c.Decimal().StringFixed(2)
}

// MarshalJSON emite o valor como número decimal (402.52), formato esperado pelo dashboard.
func (c Centavos) MarshalJSON() ([]byte, error) {
	return []byte(c.Decimal().StringFixed(2)), nil
}

// Banco identifica a instituição que emitiu um comprovante.
type Banco string

// Bancos reconhecidos pelo classificador de comprovantes.
const (
	BancoItau         Banco = "ITAU"
	BancoBradesco     Banco = "BRADESCO"
	BancoSantander    Banco = "SANTANDER"
	BancoDoBrasil     Banco = "BANCO_DO_BRASIL"
	BancoDesconhecido Banco = "DESCONHECIDO"
)

// Codigo retorna o código de compensação do banco ou "" quando desconhecido.
func (b Banco) Codigo() string {
	switch b {
	case BancoItau:
		return "341"
	case BancoBradesco:
		return "237"
	case BancoSantander:
		return "033"
	case BancoDoBrasil:
		return "001"
	}
	return ""
}

// TipoDocumento define o tipo de comprovante.
type TipoDocumento string

// Tipos de documento suportados.
const (
	TipoBoleto        TipoDocumento = "BOLETO"
	TipoTED           TipoDocumento = "TED"
	TipoTransferencia TipoDocumento = "TRANSFERENCIA"
	TipoDOC           TipoDocumento = "DOC"
)

// TipoConta define o tipo da conta bancária de origem ou destino.
type TipoConta string

const (
	ContaCorrente TipoConta = "CORRENTE"
	ContaPoupanca TipoConta = "POUPANCA"
)

// Codigo retorna o código do tipo de conta usado no arquivo CNAB.
func (t TipoConta) Codigo() string {
	if t == ContaPoupanca {
		return "2"
	}
	return "1"
}

// NomesBancos relaciona códigos de compensação aos nomes usados no header do arquivo
// e na resolução de bancos informados por nome nas planilhas.
var NomesBancos = map[string]string{
	"001": "BANCO DO BRASIL",
	"033": "SANTANDER",
	"041": "BANRISUL",
	"070": "BRB",
	"077": "BANCO INTER",
	"104": "CAIXA ECONOMICA FEDERAL",
	"208": "BTG PACTUAL",
	"237": "BRADESCO",
	"260": "NUBANK",
	"336": "C6 BANK",
	"341": "ITAU UNIBANCO",
	"422": "SAFRA",
	"748": "SICREDI",
	"756": "SICOOB",
}

// --- Modelos de comprovantes ---

// PagamentoBoleto é o registro estruturado extraído do texto de um comprovante.
// Todos os campos são opcionais, exceto o tipo de documento: a extração é
// best-effort e um campo ausente simplesmente não foi encontrado.
type PagamentoBoleto struct {
	CodigoBanco           string        `json:"codigoBanco,omitempty"`
	TipoDocumento         TipoDocumento `json:"tipoDocumento"`
	Agencia               string        `json:"agencia,omitempty"`
	Conta                 string        `json:"conta,omitempty"`
	NomePagador           string        `json:"nomePagador,omitempty"`
	NomeBeneficiario      string        `json:"nomeBeneficiario,omitempty"`
	DocumentoBeneficiario string        `json:"documentoBeneficiario,omitempty"`
	LinhaDigitavel        string        `json:"linhaDigitavel,omitempty"`
	DataVencimento        string        `json:"dataVencimento,omitempty"`
	DataPagamento         string        `json:"dataPagamento,omitempty"`
	ValorDocumento        *Centavos     `json:"valorDocumento,omitempty"`
	ValorCobrado          *Centavos     `json:"valorCobrado,omitempty"`

	// Campos exclusivos de TED.
	BancoDestino        string `json:"bancoDestino,omitempty"`
	ISPBDestino         string `json:"ispbDestino,omitempty"`
	AgenciaDestino      string `json:"agenciaDestino,omitempty"`
	ContaDestino        string `json:"contaDestino,omitempty"`
	Finalidade          string `json:"finalidade,omitempty"`
	NumeroControle      string `json:"numeroControle,omitempty"`
	DataHoraSolicitacao string `json:"dataHoraSolicitacao,omitempty"`
}

// ResultadoComprovante é o envelope devolvido pelo processamento de um comprovante.
type ResultadoComprovante struct {
	Sucesso         bool             `json:"sucesso"`
	Dados           *PagamentoBoleto `json:"dados,omitempty"`
	BancoDetectado  Banco            `json:"bancoDetectado,omitempty"`
	TipoDocumento   TipoDocumento    `json:"tipoDocumento,omitempty"`
	IDProcessamento string           `json:"idProcessamento,omitempty"`
	Erro            string           `json:"erro,omitempty"`
}

// --- Modelos CNAB240 ---

// EmpresaCNAB é o perfil da empresa remetente. Um por arquivo.
type EmpresaCNAB struct {
	Nome      string
	CNPJ      string
	Banco     string
	Agencia   string
	Conta     string
	TipoConta TipoConta
}

// ParcelaCNAB é uma parcela a pagar, fornecida pelo chamador ao gerador de remessa.
type ParcelaCNAB struct {
	ID                  int64
	Valor               Centavos
	Vencimento          time.Time
	NomeFavorecido      string
	DocumentoFavorecido string
	Banco               string
	Agencia             string
	Conta               string
	TipoConta           TipoConta
	Finalidade          string
	NossoNumero         string
}

// StatusParcela é o status reportado para uma parcela confirmada no retorno.
type StatusParcela string

// StatusParcelaPaga indica pagamento confirmado pelo banco (ocorrência '0').
const StatusParcelaPaga StatusParcela = "PAID"

// ConfirmacaoParcela é emitida para cada segmento A pago reconhecido no arquivo de retorno.
type ConfirmacaoParcela struct {
	CdParcela     int64         `json:"cdParcela"`
	Status        StatusParcela `json:"status"`
	DataPagamento string        `json:"dataPagamento,omitempty"` // data real da efetivação, quando o banco informa
	Linha         int           `json:"linha"`
}

// LinhaIgnorada registra uma linha do retorno que não pôde ser aproveitada.
type LinhaIgnorada struct {
	Linha  int    `json:"linha"`
	Motivo string `json:"motivo"`
}

// ResumoRetorno consolida a leitura completa de um arquivo de retorno.
type ResumoRetorno struct {
	TotalLinhas         int                  `json:"totalLinhas"`
	TotalProcessadas    int                  `json:"totalProcessadas"`
	ParcelasProcessadas []ConfirmacaoParcela `json:"parcelasProcessadas"`
	LinhasIgnoradas     []LinhaIgnorada      `json:"linhasIgnoradas,omitempty"`
	Interrompido        bool                 `json:"interrompido,omitempty"`
}
