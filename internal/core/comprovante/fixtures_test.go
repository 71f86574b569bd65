package comprovante

const textoItauBoleto = `Banco Itaú - Comprovante de Pagamento de boleto
Identificação no extrato: SISPAG FORNECEDORES
Dados da conta debitada:
Nome: TRANSMISSORA ENERGIA SA
Agência: 1234 Conta: 56789-0
Dados do pagamento
Beneficiário: FORNECEDOR ELETRICO LTDA
CPF/CNPJ do beneficiário: 12.345.678/0001-95
Código de barras: 34191.09008 76543.210014 23456.780009 8 97450000040252
Data de vencimento: 10/05/2024
Valor do boleto (R$): 402,52
(-) Desconto (R$): 0,00
(+)Mora/Multa (R$): 0,00
(=) Valor do pagamento (R$): 412,52
Data de pagamento: 02/05/2024
Autenticação mecânica: 1A2B3C4D5E6F`

const textoItauTED = `Banco Itaú
Comprovante de transferência
TED C - outra titularidade
Dados da conta debitada
Nome: TRANSMISSORA ENERGIA SA
Agência: 1234 Conta: 56789-0
Dados da TED
Nome do favorecido: FORNECEDOR ELETRICO LTDA
CPF/CNPJ: 12.345.678/0001-95
Banco: 237 - BANCO BRADESCO S.A.
ISPB: 60746948
Agência: 0001
Conta corrente: 12345-6
Valor: R$ 1.500,00
Finalidade: 10 - Crédito em conta
Data da transferência: 02/05/2024
Número de controle: 0123456789ABC
Transferência efetuada em 02/05/2024 às 10:15:32 via SISPAG`

// Texto do Bradesco como sai do extrator de PDF: sem espaços entre palavras nos rótulos.
const textoBradescoBoleto = `Bradesco
Comprovante de Transação Bancária
Boleto de Cobrança
Datadaoperação: 02/05/2024
Agência: 9999 | Conta: 11111-1
Conta de débito: Agência: 1234 | Conta: 0056789-0 | Tipo: Conta-Corrente
Empresa: TRANSMISSORA ENERGIA SA | CNPJ: 11.222.333/0001-81
Códigodebarras: 23790.12345 60000.000004 12000.123405 1 97450000040252
Beneficiário: FORNECEDOR ELETRICO LTDA
CNPJ/CPF: 12.345.678/0001-95
Datadevencimento: 10/05/2024
(=)Valordodocumento:402,52
(-)Desconto/Abatimento:0,00
(=)Valorcobrado:402,52
Datadedébito: 02/05/2024`

const textoBradescoTED = `Bradesco
Comprovante de Transação Bancária
Transferência entre bancos - TED
Data da operação: 02/05/2024 - 10:15
Conta de débito: Agência: 1234 | Conta: 0056789-0 | Tipo: Conta-Corrente
Empresa: TRANSMISSORA ENERGIA SA | CNPJ: 11.222.333/0001-81
Dados da TED
Favorecido: OFICINA CENTRAL LTDA
CPF/CNPJ: 98.765.432/0001-10
Banco: 001 - BANCO DO BRASIL S.A.
ISPB: 00000000
Agência: 3210-9
Conta: 12345-6
Valor: R$ 2.750,10
Finalidade: Crédito em conta corrente
Nº de controle: TED20240502001
Data/hora da solicitação: 02/05/2024 10:15:32`

const textoBradescoTransferencia = `Bradesco
Comprovante de Transação Bancária
Transferência de conta corrente para conta corrente
Data da operação: 02/05/2024
Conta de débito: Agência: 1234 | Conta: 0056789-0
Empresa: TRANSMISSORA ENERGIA SA
Conta de crédito: Agência: 4321 | Conta: 98765-4
Favorecido: OFICINA CENTRAL LTDA
Valor: R$ 250,00`

const textoBancoDoBrasil = `SISBB - SISTEMA DE INFORMACOES BANCO DO BRASIL
02/05/2024 - BANCO DO BRASIL - 10:15:32
COMPROVANTE DE PAGAMENTO DE TITULOS
AGENCIA: 1234-5  CONTA: 12.345-6
LINHA DIGITAVEL
00190.00009 01234.567004 00000.123456 7 97450000040252
BENEFICIARIO:
FORNECEDOR ELETRICO LTDA
NOME FANTASIA: FORNECEDOR ELETRICO
CNPJ: 12.345.678/0001-95
PAGADOR:
TRANSMISSORA ENERGIA SA
DATA DE VENCIMENTO 10/05/2024
DATA DO PAGAMENTO 02/05/2024
VALOR DO DOCUMENTO 402,52
VALOR COBRADO 402,52
NR.AUTENTICACAO 1.234.567.890.ABC`

const textoGenerico = `Cooperativa de Crédito Regional
Comprovante de pagamento
Pagador: TRANSMISSORA ENERGIA SA
Agência/conta: 0101/55555-5
Beneficiário: FORNECEDOR ELETRICO LTDA
CPF/CNPJ: 12.345.678/0001-95
Vencimento: 10/05/2024
Pago em: 03/05/2024
Valor do documento: R$ 99,90
Valor pago: R$ 99,90`
