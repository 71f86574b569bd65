package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"pagamentos-service/internal/domain"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Port             string
	AppEnv           string
	MaxUploadBytes   int64
	Empresa          domain.EmpresaCNAB
	SequenciaInicial int
	PdftotextPath    string
}

// Load lê o .env, quando existir, e as variáveis de ambiente.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Print("Arquivo .env não encontrado, prosseguindo com variáveis de ambiente")
	}

	tipoConta := domain.ContaCorrente
	if strings.HasPrefix(strings.ToUpper(getenv("EMPRESA_TIPO_CONTA", "CORRENTE")), "POUP") {
		tipoConta = domain.ContaPoupanca
	}

	return &Config{
		Port:           getenv("SERVER_PORT", "8084"),
		AppEnv:         getenv("APP_ENV", "production"),
		MaxUploadBytes: int64(getenvInt("MAX_UPLOAD_MB", 10)) << 20,
		Empresa: domain.EmpresaCNAB{
			Nome:      getenv("EMPRESA_NOME", ""),
			CNPJ:      getenv("EMPRESA_CNPJ", ""),
			Banco:     getenv("EMPRESA_BANCO", "341"),
			Agencia:   getenv("EMPRESA_AGENCIA", ""),
			Conta:     getenv("EMPRESA_CONTA", ""),
			TipoConta: tipoConta,
		},
		SequenciaInicial: getenvInt("CNAB_SEQUENCIA_INICIAL", 1),
		PdftotextPath:    getenv("PDFTOTEXT_PATH", ""),
	}
}

// NewLogger cria o logger do processo conforme APP_ENV.
func (c *Config) NewLogger() (*zap.Logger, error) {
	if c.AppEnv == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v, err := strconv.Atoi(getenv(k, ""))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
