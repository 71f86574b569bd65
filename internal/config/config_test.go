package config

import (
	"testing"

	"pagamentos-service/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"SERVER_PORT", "APP_ENV", "MAX_UPLOAD_MB", "EMPRESA_BANCO", "EMPRESA_TIPO_CONTA", "CNAB_SEQUENCIA_INICIAL"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	require.Equal(t, "8084", cfg.Port)
	require.Equal(t, "production", cfg.AppEnv)
	require.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	require.Equal(t, "341", cfg.Empresa.Banco)
	require.Equal(t, domain.ContaCorrente, cfg.Empresa.TipoConta)
	require.Equal(t, 1, cfg.SequenciaInicial)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MAX_UPLOAD_MB", "2")
	t.Setenv("EMPRESA_NOME", "Transmissora")
	t.Setenv("EMPRESA_CNPJ", "11222333000181")
	t.Setenv("EMPRESA_TIPO_CONTA", "poupanca")
	t.Setenv("CNAB_SEQUENCIA_INICIAL", "42")
	t.Setenv("APP_ENV", "development")

	cfg := Load()
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, int64(2<<20), cfg.MaxUploadBytes)
	require.Equal(t, "Transmissora", cfg.Empresa.Nome)
	require.Equal(t, "11222333000181", cfg.Empresa.CNPJ)
	require.Equal(t, domain.ContaPoupanca, cfg.Empresa.TipoConta)
	require.Equal(t, 42, cfg.SequenciaInicial)

	logger, err := cfg.NewLogger()
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestLoadIgnoraInteiroInvalido(t *testing.T) {
	t.Setenv("MAX_UPLOAD_MB", "dez")
	t.Setenv("CNAB_SEQUENCIA_INICIAL", "-3")

	cfg := Load()
	require.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	require.Equal(t, 1, cfg.SequenciaInicial)
}
