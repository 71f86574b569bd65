// cmd/pagamentos/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pagamentos-service/internal/api/handlers"
	"pagamentos-service/internal/api/responses"
	"pagamentos-service/internal/config"
	"pagamentos-service/internal/core/cnab"
	"pagamentos-service/internal/core/comprovante"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatal("Falha ao criar o logger: ", err)
	}
	defer logger.Sync()
	responses.InitLogger(logger)

	cnabService := cnab.NewService(logger, cfg.SequenciaInicial)
	comprovanteService := comprovante.NewService(logger, comprovante.NewLeitorPDF(cfg.PdftotextPath, logger))

	cnabHandler := handlers.NewCnabHandler(cnabService, cfg.Empresa, cfg.MaxUploadBytes, logger)
	comprovanteHandler := handlers.NewComprovanteHandler(comprovanteService, cfg.MaxUploadBytes)

	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxUploadBytes

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/comprovantes/processar", comprovanteHandler.HandleProcessarPDF)
		apiV1.POST("/comprovantes/texto", comprovanteHandler.HandleProcessarTexto)

		apiV1.POST("/cnab/remessa", cnabHandler.HandleGerarRemessa)
		apiV1.POST("/cnab/remessa/planilha", cnabHandler.HandleGerarRemessaPlanilha)
		apiV1.POST("/cnab/retorno", cnabHandler.HandleLerRetorno)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP", "service": "pagamentos-service"})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Printf("🚀 Pagamentos Service (Go) iniciado e escutando na porta %s", cfg.Port)

	select {
	case <-runCtx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			logger.Error("falha ao encerrar o servidor", zap.Error(err))
		}
		log.Print("Pagamentos Service encerrado")
	case err := <-errCh:
		if err != nil {
			log.Fatal("Falha ao iniciar o servidor de pagamentos: ", err)
		}
	}
}
