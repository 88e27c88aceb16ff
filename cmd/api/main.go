package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/consigna/estoque-api/internal/application/consignacao"
	"github.com/consigna/estoque-api/internal/infrastructure/maino"
	"github.com/consigna/estoque-api/internal/infrastructure/nfe"
	"github.com/consigna/estoque-api/internal/infrastructure/postgres"
	httpRouter "github.com/consigna/estoque-api/internal/interfaces/http"
	"github.com/consigna/estoque-api/pkg/config"
	"github.com/consigna/estoque-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicação")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexão ao PostgreSQL")
	}
	defer pool.Close()

	estoqueRepo := postgres.NewEstoqueRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	extrator := nfe.NewExtractor()

	// Cliente Mainô — opcional. Sem credenciais a API sobe normalmente,
	// apenas a sincronização remota fica indisponível.
	var mainoClient consignacao.MainoClient
	if cfg.Maino.Configurada() {
		client, err := maino.NewClient(maino.Config{
			BaseURL:     cfg.Maino.BaseURL,
			APIKey:      cfg.Maino.APIKey,
			BearerToken: cfg.Maino.BearerToken,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("cliente Mainô")
		}
		mainoClient = client
	} else {
		log.Warn().Msg("integração com Mainô não configurada, sincronização desabilitada")
	}

	processarUC := consignacao.NewProcessarNFeUseCase(txRunner, extrator)
	consultaUC := consignacao.NewConsultaEstoqueUseCase(estoqueRepo)
	faturamentoUC := consignacao.NewValidarFaturamentoUseCase(estoqueRepo)
	sincronizarUC := consignacao.NewSincronizarUseCase(mainoClient, processarUC, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Estoque Consignado API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProcessarNFe:       processarUC,
		ConsultaEstoque:    consultaUC,
		ValidarFaturamento: faturamentoUC,
		Sincronizar:        sincronizarUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("desligamento do servidor")
	}

	log.Info().Msg("aplicação encerrada")
}
