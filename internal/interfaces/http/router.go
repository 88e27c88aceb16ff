package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/consigna/estoque-api/internal/application/consignacao"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	ProcessarNFe       *consignacao.ProcessarNFeUseCase
	ConsultaEstoque    *consignacao.ConsultaEstoqueUseCase
	ValidarFaturamento *consignacao.ValidarFaturamentoUseCase
	Sincronizar        *consignacao.SincronizarUseCase
}

// Router registra as rotas da API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	estoque := api.Group("/estoque")
	handler := NewEstoqueHandler(deps.ProcessarNFe, deps.ConsultaEstoque, deps.ValidarFaturamento, deps.Sincronizar)
	estoque.Get("/teste", handler.Teste)
	estoque.Get("/resumo", handler.Resumo)
	estoque.Post("/processar-xml", handler.ProcessarXML)
	estoque.Get("/saldo-destinatario/:cnpj", handler.SaldoDestinatario)
	estoque.Get("/saldo-produto/:codigo_produto", handler.SaldoProduto)
	estoque.Post("/validar-faturamento", handler.ValidarFaturamento)
	estoque.Post("/sincronizar-maino", handler.SincronizarMaino)
	estoque.Get("/status-integracao", handler.StatusIntegracao)
}
