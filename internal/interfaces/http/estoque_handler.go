package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/consigna/estoque-api/internal/application/consignacao"
	"github.com/consigna/estoque-api/internal/application/dto"
	"github.com/consigna/estoque-api/internal/domain"
)

// EstoqueHandler atende as rotas de estoque consignado.
type EstoqueHandler struct {
	processar   *consignacao.ProcessarNFeUseCase
	consulta    *consignacao.ConsultaEstoqueUseCase
	faturar     *consignacao.ValidarFaturamentoUseCase
	sincronizar *consignacao.SincronizarUseCase
}

// NewEstoqueHandler constrói o handler.
func NewEstoqueHandler(
	processar *consignacao.ProcessarNFeUseCase,
	consulta *consignacao.ConsultaEstoqueUseCase,
	faturar *consignacao.ValidarFaturamentoUseCase,
	sincronizar *consignacao.SincronizarUseCase,
) *EstoqueHandler {
	return &EstoqueHandler{
		processar:   processar,
		consulta:    consulta,
		faturar:     faturar,
		sincronizar: sincronizar,
	}
}

// Teste godoc
// @Summary      Verifica se a API de estoque está no ar
// @Tags         estoque
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/estoque/teste [get]
func (h *EstoqueHandler) Teste(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "message": "API de estoque funcionando"})
}

// ProcessarXML godoc
// @Summary      Processa o XML de uma NF-e e aplica no estoque consignado
// @Tags         estoque
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProcessarXMLRequest  true  "xml_content: XML completo da NF-e"
// @Success      200   {object}  dto.ProcessarXMLResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/estoque/processar-xml [post]
func (h *EstoqueHandler) ProcessarXML(c *fiber.Ctx) error {
	var in dto.ProcessarXMLRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if in.XMLContent == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "conteúdo XML não fornecido"})
	}

	resultado, err := h.processar.ProcessarXML(c.Context(), []byte(in.XMLContent))
	if err != nil {
		return erroProcessamento(c, err)
	}

	nfe := resultado.NFe
	dados := dto.DadosNFeResponse{
		NumeroNF:         nfe.NumeroNF,
		Serie:            nfe.Serie,
		ChaveAcesso:      nfe.ChaveAcesso,
		CNPJDestinatario: nfe.CNPJDestinatario,
		NomeDestinatario: nfe.NomeDestinatario,
		CFOP:             nfe.CFOP,
		DataEmissao:      nfe.DataEmissao.Format("2006-01-02T15:04:05Z07:00"),
	}
	for _, item := range nfe.Itens {
		dados.Itens = append(dados.Itens, dto.ItemNFeResponse{
			CodigoProduto:    item.CodigoProduto,
			DescricaoProduto: item.DescricaoProduto,
			NumeroLote:       item.NumeroLote,
			Quantidade:       item.Quantidade,
			ValorUnitario:    item.ValorUnitario,
			ValorTotal:       item.ValorTotal,
		})
	}
	return c.JSON(dto.ProcessarXMLResponse{
		Sucesso:          true,
		NFeID:            nfe.ID,
		TipoOperacao:     string(resultado.TipoOperacao),
		ItensProcessados: resultado.ItensProcessados,
		DadosNFe:         dados,
	})
}

// Resumo godoc
// @Summary      Resumo agregado do estoque consignado
// @Tags         estoque
// @Produce      json
// @Success      200  {object}  dto.ResumoEstoqueResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/estoque/resumo [get]
func (h *EstoqueHandler) Resumo(c *fiber.Ctx) error {
	resumo, err := h.consulta.Resumo(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resumo)
}

// SaldoDestinatario godoc
// @Summary      Saldos consignados de um destinatário
// @Tags         estoque
// @Produce      json
// @Param        cnpj  path  string  true  "CNPJ do destinatário"
// @Success      200  {object}  dto.SaldosResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/estoque/saldo-destinatario/{cnpj} [get]
func (h *EstoqueHandler) SaldoDestinatario(c *fiber.Ctx) error {
	saldos, err := h.consulta.SaldoPorDestinatario(c.Context(), c.Params("cnpj"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(saldos)
}

// SaldoProduto godoc
// @Summary      Saldos consignados de um produto
// @Tags         estoque
// @Produce      json
// @Param        codigo_produto  path  string  true  "Código do produto"
// @Success      200  {object}  dto.SaldosResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/estoque/saldo-produto/{codigo_produto} [get]
func (h *EstoqueHandler) SaldoProduto(c *fiber.Ctx) error {
	saldos, err := h.consulta.SaldoPorProduto(c.Context(), c.Params("codigo_produto"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(saldos)
}

// ValidarFaturamento godoc
// @Summary      Valida saldo disponível antes de um faturamento externo
// @Description  Checagem consultiva: a dedução real revalida o saldo dentro da transação.
// @Tags         estoque
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidarFaturamentoRequest  true  "CNPJ do destinatário e itens solicitados"
// @Success      200  {object}  dto.ValidarFaturamentoResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/estoque/validar-faturamento [post]
func (h *EstoqueHandler) ValidarFaturamento(c *fiber.Ctx) error {
	var in dto.ValidarFaturamentoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	resultado, err := h.faturar.Validar(c.Context(), in.CNPJDestinatario, in.Itens)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "CNPJ do destinatário e itens são obrigatórios"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(resultado)
}

// SincronizarMaino godoc
// @Summary      Sincroniza NF-es do Mainô para o estoque consignado
// @Description  Baixa os XMLs do período e processa um a um; erros individuais não abortam o lote.
// @Tags         estoque
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SincronizarRequest  true  "dias_atras: janela de busca (padrão 7)"
// @Success      200  {object}  dto.SincronizarResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/estoque/sincronizar-maino [post]
func (h *EstoqueHandler) SincronizarMaino(c *fiber.Ctx) error {
	var in dto.SincronizarRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	resultado, err := h.sincronizar.Sincronizar(c.Context(), in.DiasAtras)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "SYNC_FAILED", Message: err.Error()})
	}
	return c.JSON(resultado)
}

// StatusIntegracao godoc
// @Summary      Estado da integração com o Mainô
// @Tags         estoque
// @Produce      json
// @Success      200  {object}  dto.StatusIntegracaoResponse
// @Router       /api/estoque/status-integracao [get]
func (h *EstoqueHandler) StatusIntegracao(c *fiber.Ctx) error {
	return c.JSON(h.sincronizar.StatusIntegracao(c.Context()))
}

// erroProcessamento mapeia a taxonomia de erros do motor para HTTP.
// Cada rejeição devolve um code estável para branch por máquina, sem
// casamento de strings.
func erroProcessamento(c *fiber.Ctx, err error) error {
	var dup *domain.DuplicataError
	if errors.As(err, &dup) {
		body := fiber.Map{
			"code":    "DUPLICATE_DOCUMENT",
			"message": "NF-e já processada anteriormente",
		}
		// Na corrida contra o índice único o id da NF-e existente não é conhecido.
		if dup.NFeID != "" {
			body["nfe_id"] = dup.NFeID
		}
		return c.Status(fiber.StatusConflict).JSON(body)
	}
	switch {
	case errors.Is(err, domain.ErrExtracao):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "EXTRACTION_ERROR", Message: err.Error()})
	case errors.Is(err, domain.ErrReferenciaSaidaAusente):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "MISSING_SHIPMENT_REFERENCE", Message: err.Error()})
	case errors.Is(err, domain.ErrEstoqueNaoEncontrado):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "UNKNOWN_CONSIGNMENT_ENTRY", Message: err.Error()})
	case errors.Is(err, domain.ErrSaldoInsuficiente):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_BALANCE", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
