package consignacao

import (
	"context"
	"fmt"

	"github.com/consigna/estoque-api/internal/application/dto"
	"github.com/consigna/estoque-api/internal/domain"
	"github.com/consigna/estoque-api/internal/domain/repository"
)

// ValidarFaturamentoUseCase é a checagem consultiva de saldo antes de um
// faturamento externo. Nunca muta o razão: a checagem autoritativa acontece
// de novo no motor de conciliação no momento da dedução, fechando a janela
// check-then-act entre validação e venda.
type ValidarFaturamentoUseCase struct {
	estoqueRepo repository.EstoqueRepository
}

// NewValidarFaturamentoUseCase constrói o caso de uso.
func NewValidarFaturamentoUseCase(estoqueRepo repository.EstoqueRepository) *ValidarFaturamentoUseCase {
	return &ValidarFaturamentoUseCase{estoqueRepo: estoqueRepo}
}

// Validar verifica, linha a linha, se o saldo disponível somado entre todas as
// NFs de saída do destinatário cobre a quantidade solicitada. Sucesso apenas
// quando nenhuma linha ficou deficiente; sucesso parcial não existe.
func (uc *ValidarFaturamentoUseCase) Validar(ctx context.Context, cnpjDestinatario string, itens []dto.ItemFaturamentoRequest) (*dto.ValidarFaturamentoResponse, error) {
	if cnpjDestinatario == "" || len(itens) == 0 {
		return nil, domain.ErrInvalidInput
	}

	erros := make([]dto.ErroFaturamentoResponse, 0)
	for _, item := range itens {
		saldo, err := uc.estoqueRepo.SomarSaldo(ctx, cnpjDestinatario, item.CodigoProduto, item.NumeroLote)
		if err != nil {
			return nil, err
		}
		if saldo.LessThan(item.Quantidade) {
			lote := "sem lote"
			if item.NumeroLote != nil {
				lote = *item.NumeroLote
			}
			erros = append(erros, dto.ErroFaturamentoResponse{
				CodigoProduto:        item.CodigoProduto,
				NumeroLote:           item.NumeroLote,
				QuantidadeSolicitada: item.Quantidade,
				SaldoDisponivel:      saldo,
				Mensagem: fmt.Sprintf("produto %s (lote: %s) não possui saldo suficiente para faturamento no destinatário %s",
					item.CodigoProduto, lote, cnpjDestinatario),
			})
		}
	}
	return &dto.ValidarFaturamentoResponse{Sucesso: len(erros) == 0, Erros: erros}, nil
}
