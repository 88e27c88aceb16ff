package consignacao

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/consigna/estoque-api/internal/application/dto"
	"github.com/consigna/estoque-api/internal/domain/repository"
)

// saldoBaixoLimite delimita a faixa de saldo baixo do resumo (0 < saldo < 10).
var saldoBaixoLimite = decimal.NewFromInt(10)

// ConsultaEstoqueUseCase visões de leitura sobre o razão de consignação.
// Projeções de conveniência, fora do caminho crítico de consistência.
type ConsultaEstoqueUseCase struct {
	estoqueRepo repository.EstoqueRepository
}

// NewConsultaEstoqueUseCase constrói o caso de uso.
func NewConsultaEstoqueUseCase(estoqueRepo repository.EstoqueRepository) *ConsultaEstoqueUseCase {
	return &ConsultaEstoqueUseCase{estoqueRepo: estoqueRepo}
}

// Resumo devolve os agregados gerais do razão.
func (uc *ConsultaEstoqueUseCase) Resumo(ctx context.Context) (*dto.ResumoEstoqueResponse, error) {
	r, err := uc.estoqueRepo.Resumo(ctx, saldoBaixoLimite)
	if err != nil {
		return nil, err
	}
	return &dto.ResumoEstoqueResponse{
		TotalProdutos:        r.TotalProdutos,
		TotalDestinatarios:   r.TotalDestinatarios,
		SaldoTotalDisponivel: r.SaldoTotalDisponivel,
		ProdutosSaldoBaixo:   r.ProdutosSaldoBaixo,
	}, nil
}

// SaldoPorDestinatario lista os saldos de todas as NFs de saída de um CNPJ.
func (uc *ConsultaEstoqueUseCase) SaldoPorDestinatario(ctx context.Context, cnpj string) (*dto.SaldosResponse, error) {
	rows, err := uc.estoqueRepo.ListarPorDestinatario(ctx, cnpj)
	if err != nil {
		return nil, err
	}
	return montarSaldos(rows), nil
}

// SaldoPorProduto lista os saldos de todas as NFs de saída de um produto.
func (uc *ConsultaEstoqueUseCase) SaldoPorProduto(ctx context.Context, codigoProduto string) (*dto.SaldosResponse, error) {
	rows, err := uc.estoqueRepo.ListarPorProduto(ctx, codigoProduto)
	if err != nil {
		return nil, err
	}
	return montarSaldos(rows), nil
}

func montarSaldos(rows []*repository.SaldoNFResult) *dto.SaldosResponse {
	saldos := make([]dto.SaldoNFResponse, 0, len(rows))
	for _, r := range rows {
		saldos = append(saldos, dto.SaldoNFResponse{
			CodigoProduto:        r.CodigoProduto,
			DescricaoProduto:     r.DescricaoProduto,
			NumeroLote:           r.NumeroLote,
			CNPJDestinatario:     r.CNPJDestinatario,
			NomeDestinatario:     r.NomeDestinatario,
			QuantidadeConsignada: r.QuantidadeConsignada,
			QuantidadeRetornada:  r.QuantidadeRetornada,
			QuantidadeFaturada:   r.QuantidadeFaturada,
			SaldoDisponivel:      r.SaldoDisponivel,
			NFSaidaNumero:        r.NFSaidaNumero,
			NFSaidaDataEmissao:   r.NFSaidaDataEmissao.Format("2006-01-02"),
		})
	}
	return &dto.SaldosResponse{Saldos: saldos}
}
