package consignacao_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consigna/estoque-api/internal/application/consignacao"
	"github.com/consigna/estoque-api/internal/domain/cfop"
	"github.com/consigna/estoque-api/internal/domain/entity"
)

func TestResumo_FaixaDeSaldoBaixo(t *testing.T) {
	store := estoqueCom(
		registro("nf-a", "MED001", ptr("L1"), 3),  // saldo baixo (0 < 3 < 10)
		registro("nf-b", "MED002", nil, 50),       // saldo normal
		registro("nf-c", "MED003", ptr("L9"), 0),  // zerado não conta como baixo
	)
	uc := consignacao.NewConsultaEstoqueUseCase(&memEstoqueRepo{s: store})

	resumo, err := uc.Resumo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, resumo.TotalProdutos)
	assert.Equal(t, 1, resumo.TotalDestinatarios)
	assert.True(t, resumo.SaldoTotalDisponivel.Equal(decimal.NewFromInt(53)))
	assert.Equal(t, 1, resumo.ProdutosSaldoBaixo)
}

func TestSaldoPorDestinatario_IncluiMetadadosDaNF(t *testing.T) {
	emissao := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	store := estoqueCom(registro("nf-a", "MED001", ptr("L1"), 5))
	store.estoque[0].NFSaidaID = "nf-a"
	store.nfes = append(store.nfes, &entity.NotaFiscal{
		ID:           "nf-a",
		NumeroNF:     "777",
		TipoOperacao: cfop.SaidaConsignacao,
		DataEmissao:  emissao,
	})
	uc := consignacao.NewConsultaEstoqueUseCase(&memEstoqueRepo{s: store})

	resp, err := uc.SaldoPorDestinatario(context.Background(), cnpjTeste)
	require.NoError(t, err)
	require.Len(t, resp.Saldos, 1)
	assert.Equal(t, "777", resp.Saldos[0].NFSaidaNumero)
	assert.Equal(t, "2024-05-10", resp.Saldos[0].NFSaidaDataEmissao)

	// CNPJ sem registros devolve lista vazia, não erro
	resp, err = uc.SaldoPorDestinatario(context.Background(), "00000000000000")
	require.NoError(t, err)
	assert.Empty(t, resp.Saldos)
}

func TestSaldoPorProduto(t *testing.T) {
	store := estoqueCom(
		registro("nf-a", "MED001", ptr("L1"), 5),
		registro("nf-b", "MED001", ptr("L2"), 3),
		registro("nf-c", "MED002", nil, 9),
	)
	uc := consignacao.NewConsultaEstoqueUseCase(&memEstoqueRepo{s: store})

	resp, err := uc.SaldoPorProduto(context.Background(), "MED001")
	require.NoError(t, err)
	assert.Len(t, resp.Saldos, 2)
}
