package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/consigna/estoque-api/internal/domain/entity"
)

// SaldoNFResult é a projeção de um registro de consignação com os metadados
// da NF de saída que o originou (junção para exibição, fora do caminho crítico).
type SaldoNFResult struct {
	CodigoProduto        string
	DescricaoProduto     string
	NumeroLote           *string
	CNPJDestinatario     string
	NomeDestinatario     string
	QuantidadeConsignada decimal.Decimal
	QuantidadeRetornada  decimal.Decimal
	QuantidadeFaturada   decimal.Decimal
	SaldoDisponivel      decimal.Decimal
	NFSaidaNumero        string
	NFSaidaDataEmissao   time.Time
}

// ResumoResult agrega o estado do razão de consignação.
type ResumoResult struct {
	TotalProdutos        int
	TotalDestinatarios   int
	SaldoTotalDisponivel decimal.Decimal
	ProdutosSaldoBaixo   int
}

// EstoqueRepository define o porto de persistência do razão de consignação.
// Os registros são escopados por NF de saída: GetForUpdate localiza a linha
// exata (nf_saida_id, produto, lote, destinatário) e a bloqueia para escrita.
type EstoqueRepository interface {
	Create(ctx context.Context, e *entity.EstoqueConsignacao) error
	// GetForUpdate bloqueia a linha (SELECT FOR UPDATE) e a devolve, ou nil se
	// não existir. Lote nulo casa apenas com lote nulo (IS NOT DISTINCT FROM).
	GetForUpdate(ctx context.Context, nfSaidaID, codigoProduto string, numeroLote *string, cnpjDestinatario string) (*entity.EstoqueConsignacao, error)
	Update(ctx context.Context, e *entity.EstoqueConsignacao) error
	// SomarSaldo soma o saldo disponível de todas as NFs de saída para
	// (destinatário, produto, lote). Leitura consultiva do validador de faturamento.
	SomarSaldo(ctx context.Context, cnpjDestinatario, codigoProduto string, numeroLote *string) (decimal.Decimal, error)
	ListarPorDestinatario(ctx context.Context, cnpj string) ([]*SaldoNFResult, error)
	ListarPorProduto(ctx context.Context, codigoProduto string) ([]*SaldoNFResult, error)
	// Resumo calcula os agregados do razão; saldoBaixoLimite delimita a faixa
	// 0 < saldo < limite contada em ProdutosSaldoBaixo.
	Resumo(ctx context.Context, saldoBaixoLimite decimal.Decimal) (*ResumoResult, error)
}
