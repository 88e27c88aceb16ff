package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EstoqueConsignacao é o registro de saldo consignado por
// (produto, lote, destinatário), escopado à NF de saída que o criou.
// Invariante: SaldoDisponivel = QuantidadeConsignada - QuantidadeRetornada -
// QuantidadeFaturada, e nunca negativo.
type EstoqueConsignacao struct {
	ID                   string
	NFSaidaID            string
	CodigoProduto        string
	DescricaoProduto     string
	NumeroLote           *string
	CNPJDestinatario     string
	NomeDestinatario     string
	QuantidadeConsignada decimal.Decimal
	QuantidadeRetornada  decimal.Decimal
	QuantidadeFaturada   decimal.Decimal
	SaldoDisponivel      decimal.Decimal
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// RecalcularSaldo reaplica a fórmula do saldo a partir das quantidades acumuladas.
func (e *EstoqueConsignacao) RecalcularSaldo() {
	e.SaldoDisponivel = e.QuantidadeConsignada.Sub(e.QuantidadeRetornada).Sub(e.QuantidadeFaturada)
}
