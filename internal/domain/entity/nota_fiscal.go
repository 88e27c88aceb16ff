package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/consigna/estoque-api/internal/domain/cfop"
)

// NotaFiscal representa o cabeçalho de uma NF-e processada.
// ChaveAcesso (44 dígitos) é a chave natural de idempotência: cada NF-e
// entra no sistema exatamente uma vez.
type NotaFiscal struct {
	ID               string
	NumeroNF         string
	Serie            string
	ChaveAcesso      string
	CNPJDestinatario string
	NomeDestinatario string
	CFOP             string
	TipoOperacao     cfop.TipoOperacao
	DataEmissao      time.Time // normalizada para UTC
	// ChaveNFSaidaRef é a chave de acesso da NF de saída referenciada (refNFe).
	// Vazia quando o documento não referencia nenhuma NF; obrigatória apenas
	// quando o tipo de operação é entrada de consignação.
	ChaveNFSaidaRef string
	// XMLContent guarda o XML bruto completo para auditoria.
	XMLContent string
	CreatedAt  time.Time

	Itens []*ItemNotaFiscal
}

// ItemNotaFiscal é uma linha de produto da NF-e.
// NumeroLote nulo é um valor de chave válido e distinto ("sem lote"),
// nunca um curinga sobre os demais lotes.
type ItemNotaFiscal struct {
	ID               string
	NotaFiscalID     string
	CodigoProduto    string
	DescricaoProduto string
	NumeroLote       *string
	Quantidade       decimal.Decimal
	ValorUnitario    decimal.Decimal
	ValorTotal       decimal.Decimal
}
