// Package cfop classifica códigos fiscais de operação (CFOP) nos tipos de
// movimento do ciclo de consignação. Função pura, sem estado e sem acesso a banco.
package cfop

import "strings"

// TipoOperacao é o tipo de movimento derivado do CFOP da NF-e.
type TipoOperacao string

const (
	// SaidaConsignacao remessa de mercadoria em consignação (CFOP 5917/6917).
	SaidaConsignacao TipoOperacao = "SAIDA_CONSIGNACAO"
	// Retorno retorno físico de mercadoria consignada (CFOP 1918/2918).
	Retorno TipoOperacao = "ENTRADA_RETORNO"
	// DevolucaoSimbolica devolução simbólica pré-faturamento (CFOP 1919/2919).
	DevolucaoSimbolica TipoOperacao = "ENTRADA_DEVOLUCAO"
	// VendaConsignada venda de mercadoria que estava consignada (CFOP 5114/6114).
	VendaConsignada TipoOperacao = "ENTRADA_VENDA"
	// EntradaNaoClassificada demais CFOPs de entrada (prefixo 1 ou 2); não movimenta consignação.
	EntradaNaoClassificada TipoOperacao = "ENTRADA_NAO_CLASSIFICADA"
	// SaidaNaoClassificada demais CFOPs de saída (prefixo 5 ou 6); não movimenta consignação.
	SaidaNaoClassificada TipoOperacao = "SAIDA_NAO_CLASSIFICADA"
	// Desconhecido CFOP fora das famílias reconhecidas.
	Desconhecido TipoOperacao = "DESCONHECIDO"
)

// Tabelas de CFOPs do ciclo de consignação (match exato, disjuntas).
var (
	cfopsSaida              = map[string]bool{"5917": true, "6917": true}
	cfopsRetorno            = map[string]bool{"1918": true, "2918": true}
	cfopsDevolucaoSimbolica = map[string]bool{"1919": true, "2919": true}
	cfopsVendaConsignada    = map[string]bool{"5114": true, "6114": true}
)

// Classificar mapeia um CFOP para o TipoOperacao correspondente.
// Total: todo código cai em exatamente um tipo (ou Desconhecido).
func Classificar(codigo string) TipoOperacao {
	codigo = strings.TrimSpace(codigo)
	switch {
	case cfopsSaida[codigo]:
		return SaidaConsignacao
	case cfopsRetorno[codigo]:
		return Retorno
	case cfopsDevolucaoSimbolica[codigo]:
		return DevolucaoSimbolica
	case cfopsVendaConsignada[codigo]:
		return VendaConsignada
	}
	// Fallback por família de prefixo: 1/2 entrada, 5/6 saída.
	if len(codigo) > 0 {
		switch codigo[0] {
		case '1', '2':
			return EntradaNaoClassificada
		case '5', '6':
			return SaidaNaoClassificada
		}
	}
	return Desconhecido
}

// EntradaConsignacao indica se o tipo consome estoque de uma NF de saída
// referenciada (retorno, devolução simbólica ou venda consignada).
func (t TipoOperacao) EntradaConsignacao() bool {
	switch t {
	case Retorno, DevolucaoSimbolica, VendaConsignada:
		return true
	}
	return false
}

// MovimentaConsignacao indica se o tipo altera o razão de consignação.
func (t TipoOperacao) MovimentaConsignacao() bool {
	return t == SaidaConsignacao || t.EntradaConsignacao()
}

// Entrada indica se o tipo pertence à família de entrada (contagem na sincronização).
func (t TipoOperacao) Entrada() bool {
	return t.EntradaConsignacao() || t == EntradaNaoClassificada
}
