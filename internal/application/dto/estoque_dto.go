package dto

import "github.com/shopspring/decimal"

// ProcessarXMLRequest body para POST /api/estoque/processar-xml.
type ProcessarXMLRequest struct {
	XMLContent string `json:"xml_content"`
}

// DadosNFeResponse cabeçalho extraído da NF-e, ecoado na resposta de processamento.
type DadosNFeResponse struct {
	NumeroNF         string            `json:"numero_nf"`
	Serie            string            `json:"serie"`
	ChaveAcesso      string            `json:"chave_acesso"`
	CNPJDestinatario string            `json:"cnpj_destinatario"`
	NomeDestinatario string            `json:"nome_destinatario"`
	CFOP             string            `json:"cfop"`
	DataEmissao      string            `json:"data_emissao"`
	Itens            []ItemNFeResponse `json:"itens"`
}

// ItemNFeResponse linha de produto extraída da NF-e.
type ItemNFeResponse struct {
	CodigoProduto    string          `json:"codigo_produto"`
	DescricaoProduto string          `json:"descricao_produto"`
	NumeroLote       *string         `json:"numero_lote"`
	Quantidade       decimal.Decimal `json:"quantidade"`
	ValorUnitario    decimal.Decimal `json:"valor_unitario"`
	ValorTotal       decimal.Decimal `json:"valor_total"`
}

// ProcessarXMLResponse resultado do processamento de uma NF-e.
type ProcessarXMLResponse struct {
	Sucesso          bool             `json:"sucesso"`
	NFeID            string           `json:"nfe_id"`
	TipoOperacao     string           `json:"tipo_operacao"`
	ItensProcessados int              `json:"itens_processados"`
	DadosNFe         DadosNFeResponse `json:"dados_nfe"`
}

// ResumoEstoqueResponse agregados do razão de consignação.
type ResumoEstoqueResponse struct {
	TotalProdutos        int             `json:"total_produtos"`
	TotalDestinatarios   int             `json:"total_destinatarios"`
	SaldoTotalDisponivel decimal.Decimal `json:"saldo_total_disponivel"`
	ProdutosSaldoBaixo   int             `json:"produtos_saldo_baixo"`
}

// SaldoNFResponse saldo de consignação de uma NF de saída.
type SaldoNFResponse struct {
	CodigoProduto        string          `json:"codigo_produto"`
	DescricaoProduto     string          `json:"descricao_produto"`
	NumeroLote           *string         `json:"numero_lote"`
	CNPJDestinatario     string          `json:"cnpj_destinatario,omitempty"`
	NomeDestinatario     string          `json:"nome_destinatario,omitempty"`
	QuantidadeConsignada decimal.Decimal `json:"quantidade_consignada_nf"`
	QuantidadeRetornada  decimal.Decimal `json:"quantidade_retornada_nf"`
	QuantidadeFaturada   decimal.Decimal `json:"quantidade_faturada_nf"`
	SaldoDisponivel      decimal.Decimal `json:"saldo_disponivel_nf"`
	NFSaidaNumero        string          `json:"nf_saida_numero"`
	NFSaidaDataEmissao   string          `json:"nf_saida_data_emissao"`
}

// SaldosResponse lista de saldos por destinatário ou por produto.
type SaldosResponse struct {
	Saldos []SaldoNFResponse `json:"saldos"`
}

// ItemFaturamentoRequest linha solicitada na validação de faturamento.
type ItemFaturamentoRequest struct {
	CodigoProduto string          `json:"codigo_produto"`
	NumeroLote    *string         `json:"numero_lote"`
	Quantidade    decimal.Decimal `json:"quantidade"`
}

// ValidarFaturamentoRequest body para POST /api/estoque/validar-faturamento.
type ValidarFaturamentoRequest struct {
	CNPJDestinatario string                   `json:"cnpj_destinatario"`
	Itens            []ItemFaturamentoRequest `json:"itens"`
}

// ErroFaturamentoResponse deficiência de saldo de uma linha solicitada.
type ErroFaturamentoResponse struct {
	CodigoProduto        string          `json:"codigo_produto"`
	NumeroLote           *string         `json:"numero_lote"`
	QuantidadeSolicitada decimal.Decimal `json:"quantidade_solicitada"`
	SaldoDisponivel      decimal.Decimal `json:"saldo_disponivel"`
	Mensagem             string          `json:"mensagem"`
}

// ValidarFaturamentoResponse resultado da validação. Sucesso só quando
// nenhuma linha ficou deficiente; não existe sucesso parcial.
type ValidarFaturamentoResponse struct {
	Sucesso bool                      `json:"sucesso"`
	Erros   []ErroFaturamentoResponse `json:"erros"`
}

// SincronizarRequest body para POST /api/estoque/sincronizar-maino.
type SincronizarRequest struct {
	DiasAtras int `json:"dias_atras"`
}

// SincronizarResponse resultado da sincronização em lote com o Mainô.
// Erros por documento não abortam o lote: são acumulados aqui.
type SincronizarResponse struct {
	Sucesso         bool     `json:"sucesso"`
	XMLsEncontrados int      `json:"xmls_encontrados"`
	XMLsProcessados int      `json:"xmls_processados"`
	NFesSaida       int      `json:"nfes_saida"`
	NFesEntrada     int      `json:"nfes_entrada"`
	Erros           []string `json:"erros"`
}

// StatusIntegracaoResponse estado da integração com o Mainô.
type StatusIntegracaoResponse struct {
	IntegracaoConfigurada bool   `json:"integracao_configurada"`
	ConexaoAPI            bool   `json:"conexao_api"`
	Erro                  string `json:"erro,omitempty"`
}
