package consignacao_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consigna/estoque-api/internal/application/consignacao"
	"github.com/consigna/estoque-api/internal/domain"
	"github.com/consigna/estoque-api/internal/domain/cfop"
	"github.com/consigna/estoque-api/internal/domain/entity"
)

const cnpjTeste = "12345678000199"

func novoMotor(store *memStore, ex consignacao.Extrator) *consignacao.ProcessarNFeUseCase {
	return consignacao.NewProcessarNFeUseCase(&memTxRunner{s: store}, ex)
}

// aplicaSaida ingere uma NF de saída padrão (produto MED001, lote L1, qtd 10)
// e devolve a entidade persistida.
func aplicaSaida(t *testing.T, uc *consignacao.ProcessarNFeUseCase, chave string) *entity.NotaFiscal {
	t.Helper()
	nfe := notaTeste(chave, "5917", cnpjTeste, "", itemTeste("MED001", ptr("L1"), 10))
	resultado, err := uc.Aplicar(context.Background(), nfe)
	require.NoError(t, err)
	require.Equal(t, cfop.SaidaConsignacao, resultado.TipoOperacao)
	return resultado.NFe
}

func TestAplicar_SaidaCriaRegistrosEscopados(t *testing.T) {
	store := &memStore{}
	uc := novoMotor(store, nil)

	nfe := notaTeste(chaveTeste(1), "5917", cnpjTeste, "",
		itemTeste("MED001", ptr("L1"), 10),
		itemTeste("MED002", nil, 5),
	)
	resultado, err := uc.Aplicar(context.Background(), nfe)
	require.NoError(t, err)
	assert.Equal(t, 2, resultado.ItensProcessados)
	assert.NotEmpty(t, resultado.NFe.ID)

	require.Len(t, store.nfes, 1)
	require.Len(t, store.itens, 2)
	require.Len(t, store.estoque, 2)

	for _, e := range store.estoque {
		// Escopo por NF de saída: cada registro pertence à NF que o criou
		assert.Equal(t, resultado.NFe.ID, e.NFSaidaID)
		assert.Equal(t, cnpjTeste, e.CNPJDestinatario)
		// Saldo inicial igual à quantidade consignada
		assert.True(t, e.SaldoDisponivel.Equal(e.QuantidadeConsignada))
		assert.True(t, e.QuantidadeRetornada.IsZero())
		assert.True(t, e.QuantidadeFaturada.IsZero())
	}
}

func TestAplicar_RetornoReduzSaldo(t *testing.T) {
	store := &memStore{}
	uc := novoMotor(store, nil)
	saida := aplicaSaida(t, uc, chaveTeste(1))

	retorno := notaTeste(chaveTeste(2), "1918", cnpjTeste, saida.ChaveAcesso,
		itemTeste("MED001", ptr("L1"), 4))
	resultado, err := uc.Aplicar(context.Background(), retorno)
	require.NoError(t, err)
	assert.Equal(t, cfop.Retorno, resultado.TipoOperacao)

	require.Len(t, store.estoque, 1)
	e := store.estoque[0]
	assert.True(t, e.QuantidadeRetornada.Equal(decimal.NewFromInt(4)))
	assert.True(t, e.SaldoDisponivel.Equal(decimal.NewFromInt(6)))
	// Invariante: saldo = consignada - retornada - faturada
	assert.True(t, e.SaldoDisponivel.Equal(
		e.QuantidadeConsignada.Sub(e.QuantidadeRetornada).Sub(e.QuantidadeFaturada)))
}

func TestAplicar_DevolucaoSimbolicaEVendaAcumulam(t *testing.T) {
	store := &memStore{}
	uc := novoMotor(store, nil)
	saida := aplicaSaida(t, uc, chaveTeste(1))

	devolucao := notaTeste(chaveTeste(2), "1919", cnpjTeste, saida.ChaveAcesso,
		itemTeste("MED001", ptr("L1"), 4))
	_, err := uc.Aplicar(context.Background(), devolucao)
	require.NoError(t, err)

	venda := notaTeste(chaveTeste(3), "5114", cnpjTeste, saida.ChaveAcesso,
		itemTeste("MED001", ptr("L1"), 3))
	resultado, err := uc.Aplicar(context.Background(), venda)
	require.NoError(t, err)
	assert.Equal(t, cfop.VendaConsignada, resultado.TipoOperacao)

	e := store.estoque[0]
	assert.True(t, e.QuantidadeRetornada.Equal(decimal.NewFromInt(4)), "devolução simbólica acumula em retornada")
	assert.True(t, e.QuantidadeFaturada.Equal(decimal.NewFromInt(3)))
	assert.True(t, e.SaldoDisponivel.Equal(decimal.NewFromInt(3)))
}

func TestAplicar_DuplicataNaoMuta(t *testing.T) {
	store := &memStore{}
	uc := novoMotor(store, nil)
	saida := aplicaSaida(t, uc, chaveTeste(1))

	// Mesma chave de acesso submetida de novo
	repetida := notaTeste(chaveTeste(1), "5917", cnpjTeste, "", itemTeste("MED001", ptr("L1"), 10))
	_, err := uc.Aplicar(context.Background(), repetida)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNFeDuplicada))

	var dup *domain.DuplicataError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, saida.ID, dup.NFeID, "deve apontar o id da NF-e já existente")
	assert.Equal(t, saida.ChaveAcesso, dup.ChaveAcesso)

	// Nenhuma mutação na segunda submissão
	assert.Len(t, store.nfes, 1)
	assert.Len(t, store.itens, 1)
	assert.Len(t, store.estoque, 1)
}

func TestAplicar_EntradaSemReferenciaRejeitada(t *testing.T) {
	store := &memStore{}
	uc := novoMotor(store, nil)

	retorno := notaTeste(chaveTeste(2), "1918", cnpjTeste, "", itemTeste("MED001", ptr("L1"), 4))
	_, err := uc.Aplicar(context.Background(), retorno)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrReferenciaSaidaAusente))
	assert.Empty(t, store.nfes, "nada persiste quando a referência falta")
}

func TestAplicar_ReferenciaNaoProcessadaRejeitada(t *testing.T) {
	store := &memStore{}
	uc := novoMotor(store, nil)

	retorno := notaTeste(chaveTeste(2), "1918", cnpjTeste, chaveTeste(99), itemTeste("MED001", ptr("L1"), 4))
	_, err := uc.Aplicar(context.Background(), retorno)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEstoqueNaoEncontrado))
	assert.Empty(t, store.nfes)
}

func TestAplicar_LoteNuloNaoCasaComLote(t *testing.T) {
	store := &memStore{}
	uc := novoMotor(store, nil)
	saida := aplicaSaida(t, uc, chaveTeste(1)) // lote L1

	// Lote nulo é chave distinta, não curinga: não encontra o registro de L1
	retorno := notaTeste(chaveTeste(2), "1918", cnpjTeste, saida.ChaveAcesso,
		itemTeste("MED001", nil, 2))
	_, err := uc.Aplicar(context.Background(), retorno)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEstoqueNaoEncontrado))
}

func TestAplicar_SaldoInsuficienteDesfazTudo(t *testing.T) {
	store := &memStore{}
	uc := novoMotor(store, nil)
	saida := aplicaSaida(t, uc, chaveTeste(1)) // saldo 10

	// Dois itens: o primeiro aplicaria, o segundo estoura o saldo.
	// A transação inteira deve ser desfeita, sem aplicação parcial.
	retorno := notaTeste(chaveTeste(2), "1918", cnpjTeste, saida.ChaveAcesso,
		itemTeste("MED001", ptr("L1"), 2),
		itemTeste("MED001", ptr("L1"), 20),
	)
	_, err := uc.Aplicar(context.Background(), retorno)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSaldoInsuficiente))

	assert.Len(t, store.nfes, 1, "a NF de retorno não pode ter sido persistida")
	e := store.estoque[0]
	assert.True(t, e.SaldoDisponivel.Equal(decimal.NewFromInt(10)), "saldo intacto após rollback")
	assert.True(t, e.QuantidadeRetornada.IsZero())
}

func TestAplicar_EscopoPorNFDeSaida(t *testing.T) {
	store := &memStore{}
	uc := novoMotor(store, nil)

	// Duas remessas do mesmo produto/lote/destinatário: 10 e 5 unidades
	aplicaSaida(t, uc, chaveTeste(1))
	saida2 := notaTeste(chaveTeste(2), "5917", cnpjTeste, "", itemTeste("MED001", ptr("L1"), 5))
	_, err := uc.Aplicar(context.Background(), saida2)
	require.NoError(t, err)

	// Retorno de 8 contra a segunda NF (saldo 5) falha, ainda que o saldo
	// agregado do destinatário (15) cobrisse: o razão é escopado por NF
	retorno := notaTeste(chaveTeste(3), "1918", cnpjTeste, saida2.ChaveAcesso,
		itemTeste("MED001", ptr("L1"), 8))
	_, err = uc.Aplicar(context.Background(), retorno)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSaldoInsuficiente))
}

func TestAplicar_NaoClassificadaNaoMovimentaRazao(t *testing.T) {
	store := &memStore{}
	uc := novoMotor(store, nil)

	// Saída genérica (5102) e entrada genérica (1102): documento guardado
	// para auditoria, razão intocado, sem exigência de referência
	for i, codigo := range []string{"5102", "1102"} {
		nfe := notaTeste(chaveTeste(10+i), codigo, cnpjTeste, "", itemTeste("MED001", nil, 3))
		resultado, err := uc.Aplicar(context.Background(), nfe)
		require.NoError(t, err, "CFOP %s", codigo)
		assert.Equal(t, 1, resultado.ItensProcessados)
	}
	assert.Len(t, store.nfes, 2)
	assert.Len(t, store.itens, 2)
	assert.Empty(t, store.estoque)
}

func TestProcessarXML_ExtraiClassificaEAplica(t *testing.T) {
	store := &memStore{}
	nfe := notaTeste(chaveTeste(1), "5917", cnpjTeste, "", itemTeste("MED001", ptr("L1"), 10))
	nfe.TipoOperacao = "" // a classificação é responsabilidade do motor
	ex := &stubExtrator{porXML: map[string]*entity.NotaFiscal{"xml-saida": nfe}}
	uc := novoMotor(store, ex)

	resultado, err := uc.ProcessarXML(context.Background(), []byte("xml-saida"))
	require.NoError(t, err)
	assert.Equal(t, cfop.SaidaConsignacao, resultado.TipoOperacao)
	assert.Len(t, store.estoque, 1)
}

func TestProcessarXML_ErroDeExtracaoPropaga(t *testing.T) {
	store := &memStore{}
	ex := &stubExtrator{err: &domain.ExtracaoError{Campo: "infNFe"}}
	uc := novoMotor(store, ex)

	_, err := uc.ProcessarXML(context.Background(), []byte("qualquer"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtracao))
	assert.Empty(t, store.nfes)
}
