package consignacao_test

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/consigna/estoque-api/internal/domain/cfop"
	"github.com/consigna/estoque-api/internal/domain/entity"
	"github.com/consigna/estoque-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dublês de teste: armazém em memória com semântica de transação (snapshot no
// início, restauração em caso de erro). Permite exercer o motor de conciliação
// inteiro, inclusive o rollback, sem PostgreSQL.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	nfes    []*entity.NotaFiscal
	itens   []*entity.ItemNotaFiscal
	estoque []*entity.EstoqueConsignacao
}

func (s *memStore) clone() *memStore {
	c := &memStore{
		nfes:    make([]*entity.NotaFiscal, len(s.nfes)),
		itens:   make([]*entity.ItemNotaFiscal, len(s.itens)),
		estoque: make([]*entity.EstoqueConsignacao, len(s.estoque)),
	}
	copy(c.nfes, s.nfes)
	copy(c.itens, s.itens)
	copy(c.estoque, s.estoque)
	return c
}

// memTxRunner implementa consignacao.TxRunner sobre o memStore.
// Em caso de erro do callback, o estado anterior é restaurado por inteiro.
type memTxRunner struct {
	s *memStore
}

func (r *memTxRunner) Run(ctx context.Context, fn func(
	nfeRepo repository.NotaFiscalRepository,
	estoqueRepo repository.EstoqueRepository,
) error) error {
	snapshot := r.s.clone()
	if err := fn(&memNFeRepo{s: r.s}, &memEstoqueRepo{s: r.s}); err != nil {
		*r.s = *snapshot
		return err
	}
	return nil
}

type memNFeRepo struct {
	s *memStore
}

func (r *memNFeRepo) Create(_ context.Context, nfe *entity.NotaFiscal) error {
	if nfe.ID == "" {
		nfe.ID = uuid.New().String()
	}
	guardada := *nfe
	guardada.Itens = nil
	r.s.nfes = append(r.s.nfes, &guardada)
	return nil
}

func (r *memNFeRepo) CreateItem(_ context.Context, item *entity.ItemNotaFiscal) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	guardado := *item
	r.s.itens = append(r.s.itens, &guardado)
	return nil
}

func (r *memNFeRepo) GetByID(_ context.Context, id string) (*entity.NotaFiscal, error) {
	for _, n := range r.s.nfes {
		if n.ID == id {
			c := *n
			return &c, nil
		}
	}
	return nil, fmt.Errorf("nota fiscal %s não encontrada", id)
}

func (r *memNFeRepo) GetByChaveAcesso(_ context.Context, chave string) (*entity.NotaFiscal, error) {
	for _, n := range r.s.nfes {
		if n.ChaveAcesso == chave {
			c := *n
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memNFeRepo) GetSaidaByChaveAcesso(_ context.Context, chave string) (*entity.NotaFiscal, error) {
	for _, n := range r.s.nfes {
		if n.ChaveAcesso == chave && n.TipoOperacao == cfop.SaidaConsignacao {
			c := *n
			return &c, nil
		}
	}
	return nil, nil
}

type memEstoqueRepo struct {
	s *memStore
}

func (r *memEstoqueRepo) Create(_ context.Context, e *entity.EstoqueConsignacao) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	guardado := *e
	r.s.estoque = append(r.s.estoque, &guardado)
	return nil
}

func (r *memEstoqueRepo) GetForUpdate(_ context.Context, nfSaidaID, codigoProduto string, numeroLote *string, cnpjDestinatario string) (*entity.EstoqueConsignacao, error) {
	for _, e := range r.s.estoque {
		if e.NFSaidaID == nfSaidaID && e.CodigoProduto == codigoProduto &&
			loteIgual(e.NumeroLote, numeroLote) && e.CNPJDestinatario == cnpjDestinatario {
			c := *e
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memEstoqueRepo) Update(_ context.Context, e *entity.EstoqueConsignacao) error {
	for i, atual := range r.s.estoque {
		if atual.ID == e.ID {
			guardado := *e
			r.s.estoque[i] = &guardado
			return nil
		}
	}
	return fmt.Errorf("estoque %s não encontrado", e.ID)
}

func (r *memEstoqueRepo) SomarSaldo(_ context.Context, cnpjDestinatario, codigoProduto string, numeroLote *string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range r.s.estoque {
		if e.CNPJDestinatario == cnpjDestinatario && e.CodigoProduto == codigoProduto && loteIgual(e.NumeroLote, numeroLote) {
			total = total.Add(e.SaldoDisponivel)
		}
	}
	return total, nil
}

func (r *memEstoqueRepo) ListarPorDestinatario(_ context.Context, cnpj string) ([]*repository.SaldoNFResult, error) {
	return r.listar(func(e *entity.EstoqueConsignacao) bool { return e.CNPJDestinatario == cnpj }), nil
}

func (r *memEstoqueRepo) ListarPorProduto(_ context.Context, codigoProduto string) ([]*repository.SaldoNFResult, error) {
	return r.listar(func(e *entity.EstoqueConsignacao) bool { return e.CodigoProduto == codigoProduto }), nil
}

func (r *memEstoqueRepo) listar(match func(*entity.EstoqueConsignacao) bool) []*repository.SaldoNFResult {
	var results []*repository.SaldoNFResult
	for _, e := range r.s.estoque {
		if !match(e) {
			continue
		}
		row := &repository.SaldoNFResult{
			CodigoProduto:        e.CodigoProduto,
			DescricaoProduto:     e.DescricaoProduto,
			NumeroLote:           e.NumeroLote,
			CNPJDestinatario:     e.CNPJDestinatario,
			NomeDestinatario:     e.NomeDestinatario,
			QuantidadeConsignada: e.QuantidadeConsignada,
			QuantidadeRetornada:  e.QuantidadeRetornada,
			QuantidadeFaturada:   e.QuantidadeFaturada,
			SaldoDisponivel:      e.SaldoDisponivel,
		}
		for _, n := range r.s.nfes {
			if n.ID == e.NFSaidaID {
				row.NFSaidaNumero = n.NumeroNF
				row.NFSaidaDataEmissao = n.DataEmissao
				break
			}
		}
		results = append(results, row)
	}
	return results
}

func (r *memEstoqueRepo) Resumo(_ context.Context, saldoBaixoLimite decimal.Decimal) (*repository.ResumoResult, error) {
	produtos := map[string]bool{}
	destinatarios := map[string]bool{}
	res := &repository.ResumoResult{SaldoTotalDisponivel: decimal.Zero}
	for _, e := range r.s.estoque {
		produtos[e.CodigoProduto] = true
		destinatarios[e.CNPJDestinatario] = true
		res.SaldoTotalDisponivel = res.SaldoTotalDisponivel.Add(e.SaldoDisponivel)
		if e.SaldoDisponivel.IsPositive() && e.SaldoDisponivel.LessThan(saldoBaixoLimite) {
			res.ProdutosSaldoBaixo++
		}
	}
	res.TotalProdutos = len(produtos)
	res.TotalDestinatarios = len(destinatarios)
	return res, nil
}

func loteIgual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// stubExtrator devolve entidades pré-fabricadas por conteúdo de XML.
type stubExtrator struct {
	porXML map[string]*entity.NotaFiscal
	err    error
}

func (s *stubExtrator) Extrair(xmlContent []byte) (*entity.NotaFiscal, error) {
	if s.err != nil {
		return nil, s.err
	}
	nfe, ok := s.porXML[string(xmlContent)]
	if !ok {
		return nil, fmt.Errorf("stub: XML não mapeado: %q", string(xmlContent))
	}
	// Cópia para que cada chamada devolva uma entidade independente
	c := *nfe
	c.Itens = nil
	for _, item := range nfe.Itens {
		ci := *item
		c.Itens = append(c.Itens, &ci)
	}
	return &c, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Construtores de entidades de teste
// ──────────────────────────────────────────────────────────────────────────────

func chaveTeste(n int) string {
	return fmt.Sprintf("%044d", n)
}

func notaTeste(chave, cfopCodigo, cnpj, chaveRef string, itens ...*entity.ItemNotaFiscal) *entity.NotaFiscal {
	return &entity.NotaFiscal{
		NumeroNF:         "NF-" + chave[40:],
		Serie:            "1",
		ChaveAcesso:      chave,
		CNPJDestinatario: cnpj,
		NomeDestinatario: "Destinatário Teste",
		CFOP:             cfopCodigo,
		TipoOperacao:     cfop.Classificar(cfopCodigo),
		ChaveNFSaidaRef:  chaveRef,
		Itens:            itens,
	}
}

func itemTeste(codigo string, lote *string, quantidade int64) *entity.ItemNotaFiscal {
	return &entity.ItemNotaFiscal{
		CodigoProduto:    codigo,
		DescricaoProduto: "Produto " + codigo,
		NumeroLote:       lote,
		Quantidade:       decimal.NewFromInt(quantidade),
		ValorUnitario:    decimal.NewFromInt(10),
		ValorTotal:       decimal.NewFromInt(10 * quantidade),
	}
}

func ptr(s string) *string { return &s }
