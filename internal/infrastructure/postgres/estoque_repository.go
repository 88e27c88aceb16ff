package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/consigna/estoque-api/internal/domain/entity"
	"github.com/consigna/estoque-api/internal/domain/repository"
)

var _ repository.EstoqueRepository = (*EstoqueRepo)(nil)

// EstoqueRepo implementação de EstoqueRepository sobre PostgreSQL
// (usável com pool ou tx).
type EstoqueRepo struct {
	q Querier
}

// NewEstoqueRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewEstoqueRepository(q Querier) *EstoqueRepo {
	return &EstoqueRepo{q: q}
}

// Create persiste um registro novo de consignação (criado por uma NF de saída).
func (r *EstoqueRepo) Create(ctx context.Context, e *entity.EstoqueConsignacao) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	query := `
		INSERT INTO estoque_consignacao (id, nf_saida_id, codigo_produto, descricao_produto, numero_lote, cnpj_destinatario, nome_destinatario, quantidade_consignada, quantidade_retornada, quantidade_faturada, saldo_disponivel, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.NFSaidaID, e.CodigoProduto, e.DescricaoProduto, e.NumeroLote,
		e.CNPJDestinatario, e.NomeDestinatario,
		e.QuantidadeConsignada, e.QuantidadeRetornada, e.QuantidadeFaturada, e.SaldoDisponivel,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert estoque consignacao: %w", err)
	}
	return nil
}

// GetForUpdate localiza e bloqueia (SELECT FOR UPDATE) o registro escopado à
// NF de saída. Lote nulo casa apenas com lote nulo (IS NOT DISTINCT FROM).
// Devolve nil quando não existe registro para a chave.
func (r *EstoqueRepo) GetForUpdate(ctx context.Context, nfSaidaID, codigoProduto string, numeroLote *string, cnpjDestinatario string) (*entity.EstoqueConsignacao, error) {
	query := `
		SELECT id, nf_saida_id, codigo_produto, descricao_produto, numero_lote, cnpj_destinatario, nome_destinatario,
		       quantidade_consignada, quantidade_retornada, quantidade_faturada, saldo_disponivel, created_at, updated_at
		FROM estoque_consignacao
		WHERE nf_saida_id = $1
		  AND codigo_produto = $2
		  AND numero_lote IS NOT DISTINCT FROM $3
		  AND cnpj_destinatario = $4
		FOR UPDATE`
	var e entity.EstoqueConsignacao
	err := r.q.QueryRow(ctx, query, nfSaidaID, codigoProduto, numeroLote, cnpjDestinatario).Scan(
		&e.ID, &e.NFSaidaID, &e.CodigoProduto, &e.DescricaoProduto, &e.NumeroLote,
		&e.CNPJDestinatario, &e.NomeDestinatario,
		&e.QuantidadeConsignada, &e.QuantidadeRetornada, &e.QuantidadeFaturada, &e.SaldoDisponivel,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get estoque for update: %w", err)
	}
	return &e, nil
}

// Update grava as quantidades acumuladas e o saldo recalculado.
func (r *EstoqueRepo) Update(ctx context.Context, e *entity.EstoqueConsignacao) error {
	e.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE estoque_consignacao
		SET quantidade_retornada = $2, quantidade_faturada = $3, saldo_disponivel = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, e.ID, e.QuantidadeRetornada, e.QuantidadeFaturada, e.SaldoDisponivel, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update estoque consignacao: %w", err)
	}
	return nil
}

// SomarSaldo soma o saldo disponível entre todas as NFs de saída para
// (destinatário, produto, lote). COALESCE devolve zero sem linhas.
func (r *EstoqueRepo) SomarSaldo(ctx context.Context, cnpjDestinatario, codigoProduto string, numeroLote *string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(saldo_disponivel), 0)
		FROM estoque_consignacao
		WHERE cnpj_destinatario = $1
		  AND codigo_produto = $2
		  AND numero_lote IS NOT DISTINCT FROM $3`
	var saldo decimal.Decimal
	if err := r.q.QueryRow(ctx, query, cnpjDestinatario, codigoProduto, numeroLote).Scan(&saldo); err != nil {
		return decimal.Zero, fmt.Errorf("somar saldo: %w", err)
	}
	return saldo, nil
}

const saldoNFQuery = `
	SELECT e.codigo_produto, e.descricao_produto, e.numero_lote, e.cnpj_destinatario, e.nome_destinatario,
	       e.quantidade_consignada, e.quantidade_retornada, e.quantidade_faturada, e.saldo_disponivel,
	       nf.numero_nf, nf.data_emissao
	FROM estoque_consignacao e
	JOIN notas_fiscais nf ON nf.id = e.nf_saida_id`

// ListarPorDestinatario devolve os saldos de todas as NFs de saída de um CNPJ,
// com número e data de emissão da NF de origem.
func (r *EstoqueRepo) ListarPorDestinatario(ctx context.Context, cnpj string) ([]*repository.SaldoNFResult, error) {
	query := saldoNFQuery + `
	WHERE e.cnpj_destinatario = $1
	ORDER BY nf.data_emissao, e.codigo_produto`
	return r.listarSaldos(ctx, query, cnpj)
}

// ListarPorProduto devolve os saldos de todas as NFs de saída de um produto.
func (r *EstoqueRepo) ListarPorProduto(ctx context.Context, codigoProduto string) ([]*repository.SaldoNFResult, error) {
	query := saldoNFQuery + `
	WHERE e.codigo_produto = $1
	ORDER BY nf.data_emissao, e.cnpj_destinatario`
	return r.listarSaldos(ctx, query, codigoProduto)
}

func (r *EstoqueRepo) listarSaldos(ctx context.Context, query string, arg any) ([]*repository.SaldoNFResult, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("listar saldos: %w", err)
	}
	defer rows.Close()

	var results []*repository.SaldoNFResult
	for rows.Next() {
		var row repository.SaldoNFResult
		if err := rows.Scan(
			&row.CodigoProduto, &row.DescricaoProduto, &row.NumeroLote,
			&row.CNPJDestinatario, &row.NomeDestinatario,
			&row.QuantidadeConsignada, &row.QuantidadeRetornada, &row.QuantidadeFaturada, &row.SaldoDisponivel,
			&row.NFSaidaNumero, &row.NFSaidaDataEmissao,
		); err != nil {
			return nil, fmt.Errorf("listar saldos scan: %w", err)
		}
		results = append(results, &row)
	}
	return results, rows.Err()
}

// Resumo calcula os agregados do razão em uma única consulta.
func (r *EstoqueRepo) Resumo(ctx context.Context, saldoBaixoLimite decimal.Decimal) (*repository.ResumoResult, error) {
	query := `
		SELECT COUNT(DISTINCT codigo_produto),
		       COUNT(DISTINCT cnpj_destinatario),
		       COALESCE(SUM(saldo_disponivel), 0),
		       COUNT(*) FILTER (WHERE saldo_disponivel > 0 AND saldo_disponivel < $1)
		FROM estoque_consignacao`
	var res repository.ResumoResult
	err := r.q.QueryRow(ctx, query, saldoBaixoLimite).Scan(
		&res.TotalProdutos, &res.TotalDestinatarios, &res.SaldoTotalDisponivel, &res.ProdutosSaldoBaixo,
	)
	if err != nil {
		return nil, fmt.Errorf("resumo estoque: %w", err)
	}
	return &res, nil
}
