package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/consigna/estoque-api/internal/domain"
	"github.com/consigna/estoque-api/internal/domain/cfop"
	"github.com/consigna/estoque-api/internal/domain/entity"
	"github.com/consigna/estoque-api/internal/domain/repository"
)

var _ repository.NotaFiscalRepository = (*NotaFiscalRepo)(nil)

// NotaFiscalRepo implementação de NotaFiscalRepository sobre PostgreSQL
// (usável com pool ou tx).
type NotaFiscalRepo struct {
	q Querier
}

// NewNotaFiscalRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewNotaFiscalRepository(q Querier) *NotaFiscalRepo {
	return &NotaFiscalRepo{q: q}
}

const nfeColunas = `id, numero_nf, serie, chave_acesso, cnpj_destinatario, nome_destinatario,
		cfop, tipo_operacao, data_emissao, chave_nf_saida_ref, xml_content, created_at`

// Create persiste o cabeçalho da NF-e. Em caso de corrida no índice único de
// chave_acesso, devolve DuplicataError em vez do erro de integridade cru.
func (r *NotaFiscalRepo) Create(ctx context.Context, nfe *entity.NotaFiscal) error {
	if nfe.ID == "" {
		nfe.ID = uuid.New().String()
	}
	if nfe.CreatedAt.IsZero() {
		nfe.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO notas_fiscais (id, numero_nf, serie, chave_acesso, cnpj_destinatario, nome_destinatario, cfop, tipo_operacao, data_emissao, chave_nf_saida_ref, xml_content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		nfe.ID, nfe.NumeroNF, nfe.Serie, nfe.ChaveAcesso, nfe.CNPJDestinatario, nfe.NomeDestinatario,
		nfe.CFOP, string(nfe.TipoOperacao), nfe.DataEmissao, nullIfEmpty(nfe.ChaveNFSaidaRef),
		nfe.XMLContent, nfe.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicataError{ChaveAcesso: nfe.ChaveAcesso}
		}
		return fmt.Errorf("insert nota fiscal: %w", err)
	}
	return nil
}

// CreateItem persiste uma linha de item da NF-e.
func (r *NotaFiscalRepo) CreateItem(ctx context.Context, item *entity.ItemNotaFiscal) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	query := `
		INSERT INTO itens_nota_fiscal (id, nota_fiscal_id, codigo_produto, descricao_produto, numero_lote, quantidade, valor_unitario, valor_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		item.ID, item.NotaFiscalID, item.CodigoProduto, item.DescricaoProduto,
		item.NumeroLote, item.Quantidade, item.ValorUnitario, item.ValorTotal,
	)
	if err != nil {
		return fmt.Errorf("insert item nota fiscal: %w", err)
	}
	return nil
}

// GetByID devolve a NF-e pelo id, ou ErrNotFound.
func (r *NotaFiscalRepo) GetByID(ctx context.Context, id string) (*entity.NotaFiscal, error) {
	nfe, err := r.scanUma(ctx, `SELECT `+nfeColunas+` FROM notas_fiscais WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if nfe == nil {
		return nil, domain.ErrNotFound
	}
	return nfe, nil
}

// GetByChaveAcesso devolve a NF-e pela chave de acesso, ou nil se não existir.
func (r *NotaFiscalRepo) GetByChaveAcesso(ctx context.Context, chave string) (*entity.NotaFiscal, error) {
	return r.scanUma(ctx, `SELECT `+nfeColunas+` FROM notas_fiscais WHERE chave_acesso = $1`, chave)
}

// GetSaidaByChaveAcesso devolve a NF-e de saída de consignação pela chave, ou nil.
func (r *NotaFiscalRepo) GetSaidaByChaveAcesso(ctx context.Context, chave string) (*entity.NotaFiscal, error) {
	return r.scanUma(ctx,
		`SELECT `+nfeColunas+` FROM notas_fiscais WHERE chave_acesso = $1 AND tipo_operacao = $2`,
		chave, string(cfop.SaidaConsignacao))
}

func (r *NotaFiscalRepo) scanUma(ctx context.Context, query string, args ...any) (*entity.NotaFiscal, error) {
	var (
		nfe      entity.NotaFiscal
		tipo     string
		chaveRef *string
	)
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&nfe.ID, &nfe.NumeroNF, &nfe.Serie, &nfe.ChaveAcesso, &nfe.CNPJDestinatario, &nfe.NomeDestinatario,
		&nfe.CFOP, &tipo, &nfe.DataEmissao, &chaveRef, &nfe.XMLContent, &nfe.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get nota fiscal: %w", err)
	}
	nfe.TipoOperacao = cfop.TipoOperacao(tipo)
	if chaveRef != nil {
		nfe.ChaveNFSaidaRef = *chaveRef
	}
	return &nfe, nil
}
