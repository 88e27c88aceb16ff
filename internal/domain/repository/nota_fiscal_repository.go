package repository

import (
	"context"

	"github.com/consigna/estoque-api/internal/domain/entity"
)

// NotaFiscalRepository define o porto de persistência para NF-e e seus itens.
type NotaFiscalRepository interface {
	Create(ctx context.Context, nfe *entity.NotaFiscal) error
	CreateItem(ctx context.Context, item *entity.ItemNotaFiscal) error
	GetByID(ctx context.Context, id string) (*entity.NotaFiscal, error)
	// GetByChaveAcesso devolve a NF-e com a chave informada, ou nil se não existir.
	// É a pré-condição explícita de duplicidade do motor de conciliação.
	GetByChaveAcesso(ctx context.Context, chave string) (*entity.NotaFiscal, error)
	// GetSaidaByChaveAcesso devolve a NF-e de saída de consignação com a chave
	// informada, ou nil. Usada para resolver a referência das NFs de entrada.
	GetSaidaByChaveAcesso(ctx context.Context, chave string) (*entity.NotaFiscal, error)
}
