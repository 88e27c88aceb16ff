package consignacao

import (
	"context"
	"time"

	"github.com/consigna/estoque-api/internal/domain/entity"
	"github.com/consigna/estoque-api/internal/domain/repository"
)

// TxRunner executa uma função dentro de uma transação de BD, passando
// repositórios atados a essa transação. Garante a atomicidade do motor de
// conciliação: ou todos os itens da NF-e são aplicados, ou nada é persistido.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		nfeRepo repository.NotaFiscalRepository,
		estoqueRepo repository.EstoqueRepository,
	) error) error
}

// Extrator converte o XML bruto de uma NF-e em entidade normalizada.
// Implementação concreta em internal/infrastructure/nfe; aqui só o porto.
type Extrator interface {
	Extrair(xmlContent []byte) (*entity.NotaFiscal, error)
}

// MainoClient é o porto de saída para a plataforma Mainô (coleta de XMLs).
// A implementação concreta impõe os timeouts de rede; o motor de conciliação
// nunca bloqueia em I/O externo.
type MainoClient interface {
	TestarConexao(ctx context.Context) error
	// BaixarXMLsPeriodo devolve os XMLs de NF-e emitidos no intervalo
	// [inicio, fim]. Sequência finita, não reiniciável em caso de falha.
	BaixarXMLsPeriodo(ctx context.Context, inicio, fim time.Time) ([][]byte, error)
}
