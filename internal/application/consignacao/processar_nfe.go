package consignacao

import (
	"context"
	"fmt"

	"github.com/consigna/estoque-api/internal/domain"
	"github.com/consigna/estoque-api/internal/domain/cfop"
	"github.com/consigna/estoque-api/internal/domain/entity"
	"github.com/consigna/estoque-api/internal/domain/repository"
)

// ProcessarNFeUseCase é o motor de conciliação do estoque consignado.
// Fluxo por documento: extração → classificação → (em uma única transação)
// verificação de duplicidade → persistência de cabeçalho e itens → aplicação
// de cada item no razão. Qualquer falha desfaz a operação inteira; aplicação
// parcial entre itens de uma mesma NF-e nunca é observável.
type ProcessarNFeUseCase struct {
	txRunner TxRunner
	extrator Extrator
}

// NewProcessarNFeUseCase constrói o caso de uso com dependências explícitas.
func NewProcessarNFeUseCase(txRunner TxRunner, extrator Extrator) *ProcessarNFeUseCase {
	return &ProcessarNFeUseCase{txRunner: txRunner, extrator: extrator}
}

// ResultadoProcessamento resultado da ingestão de uma NF-e.
type ResultadoProcessamento struct {
	NFe              *entity.NotaFiscal
	TipoOperacao     cfop.TipoOperacao
	ItensProcessados int
}

// ProcessarXML extrai, classifica e aplica uma NF-e a partir do XML bruto.
func (uc *ProcessarNFeUseCase) ProcessarXML(ctx context.Context, xmlContent []byte) (*ResultadoProcessamento, error) {
	nfe, err := uc.extrator.Extrair(xmlContent)
	if err != nil {
		return nil, err
	}
	nfe.TipoOperacao = cfop.Classificar(nfe.CFOP)
	return uc.Aplicar(ctx, nfe)
}

// Aplicar executa a unidade de trabalho atômica sobre uma NF-e já extraída
// e classificada. Idempotente por chave de acesso: a segunda submissão da
// mesma NF-e devolve DuplicataError sem mutação alguma.
func (uc *ProcessarNFeUseCase) Aplicar(ctx context.Context, nfe *entity.NotaFiscal) (*ResultadoProcessamento, error) {
	itens := 0
	err := uc.txRunner.Run(ctx, func(
		nfeRepo repository.NotaFiscalRepository,
		estoqueRepo repository.EstoqueRepository,
	) error {
		// Pré-condição explícita de duplicidade, dentro da mesma transação.
		// O índice único de chave_acesso fica como anteparo para corridas.
		existente, err := nfeRepo.GetByChaveAcesso(ctx, nfe.ChaveAcesso)
		if err != nil {
			return err
		}
		if existente != nil {
			return &domain.DuplicataError{NFeID: existente.ID, ChaveAcesso: existente.ChaveAcesso}
		}

		// Entrada de consignação sem referência à NF de saída falha antes de
		// qualquer mutação; a extração bem-sucedida não garante a referência.
		var nfSaida *entity.NotaFiscal
		if nfe.TipoOperacao.EntradaConsignacao() {
			if nfe.ChaveNFSaidaRef == "" {
				return domain.ErrReferenciaSaidaAusente
			}
			nfSaida, err = nfeRepo.GetSaidaByChaveAcesso(ctx, nfe.ChaveNFSaidaRef)
			if err != nil {
				return err
			}
			if nfSaida == nil {
				return fmt.Errorf("%w: NF de saída com chave %s não processada", domain.ErrEstoqueNaoEncontrado, nfe.ChaveNFSaidaRef)
			}
		}

		// Cabeçalho e itens antes do razão, para que as linhas de estoque
		// possam referenciar o id da NF-e.
		if err := nfeRepo.Create(ctx, nfe); err != nil {
			return err
		}
		for _, item := range nfe.Itens {
			item.NotaFiscalID = nfe.ID
			if err := nfeRepo.CreateItem(ctx, item); err != nil {
				return err
			}
			if err := uc.aplicarItem(ctx, estoqueRepo, nfe, nfSaida, item); err != nil {
				return err
			}
			itens++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ResultadoProcessamento{NFe: nfe, TipoOperacao: nfe.TipoOperacao, ItensProcessados: itens}, nil
}

// aplicarItem aplica um item ao razão conforme o tipo de operação.
// Tipos não classificados persistem o documento mas não movimentam saldo.
func (uc *ProcessarNFeUseCase) aplicarItem(
	ctx context.Context,
	estoqueRepo repository.EstoqueRepository,
	nfe *entity.NotaFiscal,
	nfSaida *entity.NotaFiscal,
	item *entity.ItemNotaFiscal,
) error {
	switch {
	case nfe.TipoOperacao == cfop.SaidaConsignacao:
		// Cada saída cria um registro novo escopado a esta NF.
		e := &entity.EstoqueConsignacao{
			NFSaidaID:            nfe.ID,
			CodigoProduto:        item.CodigoProduto,
			DescricaoProduto:     item.DescricaoProduto,
			NumeroLote:           item.NumeroLote,
			CNPJDestinatario:     nfe.CNPJDestinatario,
			NomeDestinatario:     nfe.NomeDestinatario,
			QuantidadeConsignada: item.Quantidade,
			SaldoDisponivel:      item.Quantidade,
		}
		return estoqueRepo.Create(ctx, e)

	case nfe.TipoOperacao.EntradaConsignacao():
		e, err := estoqueRepo.GetForUpdate(ctx, nfSaida.ID, item.CodigoProduto, item.NumeroLote, nfe.CNPJDestinatario)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("%w: NF de saída %s, produto %s", domain.ErrEstoqueNaoEncontrado, nfSaida.NumeroNF, item.CodigoProduto)
		}
		switch nfe.TipoOperacao {
		case cfop.Retorno, cfop.DevolucaoSimbolica:
			e.QuantidadeRetornada = e.QuantidadeRetornada.Add(item.Quantidade)
		case cfop.VendaConsignada:
			e.QuantidadeFaturada = e.QuantidadeFaturada.Add(item.Quantidade)
		}
		e.RecalcularSaldo()
		if e.SaldoDisponivel.IsNegative() {
			return fmt.Errorf("%w: produto %s (NF de saída %s) ficaria com saldo %s",
				domain.ErrSaldoInsuficiente, item.CodigoProduto, nfSaida.NumeroNF, e.SaldoDisponivel.String())
		}
		return estoqueRepo.Update(ctx, e)
	}
	// ENTRADA_NAO_CLASSIFICADA, SAIDA_NAO_CLASSIFICADA, DESCONHECIDO:
	// documento guardado para auditoria, razão intocado.
	return nil
}
