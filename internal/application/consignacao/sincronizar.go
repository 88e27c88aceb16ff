package consignacao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/consigna/estoque-api/internal/application/dto"
	"github.com/consigna/estoque-api/internal/domain"
	"github.com/consigna/estoque-api/pkg/logger"
)

// SincronizarUseCase baixa do Mainô os XMLs de NF-e de um período e os ingere
// um a um pelo motor de conciliação. O lote não é transacional entre
// documentos: a falha de um documento não aborta os demais, os erros são
// acumulados e devolvidos junto dos contadores de sucesso.
type SincronizarUseCase struct {
	maino     MainoClient
	processar *ProcessarNFeUseCase
	log       *logger.Logger
}

// NewSincronizarUseCase constrói o caso de uso.
func NewSincronizarUseCase(maino MainoClient, processar *ProcessarNFeUseCase, log *logger.Logger) *SincronizarUseCase {
	return &SincronizarUseCase{maino: maino, processar: processar, log: log}
}

// Sincronizar busca os XMLs emitidos nos últimos diasAtras dias e processa cada um.
// Duplicatas são contadas como erro informativo, não interrompem o lote.
func (uc *SincronizarUseCase) Sincronizar(ctx context.Context, diasAtras int) (*dto.SincronizarResponse, error) {
	if uc.maino == nil {
		return nil, fmt.Errorf("integração com Mainô não configurada")
	}
	if diasAtras <= 0 {
		diasAtras = 7
	}
	if err := uc.maino.TestarConexao(ctx); err != nil {
		return nil, fmt.Errorf("conexão com Mainô: %w", err)
	}

	fim := time.Now().UTC()
	inicio := fim.AddDate(0, 0, -diasAtras)
	xmls, err := uc.maino.BaixarXMLsPeriodo(ctx, inicio, fim)
	if err != nil {
		return nil, fmt.Errorf("baixar XMLs do Mainô: %w", err)
	}

	resp := &dto.SincronizarResponse{
		Sucesso:         true,
		XMLsEncontrados: len(xmls),
		Erros:           make([]string, 0),
	}
	for _, xml := range xmls {
		resultado, err := uc.processar.ProcessarXML(ctx, xml)
		if err != nil {
			var dup *domain.DuplicataError
			if errors.As(err, &dup) {
				resp.Erros = append(resp.Erros, fmt.Sprintf("NF-e chave %s: já processada", dup.ChaveAcesso))
			} else {
				resp.Erros = append(resp.Erros, err.Error())
			}
			uc.log.Warn().Err(err).Msg("sincronização: documento rejeitado")
			continue
		}
		resp.XMLsProcessados++
		if resultado.TipoOperacao.Entrada() {
			resp.NFesEntrada++
		} else {
			resp.NFesSaida++
		}
	}

	uc.log.Info().
		Int("encontrados", resp.XMLsEncontrados).
		Int("processados", resp.XMLsProcessados).
		Int("erros", len(resp.Erros)).
		Msg("sincronização com Mainô concluída")
	return resp, nil
}

// StatusIntegracao testa a conectividade com o Mainô sem ingerir documentos.
func (uc *SincronizarUseCase) StatusIntegracao(ctx context.Context) *dto.StatusIntegracaoResponse {
	if uc.maino == nil {
		return &dto.StatusIntegracaoResponse{IntegracaoConfigurada: false}
	}
	if err := uc.maino.TestarConexao(ctx); err != nil {
		return &dto.StatusIntegracaoResponse{IntegracaoConfigurada: true, ConexaoAPI: false, Erro: err.Error()}
	}
	return &dto.StatusIntegracaoResponse{IntegracaoConfigurada: true, ConexaoAPI: true}
}
