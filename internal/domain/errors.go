package domain

import (
	"errors"
	"fmt"
)

// Erros de domínio (sem dependências externas).
var (
	ErrNotFound     = errors.New("recurso não encontrado")
	ErrInvalidInput = errors.New("entrada inválida")

	// ErrExtracao indica que o XML da NF-e está malformado ou incompleto.
	ErrExtracao = errors.New("falha na extração da NF-e")
	// ErrNFeDuplicada indica que a chave de acesso já foi processada.
	ErrNFeDuplicada = errors.New("NF-e já processada anteriormente")
	// ErrReferenciaSaidaAusente indica NF de entrada sem referência à NF de saída.
	ErrReferenciaSaidaAusente = errors.New("referência à NF de saída é obrigatória para operações de entrada")
	// ErrEstoqueNaoEncontrado indica que não existe registro de consignação para a NF de saída referenciada.
	ErrEstoqueNaoEncontrado = errors.New("registro de estoque consignado não encontrado")
	// ErrSaldoInsuficiente indica que o movimento deixaria o saldo disponível negativo.
	ErrSaldoInsuficiente = errors.New("saldo consignado insuficiente")
)

// DuplicataError carrega a identidade da NF-e já existente.
// errors.Is(err, ErrNFeDuplicada) continua funcionando via Unwrap.
type DuplicataError struct {
	NFeID       string
	ChaveAcesso string
}

func (e *DuplicataError) Error() string {
	return fmt.Sprintf("NF-e com chave %s já processada (id %s)", e.ChaveAcesso, e.NFeID)
}

func (e *DuplicataError) Unwrap() error { return ErrNFeDuplicada }

// ExtracaoError detalha qual campo obrigatório falhou na extração.
type ExtracaoError struct {
	Campo string
	Causa string
}

func (e *ExtracaoError) Error() string {
	if e.Causa == "" {
		return fmt.Sprintf("extração da NF-e: campo %q ausente ou inválido", e.Campo)
	}
	return fmt.Sprintf("extração da NF-e: campo %q: %s", e.Campo, e.Causa)
}

func (e *ExtracaoError) Unwrap() error { return ErrExtracao }
