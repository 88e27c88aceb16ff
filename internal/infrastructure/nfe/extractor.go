// Package nfe extrai de um XML de NF-e (layout do Portal Fiscal) a entidade
// normalizada que alimenta o motor de conciliação.
package nfe

import (
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/consigna/estoque-api/internal/domain"
	"github.com/consigna/estoque-api/internal/domain/entity"
)

// chaveAcessoLen tamanho fixo da chave de acesso de uma NF-e.
const chaveAcessoLen = 44

// Extractor converte o XML bruto de uma NF-e em entity.NotaFiscal.
// Sem estado: função pura dos bytes de entrada.
type Extractor struct{}

// NewExtractor cria o extrator.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extrair faz o parse do XML e valida os campos obrigatórios.
// Campos opcionais (lote, referência à NF de saída) ausentes não são erro;
// campos obrigatórios ausentes devolvem ExtracaoError.
func (e *Extractor) Extrair(xmlContent []byte) (*entity.NotaFiscal, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlContent); err != nil {
		return nil, &domain.ExtracaoError{Campo: "xml", Causa: err.Error()}
	}

	infNFe := doc.FindElement("//infNFe")
	if infNFe == nil {
		return nil, &domain.ExtracaoError{Campo: "infNFe"}
	}

	// Chave de acesso: atributo Id sem o prefixo de tipo ("NFe"); devem restar
	// exatamente 44 dígitos.
	id := infNFe.SelectAttrValue("Id", "")
	chave := strings.TrimPrefix(id, "NFe")
	if id == "" || len(chave) != chaveAcessoLen {
		return nil, &domain.ExtracaoError{Campo: "infNFe/@Id", Causa: "chave de acesso deve ter 44 caracteres"}
	}

	ide := doc.FindElement("//ide")
	if ide == nil {
		return nil, &domain.ExtracaoError{Campo: "ide"}
	}
	numeroNF := textoDe(ide, "nNF")
	if numeroNF == "" {
		return nil, &domain.ExtracaoError{Campo: "ide/nNF"}
	}
	serie := textoDe(ide, "serie")
	if serie == "" {
		return nil, &domain.ExtracaoError{Campo: "ide/serie"}
	}

	dhEmi := textoDe(ide, "dhEmi")
	if dhEmi == "" {
		return nil, &domain.ExtracaoError{Campo: "ide/dhEmi"}
	}
	dataEmissao, err := time.Parse(time.RFC3339, dhEmi)
	if err != nil {
		return nil, &domain.ExtracaoError{Campo: "ide/dhEmi", Causa: err.Error()}
	}

	dest := doc.FindElement("//dest")
	if dest == nil {
		return nil, &domain.ExtracaoError{Campo: "dest"}
	}
	// Destinatário pode ser pessoa jurídica (CNPJ) ou física (CPF); CNPJ tem prioridade.
	docDestinatario := textoDe(dest, "CNPJ")
	if docDestinatario == "" {
		docDestinatario = textoDe(dest, "CPF")
	}
	if docDestinatario == "" {
		return nil, &domain.ExtracaoError{Campo: "dest/CNPJ"}
	}
	nomeDestinatario := textoDe(dest, "xNome")
	if nomeDestinatario == "" {
		return nil, &domain.ExtracaoError{Campo: "dest/xNome"}
	}

	// CFOP do documento: o do primeiro item é o autoritativo.
	cfopEl := doc.FindElement("//det/prod/CFOP")
	if cfopEl == nil {
		return nil, &domain.ExtracaoError{Campo: "det/prod/CFOP"}
	}

	nfe := &entity.NotaFiscal{
		NumeroNF:         numeroNF,
		Serie:            serie,
		ChaveAcesso:      chave,
		CNPJDestinatario: docDestinatario,
		NomeDestinatario: nomeDestinatario,
		CFOP:             strings.TrimSpace(cfopEl.Text()),
		DataEmissao:      dataEmissao.UTC(),
		ChaveNFSaidaRef:  extrairReferencia(doc),
		XMLContent:       string(xmlContent),
	}

	dets := doc.FindElements("//det")
	if len(dets) == 0 {
		return nil, &domain.ExtracaoError{Campo: "det"}
	}
	for _, det := range dets {
		item, err := extrairItem(det)
		if err != nil {
			return nil, err
		}
		nfe.Itens = append(nfe.Itens, item)
	}
	return nfe, nil
}

func extrairItem(det *etree.Element) (*entity.ItemNotaFiscal, error) {
	prod := det.SelectElement("prod")
	if prod == nil {
		return nil, &domain.ExtracaoError{Campo: "det/prod"}
	}
	codigo := textoDe(prod, "cProd")
	if codigo == "" {
		return nil, &domain.ExtracaoError{Campo: "det/prod/cProd"}
	}
	descricao := textoDe(prod, "xProd")
	if descricao == "" {
		return nil, &domain.ExtracaoError{Campo: "det/prod/xProd"}
	}

	quantidade, err := decimalDe(prod, "qCom")
	if err != nil {
		return nil, err
	}
	if quantidade.IsNegative() {
		return nil, &domain.ExtracaoError{Campo: "det/prod/qCom", Causa: "quantidade negativa"}
	}
	valorUnitario, err := decimalDe(prod, "vUnCom")
	if err != nil {
		return nil, err
	}
	valorTotal, err := decimalDe(prod, "vProd")
	if err != nil {
		return nil, err
	}

	return &entity.ItemNotaFiscal{
		CodigoProduto:    codigo,
		DescricaoProduto: descricao,
		NumeroLote:       extrairLote(prod),
		Quantidade:       quantidade,
		ValorUnitario:    valorUnitario,
		ValorTotal:       valorTotal,
	}, nil
}

// extrairLote procura o lote em três posições alternativas, nesta ordem:
// rastro/nLote, xLote e nLote diretos no prod. A ausência das três não é
// erro: o item simplesmente não tem lote.
func extrairLote(prod *etree.Element) *string {
	if rastro := prod.SelectElement("rastro"); rastro != nil {
		if nLote := rastro.SelectElement("nLote"); nLote != nil {
			return loteValido(nLote.Text())
		}
	}
	if xLote := prod.SelectElement("xLote"); xLote != nil {
		return loteValido(xLote.Text())
	}
	if nLote := prod.SelectElement("nLote"); nLote != nil {
		return loteValido(nLote.Text())
	}
	return nil
}

// extrairReferencia localiza a chave de acesso da NF referenciada (refNFe).
// A ausência não é erro aqui; vira erro no motor apenas se a operação
// classificada exigir a referência.
func extrairReferencia(doc *etree.Document) string {
	ref := doc.FindElement("//ide/NFref/refNFe")
	if ref == nil {
		ref = doc.FindElement("//refNFe")
	}
	if ref == nil {
		return ""
	}
	chave := strings.TrimSpace(ref.Text())
	if len(chave) != chaveAcessoLen {
		return ""
	}
	return chave
}

func loteValido(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func textoDe(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

func decimalDe(el *etree.Element, tag string) (decimal.Decimal, error) {
	s := textoDe(el, tag)
	if s == "" {
		return decimal.Zero, &domain.ExtracaoError{Campo: "det/prod/" + tag}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &domain.ExtracaoError{Campo: "det/prod/" + tag, Causa: err.Error()}
	}
	return d, nil
}
