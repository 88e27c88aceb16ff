// Package maino implementa o cliente HTTP da plataforma Mainô, usada como
// fonte remota de XMLs de NF-e. Toda a espera de rede acontece aqui, antes
// dos documentos chegarem ao motor de conciliação.
package maino

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.maino.com.br"
	// limitePagina itens por página na listagem de NF-es emitidas.
	limitePagina = 100
)

// Config credenciais e endpoint do Mainô. APIKey tem prioridade sobre BearerToken.
type Config struct {
	BaseURL     string
	APIKey      string
	BearerToken string
}

// Client cliente HTTP do Mainô. Usa net/http da stdlib; o timeout de 60 s
// cobre as respostas lentas do endpoint de exportação em lote.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
}

// NewClient constrói o cliente. Devolve erro se nenhuma credencial foi configurada.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" && cfg.BearerToken == "" {
		return nil, fmt.Errorf("maino: MAINO_API_KEY ou MAINO_BEARER_TOKEN deve estar definido")
	}
	auth := "Bearer " + cfg.BearerToken
	if cfg.APIKey != "" {
		auth = "ApiKey " + cfg.APIKey
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		baseURL:    base,
		authHeader: auth,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// TestarConexao valida credenciais e conectividade com uma consulta mínima.
func (c *Client) TestarConexao(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q := url.Values{}
	q.Set("dataInicial", "2024-01-01")
	q.Set("dataFinal", "2024-01-01")
	resp, err := c.get(ctx, "/api/v1/nfe/emitidas", q)
	if err != nil {
		return fmt.Errorf("maino: teste de conexão: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maino: teste de conexão: status %d", resp.StatusCode)
	}
	return nil
}

// NFeEmitida item da listagem paginada de NF-es emitidas.
type NFeEmitida struct {
	ChaveAcesso string `json:"chaveAcesso"`
	NumeroNF    string `json:"numeroNf"`
}

type listaEmitidasResponse struct {
	Itens        []NFeEmitida `json:"itens"`
	TotalPaginas int          `json:"totalPaginas"`
}

// ListarEmitidas percorre todas as páginas da listagem de NF-es emitidas no intervalo.
func (c *Client) ListarEmitidas(ctx context.Context, inicio, fim time.Time) ([]NFeEmitida, error) {
	var todas []NFeEmitida
	pagina := 1
	for {
		q := url.Values{}
		q.Set("dataInicial", inicio.Format("2006-01-02"))
		q.Set("dataFinal", fim.Format("2006-01-02"))
		q.Set("tipoDocumento", "NFE")
		q.Set("pagina", strconv.Itoa(pagina))
		q.Set("limite", strconv.Itoa(limitePagina))

		resp, err := c.get(ctx, "/api/v1/nfe/emitidas", q)
		if err != nil {
			return nil, fmt.Errorf("maino: listar emitidas (página %d): %w", pagina, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("maino: listar emitidas (página %d): status %d", pagina, resp.StatusCode)
		}
		var body listaEmitidasResponse
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("maino: listar emitidas (página %d): %w", pagina, err)
		}
		if len(body.Itens) == 0 {
			break
		}
		todas = append(todas, body.Itens...)
		if body.TotalPaginas == 0 || pagina >= body.TotalPaginas {
			break
		}
		pagina++
	}
	return todas, nil
}

// ObterXMLPorChave baixa o XML completo de uma NF-e pela chave de acesso.
func (c *Client) ObterXMLPorChave(ctx context.Context, chaveAcesso string) ([]byte, error) {
	q := url.Values{}
	q.Set("chaveAcesso", chaveAcesso)
	resp, err := c.get(ctx, "/api/v1/nfe/xml", q)
	if err != nil {
		return nil, fmt.Errorf("maino: obter XML da NF-e %s: %w", chaveAcesso, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("maino: obter XML da NF-e %s: status %d", chaveAcesso, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// ExportarXMLsZip baixa o ZIP com todos os XMLs do intervalo (exportação em lote).
func (c *Client) ExportarXMLsZip(ctx context.Context, inicio, fim time.Time) ([]byte, error) {
	q := url.Values{}
	q.Set("dataInicial", inicio.Format("2006-01-02"))
	q.Set("dataFinal", fim.Format("2006-01-02"))
	q.Set("tipoDocumento", "NFE")
	resp, err := c.get(ctx, "/api/v1/nfe/exportar-xmls", q)
	if err != nil {
		return nil, fmt.Errorf("maino: exportar XMLs: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("maino: exportar XMLs: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// BaixarXMLsPeriodo implementa o porto consignacao.MainoClient: exportação em
// lote seguida da extração dos XMLs do ZIP.
func (c *Client) BaixarXMLsPeriodo(ctx context.Context, inicio, fim time.Time) ([][]byte, error) {
	zipContent, err := c.ExportarXMLsZip(ctx, inicio, fim)
	if err != nil {
		return nil, err
	}
	return ExtrairXMLsDoZip(zipContent)
}

// ExtrairXMLsDoZip devolve o conteúdo de cada arquivo .xml do ZIP exportado.
func ExtrairXMLsDoZip(zipContent []byte) ([][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(zipContent), int64(len(zipContent)))
	if err != nil {
		return nil, fmt.Errorf("maino: abrir ZIP: %w", err)
	}
	var xmls [][]byte
	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("maino: abrir %s no ZIP: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("maino: ler %s no ZIP: %w", f.Name, err)
		}
		xmls = append(xmls, content)
	}
	return xmls, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authHeader)
	return c.httpClient.Do(req)
}
