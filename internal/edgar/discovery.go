package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"dealscout/internal/config"
	"dealscout/internal/domain"
	"dealscout/internal/port"
)

const (
	defaultSearchBaseURL   = "https://efts.sec.gov/LATEST/search-index"
	defaultArchivesBaseURL = "https://www.sec.gov/Archives/edgar/data"

	// primaryDocSuffix identifies the structured Form D document within
	// a filing's manifest, as opposed to cover letters and exhibits.
	primaryDocSuffix = "primary_doc.xml"

	acceptJSON = "application/json"
	acceptXML  = "application/xml"
)

// Discovery implements port.FilingSource over the EDGAR full-text
// search endpoint and the document archive.
type Discovery struct {
	client          *Client
	searchBaseURL   string
	archivesBaseURL string
}

// NewDiscovery creates a Discovery backed by the given client.
func NewDiscovery(client *Client, cfg *config.EdgarConfig) *Discovery {
	searchBase := strings.TrimRight(cfg.SearchBaseURL, "/")
	if searchBase == "" {
		searchBase = defaultSearchBaseURL
	}
	archivesBase := strings.TrimRight(cfg.ArchivesBaseURL, "/")
	if archivesBase == "" {
		archivesBase = defaultArchivesBaseURL
	}
	return &Discovery{
		client:          client,
		searchBaseURL:   searchBase,
		archivesBaseURL: archivesBase,
	}
}

var _ port.FilingSource = (*Discovery)(nil)

// searchResponse models the EDGAR full-text search hit list.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string `json:"_id"`
			Source struct {
				Adsh         string   `json:"adsh"`
				CIKs         []string `json:"ciks"`
				DisplayNames []string `json:"display_names"`
				FileDate     string   `json:"file_date"`
				FileType     string   `json:"file_type"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// indexResponse models the archive index.json document manifest.
type indexResponse struct {
	Directory struct {
		Items []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"item"`
	} `json:"directory"`
}

// SearchFilings queries the full-text search endpoint for Form D
// filings within [start, end], inclusive. No hits is a normal result,
// not an error.
func (d *Discovery) SearchFilings(ctx context.Context, start, end time.Time) ([]domain.SearchHit, error) {
	body, _, err := d.client.Get(ctx, d.SearchURL(start, end), acceptJSON)
	if err != nil {
		return nil, fmt.Errorf("searching filings: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	hits := make([]domain.SearchHit, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		accession := h.Source.Adsh
		if accession == "" {
			// The _id is "<accession>:<filename>" when adsh is absent.
			accession, _, _ = strings.Cut(h.ID, ":")
		}
		if accession == "" {
			continue
		}

		hit := domain.SearchHit{
			AccessionNumber: accession,
			FilingDate:      h.Source.FileDate,
			FormType:        h.Source.FileType,
		}
		if len(h.Source.CIKs) > 0 {
			hit.CIK = h.Source.CIKs[0]
		}
		if len(h.Source.DisplayNames) > 0 {
			hit.CompanyName = h.Source.DisplayNames[0]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// ResolveIndex fetches the filing's document manifest and selects the
// primary XML document by filename convention. A manifest with no
// matching document yields an empty PrimaryDocument; the caller decides
// how to treat that filing.
func (d *Discovery) ResolveIndex(ctx context.Context, cik, accessionNumber string) (*domain.FilingIndex, error) {
	body, _, err := d.client.Get(ctx, d.IndexURL(cik, accessionNumber), acceptJSON)
	if err != nil {
		return nil, fmt.Errorf("resolving index for %s: %w", accessionNumber, err)
	}

	var resp indexResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding index for %s: %w", accessionNumber, err)
	}

	index := &domain.FilingIndex{}
	for _, item := range resp.Directory.Items {
		index.Documents = append(index.Documents, domain.IndexDocument{
			Name: item.Name,
			Type: item.Type,
		})
		if index.PrimaryDocument == "" && strings.HasSuffix(item.Name, primaryDocSuffix) {
			index.PrimaryDocument = item.Name
		}
	}
	return index, nil
}

// FetchDocument returns the raw bytes of one document within a filing.
func (d *Discovery) FetchDocument(ctx context.Context, cik, accessionNumber, filename string) ([]byte, error) {
	body, _, err := d.client.Get(ctx, d.DocumentURL(cik, accessionNumber, filename), acceptXML)
	if err != nil {
		return nil, fmt.Errorf("fetching %s for %s: %w", filename, accessionNumber, err)
	}
	return body, nil
}

// SearchURL builds the full-text search URL for a date range. Both
// bounds are inclusive.
func (d *Discovery) SearchURL(start, end time.Time) string {
	q := url.Values{}
	q.Set("forms", domain.FormTypeD)
	q.Set("dateRange", "custom")
	q.Set("startdt", start.Format("2006-01-02"))
	q.Set("enddt", end.Format("2006-01-02"))
	return d.searchBaseURL + "?" + q.Encode()
}

// IndexURL builds the document manifest URL for a filing. The
// accession number's dashes are stripped only in the path segment; the
// value stored downstream keeps its dashes.
func (d *Discovery) IndexURL(cik, accessionNumber string) string {
	return fmt.Sprintf("%s/%s/%s/index.json",
		d.archivesBaseURL, normalizeCIK(cik), stripDashes(accessionNumber))
}

// DocumentURL builds the URL of a single document within a filing.
func (d *Discovery) DocumentURL(cik, accessionNumber, filename string) string {
	return fmt.Sprintf("%s/%s/%s/%s",
		d.archivesBaseURL, normalizeCIK(cik), stripDashes(accessionNumber), filename)
}

func stripDashes(accessionNumber string) string {
	return strings.ReplaceAll(accessionNumber, "-", "")
}

// normalizeCIK drops leading zeros; archive paths use the bare numeric
// CIK.
func normalizeCIK(cik string) string {
	trimmed := strings.TrimLeft(cik, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
