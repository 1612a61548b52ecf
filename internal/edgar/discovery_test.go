package edgar_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealscout/internal/config"
	"dealscout/internal/edgar"
)

func newTestDiscovery(t *testing.T, srvURL string) *edgar.Discovery {
	t.Helper()
	cfg := testEdgarConfig(time.Millisecond)
	cfg.SearchBaseURL = srvURL + "/search-index"
	cfg.ArchivesBaseURL = srvURL + "/Archives/edgar/data"

	client, err := edgar.NewClient(cfg)
	require.NoError(t, err)
	return edgar.NewDiscovery(client, cfg)
}

func TestSearchFilings_DecodesHits(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"hits": {"hits": [
				{
					"_id": "0001770787-24-000012:primary_doc.xml",
					"_source": {
						"adsh": "0001770787-24-000012",
						"ciks": ["0001770787"],
						"display_names": ["Blue Harbor Capital Fund II, LP (CIK 0001770787)"],
						"file_date": "2024-02-15",
						"file_type": "D"
					}
				},
				{
					"_id": "0000999999-24-000001:primary_doc.xml",
					"_source": {
						"adsh": "",
						"ciks": ["0000999999"],
						"file_date": "2024-02-16",
						"file_type": "D/A"
					}
				}
			]}
		}`))
	}))
	defer srv.Close()

	d := newTestDiscovery(t, srv.URL)
	start := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC)

	hits, err := d.SearchFilings(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "0001770787-24-000012", hits[0].AccessionNumber)
	assert.Equal(t, "0001770787", hits[0].CIK)
	assert.Equal(t, "Blue Harbor Capital Fund II, LP (CIK 0001770787)", hits[0].CompanyName)
	assert.Equal(t, "2024-02-15", hits[0].FilingDate)
	assert.Equal(t, "D", hits[0].FormType)

	// Accession recovered from the _id when adsh is absent.
	assert.Equal(t, "0000999999-24-000001", hits[1].AccessionNumber)
	assert.Equal(t, "", hits[1].CompanyName)

	assert.Contains(t, gotQuery, "forms=D")
	assert.Contains(t, gotQuery, "startdt=2024-02-15")
	assert.Contains(t, gotQuery, "enddt=2024-02-16")
}

func TestSearchFilings_EmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits": {"hits": []}}`))
	}))
	defer srv.Close()

	d := newTestDiscovery(t, srv.URL)
	hits, err := d.SearchFilings(context.Background(), time.Now(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchFilings_MalformedJSONFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	d := newTestDiscovery(t, srv.URL)
	_, err := d.SearchFilings(context.Background(), time.Now(), time.Now())
	assert.Error(t, err)
}

func TestResolveIndex_SelectsPrimaryDocument(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{
			"directory": {"item": [
				{"name": "0001770787-24-000012-index.htm", "type": "text.gif"},
				{"name": "primary_doc.xml", "type": "text.gif"},
				{"name": "primary_doc.html", "type": "text.gif"}
			]}
		}`))
	}))
	defer srv.Close()

	d := newTestDiscovery(t, srv.URL)
	index, err := d.ResolveIndex(context.Background(), "0001770787", "0001770787-24-000012")
	require.NoError(t, err)

	assert.Equal(t, "/Archives/edgar/data/1770787/000177078724000012/index.json", gotPath)
	assert.Equal(t, "primary_doc.xml", index.PrimaryDocument)
	assert.Len(t, index.Documents, 3)
}

func TestResolveIndex_NoPrimaryDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"directory": {"item": [
				{"name": "cover-letter.pdf", "type": "application.pdf"}
			]}
		}`))
	}))
	defer srv.Close()

	d := newTestDiscovery(t, srv.URL)
	index, err := d.ResolveIndex(context.Background(), "123", "0000000123-24-000001")
	require.NoError(t, err)
	assert.Equal(t, "", index.PrimaryDocument)
	assert.Len(t, index.Documents, 1)
}

func TestFetchDocument_ReturnsRawBytes(t *testing.T) {
	var gotPath, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`<edgarSubmission/>`))
	}))
	defer srv.Close()

	d := newTestDiscovery(t, srv.URL)
	body, err := d.FetchDocument(context.Background(), "0001770787", "0001770787-24-000012", "primary_doc.xml")
	require.NoError(t, err)

	assert.Equal(t, `<edgarSubmission/>`, string(body))
	assert.Equal(t, "/Archives/edgar/data/1770787/000177078724000012/primary_doc.xml", gotPath)
	assert.Equal(t, "application/xml", gotAccept)
}

func TestURLBuilders(t *testing.T) {
	cfg := &config.EdgarConfig{
		UserAgent:       "dealscout test ops@example.com",
		SearchBaseURL:   "https://efts.example/LATEST/search-index",
		ArchivesBaseURL: "https://archives.example/edgar/data",
	}
	client, err := edgar.NewClient(cfg)
	require.NoError(t, err)
	d := edgar.NewDiscovery(client, cfg)

	start := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC)
	assert.Equal(t,
		"https://efts.example/LATEST/search-index?dateRange=custom&enddt=2024-02-16&forms=D&startdt=2024-02-15",
		d.SearchURL(start, end))

	// Dashes stripped and leading CIK zeros dropped in the path only.
	assert.Equal(t,
		"https://archives.example/edgar/data/1770787/000177078724000012/index.json",
		d.IndexURL("0001770787", "0001770787-24-000012"))
	assert.Equal(t,
		"https://archives.example/edgar/data/1770787/000177078724000012/primary_doc.xml",
		d.DocumentURL("0001770787", "0001770787-24-000012", "primary_doc.xml"))

	// A CIK of all zeros must not collapse to an empty path segment.
	assert.Equal(t,
		"https://archives.example/edgar/data/0/000000000024000001/index.json",
		d.IndexURL("0000000000", "0000000000-24-000001"))
}
