package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dealscout/internal/config"
	"dealscout/internal/domain"
	"dealscout/internal/port"
	"dealscout/internal/service"
	"dealscout/mocks"
)

var validFormD = []byte(`<edgarSubmission>
  <submissionType>D</submissionType>
  <primaryIssuer>
    <cik>0001770787</cik>
    <entityName>Blue Harbor Capital Fund II, LP</entityName>
  </primaryIssuer>
  <offeringData>
    <signatureBlock><signature><signatureDate>2024-02-15</signatureDate></signature></signatureBlock>
  </offeringData>
</edgarSubmission>`)

func hit(accession string) domain.SearchHit {
	return domain.SearchHit{
		AccessionNumber: accession,
		CIK:             "0001770787",
		CompanyName:     "Blue Harbor Capital Fund II, LP",
		FormType:        domain.FormTypeD,
	}
}

func indexWithPrimary() *domain.FilingIndex {
	return &domain.FilingIndex{
		Documents:       []domain.IndexDocument{{Name: "primary_doc.xml"}},
		PrimaryDocument: "primary_doc.xml",
	}
}

func setupIngest() (*mocks.MockFilingSource, *mocks.MockFilingRepo, service.IngestService) {
	source := new(mocks.MockFilingSource)
	repo := new(mocks.MockFilingRepo)
	svc := service.NewIngestService(source, repo, nil, nil)
	return source, repo, svc
}

func TestIngest_SuccessfulRun(t *testing.T) {
	source, repo, svc := setupIngest()
	start := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	source.On("SearchFilings", mock.Anything, start, start).
		Return([]domain.SearchHit{hit("0001770787-24-000012"), hit("0001770787-24-000013")}, nil)
	source.On("ResolveIndex", mock.Anything, "0001770787", mock.Anything).Return(indexWithPrimary(), nil)
	source.On("FetchDocument", mock.Anything, "0001770787", mock.Anything, "primary_doc.xml").Return(validFormD, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.Ingest(context.Background(), start, start)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Ingested)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Errors)
	require.Len(t, summary.Details, 2)
	assert.Equal(t, domain.IngestStatusIngested, summary.Details[0].Status)
	source.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestIngest_DuplicateIsSkipped(t *testing.T) {
	source, repo, svc := setupIngest()
	start := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	source.On("SearchFilings", mock.Anything, start, start).
		Return([]domain.SearchHit{hit("0001770787-24-000012")}, nil)
	source.On("ResolveIndex", mock.Anything, mock.Anything, mock.Anything).Return(indexWithPrimary(), nil)
	source.On("FetchDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(validFormD, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateFiling)

	summary, err := svc.Ingest(context.Background(), start, start)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Ingested)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Errors)
	assert.Equal(t, domain.IngestStatusSkipped, summary.Details[0].Status)
	assert.Empty(t, summary.Details[0].Error)
}

func TestIngest_NoPrimaryDocument(t *testing.T) {
	source, repo, svc := setupIngest()
	start := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	source.On("SearchFilings", mock.Anything, start, start).
		Return([]domain.SearchHit{hit("0001770787-24-000012")}, nil)
	source.On("ResolveIndex", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.FilingIndex{Documents: []domain.IndexDocument{{Name: "exhibit.pdf"}}}, nil)

	summary, err := svc.Ingest(context.Background(), start, start)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, "no primary document", summary.Details[0].Error)
	source.AssertNotCalled(t, "FetchDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngest_FetchFailureIsRecordedPerFiling(t *testing.T) {
	source, _, svc := setupIngest()
	start := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	source.On("SearchFilings", mock.Anything, start, start).
		Return([]domain.SearchHit{hit("0001770787-24-000012")}, nil)
	source.On("ResolveIndex", mock.Anything, mock.Anything, mock.Anything).Return(indexWithPrimary(), nil)
	source.On("FetchDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection reset"))

	summary, err := svc.Ingest(context.Background(), start, start)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Errors)
	assert.Contains(t, summary.Details[0].Error, "connection reset")
}

func TestIngest_UnparseableDocument(t *testing.T) {
	source, repo, svc := setupIngest()
	start := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	source.On("SearchFilings", mock.Anything, start, start).
		Return([]domain.SearchHit{hit("0001770787-24-000012")}, nil)
	source.On("ResolveIndex", mock.Anything, mock.Anything, mock.Anything).Return(indexWithPrimary(), nil)
	source.On("FetchDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]byte("<edgarSubmission><broken"), nil)

	summary, err := svc.Ingest(context.Background(), start, start)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, "parse failed", summary.Details[0].Error)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestIngest_MixedOutcomesPreserveCount(t *testing.T) {
	source, repo, svc := setupIngest()
	start := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	hits := []domain.SearchHit{
		hit("0001770787-24-000001"),
		hit("0001770787-24-000002"),
		hit("0001770787-24-000003"),
	}
	source.On("SearchFilings", mock.Anything, start, start).Return(hits, nil)
	source.On("ResolveIndex", mock.Anything, mock.Anything, "0001770787-24-000001").Return(indexWithPrimary(), nil)
	source.On("ResolveIndex", mock.Anything, mock.Anything, "0001770787-24-000002").Return(indexWithPrimary(), nil)
	source.On("ResolveIndex", mock.Anything, mock.Anything, "0001770787-24-000003").
		Return(nil, errors.New("index unavailable"))
	source.On("FetchDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(validFormD, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(f *domain.Filing) bool {
		return f.AccessionNumber == "0001770787-24-000001"
	})).Return(nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(f *domain.Filing) bool {
		return f.AccessionNumber == "0001770787-24-000002"
	})).Return(domain.ErrDuplicateFiling)

	summary, err := svc.Ingest(context.Background(), start, start)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, len(hits), summary.Ingested+summary.Skipped+summary.Errors)
	assert.Len(t, summary.Details, len(hits))
}

func TestIngest_SearchFailureFailsTheRun(t *testing.T) {
	source, _, svc := setupIngest()
	start := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	source.On("SearchFilings", mock.Anything, start, start).Return(nil, errors.New("search unavailable"))

	summary, err := svc.Ingest(context.Background(), start, start)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "search unavailable")
}

func TestIngest_ZeroDatesDefaultToToday(t *testing.T) {
	source, _, svc := setupIngest()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	source.On("SearchFilings", mock.Anything, today, today).Return([]domain.SearchHit{}, nil)

	summary, err := svc.Ingest(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Ingested+summary.Skipped+summary.Errors)
	source.AssertExpectations(t)
}

func TestIngest_SingleZeroDateCopiesTheOther(t *testing.T) {
	source, _, svc := setupIngest()
	day := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	source.On("SearchFilings", mock.Anything, day, day).Return([]domain.SearchHit{}, nil).Twice()

	_, err := svc.Ingest(context.Background(), day, time.Time{})
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), time.Time{}, day)
	require.NoError(t, err)
	source.AssertExpectations(t)
}

func TestIngest_InvalidDateRange(t *testing.T) {
	source, _, svc := setupIngest()
	start := time.Date(2024, 2, 16, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	_, err := svc.Ingest(context.Background(), start, end)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	source.AssertNotCalled(t, "SearchFilings", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngest_PanicIsRecoveredPerFiling(t *testing.T) {
	source, repo, svc := setupIngest()
	start := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	source.On("SearchFilings", mock.Anything, start, start).
		Return([]domain.SearchHit{hit("0001770787-24-000001"), hit("0001770787-24-000002")}, nil)
	source.On("ResolveIndex", mock.Anything, mock.Anything, mock.Anything).Return(indexWithPrimary(), nil)
	source.On("FetchDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(validFormD, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(f *domain.Filing) bool {
		return f.AccessionNumber == "0001770787-24-000001"
	})).Run(func(mock.Arguments) { panic("repository blew up") }).Return(nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(f *domain.Filing) bool {
		return f.AccessionNumber == "0001770787-24-000002"
	})).Return(nil)

	summary, err := svc.Ingest(context.Background(), start, start)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 1, summary.Errors)
	assert.Contains(t, summary.Details[0].Error, "repository blew up")
}

func TestIngest_ArchivesRawDocumentWhenEnabled(t *testing.T) {
	source := new(mocks.MockFilingSource)
	repo := new(mocks.MockFilingRepo)
	archive := new(mocks.MockObjectStorage)
	archiveCfg := &config.ArchiveConfig{Enabled: true, Bucket: "dealscout-filings", KeyPrefix: "formd/raw"}
	svc := service.NewIngestService(source, repo, archive, archiveCfg)

	start := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	source.On("SearchFilings", mock.Anything, start, start).
		Return([]domain.SearchHit{hit("0001770787-24-000012")}, nil)
	source.On("ResolveIndex", mock.Anything, mock.Anything, mock.Anything).Return(indexWithPrimary(), nil)
	source.On("FetchDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(validFormD, nil)
	archive.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "dealscout-filings" &&
			in.Key == "formd/raw/0001770787-24-000012/primary_doc.xml"
	})).Return(&port.UploadOutput{}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.Ingest(context.Background(), start, start)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Ingested)
	archive.AssertExpectations(t)
}

func TestIngest_ArchiveFailureDoesNotChangeOutcome(t *testing.T) {
	source := new(mocks.MockFilingSource)
	repo := new(mocks.MockFilingRepo)
	archive := new(mocks.MockObjectStorage)
	archiveCfg := &config.ArchiveConfig{Enabled: true, Bucket: "dealscout-filings", KeyPrefix: "formd/raw"}
	svc := service.NewIngestService(source, repo, archive, archiveCfg)

	start := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	source.On("SearchFilings", mock.Anything, start, start).
		Return([]domain.SearchHit{hit("0001770787-24-000012")}, nil)
	source.On("ResolveIndex", mock.Anything, mock.Anything, mock.Anything).Return(indexWithPrimary(), nil)
	source.On("FetchDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(validFormD, nil)
	archive.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("bucket unavailable"))
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	summary, err := svc.Ingest(context.Background(), start, start)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Ingested)
	assert.Equal(t, 0, summary.Errors)
}
