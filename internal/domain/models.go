package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SearchHit is a single match from the EDGAR full-text search endpoint.
// It is transient: hits drive discovery but are never persisted as-is.
type SearchHit struct {
	AccessionNumber string
	CIK             string
	CompanyName     string
	FilingDate      string
	FormType        string
}

// FilingIndex is the resolved document manifest for one filing.
// PrimaryDocument is empty when no document in the manifest matched
// the primary-document naming convention.
type FilingIndex struct {
	Documents       []IndexDocument
	PrimaryDocument string
}

// IndexDocument is one entry in a filing's document manifest.
type IndexDocument struct {
	Name string
	Type string
}

// Filing is a normalized Form D filing. Every field except CompanyName,
// CIK, AccessionNumber and FilingDate is optional: the upstream XML
// omits or mangles fields routinely, and absent parses to nil rather
// than a zero value.
//
// AccessionNumber keeps its original dash-delimited form byte-for-byte;
// it is the sole deduplication key for persisted rows.
type Filing struct {
	ID              uuid.UUID `db:"id" json:"id"`
	AccessionNumber string    `db:"accession_number" json:"accession_number"`
	CIK             string    `db:"cik" json:"cik"`
	CompanyName     string    `db:"company_name" json:"company_name"`
	FilingDate      time.Time `db:"filing_date" json:"filing_date"`

	SubmissionType *string `db:"submission_type" json:"submission_type"`
	IsAmendment    bool    `db:"is_amendment" json:"is_amendment"`

	JurisdictionOfInc   *string `db:"jurisdiction_of_inc" json:"jurisdiction_of_inc"`
	YearOfIncorporation *string `db:"year_of_incorporation" json:"year_of_incorporation"`
	EntityType          *string `db:"entity_type" json:"entity_type"`
	Street              *string `db:"street" json:"street"`
	City                *string `db:"city" json:"city"`
	StateOrCountry      *string `db:"state_or_country" json:"state_or_country"`
	ZipCode             *string `db:"zip_code" json:"zip_code"`
	IssuerPhone         *string `db:"issuer_phone" json:"issuer_phone"`

	IndustryGroup *string `db:"industry_group" json:"industry_group"`
	RevenueRange  *string `db:"revenue_range" json:"revenue_range"`

	FederalExemptions *string `db:"federal_exemptions" json:"federal_exemptions"`

	// Exactly one of FirstSaleDate / YetToOccur=true holds when the
	// source field was present and well-formed; both are nil/false when
	// it was absent or unparseable.
	FirstSaleDate *time.Time `db:"first_sale_date" json:"first_sale_date"`
	YetToOccur    *bool      `db:"yet_to_occur" json:"yet_to_occur"`

	TotalOffering     *decimal.Decimal `db:"total_offering" json:"total_offering"`
	AmountSold        *decimal.Decimal `db:"amount_sold" json:"amount_sold"`
	AmountRemaining   *decimal.Decimal `db:"amount_remaining" json:"amount_remaining"`
	MinimumInvestment *decimal.Decimal `db:"minimum_investment" json:"minimum_investment"`

	HasNonAccreditedInvestors *bool `db:"has_non_accredited_investors" json:"has_non_accredited_investors"`
	TotalInvestors            *int  `db:"total_investors" json:"total_investors"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IngestOutcome is the per-filing result of one ingestion attempt.
// Outcomes live only for the duration of a run; they are returned to
// the caller and never persisted.
type IngestOutcome struct {
	AccessionNumber string       `json:"accession_number"`
	Status          IngestStatus `json:"status"`
	Error           string       `json:"error,omitempty"`
}

// IngestSummary is the batch result of an ingestion run.
// Invariant: Ingested + Skipped + Errors == len(Details) == number of
// filings discovered for the date range.
type IngestSummary struct {
	Ingested int             `json:"ingested"`
	Skipped  int             `json:"skipped"`
	Errors   int             `json:"errors"`
	Details  []IngestOutcome `json:"details"`
}

// Add appends an outcome and bumps the matching counter.
func (s *IngestSummary) Add(o IngestOutcome) {
	switch o.Status {
	case IngestStatusIngested:
		s.Ingested++
	case IngestStatusSkipped:
		s.Skipped++
	case IngestStatusError:
		s.Errors++
	}
	s.Details = append(s.Details, o)
}
