package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"dealscout/internal/domain"
	"dealscout/internal/port"
)

type filingRepo struct {
	db *sqlx.DB
}

// NewFilingRepo creates a new PostgreSQL-backed FilingRepository.
func NewFilingRepo(db *sqlx.DB) port.FilingRepository {
	return &filingRepo{db: db}
}

// Create inserts a filing. The unique constraint on accession_number is
// the sole deduplication mechanism: a conflicting insert is a no-op
// that leaves the existing row untouched and returns
// domain.ErrDuplicateFiling.
func (r *filingRepo) Create(ctx context.Context, filing *domain.Filing) error {
	if filing.ID == uuid.Nil {
		filing.ID = uuid.New()
	}
	now := time.Now().UTC()
	filing.CreatedAt = now
	filing.UpdatedAt = now

	query := `INSERT INTO filings (
		id, accession_number, cik, company_name, filing_date,
		submission_type, is_amendment,
		jurisdiction_of_inc, year_of_incorporation, entity_type,
		street, city, state_or_country, zip_code, issuer_phone,
		industry_group, revenue_range, federal_exemptions,
		first_sale_date, yet_to_occur,
		total_offering, amount_sold, amount_remaining, minimum_investment,
		has_non_accredited_investors, total_investors,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7,
		$8, $9, $10,
		$11, $12, $13, $14, $15,
		$16, $17, $18,
		$19, $20,
		$21, $22, $23, $24,
		$25, $26,
		$27, $28
	) ON CONFLICT (accession_number) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		filing.ID, filing.AccessionNumber, filing.CIK, filing.CompanyName, filing.FilingDate,
		filing.SubmissionType, filing.IsAmendment,
		filing.JurisdictionOfInc, filing.YearOfIncorporation, filing.EntityType,
		filing.Street, filing.City, filing.StateOrCountry, filing.ZipCode, filing.IssuerPhone,
		filing.IndustryGroup, filing.RevenueRange, filing.FederalExemptions,
		filing.FirstSaleDate, filing.YetToOccur,
		filing.TotalOffering, filing.AmountSold, filing.AmountRemaining, filing.MinimumInvestment,
		filing.HasNonAccreditedInvestors, filing.TotalInvestors,
		filing.CreatedAt, filing.UpdatedAt)
	if err != nil {
		return fmt.Errorf("filingRepo.Create: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("filingRepo.Create rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrDuplicateFiling
	}
	return nil
}

func (r *filingRepo) GetByAccession(ctx context.Context, accessionNumber string) (*domain.Filing, error) {
	var filing domain.Filing
	err := r.db.GetContext(ctx, &filing,
		"SELECT * FROM filings WHERE accession_number = $1", accessionNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFilingNotFound
		}
		return nil, fmt.Errorf("filingRepo.GetByAccession: %w", err)
	}
	return &filing, nil
}

func (r *filingRepo) List(ctx context.Context, offset, limit int) ([]domain.Filing, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM filings")
	if err != nil {
		return nil, 0, fmt.Errorf("filingRepo.List count: %w", err)
	}

	var filings []domain.Filing
	err = r.db.SelectContext(ctx, &filings,
		`SELECT * FROM filings ORDER BY filing_date DESC, created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("filingRepo.List: %w", err)
	}
	return filings, total, nil
}
