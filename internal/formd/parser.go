// Package formd turns raw EDGAR Form D XML into normalized filings.
//
// The upstream schema is loosely structured and almost every field is
// optional, so parsing is defensive at every level: a missing or
// malformed node yields a nil field, never an error or panic. The only
// hard failure mode is XML that does not parse at all, which yields a
// nil filing.
package formd

import (
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dealscout/internal/domain"
)

// PlaceholderCompanyName is stored when the XML carries no issuer name.
const PlaceholderCompanyName = "Unknown Issuer"

const amendmentMarker = "d/a"

var strictDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// edgarSubmission mirrors the Form D primary document tree. Every
// intermediate node is a pointer so absent branches decode to nil
// instead of zero-filled structs.
type edgarSubmission struct {
	XMLName        xml.Name       `xml:"edgarSubmission"`
	SubmissionType string         `xml:"submissionType"`
	PrimaryIssuer  *primaryIssuer `xml:"primaryIssuer"`
	OfferingData   *offeringData  `xml:"offeringData"`
}

type primaryIssuer struct {
	CIK               string         `xml:"cik"`
	EntityName        string         `xml:"entityName"`
	IssuerAddress     *issuerAddress `xml:"issuerAddress"`
	IssuerPhoneNumber string         `xml:"issuerPhoneNumber"`
	JurisdictionOfInc string         `xml:"jurisdictionOfInc"`
	EntityType        string         `xml:"entityType"`
	YearOfInc         *valueNode     `xml:"yearOfInc"`
}

type issuerAddress struct {
	Street1        string `xml:"street1"`
	Street2        string `xml:"street2"`
	City           string `xml:"city"`
	StateOrCountry string `xml:"stateOrCountry"`
	ZipCode        string `xml:"zipCode"`
}

type offeringData struct {
	IndustryGroup        *industryGroup  `xml:"industryGroup"`
	IssuerSize           *issuerSize     `xml:"issuerSize"`
	FederalExemptions    *exemptionsList `xml:"federalExemptionsExclusions"`
	TypeOfFiling         *typeOfFiling   `xml:"typeOfFiling"`
	OfferingSalesAmounts *salesAmounts   `xml:"offeringSalesAmounts"`
	Investors            *investors      `xml:"investors"`
	MinimumInvestment    string          `xml:"minimumInvestmentAccepted"`
	SignatureBlock       *signatureBlock `xml:"signatureBlock"`
}

type industryGroup struct {
	IndustryGroupType string `xml:"industryGroupType"`
}

type issuerSize struct {
	RevenueRange string `xml:"revenueRange"`
}

// exemptionsList decodes both a single item element and a repeated
// list; encoding/xml collects either shape into the slice.
type exemptionsList struct {
	Items []string `xml:"item"`
}

type typeOfFiling struct {
	NewOrAmendment  *newOrAmendment `xml:"newOrAmendment"`
	DateOfFirstSale *firstSaleNode  `xml:"dateOfFirstSale"`
}

type newOrAmendment struct {
	IsAmendment string `xml:"isAmendment"`
}

type firstSaleNode struct {
	Value      string `xml:"value"`
	YetToOccur string `xml:"yetToOccur"`
}

type salesAmounts struct {
	TotalOfferingAmount string `xml:"totalOfferingAmount"`
	TotalAmountSold     string `xml:"totalAmountSold"`
	TotalRemaining      string `xml:"totalRemaining"`
}

type investors struct {
	HasNonAccreditedInvestors  string `xml:"hasNonAccreditedInvestors"`
	TotalNumberAlreadyInvested string `xml:"totalNumberAlreadyInvested"`
}

type signatureBlock struct {
	Signatures []signature `xml:"signature"`
}

type signature struct {
	SignatureDate string `xml:"signatureDate"`
}

type valueNode struct {
	Value string `xml:"value"`
}

// Parse normalizes raw Form D XML into a domain.Filing. It is a pure
// function: no I/O, no clock reads except the filing-date fallback, and
// identical input yields identical output. Empty or malformed XML
// returns nil.
//
// The accession number is carried through byte-for-byte; downstream
// deduplication depends on its original dash-delimited form.
func Parse(xmlBytes []byte, accessionNumber, cik string) *domain.Filing {
	var sub edgarSubmission
	if err := xml.Unmarshal(xmlBytes, &sub); err != nil {
		return nil
	}

	filing := &domain.Filing{
		AccessionNumber: accessionNumber,
		CIK:             cik,
		CompanyName:     PlaceholderCompanyName,
	}

	if st := strings.TrimSpace(sub.SubmissionType); st != "" {
		filing.SubmissionType = &st
		filing.IsAmendment = strings.Contains(strings.ToLower(st), amendmentMarker)
	}

	if issuer := sub.PrimaryIssuer; issuer != nil {
		if name := strings.TrimSpace(issuer.EntityName); name != "" {
			filing.CompanyName = name
		}
		if filing.CIK == "" {
			filing.CIK = strings.TrimSpace(issuer.CIK)
		}
		filing.IssuerPhone = optional(issuer.IssuerPhoneNumber)
		filing.JurisdictionOfInc = optional(issuer.JurisdictionOfInc)
		filing.EntityType = optional(issuer.EntityType)
		if issuer.YearOfInc != nil {
			filing.YearOfIncorporation = optional(issuer.YearOfInc.Value)
		}
		if addr := issuer.IssuerAddress; addr != nil {
			filing.Street = optional(strings.TrimSpace(addr.Street1 + " " + addr.Street2))
			filing.City = optional(addr.City)
			filing.StateOrCountry = optional(addr.StateOrCountry)
			filing.ZipCode = optional(addr.ZipCode)
		}
	}

	if offering := sub.OfferingData; offering != nil {
		if offering.IndustryGroup != nil {
			filing.IndustryGroup = optional(offering.IndustryGroup.IndustryGroupType)
		}
		if offering.IssuerSize != nil {
			filing.RevenueRange = optional(offering.IssuerSize.RevenueRange)
		}
		if offering.FederalExemptions != nil {
			filing.FederalExemptions = joinExemptions(offering.FederalExemptions.Items)
		}
		if tof := offering.TypeOfFiling; tof != nil {
			filing.FirstSaleDate, filing.YetToOccur = parseFirstSale(tof.DateOfFirstSale)
		}
		if amounts := offering.OfferingSalesAmounts; amounts != nil {
			filing.TotalOffering = parseMoney(amounts.TotalOfferingAmount)
			filing.AmountSold = parseMoney(amounts.TotalAmountSold)
			filing.AmountRemaining = parseMoney(amounts.TotalRemaining)
		}
		filing.MinimumInvestment = parseMoney(offering.MinimumInvestment)
		if inv := offering.Investors; inv != nil {
			filing.HasNonAccreditedInvestors = parseBool(inv.HasNonAccreditedInvestors)
			filing.TotalInvestors = parseCount(inv.TotalNumberAlreadyInvested)
		}
		filing.FilingDate = signatureDate(offering.SignatureBlock)
	}

	if filing.FilingDate.IsZero() {
		// The signature date is the only date inside the document; when
		// it is absent or unparseable the filing date falls back to the
		// current UTC date.
		filing.FilingDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	return filing
}

// Validate is the post-parse gate before persistence: the identifying
// fields must all be present.
func Validate(f *domain.Filing) bool {
	return f != nil &&
		f.CompanyName != "" &&
		f.CIK != "" &&
		f.AccessionNumber != "" &&
		!f.FilingDate.IsZero()
}

// optional trims s and returns nil for the empty string.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// parseMoney normalizes a monetary token to a decimal. Currency
// symbols, thousands separators and whitespace are stripped first. The
// literal "Indefinite" is a valid upstream value meaning no stated
// cap; it parses to nil, not zero.
func parseMoney(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "Indefinite") {
		return nil
	}
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(raw)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &d
}

// parseCount parses an investor count, tolerating thousands separators.
func parseCount(raw string) *int {
	cleaned := strings.NewReplacer(",", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return nil
	}
	return &n
}

// parseBool accepts the boolean spellings EDGAR actually emits.
// Anything else is treated as absent.
func parseBool(raw string) *bool {
	v := true
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
	case "false", "0", "no":
		v = false
	default:
		return nil
	}
	return &v
}

// parseFirstSale interprets the dateOfFirstSale node. Exactly one of
// the parsed date or yetToOccur=true is set when the field was present
// and well-formed; a non-matching value discards the date rather than
// guessing at a format.
func parseFirstSale(node *firstSaleNode) (*time.Time, *bool) {
	if node == nil {
		return nil, nil
	}

	if b := parseBool(node.YetToOccur); b != nil && *b {
		yet := true
		return nil, &yet
	}

	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		return nil, nil
	}
	if strings.Contains(strings.ToLower(raw), "yet to occur") {
		yet := true
		return nil, &yet
	}
	if d := parseStrictDate(raw); d != nil {
		return d, nil
	}
	return nil, nil
}

func parseStrictDate(raw string) *time.Time {
	if !strictDate.MatchString(raw) {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

// joinExemptions trims each exemption item, drops empties and joins
// the survivors. An empty result is nil, not an empty string.
func joinExemptions(items []string) *string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	joined := strings.Join(kept, "; ")
	return &joined
}

func signatureDate(block *signatureBlock) time.Time {
	if block == nil || len(block.Signatures) == 0 {
		return time.Time{}
	}
	raw := strings.TrimSpace(block.Signatures[0].SignatureDate)
	if d := parseStrictDate(raw); d != nil {
		return *d
	}
	return time.Time{}
}
