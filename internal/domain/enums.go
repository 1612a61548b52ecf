package domain

// IngestStatus is the terminal state of a single filing within an
// ingestion run.
type IngestStatus string

const (
	// IngestStatusIngested means the filing was parsed and persisted.
	IngestStatusIngested IngestStatus = "ingested"
	// IngestStatusSkipped means a row with the same accession number
	// already existed; the stored row is left untouched.
	IngestStatusSkipped IngestStatus = "skipped"
	// IngestStatusError means the filing failed at some step and was
	// not persisted.
	IngestStatusError IngestStatus = "error"
)

// FormTypeD and FormTypeDAmendment are the submission types ingested
// by this service.
const (
	FormTypeD          = "D"
	FormTypeDAmendment = "D/A"
)
