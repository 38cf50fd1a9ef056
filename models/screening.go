package models

import (
	"time"

	"github.com/google/uuid"
)

// ScreeningRequest is one subject to screen against the sanctions entities.
type ScreeningRequest struct {
	Name         string
	Country      string
	DateOfBirth  string
	PepFlag      bool
	MediaSignals []MediaSignal
}

type ScreeningResult struct {
	Request   ScreeningRequest
	Breakdown RiskBreakdown
}

// ScreeningAuditRecord is handed to the audit collaborator, which persists it verbatim.
type ScreeningAuditRecord struct {
	Id                  uuid.UUID
	QueryName           string
	QueryDateOfBirth    string
	QueryCountry        string
	SanctionsMatchCount int
	MediaSignalCount    int
	RiskLevel           RiskLevel
	RiskScore           string
	ScreenedAt          time.Time
	Breakdown           RiskBreakdown
}

func NewScreeningAuditRecord(request ScreeningRequest, breakdown RiskBreakdown) ScreeningAuditRecord {
	return ScreeningAuditRecord{
		Id:                  uuid.Must(uuid.NewV7()),
		QueryName:           request.Name,
		QueryDateOfBirth:    request.DateOfBirth,
		QueryCountry:        request.Country,
		SanctionsMatchCount: len(breakdown.Matches),
		MediaSignalCount:    len(breakdown.MediaSignals),
		RiskLevel:           breakdown.RiskLevel,
		RiskScore:           breakdown.CompositeScore.StringFixed(ScorePrecision),
		ScreenedAt:          breakdown.ScoredAt,
		Breakdown:           breakdown,
	}
}
