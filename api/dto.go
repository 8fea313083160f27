/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures decoupling the internal domain model from the API
  contract. Dates travel as ISO dates (2006-01-02), money as float64 -
  the decimal boundary lives inside the engine, the wire format is plain
  JSON numbers for the frontend.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/charter-engine/cash"
	"github.com/warp/charter-engine/charter"
	"github.com/warp/charter-engine/scoring"
)

// =============================================================================
// BOOKINGS
// =============================================================================

type BookingDTO struct {
	ID             string             `json:"id"`
	SeasonID       string             `json:"season_id"`
	Arrival        string             `json:"arrival"`
	Departure      string             `json:"departure"`
	GuestCount     int                `json:"guest_count"`
	Status         string             `json:"status"`
	Notes          string             `json:"notes,omitempty"`
	Tip            *float64           `json:"tip,omitempty"`
	Reconciliation *ReconciliationDTO `json:"reconciliation,omitempty"`
	CreatedAt      string             `json:"created_at,omitempty"`
}

type CreateBookingRequest struct {
	Arrival    string `json:"arrival"`
	Departure  string `json:"departure"`
	GuestCount int    `json:"guest_count"`
	Notes      string `json:"notes,omitempty"`
}

// EditBookingRequest uses pointers so absent fields stay untouched.
type EditBookingRequest struct {
	Arrival    *string  `json:"arrival,omitempty"`
	Departure  *string  `json:"departure,omitempty"`
	GuestCount *int     `json:"guest_count,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
	Tip        *float64 `json:"tip,omitempty"`
}

// =============================================================================
// CASH
// =============================================================================

type ApaEntryDTO struct {
	ID        string  `json:"id"`
	BookingID string  `json:"booking_id"`
	Amount    float64 `json:"amount"`
	Note      string  `json:"note,omitempty"`
	CreatedBy string  `json:"created_by"`
	CreatedAt string  `json:"created_at"`
}

type AddApaEntryRequest struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note,omitempty"`
}

type ApaLedgerDTO struct {
	Entries []ApaEntryDTO `json:"entries"`
	Total   float64       `json:"total"`
}

type ExpenseDTO struct {
	ID        string  `json:"id"`
	BookingID string  `json:"booking_id"`
	Amount    float64 `json:"amount"`
	Category  string  `json:"category,omitempty"`
	Merchant  string  `json:"merchant,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type AddExpenseRequest struct {
	Amount   float64 `json:"amount"`
	Category string  `json:"category,omitempty"`
	Merchant string  `json:"merchant,omitempty"`
}

type ExpenseListDTO struct {
	Expenses []ExpenseDTO `json:"expenses"`
	Total    float64      `json:"total"`
}

type ReconcileRequest struct {
	ActualCash float64 `json:"actual_cash"`
}

type ReconciliationDTO struct {
	BookingID    string  `json:"booking_id"`
	ExpectedCash float64 `json:"expected_cash"`
	ActualCash   float64 `json:"actual_cash"`
	Difference   float64 `json:"difference"`
	IsBalanced   bool    `json:"is_balanced"`
	ReconciledBy string  `json:"reconciled_by"`
	ReconciledAt string  `json:"reconciled_at"`
}

// =============================================================================
// SCORING
// =============================================================================

type ScoreEntryDTO struct {
	ID        string `json:"id"`
	BookingID string `json:"booking_id"`
	ToUserID  string `json:"to_user_id"`
	Points    int    `json:"points"`
	Reason    string `json:"reason,omitempty"`
	FromUser  string `json:"from_user_id"`
	CreatedAt string `json:"created_at"`
}

type AwardPointsRequest struct {
	ToUserID string `json:"to_user_id"`
	Points   int    `json:"points"`
	Reason   string `json:"reason,omitempty"`
}

type LeaderboardRowDTO struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name,omitempty"`
	Total   int    `json:"total"`
	Entries int    `json:"entries"`
}

type MemberStatsDTO struct {
	UserID string `json:"user_id"`
	Name   string `json:"name,omitempty"`
	Points int    `json:"points"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

type SeasonStatsDTO struct {
	Members      []MemberStatsDTO `json:"members"`
	TrophyHolder *string          `json:"trophy_holder,omitempty"`
	HornsHolder  *string          `json:"horns_holder,omitempty"`
}

// =============================================================================
// CREW
// =============================================================================

type CrewMemberDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Captain bool   `json:"captain"`
}

type AddCrewMemberRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Captain bool   `json:"captain"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toBookingDTO(b charter.Booking) BookingDTO {
	dto := BookingDTO{
		ID:         string(b.ID),
		SeasonID:   string(b.SeasonID),
		Arrival:    b.Arrival.String(),
		Departure:  b.Departure.String(),
		GuestCount: b.GuestCount,
		Status:     string(b.Status),
		Notes:      b.Notes,
		CreatedAt:  b.CreatedAt.Format(time.RFC3339),
	}
	if b.Tip != nil {
		tip := b.Tip.Float64()
		dto.Tip = &tip
	}
	if b.Reconciliation != nil {
		rec := toReconciliationDTO(*b.Reconciliation)
		dto.Reconciliation = &rec
	}
	return dto
}

func toReconciliationDTO(r charter.Reconciliation) ReconciliationDTO {
	return ReconciliationDTO{
		BookingID:    string(r.BookingID),
		ExpectedCash: r.ExpectedCash.Float64(),
		ActualCash:   r.ActualCash.Float64(),
		Difference:   r.Difference.Float64(),
		IsBalanced:   r.IsBalanced,
		ReconciledBy: string(r.ReconciledBy),
		ReconciledAt: r.ReconciledAt.Format(time.RFC3339),
	}
}

func toApaEntryDTO(e charter.ApaEntry) ApaEntryDTO {
	return ApaEntryDTO{
		ID:        string(e.ID),
		BookingID: string(e.BookingID),
		Amount:    e.Amount.Float64(),
		Note:      e.Note,
		CreatedBy: string(e.CreatedBy),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func toExpenseDTO(e charter.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:        string(e.ID),
		BookingID: string(e.BookingID),
		Amount:    e.Amount.Float64(),
		Category:  e.Category,
		Merchant:  e.Merchant,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func toScoreEntryDTO(e charter.ScoreEntry) ScoreEntryDTO {
	return ScoreEntryDTO{
		ID:        string(e.ID),
		BookingID: string(e.BookingID),
		ToUserID:  string(e.ToUser),
		Points:    e.Points,
		Reason:    e.Reason,
		FromUser:  string(e.FromUser),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func toLeaderboardDTO(rows []scoring.Summary) []LeaderboardRowDTO {
	dtos := make([]LeaderboardRowDTO, len(rows))
	for i, r := range rows {
		dtos[i] = LeaderboardRowDTO{
			UserID:  string(r.UserID),
			Name:    r.Name,
			Total:   r.Total,
			Entries: r.Entries,
		}
	}
	return dtos
}

func toSeasonStatsDTO(stats scoring.Stats) SeasonStatsDTO {
	dto := SeasonStatsDTO{Members: make([]MemberStatsDTO, len(stats.Members))}
	for i, m := range stats.Members {
		dto.Members[i] = MemberStatsDTO{
			UserID: string(m.UserID),
			Name:   m.Name,
			Points: m.Points,
			Wins:   m.Wins,
			Losses: m.Losses,
		}
	}
	if stats.TrophyHolder != nil {
		s := string(*stats.TrophyHolder)
		dto.TrophyHolder = &s
	}
	if stats.HornsHolder != nil {
		s := string(*stats.HornsHolder)
		dto.HornsHolder = &s
	}
	return dto
}

func toResultDTO(bookingID charter.BookingID, actual charter.Money, r cash.Result) ReconciliationDTO {
	return ReconciliationDTO{
		BookingID:    string(bookingID),
		ExpectedCash: r.ExpectedCash.Float64(),
		ActualCash:   actual.Float64(),
		Difference:   r.Difference.Float64(),
		IsBalanced:   r.IsBalanced,
	}
}
