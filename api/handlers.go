/*
handlers.go - HTTP handlers for the charter booking engine

PURPOSE:
  Exposes the engine via REST. Handlers parse the request, delegate to the
  booking/cash/scoring services, and serialize the result. No domain rule
  lives here except the captain gate (the caller-side authorization the
  engine deliberately leaves out).

ERROR HANDLING:
  Domain errors map onto HTTP status by taxonomy:
  - Input errors  -> 400 (malformed range, bad points, missing ids)
  - Policy errors -> 409 (forbidden transition, overlap, re-reconcile)
  - Not found     -> 404
  - Anything else -> 500 (storage failure; caller retries)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - auth.go: Identity extraction and the captain gate
*/
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/warp/charter-engine/booking"
	"github.com/warp/charter-engine/cash"
	"github.com/warp/charter-engine/charter"
	"github.com/warp/charter-engine/scoring"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Bookings *booking.Service
	Cash     *cash.Service
	Scoring  *scoring.Service
	Crew     charter.CrewStore
}

// NewHandler wires the services over a single store.
func NewHandler(store charter.Store) *Handler {
	return &Handler{
		Bookings: booking.NewService(store),
		Cash:     cash.NewService(store),
		Scoring:  scoring.NewService(store),
		Crew:     store,
	}
}

// caller returns the authenticated user id, or a fallback for unauthenticated
// development deployments.
func caller(r *http.Request) charter.UserID {
	if id, ok := IdentityFrom(r.Context()); ok {
		return id.UserID
	}
	return "anonymous"
}

// =============================================================================
// BOOKING HANDLERS
// =============================================================================

// ListSeasonBookings returns a season's bookings with effective statuses.
func (h *Handler) ListSeasonBookings(w http.ResponseWriter, r *http.Request) {
	seasonID := charter.SeasonID(chi.URLParam(r, "seasonID"))

	bookings, err := h.Bookings.ListSeason(r.Context(), seasonID)
	if err != nil {
		writeDomainError(w, "Failed to list bookings", err)
		return
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, b := range bookings {
		dtos[i] = toBookingDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBooking creates an overlap-checked booking in the season.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	seasonID := charter.SeasonID(chi.URLParam(r, "seasonID"))

	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	arrival, err := charter.ParseDate(req.Arrival)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid arrival date (use YYYY-MM-DD)", err)
		return
	}
	departure, err := charter.ParseDate(req.Departure)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid departure date (use YYYY-MM-DD)", err)
		return
	}

	b, err := h.Bookings.Create(r.Context(), booking.CreateInput{
		SeasonID:   seasonID,
		Arrival:    arrival,
		Departure:  departure,
		GuestCount: req.GuestCount,
		Notes:      req.Notes,
	})
	if err != nil {
		writeDomainError(w, "Failed to create booking", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingDTO(b))
}

// GetBooking returns a single booking with its effective status.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	b, err := h.Bookings.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get booking", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

// EditBooking applies a partial edit; date changes recompute the status.
func (h *Handler) EditBooking(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	var req EditBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var in booking.EditInput
	if req.Arrival != nil {
		d, err := charter.ParseDate(*req.Arrival)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid arrival date (use YYYY-MM-DD)", err)
			return
		}
		in.Arrival = &d
	}
	if req.Departure != nil {
		d, err := charter.ParseDate(*req.Departure)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid departure date (use YYYY-MM-DD)", err)
			return
		}
		in.Departure = &d
	}
	in.GuestCount = req.GuestCount
	in.Notes = req.Notes
	if req.Tip != nil {
		tip := charter.NewMoney(*req.Tip)
		in.Tip = &tip
	}

	b, err := h.Bookings.Edit(r.Context(), id, in)
	if err != nil {
		writeDomainError(w, "Failed to edit booking", err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingDTO(b))
}

// DeleteBooking hard-deletes an upcoming booking.
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	if err := h.Bookings.Delete(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete booking", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelBooking freezes an upcoming booking as cancelled.
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	if err := h.Bookings.Cancel(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to cancel booking", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(charter.StatusCancelled)})
}

// ArchiveBooking locks a completed booking.
func (h *Handler) ArchiveBooking(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	if err := h.Bookings.Archive(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to archive booking", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(charter.StatusArchived)})
}

// =============================================================================
// CASH HANDLERS
// =============================================================================

// ListApaEntries returns a booking's APA ledger with its recomputed total.
func (h *Handler) ListApaEntries(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	entries, err := h.Cash.Apa.ListApaEntries(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to list APA entries", err)
		return
	}

	dto := ApaLedgerDTO{Entries: make([]ApaEntryDTO, len(entries))}
	for i, e := range entries {
		dto.Entries[i] = toApaEntryDTO(e)
	}
	dto.Total = cash.ApaTotal(entries).Float64()
	writeJSON(w, http.StatusOK, dto)
}

// AddApaEntry records a signed APA movement.
func (h *Handler) AddApaEntry(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	var req AddApaEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	e, err := h.Cash.AddEntry(r.Context(), id, charter.NewMoney(req.Amount), req.Note, caller(r))
	if err != nil {
		writeDomainError(w, "Failed to add APA entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toApaEntryDTO(e))
}

// DeleteApaEntry removes an APA entry.
func (h *Handler) DeleteApaEntry(w http.ResponseWriter, r *http.Request) {
	id := charter.EntryID(chi.URLParam(r, "id"))

	if err := h.Cash.DeleteEntry(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete APA entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListExpenses returns a booking's expenses with their total.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	expenses, err := h.Cash.Expenses.ListExpenses(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to list expenses", err)
		return
	}

	dto := ExpenseListDTO{Expenses: make([]ExpenseDTO, len(expenses))}
	for i, e := range expenses {
		dto.Expenses[i] = toExpenseDTO(e)
	}
	dto.Total = cash.ExpenseTotal(expenses).Float64()
	writeJSON(w, http.StatusOK, dto)
}

// AddExpense records an expense on behalf of the expense collaborator.
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	var req AddExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	e, err := h.Cash.AddExpense(r.Context(), id, charter.NewMoney(req.Amount), req.Category, req.Merchant)
	if err != nil {
		writeDomainError(w, "Failed to add expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseDTO(e))
}

// PreviewReconciliation computes checkout figures without saving.
func (h *Handler) PreviewReconciliation(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	actual := charter.NewMoney(req.ActualCash)
	result, err := h.Cash.Preview(r.Context(), id, actual)
	if err != nil {
		writeDomainError(w, "Failed to preview reconciliation", err)
		return
	}
	writeJSON(w, http.StatusOK, toResultDTO(id, actual, result))
}

// CompleteBooking reconciles the counted cash and completes the booking.
// At most once; a repeat returns 409.
func (h *Handler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rec, err := h.Cash.Reconcile(r.Context(), id, charter.NewMoney(req.ActualCash), caller(r))
	if err != nil {
		writeDomainError(w, "Failed to complete booking", err)
		return
	}
	writeJSON(w, http.StatusCreated, toReconciliationDTO(rec))
}

// =============================================================================
// SCORING HANDLERS
// =============================================================================

// ListScoreEntries returns a booking's raw score entries.
func (h *Handler) ListScoreEntries(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	entries, err := h.Scoring.Entries(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to list score entries", err)
		return
	}

	dtos := make([]ScoreEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toScoreEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AwardPoints appends a score entry. Captain-gated by the router.
func (h *Handler) AwardPoints(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	var req AwardPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	e, err := h.Scoring.Award(r.Context(), id, charter.UserID(req.ToUserID), req.Points, req.Reason, caller(r))
	if err != nil {
		writeDomainError(w, "Failed to award points", err)
		return
	}
	writeJSON(w, http.StatusCreated, toScoreEntryDTO(e))
}

// BookingLeaderboard returns the recomputed leaderboard for a booking.
func (h *Handler) BookingLeaderboard(w http.ResponseWriter, r *http.Request) {
	id := charter.BookingID(chi.URLParam(r, "id"))

	rows, err := h.Scoring.BookingLeaderboard(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to compute leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaderboardDTO(rows))
}

// SeasonStats returns the season standings with trophy and horns holders.
func (h *Handler) SeasonStats(w http.ResponseWriter, r *http.Request) {
	seasonID := charter.SeasonID(chi.URLParam(r, "seasonID"))

	stats, err := h.Scoring.Season(r.Context(), seasonID)
	if err != nil {
		writeDomainError(w, "Failed to compute season stats", err)
		return
	}
	writeJSON(w, http.StatusOK, toSeasonStatsDTO(stats))
}

// =============================================================================
// CREW HANDLERS
// =============================================================================

// ListCrew returns the roster in roster order.
func (h *Handler) ListCrew(w http.ResponseWriter, r *http.Request) {
	crew, err := h.Crew.ListCrew(r.Context())
	if err != nil {
		writeDomainError(w, "Failed to list crew", err)
		return
	}

	dtos := make([]CrewMemberDTO, len(crew))
	for i, m := range crew {
		dtos[i] = CrewMemberDTO{ID: string(m.ID), Name: m.Name, Captain: m.Captain}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddCrewMember appends a member to the roster.
func (h *Handler) AddCrewMember(w http.ResponseWriter, r *http.Request) {
	var req AddCrewMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	m := charter.CrewMember{ID: charter.UserID(req.ID), Name: req.Name, Captain: req.Captain}
	if err := h.Crew.AddCrewMember(r.Context(), m); err != nil {
		writeDomainError(w, "Failed to add crew member", err)
		return
	}
	writeJSON(w, http.StatusCreated, CrewMemberDTO{ID: req.ID, Name: req.Name, Captain: req.Captain})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Code = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the error taxonomy onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, msg string, err error) {
	switch {
	case charter.IsInputError(err):
		writeError(w, http.StatusBadRequest, msg, err)
	case charter.IsPolicyError(err):
		writeError(w, http.StatusConflict, msg, err)
	case charter.IsNotFound(err):
		writeError(w, http.StatusNotFound, msg, err)
	default:
		writeError(w, http.StatusInternalServerError, msg, err)
	}
}
