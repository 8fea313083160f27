package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/charter-engine/api"
	"github.com/warp/charter-engine/charter"
	"github.com/warp/charter-engine/charter/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// newTestAPI wires the full router over a memory store with a fixed clock
// and authentication disabled.
func newTestAPI(t *testing.T, today charter.Date) (http.Handler, *api.Handler) {
	t.Helper()
	mem := store.NewMemory()
	h := api.NewHandler(mem)
	h.Bookings.Clock = func() charter.Date { return today }
	h.Cash.Clock = func() charter.Date { return today }
	return api.NewRouter(h, ""), h
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func createBooking(t *testing.T, router http.Handler, arrival, departure string) api.BookingDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/seasons/season-2026/bookings", api.CreateBookingRequest{
		Arrival:    arrival,
		Departure:  departure,
		GuestCount: 6,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	return decode[api.BookingDTO](t, rec)
}

func july(d int) charter.Date { return charter.NewDate(2026, time.July, d) }

// =============================================================================
// BOOKINGS
// =============================================================================

func TestAPI_CreateBooking(t *testing.T) {
	router, _ := newTestAPI(t, july(1))

	b := createBooking(t, router, "2026-07-10", "2026-07-17")
	assert.Equal(t, "season-2026", b.SeasonID)
	assert.Equal(t, string(charter.StatusUpcoming), b.Status)
	assert.Equal(t, "2026-07-10", b.Arrival)

	// Overlap: 409 with the sentinel in the code field.
	rec := doJSON(t, router, http.MethodPost, "/api/seasons/season-2026/bookings", api.CreateBookingRequest{
		Arrival:   "2026-07-15",
		Departure: "2026-07-22",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Inverted range: 400.
	rec = doJSON(t, router, http.MethodPost, "/api/seasons/season-2026/bookings", api.CreateBookingRequest{
		Arrival:   "2026-07-25",
		Departure: "2026-07-20",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unparseable date: 400.
	rec = doJSON(t, router, http.MethodPost, "/api/seasons/season-2026/bookings", api.CreateBookingRequest{
		Arrival:   "10/07/2026",
		Departure: "2026-07-17",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_BookingLifecycle(t *testing.T) {
	// GIVEN: An upcoming booking
	// WHEN: It is cancelled
	// THEN: The cancel sticks; deleting a non-upcoming booking is a 409
	router, _ := newTestAPI(t, july(1))
	b := createBooking(t, router, "2026-07-10", "2026-07-17")

	rec := doJSON(t, router, http.MethodPost, "/api/bookings/"+b.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/bookings/"+b.ID+"/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[api.BookingDTO](t, rec)
	assert.Equal(t, string(charter.StatusCancelled), got.Status)

	// Cancelled bookings cannot be deleted.
	rec = doJSON(t, router, http.MethodDelete, "/api/bookings/"+b.ID+"/", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// A fresh upcoming booking deletes cleanly.
	b2 := createBooking(t, router, "2026-08-01", "2026-08-08")
	rec = doJSON(t, router, http.MethodDelete, "/api/bookings/"+b2.ID+"/", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Unknown id: 404.
	rec = doJSON(t, router, http.MethodGet, "/api/bookings/ghost/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ListSeasonEffectiveStatus(t *testing.T) {
	// The list resolves effective statuses: a stored-upcoming booking whose
	// dates straddle today reads as active.
	router, h := newTestAPI(t, july(1))
	b := createBooking(t, router, "2026-07-10", "2026-07-17")

	h.Bookings.Clock = func() charter.Date { return july(12) }

	rec := doJSON(t, router, http.MethodGet, "/api/seasons/season-2026/bookings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]api.BookingDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)
	assert.Equal(t, string(charter.StatusActive), list[0].Status)
}

// =============================================================================
// CASH
// =============================================================================

func TestAPI_CashFlow(t *testing.T) {
	// GIVEN: An active booking with 1000 APA and a 300 expense
	// WHEN: The captain previews with 700 and then completes
	// THEN: Preview is balanced, completion attaches the record, and a
	//       second completion is a 409
	router, h := newTestAPI(t, july(1))
	b := createBooking(t, router, "2026-07-10", "2026-07-17")
	base := "/api/bookings/" + b.ID

	rec := doJSON(t, router, http.MethodPost, base+"/apa", api.AddApaEntryRequest{Amount: 1000, Note: "deposit"})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, base+"/expenses", api.AddExpenseRequest{Amount: 300, Category: "provisioning"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, base+"/apa", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ledger := decode[api.ApaLedgerDTO](t, rec)
	require.Len(t, ledger.Entries, 1)
	assert.Equal(t, 1000.0, ledger.Total)
	assert.Equal(t, "anonymous", ledger.Entries[0].CreatedBy)

	// Into the charter window for checkout.
	h.Cash.Clock = func() charter.Date { return july(16) }

	rec = doJSON(t, router, http.MethodPost, base+"/reconciliation/preview", api.ReconcileRequest{ActualCash: 700})
	require.Equal(t, http.StatusOK, rec.Code)
	preview := decode[api.ReconciliationDTO](t, rec)
	assert.Equal(t, 700.0, preview.ExpectedCash)
	assert.Equal(t, 0.0, preview.Difference)
	assert.True(t, preview.IsBalanced)

	rec = doJSON(t, router, http.MethodPost, base+"/complete", api.ReconcileRequest{ActualCash: 700})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	done := decode[api.ReconciliationDTO](t, rec)
	assert.True(t, done.IsBalanced)

	rec = doJSON(t, router, http.MethodPost, base+"/complete", api.ReconcileRequest{ActualCash: 700})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodGet, base+"/", nil)
	got := decode[api.BookingDTO](t, rec)
	assert.Equal(t, string(charter.StatusCompleted), got.Status)
	require.NotNil(t, got.Reconciliation)
}

func TestAPI_ZeroApaEntryRejected(t *testing.T) {
	router, _ := newTestAPI(t, july(1))
	b := createBooking(t, router, "2026-07-10", "2026-07-17")

	rec := doJSON(t, router, http.MethodPost, "/api/bookings/"+b.ID+"/apa", api.AddApaEntryRequest{Amount: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SCORING AND CREW
// =============================================================================

func TestAPI_ScoringFlow(t *testing.T) {
	router, _ := newTestAPI(t, july(1))

	for _, m := range []api.AddCrewMemberRequest{
		{ID: "captain1", Name: "Skipper", Captain: true},
		{ID: "user2", Name: "Deckhand"},
		{ID: "user3", Name: "Chef"},
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/crew", m)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	b := createBooking(t, router, "2026-07-10", "2026-07-17")
	base := "/api/bookings/" + b.ID

	rec := doJSON(t, router, http.MethodPost, base+"/scores", api.AwardPointsRequest{ToUserID: "user2", Points: 3, Reason: "anchor save"})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, base+"/scores", api.AwardPointsRequest{ToUserID: "user3", Points: -1})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Out-of-domain points: 400.
	rec = doJSON(t, router, http.MethodPost, base+"/scores", api.AwardPointsRequest{ToUserID: "user2", Points: 5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, base+"/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]api.LeaderboardRowDTO](t, rec)
	require.Len(t, rows, 3)
	assert.Equal(t, "user2", rows[0].UserID)
	assert.Equal(t, 3, rows[0].Total)

	rec = doJSON(t, router, http.MethodGet, "/api/seasons/season-2026/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[api.SeasonStatsDTO](t, rec)
	require.Len(t, stats.Members, 3)
	require.NotNil(t, stats.TrophyHolder)
	assert.Equal(t, "user2", *stats.TrophyHolder)
}

func TestAPI_CrewValidation(t *testing.T) {
	router, _ := newTestAPI(t, july(1))

	rec := doJSON(t, router, http.MethodPost, "/api/crew", api.AddCrewMemberRequest{Name: "No ID"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/crew", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	crew := decode[[]api.CrewMemberDTO](t, rec)
	assert.Empty(t, crew)
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

func mintToken(t *testing.T, secret, sub string, captain bool) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     sub,
		"captain": captain,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAPI_CaptainGate(t *testing.T) {
	// GIVEN: A router with authentication enabled
	// THEN: Missing tokens are 401, crew tokens are 403 on captain routes,
	//       captain tokens pass and are recorded as the reconciler
	const secret = "test-secret"
	mem := store.NewMemory()
	h := api.NewHandler(mem)
	h.Bookings.Clock = func() charter.Date { return july(16) }
	h.Cash.Clock = func() charter.Date { return july(16) }
	router := api.NewRouter(h, secret)

	send := func(method, path, token string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	captain := mintToken(t, secret, "captain1", true)
	crew := mintToken(t, secret, "user2", false)

	// No token at all.
	rec := send(http.MethodGet, "/api/crew", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Token signed with the wrong key.
	rec = send(http.MethodGet, "/api/crew", mintToken(t, "other-secret", "user2", false), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authenticated create, already in the charter window.
	rec = send(http.MethodPost, "/api/seasons/season-2026/bookings", crew, api.CreateBookingRequest{
		Arrival:   "2026-07-10",
		Departure: "2026-07-17",
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	b := decode[api.BookingDTO](t, rec)
	base := "/api/bookings/" + b.ID

	// Completion is captain-gated.
	rec = send(http.MethodPost, base+"/complete", crew, api.ReconcileRequest{ActualCash: 0})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(http.MethodPost, base+"/complete", captain, api.ReconcileRequest{ActualCash: 0})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	done := decode[api.ReconciliationDTO](t, rec)
	assert.Equal(t, "captain1", done.ReconciledBy)
}

func TestAPI_NotFoundRoute(t *testing.T) {
	router, _ := newTestAPI(t, july(1))
	rec := doJSON(t, router, http.MethodGet, "/api/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
