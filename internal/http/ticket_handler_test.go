package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"furious-host/internal/domain"
	"furious-host/internal/service"
)

type stubTicketRepo struct {
	byID  map[string]domain.Ticket
	order []string
}

func newStubTicketRepo() *stubTicketRepo {
	return &stubTicketRepo{byID: make(map[string]domain.Ticket)}
}

func (s *stubTicketRepo) Create(_ context.Context, ticket domain.Ticket) error {
	s.byID[ticket.ID] = ticket
	s.order = append(s.order, ticket.ID)
	return nil
}

func (s *stubTicketRepo) GetByID(_ context.Context, id string) (domain.Ticket, error) {
	ticket, ok := s.byID[id]
	if !ok {
		return domain.Ticket{}, pgx.ErrNoRows
	}
	return ticket, nil
}

func (s *stubTicketRepo) ListByUserID(_ context.Context, userID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for i := len(s.order) - 1; i >= 0; i-- {
		if t := s.byID[s.order[i]]; t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *stubTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.byID[s.order[i]])
	}
	return out, nil
}

func (s *stubTicketRepo) UpdateStatus(_ context.Context, id, status string, resolvedAt *time.Time, updatedAt time.Time) error {
	ticket, ok := s.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	ticket.ResolvedAt = resolvedAt
	ticket.UpdatedAt = updatedAt
	s.byID[id] = ticket
	return nil
}

func (s *stubTicketRepo) UpdateAdminNotes(_ context.Context, id, adminNotes string, updatedAt time.Time) error {
	ticket, ok := s.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.AdminNotes = adminNotes
	ticket.UpdatedAt = updatedAt
	s.byID[id] = ticket
	return nil
}

func setupTicketRouter(tickets *stubTicketRepo, roles *mockRoleRepo, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := service.NewTicketService(zap.NewNop(), tickets, roles)
	ticketH := NewTicketHandler(zap.NewNop(), svc)
	adminH := NewAdminHandler(zap.NewNop(), svc, newMockProfileRepo(), roles)
	r.POST("/tickets", authAs(userID), ticketH.CreateTicket)
	r.GET("/tickets", authAs(userID), ticketH.ListTickets)
	admin := r.Group("/admin", authAs(userID), AdminRequiredMiddleware(roles))
	admin.GET("/tickets", adminH.ListTickets)
	admin.PATCH("/tickets/:id/status", adminH.UpdateTicketStatus)
	admin.PATCH("/tickets/:id/notes", adminH.UpdateTicketNotes)
	admin.GET("/users", adminH.ListUsers)
	admin.GET("/roles", adminH.ListRoles)
	return r
}

func decodeTicket(t *testing.T, body []byte) domain.Ticket {
	t.Helper()
	var resp struct {
		Ticket domain.Ticket `json:"ticket"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Ticket
}

func TestTicketHandlerCreate_Defaults(t *testing.T) {
	repo := newStubTicketRepo()
	r := setupTicketRouter(repo, newMockRoleRepo(), "u1")

	rec := performRequest(r, http.MethodPost, "/tickets", map[string]string{
		"title":       "Server down",
		"description": "My server is not responding since this morning",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	ticket := decodeTicket(t, rec.Body.Bytes())
	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("expected open status, got %q", ticket.Status)
	}
	if ticket.Priority != domain.TicketPriorityMedium {
		t.Fatalf("expected medium priority, got %q", ticket.Priority)
	}
	if ticket.ResolvedAt != nil {
		t.Fatalf("expected nil resolved_at on creation")
	}
}

func TestTicketHandlerCreate_MissingFields(t *testing.T) {
	repo := newStubTicketRepo()
	r := setupTicketRouter(repo, newMockRoleRepo(), "u1")

	rec := performRequest(r, http.MethodPost, "/tickets", map[string]string{
		"title": "Server down",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestTicketHandlerList_OnlyOwn(t *testing.T) {
	repo := newStubTicketRepo()
	roles := newMockRoleRepo()
	r1 := setupTicketRouter(repo, roles, "u1")
	r2 := setupTicketRouter(repo, roles, "u2")

	rec := performRequest(r1, http.MethodPost, "/tickets", map[string]string{
		"title": "Mine", "description": "belongs to u1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	rec = performRequest(r2, http.MethodPost, "/tickets", map[string]string{
		"title": "Theirs", "description": "belongs to u2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	rec = performRequest(r1, http.MethodGet, "/tickets", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp struct {
		Tickets []domain.Ticket `json:"tickets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Tickets) != 1 || resp.Tickets[0].Title != "Mine" {
		t.Fatalf("expected only own tickets, got %+v", resp.Tickets)
	}
}

func TestAdminHandlerListTickets_Forbidden(t *testing.T) {
	repo := newStubTicketRepo()
	r := setupTicketRouter(repo, newMockRoleRepo(), "u1")

	rec := performRequest(r, http.MethodGet, "/admin/tickets", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rec.Code)
	}
}

func TestAdminHandlerUpdateStatus_SetsResolvedAt(t *testing.T) {
	repo := newStubTicketRepo()
	roles := newMockRoleRepo("admin-1")
	userRouter := setupTicketRouter(repo, roles, "u1")
	adminRouter := setupTicketRouter(repo, roles, "admin-1")

	rec := performRequest(userRouter, http.MethodPost, "/tickets", map[string]string{
		"title": "Lag spikes", "description": "TPS drops below 10 at night",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	created := decodeTicket(t, rec.Body.Bytes())

	rec = performRequest(adminRouter, http.MethodPatch, "/admin/tickets/"+created.ID+"/status", map[string]string{
		"status": domain.TicketStatusResolved,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeTicket(t, rec.Body.Bytes())
	if updated.Status != domain.TicketStatusResolved {
		t.Fatalf("expected resolved status, got %q", updated.Status)
	}
	if updated.ResolvedAt == nil {
		t.Fatalf("expected resolved_at to be set")
	}

	// Al salir de resolved el timestamp se limpia.
	rec = performRequest(adminRouter, http.MethodPatch, "/admin/tickets/"+created.ID+"/status", map[string]string{
		"status": domain.TicketStatusOpen,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	updated = decodeTicket(t, rec.Body.Bytes())
	if updated.ResolvedAt != nil {
		t.Fatalf("expected resolved_at to be cleared")
	}
}

func TestAdminHandlerUpdateStatus_InvalidStatus(t *testing.T) {
	repo := newStubTicketRepo()
	roles := newMockRoleRepo("admin-1")
	r := setupTicketRouter(repo, roles, "admin-1")

	rec := performRequest(r, http.MethodPatch, "/admin/tickets/t1/status", map[string]string{
		"status": "archived",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestAdminHandlerUpdateStatus_NotFound(t *testing.T) {
	repo := newStubTicketRepo()
	roles := newMockRoleRepo("admin-1")
	r := setupTicketRouter(repo, roles, "admin-1")

	rec := performRequest(r, http.MethodPatch, "/admin/tickets/missing/status", map[string]string{
		"status": domain.TicketStatusClosed,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestAdminHandlerUpdateNotes(t *testing.T) {
	repo := newStubTicketRepo()
	roles := newMockRoleRepo("admin-1")
	userRouter := setupTicketRouter(repo, roles, "u1")
	adminRouter := setupTicketRouter(repo, roles, "admin-1")

	rec := performRequest(userRouter, http.MethodPost, "/tickets", map[string]string{
		"title": "Billing question", "description": "Was I charged twice?",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	created := decodeTicket(t, rec.Body.Bytes())

	rec = performRequest(adminRouter, http.MethodPatch, "/admin/tickets/"+created.ID+"/notes", map[string]string{
		"admin_notes": "Refund issued, closing after confirmation",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	updated := decodeTicket(t, rec.Body.Bytes())
	if updated.AdminNotes != "Refund issued, closing after confirmation" {
		t.Fatalf("unexpected notes %q", updated.AdminNotes)
	}
}

func TestAdminHandlerListUsersAndRoles(t *testing.T) {
	repo := newStubTicketRepo()
	roles := newMockRoleRepo("admin-1")
	r := setupTicketRouter(repo, roles, "admin-1")

	rec := performRequest(r, http.MethodGet, "/admin/users", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	rec = performRequest(r, http.MethodGet, "/admin/roles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp struct {
		Roles []domain.UserRole `json:"roles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Roles) != 1 || resp.Roles[0].UserID != "admin-1" {
		t.Fatalf("unexpected roles %+v", resp.Roles)
	}
}
