package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/quadro/internal/app"
	"github.com/thenoetrevino/quadro/internal/auth"
	"github.com/thenoetrevino/quadro/internal/events"
	"github.com/thenoetrevino/quadro/internal/metrics"
	"github.com/thenoetrevino/quadro/internal/models"
	"github.com/thenoetrevino/quadro/internal/testutil"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type harness struct {
	t      *testing.T
	app    *app.App
	router *gin.Engine
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()

	store := testutil.SetupTestDB(t)
	tokens, err := auth.NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	m := metrics.New()
	hub := events.NewHub(events.WithHubMetrics(m), events.WithPingInterval(0))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a := app.New(store,
		app.WithHub(hub),
		app.WithMetrics(m),
		app.WithTokenIssuer(tokens),
		app.WithLogger(logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = hub.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		hub.Shutdown()
	})

	if opts.Version == "" {
		opts.Version = "test"
	}
	return &harness{t: t, app: a, router: NewRouter(a, opts)}
}

func (h *harness) do(method, path, token string, body any) *httptest.ResponseRecorder {
	h.t.Helper()

	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(h.t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its token and user
func (h *harness) register(name string) (string, *models.User) {
	h.t.Helper()

	w := h.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     name,
		"email":    strings.ToLower(name) + "@example.com",
		"password": "password123",
	})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[authResponse](h.t, w)
	require.NotEmpty(h.t, resp.Token)
	return resp.Token, resp.User
}

func (h *harness) createBoard(token, title string) *models.Board {
	h.t.Helper()
	w := h.do(http.MethodPost, "/api/kanban/boards", token, gin.H{"title": title})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[*models.Board](h.t, w)
}

func (h *harness) board(token, boardID string) *models.BoardView {
	h.t.Helper()
	w := h.do(http.MethodGet, "/api/kanban/boards/"+boardID, token, nil)
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())
	return decode[*models.BoardView](h.t, w)
}

func (h *harness) createCard(token, columnID, title string) *models.Card {
	h.t.Helper()
	w := h.do(http.MethodPost, "/api/kanban/columns/"+columnID+"/cards", token, gin.H{"title": title})
	require.Equal(h.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[*models.Card](h.t, w)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// renderBoard prints ranks and titles only, so the output is stable
// across runs
func renderBoard(v *models.BoardView) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "board %s (%s) columns=%d cards=%d\n", v.Title, v.Access, v.TotalColumns, v.TotalCards)
	for _, col := range v.Columns {
		fmt.Fprintf(&b, "[%d] %s\n", col.Order, col.Title)
		for _, card := range col.Cards {
			fmt.Fprintf(&b, "  [%d] %s\n", card.Order, card.Title)
		}
	}
	return []byte(b.String())
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t, Options{})

	w := h.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = h.do(http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ready := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", ready.Status)
	assert.Equal(t, "test", ready.Version)
	assert.Equal(t, "healthy", ready.Checks["database"])
	assert.Equal(t, "0", ready.Checks["event_subscribers"])
	assert.NotContains(t, ready.Checks, "redis")

	w = h.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"metrics"`)

	w = h.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "quadro_http_requests_total")
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t, Options{})

	token, user := h.register("Ann")
	assert.Equal(t, "ann@example.com", user.Email)
	assert.NotContains(t, h.do(http.MethodGet, "/api/auth/me", token, nil).Body.String(), "password")

	w := h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decode[authResponse](t, w)
	assert.Equal(t, user.ID, login.User.ID)

	w = h.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[*models.User](t, w)
	assert.Equal(t, user.ID, me.ID)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       any
		wantStatus int
		wantKind   string
	}{
		{"wrong password", http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "nope-nope"}, http.StatusUnauthorized, "unauthorized"},
		{"duplicate email", http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ann", "email": "ANN@example.com", "password": "password123"}, http.StatusConflict, "conflict"},
		{"weak password", http.MethodPost, "/api/auth/register", "", gin.H{"name": "Bob", "email": "bob@example.com", "password": "short"}, http.StatusBadRequest, "validation"},
		{"malformed body", http.MethodPost, "/api/auth/login", "", "{", http.StatusBadRequest, "validation"},
		{"no token", http.MethodGet, "/api/kanban/boards", "", nil, http.StatusUnauthorized, "unauthorized"},
		{"bad token", http.MethodGet, "/api/kanban/boards", "garbage", nil, http.StatusUnauthorized, "unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantKind, decode[errorResponse](t, w).Kind)
		})
	}
}

func TestBoardFlow(t *testing.T) {
	h := newHarness(t, Options{})
	token, _ := h.register("Ann")

	board := h.createBoard(token, "Roadmap")
	view := h.board(token, board.ID)
	require.Len(t, view.Columns, 3)
	assert.Equal(t, models.AccessOwner, view.Access)

	todo, doing := view.Columns[0], view.Columns[1]
	a := h.createCard(token, todo.ID, "a")
	h.createCard(token, todo.ID, "b")
	c := h.createCard(token, todo.ID, "c")
	assert.Equal(t, 2, c.Order)

	w := h.do(http.MethodPatch, "/api/kanban/cards/"+c.ID+"/move", token, gin.H{"to_rank": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, decode[*models.Card](t, w).Order)

	w = h.do(http.MethodPatch, "/api/kanban/cards/"+a.ID+"/move", token, gin.H{"column_id": doing.ID, "to_rank": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	moved := decode[*models.Card](t, w)
	assert.Equal(t, doing.ID, moved.ColumnID)

	view = h.board(token, board.ID)
	ids := []string{view.Columns[0].Cards[1].ID, view.Columns[0].Cards[0].ID}
	w = h.do(http.MethodPatch, "/api/kanban/columns/"+todo.ID+"/cards/reorder", token, gin.H{"card_ids": ids})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	testutil.AssertDense(t, h.app.Store(), board.ID)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "board_flow", renderBoard(h.board(token, board.ID)))

	w = h.do(http.MethodGet, "/api/kanban/boards", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	summaries := decode[[]*models.BoardSummary](t, w)
	require.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].TotalColumns)
	assert.Equal(t, 3, summaries[0].TotalCards)
}

func TestColumnRoutes(t *testing.T) {
	h := newHarness(t, Options{})
	token, _ := h.register("Ann")
	board := h.createBoard(token, "Roadmap")

	w := h.do(http.MethodPost, "/api/kanban/boards/"+board.ID+"/columns", token, gin.H{"title": "Review"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	review := decode[*models.Column](t, w)
	assert.Equal(t, 3, review.Order)

	w = h.do(http.MethodPatch, "/api/kanban/columns/"+review.ID+"/move", token, gin.H{"to_rank": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"To Do", "Review", "In Progress", "Done"}, testutil.ColumnTitles(t, h.app.Store(), board.ID))

	view := h.board(token, board.ID)
	ids := make([]string, 0, len(view.Columns))
	for i := len(view.Columns) - 1; i >= 0; i-- {
		ids = append(ids, view.Columns[i].ID)
	}
	w = h.do(http.MethodPatch, "/api/kanban/boards/"+board.ID+"/columns/reorder", token, gin.H{"column_ids": ids})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"Done", "In Progress", "Review", "To Do"}, testutil.ColumnTitles(t, h.app.Store(), board.ID))

	w = h.do(http.MethodDelete, "/api/kanban/columns/"+review.ID, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	assert.Equal(t, []string{"Done", "In Progress", "To Do"}, testutil.ColumnTitles(t, h.app.Store(), board.ID))
	testutil.AssertDense(t, h.app.Store(), board.ID)
}

func TestMoveRejects(t *testing.T) {
	h := newHarness(t, Options{})
	token, _ := h.register("Ann")
	strangerToken, _ := h.register("Eve")

	board := h.createBoard(token, "Roadmap")
	view := h.board(token, board.ID)
	card := h.createCard(token, view.Columns[0].ID, "a")
	before := testutil.Dump(t, h.app.Store(), board.ID)

	tests := []struct {
		name       string
		token      string
		body       any
		wantStatus int
	}{
		{"missing to_rank", token, gin.H{}, http.StatusBadRequest},
		{"negative rank", token, gin.H{"to_rank": -1}, http.StatusBadRequest},
		{"past the end", token, gin.H{"to_rank": 2}, http.StatusBadRequest},
		{"unknown column", token, gin.H{"column_id": "missing", "to_rank": 0}, http.StatusNotFound},
		{"stranger", strangerToken, gin.H{"to_rank": 0}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(http.MethodPatch, "/api/kanban/cards/"+card.ID+"/move", tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	assert.Equal(t, before, testutil.Dump(t, h.app.Store(), board.ID))

	w := h.do(http.MethodGet, "/api/kanban/boards/"+board.ID, strangerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateCard_NullClearsAssignee(t *testing.T) {
	h := newHarness(t, Options{})
	token, user := h.register("Ann")
	board := h.createBoard(token, "Roadmap")
	view := h.board(token, board.ID)

	w := h.do(http.MethodPost, "/api/kanban/columns/"+view.Columns[0].ID+"/cards", token, gin.H{
		"title":       "a",
		"assignee_id": user.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	card := decode[*models.Card](t, w)
	require.NotNil(t, card.AssigneeID)

	// absent fields are untouched
	w = h.do(http.MethodPut, "/api/kanban/cards/"+card.ID, token, `{"title":"renamed"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[*models.Card](t, w)
	assert.Equal(t, "renamed", updated.Title)
	require.NotNil(t, updated.AssigneeID)

	w = h.do(http.MethodPut, "/api/kanban/cards/"+card.ID, token, `{"assignee_id":null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated = decode[*models.Card](t, w)
	assert.Nil(t, updated.AssigneeID)
	assert.Equal(t, "renamed", updated.Title)
}

func TestLabelRoutes(t *testing.T) {
	h := newHarness(t, Options{})
	token, _ := h.register("Ann")
	board := h.createBoard(token, "Roadmap")

	w := h.do(http.MethodGet, "/api/kanban/boards/"+board.ID+"/labels", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[[]*models.Label](t, w), len(models.DefaultLabels))

	w = h.do(http.MethodPost, "/api/kanban/boards/"+board.ID+"/labels", token, gin.H{"name": "Ops", "color": "#123456"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	label := decode[*models.Label](t, w)

	w = h.do(http.MethodPut, "/api/kanban/labels/"+label.ID, token, gin.H{"color": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodDelete, "/api/kanban/labels/"+label.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMembers(t *testing.T) {
	h := newHarness(t, Options{})
	ownerToken, _ := h.register("Ann")
	memberToken, member := h.register("Bob")
	board := h.createBoard(ownerToken, "Roadmap")

	w := h.do(http.MethodPost, "/api/kanban/boards/"+board.ID+"/members", ownerToken, gin.H{"email": "bob@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	view := h.board(memberToken, board.ID)
	assert.Equal(t, models.AccessMember, view.Access)

	// members write cards but not columns
	h.createCard(memberToken, view.Columns[0].ID, "from bob")
	w = h.do(http.MethodPost, "/api/kanban/boards/"+board.ID+"/columns", memberToken, gin.H{"title": "Nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodDelete, "/api/kanban/boards/"+board.ID+"/members/"+member.ID, ownerToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = h.do(http.MethodGet, "/api/kanban/boards/"+board.ID, memberToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t, Options{AllowedOrigin: "https://app.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/kanban/boards", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/kanban/boards", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantMsg    string
	}{
		{"not found", models.NotFound("card not found"), http.StatusNotFound, "not_found", "card not found"},
		{"validation", models.Validation("bad"), http.StatusBadRequest, "validation", "bad"},
		{"conflict", models.Conflict("busy", nil), http.StatusConflict, "conflict", "busy"},
		{"unclassified", fmt.Errorf("disk on fire"), http.StatusInternalServerError, "", "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode[errorResponse](t, w)
			assert.Equal(t, tt.wantKind, resp.Kind)
			assert.Equal(t, tt.wantMsg, resp.Error)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotEmpty(t, resp.ErrorID)
				assert.NotContains(t, w.Body.String(), "disk on fire")
			} else {
				assert.Empty(t, resp.ErrorID)
			}
		})
	}
}
