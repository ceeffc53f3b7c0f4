package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kozoukioden/HatimChainApp/internal/domain"
	"github.com/kozoukioden/HatimChainApp/internal/http/middleware"
	"github.com/kozoukioden/HatimChainApp/internal/repo"
	"github.com/kozoukioden/HatimChainApp/internal/services"
)

// ---------- test DB + repo shim ----------

func newChainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:chain_handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// testChainRepo implements services.ChainRepo with the repo package, like
// the router's shim.
type testChainRepo struct{}

func (testChainRepo) CreateChain(ctx context.Context, db *gorm.DB, c *domain.Chain) (*domain.Chain, error) {
	return repo.CreateChain(ctx, db, c)
}

func (testChainRepo) GetChain(ctx context.Context, db *gorm.DB, id string) (*domain.Chain, error) {
	return repo.GetChain(ctx, db, id)
}

func (testChainRepo) ListChains(ctx context.Context, db *gorm.DB, limit int) ([]domain.Chain, error) {
	return repo.ListChains(ctx, db, limit)
}

func (testChainRepo) RecentChains(ctx context.Context, db *gorm.DB, limit int) ([]domain.Chain, error) {
	return repo.RecentChains(ctx, db, limit)
}

func (testChainRepo) ListChainsByUser(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Chain, error) {
	return repo.ListChainsByUser(ctx, db, userID, limit)
}

func (testChainRepo) ListOpenChains(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.Chain, error) {
	return repo.ListOpenChains(ctx, db, now)
}

func (testChainRepo) UpdateChainDocument(ctx context.Context, db *gorm.DB, c *domain.Chain, expected int64) error {
	return repo.UpdateChainDocument(ctx, db, c, expected)
}

func (testChainRepo) DeleteChain(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeleteChain(ctx, db, id)
}

func newTestService(t *testing.T) (*services.ChainService, *gorm.DB) {
	t.Helper()
	db := newChainDB(t)
	return services.NewChainService(db, testChainRepo{}), db
}

// newRouter mounts every chain route behind Identity, the way the real
// router does (without the unrelated middleware).
func newRouter(h *Handlers, db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Identity(middleware.IdentityOptions{}))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{
		Scope: func(*gin.Context) string { return CreateChainScope },
	}, func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
		if db == nil {
			return false, nil
		}
		rec, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
		return err == nil && rec != nil, err
	}))
	r.POST("/chains", h.CreateChain)
	r.GET("/chains", h.ListChains)
	r.GET("/chains/mine", h.ListMyChains)
	r.GET("/chains/search", h.SearchChains)
	r.GET("/chains/recent", h.RecentChains)
	r.GET("/chains/:id", h.GetChain)
	r.DELETE("/chains/:id", h.DeleteChain)
	r.GET("/chains/:id/progress", h.GetProgress)
	r.POST("/chains/:id/parts/:number/claim", h.ClaimPart)
	r.POST("/chains/:id/parts/:number/complete", h.CompletePart)
	r.POST("/chains/:id/parts/:number/force-complete", h.ForceCompletePart)
	r.POST("/chains/:id/parts/:number/release", h.ReleasePart)
	r.GET("/users/:id/stats", h.UserStats)
	return r
}

type call struct {
	method, path, body string
	user, name         string
	hdr                map[string]string
}

func do(r http.Handler, cl call) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if cl.body != "" {
		body = bytes.NewBufferString(cl.body)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(cl.method, cl.path, body)
	if cl.user != "" {
		req.Header.Set(middleware.HeaderUserID, cl.user)
	}
	if cl.name != "" {
		req.Header.Set(middleware.HeaderUserName, cl.name)
	}
	for k, v := range cl.hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("json: %v body=%s", err, w.Body.String())
	}
	return v
}

func futureJSON(extra string) string {
	end := time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339)
	return `{"end_date":"` + end + `"` + extra + `}`
}

func createVia(t *testing.T, r http.Handler, user, extra string) domain.Chain {
	t.Helper()
	w := do(r, call{method: http.MethodPost, path: "/chains", user: user, name: strings.ToUpper(user), body: futureJSON(extra)})
	if w.Code != http.StatusCreated {
		t.Fatalf("create -> %d body=%s", w.Code, w.Body.String())
	}
	return decode[domain.Chain](t, w)
}

// ---------- stub service for error paths ----------

type stubSvc struct {
	err error
	out services.Outcome
}

func (s stubSvc) Create(context.Context, domain.ChainSpec) (*domain.Chain, error) { return nil, s.err }
func (s stubSvc) Get(context.Context, string) (*domain.Chain, error)              { return nil, s.err }
func (s stubSvc) Progress(context.Context, string) (domain.Progress, *domain.Chain, error) {
	return domain.Progress{}, nil, s.err
}
func (s stubSvc) List(context.Context, domain.ListQuery) ([]domain.Chain, error)  { return nil, s.err }
func (s stubSvc) ListByUser(context.Context, string) ([]domain.Chain, error)      { return nil, s.err }
func (s stubSvc) SearchByCode(context.Context, string) ([]domain.Chain, error)    { return nil, s.err }
func (s stubSvc) Recent(context.Context, int) ([]domain.Chain, error)             { return nil, s.err }
func (s stubSvc) Delete(context.Context, string, string) error                    { return s.err }
func (s stubSvc) UserStats(context.Context, string) (domain.UserStats, error)     { return domain.UserStats{}, s.err }
func (s stubSvc) ClaimPart(context.Context, string, int, string, string) (services.Outcome, error) {
	return s.out, s.err
}
func (s stubSvc) CompletePart(context.Context, string, int, string) (services.Outcome, error) {
	return s.out, s.err
}
func (s stubSvc) ForceCompletePart(context.Context, string, int, string) (services.Outcome, error) {
	return s.out, s.err
}
func (s stubSvc) ReleasePart(context.Context, string, int, string) (services.Outcome, error) {
	return s.out, s.err
}

// ---------- helpers-only tests ----------

func Test_clampPagination_and_paginate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=-5&page_size=9999", nil)
	if p, ps := clampPagination(c); p != 1 || ps != services.DefaultPageSize {
		t.Fatalf("clamp bounds got p=%d ps=%d", p, ps)
	}
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=&page_size=0", nil)
	if p, ps := clampPagination(c); p != 1 || ps != 1 {
		t.Fatalf("clamp zero got p=%d ps=%d", p, ps)
	}
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ps := clampPagination(c); ps != 50 {
		t.Fatalf("default page size %d", ps)
	}

	items := make([]domain.Chain, 5)
	for i := range items {
		items[i].ID = fmt.Sprint(i)
	}
	page, p := paginate(items, 2, 2)
	if len(page) != 2 || page[0].ID != "2" || p.TotalPages != 3 || !p.HasNext || p.Total != 5 {
		t.Fatalf("page 2: %v %+v", page, p)
	}
	page, p = paginate(items, 3, 2)
	if len(page) != 1 || p.HasNext {
		t.Fatalf("last page: %v %+v", page, p)
	}
	if page, _ = paginate(items, 9, 2); len(page) != 0 {
		t.Fatalf("past the end should be empty, got %d", len(page))
	}
}

// ---------- CreateChain ----------

func TestCreateChain_AuthBindValidation(t *testing.T) {
	svc, db := newTestService(t)
	r := newRouter(New(svc, svc), db)

	if w := do(r, call{method: http.MethodPost, path: "/chains", body: futureJSON(`,"type":"hatim","title":"x"`)}); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous -> %d", w.Code)
	}
	if w := do(r, call{method: http.MethodPost, path: "/chains", user: "u1", body: "{bad"}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}
	if w := do(r, call{method: http.MethodPost, path: "/chains", user: "u1"}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty body -> %d", w.Code)
	}

	past := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	w := do(r, call{method: http.MethodPost, path: "/chains", user: "u1", body: `{"type":"hatim","title":"x","end_date":"` + past + `"}`})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("past end -> %d", w.Code)
	}
	if e := decode[ErrorResponse](t, w); e.Code != ErrCodeValidation || !strings.Contains(e.Message, "end_date") {
		t.Fatalf("validation body: %+v", e)
	}

	w = do(r, call{method: http.MethodPost, path: "/chains", user: "u1", body: futureJSON(`,"type":"sure","title":"x"`)})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "sure_name") {
		t.Fatalf("sure without name -> %d %s", w.Code, w.Body.String())
	}

	var n int64
	db.Model(&domain.Chain{}).Count(&n)
	if n != 0 {
		t.Fatalf("invalid creates must not write, found %d chains", n)
	}
}

func TestCreateChain_Success(t *testing.T) {
	svc, db := newTestService(t)
	r := newRouter(New(svc, svc), db)

	ch := createVia(t, r, "u1", `,"type":"hatim","title":"  Ramazan  ","total_parts":7`)
	if ch.CreatedBy != "u1" || ch.CreatedByName != "U1" || ch.Title != "Ramazan" {
		t.Fatalf("owner/title: %+v", ch)
	}
	if ch.TotalParts != domain.HatimParts || len(ch.Parts) != domain.HatimParts {
		t.Fatalf("hatim must be pinned to 30 parts, got %d/%d", ch.TotalParts, len(ch.Parts))
	}
	if ch.IsCompleted || len(ch.Participants) != 1 || ch.Participants[0] != "u1" {
		t.Fatalf("fresh chain state: %+v", ch)
	}
	for _, p := range ch.Parts {
		if p.Status != domain.PartAvailable {
			t.Fatalf("part %d status %s", p.Number, p.Status)
		}
	}
}

func TestCreateChain_IdempotencyReplay(t *testing.T) {
	svc, db := newTestService(t)
	r := newRouter(New(svc, svc), db)

	body := futureJSON(`,"type":"salavat","title":"retry me"`)
	hdr := map[string]string{middleware.HeaderIdempotencyKey: "key-1"}

	w1 := do(r, call{method: http.MethodPost, path: "/chains", user: "u1", body: body, hdr: hdr})
	if w1.Code != http.StatusCreated {
		t.Fatalf("first -> %d %s", w1.Code, w1.Body.String())
	}
	w2 := do(r, call{method: http.MethodPost, path: "/chains", user: "u1", body: body, hdr: hdr})
	if w2.Code != http.StatusOK || w2.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay -> %d hdr=%v", w2.Code, w2.Header())
	}
	if a, b := decode[domain.Chain](t, w1), decode[domain.Chain](t, w2); a.ID != b.ID {
		t.Fatalf("replay returned %s, want %s", b.ID, a.ID)
	}

	// same key from another user is a different request
	if w := do(r, call{method: http.MethodPost, path: "/chains", user: "u2", body: body, hdr: hdr}); w.Code != http.StatusCreated {
		t.Fatalf("other user -> %d", w.Code)
	}
	// without a key a retry duplicates
	do(r, call{method: http.MethodPost, path: "/chains", user: "u1", body: body})

	var n int64
	db.Model(&domain.Chain{}).Count(&n)
	if n != 3 {
		t.Fatalf("chains = %d, want 3", n)
	}
}

func TestCreateChain_ServiceErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: timeout", services.ErrUnavailable), http.StatusServiceUnavailable, ErrCodeUnavailable},
		{gorm.ErrInvalidField, http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range tests {
		r := newRouter(New(stubSvc{err: tc.err}, stubSvc{}), nil)
		w := do(r, call{method: http.MethodPost, path: "/chains", user: "u1", body: futureJSON(`,"type":"dua","title":"x"`)})
		if w.Code != tc.status || decode[ErrorResponse](t, w).Code != tc.code {
			t.Fatalf("%v -> %d %s", tc.err, w.Code, w.Body.String())
		}
		if tc.status == http.StatusServiceUnavailable && w.Header().Get("Retry-After") == "" {
			t.Fatal("503 without Retry-After")
		}
	}
}

// ---------- ListChains ----------

func TestListChains_FilterSortPaginate(t *testing.T) {
	svc, db := newTestService(t)
	r := newRouter(New(svc, svc), db)

	createVia(t, r, "u1", `,"type":"dua","title":"Şifa duası"`)
	createVia(t, r, "u2", `,"type":"salavat","title":"Cuma salavatı"`)
	createVia(t, r, "u3", `,"type":"dua","title":"Yağmur duası"`)

	for _, path := range []string{"/chains?filter=nope", "/chains?sort=random"} {
		w := do(r, call{method: http.MethodGet, path: path})
		if w.Code != http.StatusBadRequest || decode[ErrorResponse](t, w).Code != ErrCodeValidation {
			t.Fatalf("%s -> %d %s", path, w.Code, w.Body.String())
		}
	}

	w := do(r, call{method: http.MethodGet, path: "/chains?filter=dua&sort=oldest&page=1&page_size=1"})
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d %s", w.Code, w.Body.String())
	}
	out := decode[ListChainsResponse](t, w)
	if out.Pagination.Total != 2 || out.Pagination.TotalPages != 2 || !out.Pagination.HasNext {
		t.Fatalf("pagination: %+v", out.Pagination)
	}
	if len(out.Chains) != 1 || out.Chains[0].Title != "Şifa duası" {
		t.Fatalf("first dua oldest: %+v", out.Chains)
	}

	out = decode[ListChainsResponse](t, do(r, call{method: http.MethodGet, path: "/chains?search=SALAVAT"}))
	if len(out.Chains) != 1 || out.Chains[0].CreatedBy != "u2" {
		t.Fatalf("search: %+v", out.Chains)
	}
}

func TestListChains_ETag304(t *testing.T) {
	svc, db := newTestService(t)
	r := newRouter(New(svc, svc), db)
	createVia(t, r, "u1", `,"type":"dua","title":"a"`)

	w := do(r, call{method: http.MethodGet, path: "/chains", user: "u9"})
	etag := w.Header().Get("ETag")
	if w.Code != http.StatusOK || !strings.HasPrefix(etag, `W/"chains:u9:1:`) {
		t.Fatalf("etag %q code %d", etag, w.Code)
	}
	if w := do(r, call{method: http.MethodGet, path: "/chains", user: "u9", hdr: map[string]string{"If-None-Match": etag}}); w.Code != http.StatusNotModified {
		t.Fatalf("304 -> %d", w.Code)
	}

	// a write invalidates the tag
	createVia(t, r, "u2", `,"type":"dua","title":"b"`)
	if w := do(r, call{method: http.MethodGet, path: "/chains", user: "u9", hdr: map[string]string{"If-None-Match": etag}}); w.Code != http.StatusOK {
		t.Fatalf("stale etag -> %d", w.Code)
	}
}

func TestListChains_EmptyStateAndStubService(t *testing.T) {
	svc, db := newTestService(t)
	r := newRouter(New(svc, svc), db)
	w := do(r, call{method: http.MethodGet, path: "/chains"})
	if w.Code != http.StatusOK || w.Header().Get("ETag") != `W/"chains::0:0"` {
		t.Fatalf("empty -> %d etag %q", w.Code, w.Header().Get("ETag"))
	}
	out := decode[ListChainsResponse](t, w)
	if out.Pagination.Total != 0 || out.Pagination.TotalPages != 0 || out.Pagination.HasNext {
		t.Fatalf("pagination: %+v", out.Pagination)
	}

	// stub service has no DB, so no ETag, and its error surfaces
	rs := newRouter(New(stubSvc{err: fmt.Errorf("%w: x", services.ErrUnavailable)}, stubSvc{}), nil)
	w = do(rs, call{method: http.MethodGet, path: "/chains", hdr: map[string]string{"If-None-Match": `W/"nope"`}})
	if w.Code != http.StatusServiceUnavailable || w.Header().Get("ETag") != "" {
		t.Fatalf("stub -> %d etag %q", w.Code, w.Header().Get("ETag"))
	}
}

func TestHiddenParticipants_MaskedForNonOwners(t *testing.T) {
	svc, db := newTestService(t)
	r := newRouter(New(svc, svc), db)
	ch := createVia(t, r, "owner", `,"type":"topludua","title":"gizli","hidden_participants":true`)

	w := do(r, call{method: http.MethodPost, path: "/chains/" + ch.ID + "/parts/1/claim", user: "u1", name: "Ahmet Yılmaz"})
	if w.Code != http.StatusOK {
		t.Fatalf("claim -> %d %s", w.Code, w.Body.String())
	}
	// the claimer sees the masked name too but keeps their own id
	if p := decode[PartResponse](t, w).Chain.Parts[0]; p.TakenByName != domain.HiddenParticipantName || p.TakenBy != "u1" {
		t.Fatalf("claimer view %+v", p)
	}

	other := decode[ChainDetailResponse](t, do(r, call{method: http.MethodGet, path: "/chains/" + ch.ID, user: "u2"}))
	if p := other.Chain.Parts[0]; p.TakenByName != domain.HiddenParticipantName || p.TakenBy != "" {
		t.Fatalf("other view %+v", p)
	}
	owner := decode[ChainDetailResponse](t, do(r, call{method: http.MethodGet, path: "/chains/" + ch.ID, user: "owner"}))
	if p := owner.Chain.Parts[0]; p.TakenByName != "Ahmet Yılmaz" || p.TakenBy != "u1" {
		t.Fatalf("owner view %+v", p)
	}
	list := decode[ListChainsResponse](t, do(r, call{method: http.MethodGet, path: "/chains", user: "u2"}))
	if p := list.Chains[0].Parts[0]; p.TakenByName != domain.HiddenParticipantName || p.TakenBy != "" {
		t.Fatalf("list view %+v", p)
	}
}

// ---------- GetChain / Progress / Delete ----------

func TestGetChainProgressDelete(t *testing.T) {
	svc, db := newTestService(t)
	r := newRouter(New(svc, svc), db)
	ch := createVia(t, r, "u1", `,"type":"salavat","title":"x","total_parts":4`)

	if w := do(r, call{method: http.MethodGet, path: "/chains/not-a-uuid"}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id -> %d", w.Code)
	}
	if w := do(r, call{method: http.MethodGet, path: "/chains/" + uuid.NewString()}); w.Code != http.StatusNotFound {
		t.Fatalf("missing -> %d", w.Code)
	}

	do(r, call{method: http.MethodPost, path: "/chains/" + ch.ID + "/parts/1/claim", user: "u2"})
	do(r, call{method: http.MethodPost, path: "/chains/" + ch.ID + "/parts/1/complete", user: "u2"})
	do(r, call{method: http.MethodPost, path: "/chains/" + ch.ID + "/parts/2/claim", user: "u3"})

	det := decode[ChainDetailResponse](t, do(r, call{method: http.MethodGet, path: "/chains/" + ch.ID}))
	if det.Progress != (domain.Progress{Percent: 25, Completed: 1, Taken: 1, Available: 2}) {
		t.Fatalf("detail progress %+v", det.Progress)
	}
	pr := decode[ProgressResponse](t, do(r, call{method: http.MethodGet, path: "/chains/" + ch.ID + "/progress"}))
	if pr.ChainID != ch.ID || pr.IsCompleted || pr.Progress.Percent != 25 {
		t.Fatalf("progress %+v", pr)
	}

	if w := do(r, call{method: http.MethodDelete, path: "/chains/" + ch.ID}); w.Code != http.StatusUnauthorized {
		t.Fatalf("anon delete -> %d", w.Code)
	}
	w := do(r, call{method: http.MethodDelete, path: "/chains/" + ch.ID, user: "u2"})
	if w.Code != http.StatusForbidden || decode[ErrorResponse](t, w).Code != ErrCodeNotPermitted {
		t.Fatalf("non-owner delete -> %d %s", w.Code, w.Body.String())
	}
	if w := do(r, call{method: http.MethodDelete, path: "/chains/" + ch.ID, user: "u1"}); w.Code != http.StatusNoContent {
		t.Fatalf("owner delete -> %d", w.Code)
	}
	if w := do(r, call{method: http.MethodGet, path: "/chains/" + ch.ID + "/progress"}); w.Code != http.StatusNotFound {
		t.Fatalf("after delete -> %d", w.Code)
	}
	if w := do(r, call{method: http.MethodDelete, path: "/chains/" + ch.ID, user: "u1"}); w.Code != http.StatusNotFound {
		t.Fatalf("double delete -> %d", w.Code)
	}
}

// ---------- Mine / Search / Recent / Stats ----------

func TestMineSearchRecentStats(t *testing.T) {
	svc, db := newTestService(t)
	r := newRouter(New(svc, svc), db)
	a := createVia(t, r, "u1", `,"type":"hatim","title":"Bayram hatmi"`)
	b := createVia(t, r, "u2", `,"type":"sure","title":"Yasin","sure_name":"Yasin"`)
	createVia(t, r, "u3", `,"type":"dua","title":"Dua"`)

	do(r, call{method: http.MethodPost, path: "/chains/" + b.ID + "/parts/3/claim", user: "u1"})
	do(r, call{method: http.MethodPost, path: "/chains/" + b.ID + "/parts/3/complete", user: "u1"})
	do(r, call{method: http.MethodPost, path: "/chains/" + a.ID + "/parts/1/claim", user: "u1"})

	if w := do(r, call{method: http.MethodGet, path: "/chains/mine"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("anon mine -> %d", w.Code)
	}
	w := do(r, call{method: http.MethodGet, path: "/chains/mine", user: "u1"})
	mine := decode[ListChainsResponse](t, w)
	if len(mine.Chains) != 2 || mine.Chains[0].ID != b.ID || mine.Chains[1].ID != a.ID {
		t.Fatalf("mine newest first: %+v", mine.Chains)
	}
	if mine.Pagination.Total != 2 || mine.Pagination.HasNext {
		t.Fatalf("mine pagination: %+v", mine.Pagination)
	}
	if et := w.Header().Get("ETag"); !strings.HasPrefix(et, `W/"mine:u1:2:`) {
		t.Fatalf("mine etag %q", et)
	}
	mine = decode[ListChainsResponse](t, do(r, call{method: http.MethodGet, path: "/chains/mine?sort=oldest&page_size=1", user: "u1"}))
	if len(mine.Chains) != 1 || mine.Chains[0].ID != a.ID || !mine.Pagination.HasNext {
		t.Fatalf("mine oldest page: %+v %+v", mine.Chains, mine.Pagination)
	}
	mine = decode[ListChainsResponse](t, do(r, call{method: http.MethodGet, path: "/chains/mine?filter=sure&search=yasin", user: "u1"}))
	if len(mine.Chains) != 1 || mine.Chains[0].ID != b.ID {
		t.Fatalf("mine filtered: %+v", mine.Chains)
	}
	if w := do(r, call{method: http.MethodGet, path: "/chains/mine?filter=nope", user: "u1"}); w.Code != http.StatusBadRequest || decode[ErrorResponse](t, w).Code != ErrCodeValidation {
		t.Fatalf("mine bad filter -> %d", w.Code)
	}

	if w := do(r, call{method: http.MethodGet, path: "/chains/search?code=%20"}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty code -> %d", w.Code)
	}
	found := decode[ChainsResponse](t, do(r, call{method: http.MethodGet, path: "/chains/search?code=" + strings.ToUpper(b.ID[:8])}))
	if len(found.Chains) != 1 || found.Chains[0].ID != b.ID {
		t.Fatalf("search by code: %+v", found.Chains)
	}

	recent := decode[ChainsResponse](t, do(r, call{method: http.MethodGet, path: "/chains/recent?limit=2"}))
	if len(recent.Chains) != 2 || recent.Chains[1].ID != b.ID {
		t.Fatalf("recent: %+v", recent.Chains)
	}

	st := decode[domain.UserStats](t, do(r, call{method: http.MethodGet, path: "/users/u1/stats"}))
	want := domain.UserStats{UserID: "u1", ChainsCreated: 1, ChainsJoined: 2, PartsTaken: 1, PartsCompleted: 1, SurahsCompleted: 1}
	if st != want {
		t.Fatalf("stats %+v want %+v", st, want)
	}
}
