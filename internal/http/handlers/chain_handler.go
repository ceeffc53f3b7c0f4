// Chain HTTP handlers.
//
// This file exposes REST endpoints for chain resources:
//   - POST   /chains             (create, optional Idempotency-Key replay)
//   - GET    /chains             (list with filter/search/sort, paginated, ETag)
//   - GET    /chains/mine        (chains the caller created or joined, ETag)
//   - GET    /chains/search      (lookup by share code)
//   - GET    /chains/recent      (newest first)
//   - GET    /chains/{id}        (chain plus progress)
//   - GET    /chains/{id}/progress
//   - DELETE /chains/{id}        (owner only)
//   - GET    /users/{id}/stats
//
// Handlers are transport-thin: they bind input, call the chain service and
// translate results. Claimer names on chains with hidden participants are
// masked per viewer before anything leaves the process.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kozoukioden/HatimChainApp/internal/domain"
	"github.com/kozoukioden/HatimChainApp/internal/http/middleware"
	"github.com/kozoukioden/HatimChainApp/internal/repo"
	"github.com/kozoukioden/HatimChainApp/internal/services"
	"github.com/kozoukioden/HatimChainApp/internal/utils"
)

// CreateChainScope is the idempotency scope of POST /chains.
const CreateChainScope = "chains.create"

// DefaultIdempotencyTTL is how long a create can be safely retried with the
// same key when Handlers.IdempotencyTTL is unset.
const DefaultIdempotencyTTL = 24 * time.Hour

//
// Service contracts (context-aware)
//

// ChainService defines chain lifecycle and query operations consumed by the
// handlers. Implementations must be safe for concurrent use and honor ctx.
type ChainService interface {
	Create(ctx context.Context, spec domain.ChainSpec) (*domain.Chain, error)
	Get(ctx context.Context, id string) (*domain.Chain, error)
	Progress(ctx context.Context, id string) (domain.Progress, *domain.Chain, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.Chain, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Chain, error)
	SearchByCode(ctx context.Context, code string) ([]domain.Chain, error)
	Recent(ctx context.Context, limit int) ([]domain.Chain, error)
	Delete(ctx context.Context, id, actorID string) error
	UserStats(ctx context.Context, userID string) (domain.UserStats, error)
}

// PartService defines the claim/complete protocol. A refused transition is
// reported through Outcome.Reason with a nil error.
type PartService interface {
	ClaimPart(ctx context.Context, chainID string, n int, userID, userName string) (services.Outcome, error)
	CompletePart(ctx context.Context, chainID string, n int, userID string) (services.Outcome, error)
	ForceCompletePart(ctx context.Context, chainID string, n int, actorID string) (services.Outcome, error)
	ReleasePart(ctx context.Context, chainID string, n int, actorID string) (services.Outcome, error)
}

//
// Handler wiring
//

// Handlers groups the chain and part endpoints.
type Handlers struct {
	chainSvc ChainService
	partSvc  PartService

	// IdempotencyTTL bounds how long a create's Idempotency-Key replays.
	IdempotencyTTL time.Duration
}

// New constructs Handlers. *services.ChainService satisfies both contracts.
func New(chainSvc ChainService, partSvc PartService) *Handlers {
	return &Handlers{chainSvc: chainSvc, partSvc: partSvc, IdempotencyTTL: DefaultIdempotencyTTL}
}

// db returns the gorm handle behind the concrete service, for the ETag and
// idempotency lookups that sit outside the service contract.
func (h *Handlers) db() *gorm.DB {
	if svc, ok := h.chainSvc.(*services.ChainService); ok {
		return svc.DB
	}
	return nil
}

//
// DTOs
//

// CreateChainRequest is the JSON payload for creating a chain. The owner is
// always the authenticated caller.
type CreateChainRequest struct {
	Type               string     `json:"type" example:"hatim"`
	Title              string     `json:"title" example:"Ramazan hatmi"`
	Description        string     `json:"description" example:"Bayramdan önce bitirelim"`
	StartDate          *time.Time `json:"start_date,omitempty" example:"2025-03-01T00:00:00Z"`
	EndDate            time.Time  `json:"end_date" example:"2025-03-30T00:00:00Z"`
	TotalParts         int        `json:"total_parts,omitempty" example:"30"`
	SureName           string     `json:"sure_name,omitempty" example:"Yasin"`
	LiveStreamURL      string     `json:"live_stream_url,omitempty"`
	NiyetDescription   string     `json:"niyet_description,omitempty"`
	HiddenParticipants bool       `json:"hidden_participants,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListChainsResponse wraps a page of chains and pagination information.
type ListChainsResponse struct {
	Chains     []domain.Chain `json:"chains"`
	Pagination Pagination     `json:"pagination"`
}

// ChainsResponse is an unpaginated chain listing.
type ChainsResponse struct {
	Chains []domain.Chain `json:"chains"`
}

// ChainDetailResponse is a chain together with its progress.
type ChainDetailResponse struct {
	Chain    domain.Chain    `json:"chain"`
	Progress domain.Progress `json:"progress"`
}

// ProgressResponse is the progress of one chain.
type ProgressResponse struct {
	ChainID     string          `json:"chain_id"`
	IsCompleted bool            `json:"is_completed"`
	Progress    domain.Progress `json:"progress"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	return utils.ClampPage(c.Query("page"), c.Query("page_size"), 50, services.DefaultPageSize)
}

// paginate slices items for page/pageSize and computes the metadata.
func paginate(items []domain.Chain, page, pageSize int) ([]domain.Chain, Pagination) {
	from, to, totalPages := utils.PageBounds(len(items), page, pageSize)
	return items[from:to], Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      int64(len(items)),
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// visible masks hidden claimer names for viewer in place.
func visible(chains []domain.Chain, viewer string) []domain.Chain {
	for i := range chains {
		chains[i] = chains[i].VisibleTo(viewer)
	}
	return chains
}

// notModified sets a weak ETag derived from the chain count and latest
// update and reports whether the client's copy is current. Best effort: a
// stats failure just skips the header.
func (h *Handlers) notModified(c *gin.Context, scope, viewer, member string) bool {
	db := h.db()
	if db == nil {
		return false
	}
	count, maxTS, err := repo.ChainsStats(c.Request.Context(), db, member)
	if err != nil {
		return false
	}
	var ts int64
	if maxTS != nil {
		ts = maxTS.UnixMilli()
	}
	etag := fmt.Sprintf(`W/"%s:%s:%d:%d"`, scope, viewer, count, ts)
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

// requireUser returns the caller id or writes 401.
func requireUser(c *gin.Context) (id, name string, okUser bool) {
	id, name = middleware.CurrentUser(c)
	if id == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "user identity required")
		return "", "", false
	}
	return id, name, true
}

// chainIDParam validates the :id path segment.
func chainIDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chain id must be a UUID")
		return "", false
	}
	return id, true
}

//
// Handlers
//

// CreateChain godoc
// @ID          createChain
// @Summary     Create a chain
// @Description Creates a chain owned by the caller with every part available.
// @Description With an Idempotency-Key, a retried request returns the chain created first (200, Idempotency-Replayed: true).
// @Tags        Chains
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (when no bearer token)"  example(user123)
// @Param       X-User-Name      header  string  false "Display name"                     example(Ayşe)
// @Param       Idempotency-Key  header  string  false "Key for safe retries"             example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateChainRequest  true  "Chain to create"
//
// @Success     201  {object}  domain.Chain
// @Success     200  {object}  domain.Chain            "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid JSON or validation failed"
// @Failure     401  {object}  handlers.ErrorResponse  "No user identity"
// @Failure     503  {object}  handlers.ErrorResponse  "Store unavailable"
// @Router      /chains [post]
func (h *Handlers) CreateChain(c *gin.Context) {
	ctx := c.Request.Context()
	uid, uname, okUser := requireUser(c)
	if !okUser {
		return
	}

	var req CreateChainRequest
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body required"
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return
	}

	key, hasKey := middleware.GetIdempotencyKey(c)
	scope := middleware.GetIdempotencyScope(c)
	if scope == "" {
		scope = CreateChainScope
	}
	db := h.db()

	if hasKey && middleware.IsReplay(c) && db != nil {
		if rec, err := repo.GetIdempotency(ctx, db, uid, scope, key, time.Now().UTC()); err == nil {
			if prev, err := h.chainSvc.Get(ctx, rec.ResourceID); err == nil {
				c.Header("Idempotency-Replayed", "true")
				view := prev.VisibleTo(uid)
				ok(c, http.StatusOK, view)
				return
			}
		}
	}

	spec := domain.ChainSpec{
		Type:               domain.ChainType(req.Type),
		Title:              req.Title,
		Description:        req.Description,
		OwnerID:            uid,
		OwnerName:          uname,
		EndDate:            req.EndDate,
		TotalParts:         req.TotalParts,
		SureName:           req.SureName,
		LiveStreamURL:      req.LiveStreamURL,
		NiyetDescription:   req.NiyetDescription,
		HiddenParticipants: req.HiddenParticipants,
	}
	if req.StartDate != nil {
		spec.StartDate = *req.StartDate
	}

	ch, err := h.chainSvc.Create(ctx, spec)
	if err != nil {
		failService(c, err)
		return
	}

	if hasKey && db != nil {
		if _, err := repo.CreateIdempotency(ctx, db, uid, scope, key, ch.ID, http.StatusCreated, h.IdempotencyTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Str("chain_id", ch.ID).Msg("idempotency record not stored")
		}
	}
	ok(c, http.StatusCreated, ch)
}

// ListChains godoc
// @ID          listChains
// @Summary     List chains
// @Description Returns chains filtered, searched and sorted, then paginated. Supports weak ETag via If-None-Match.
// @Description At most 300 chains are considered.
// @Tags        Chains
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       filter     query  string  false "all, hatim, salavat, sure, dua, topludua or toplu_dua"  default(all)
// @Param       search     query  string  false "Substring of title, description or owner name"
// @Param       sort       query  string  false "newest, oldest, ending_soon, ending_late, most_participants, least_participants"  default(newest)
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(300) default(50)
//
// @Success     200  {object} handlers.ListChainsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Unknown filter or sort"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /chains [get]
func (h *Handlers) ListChains(c *gin.Context) {
	q, okQuery := listQuery(c)
	if !okQuery {
		return
	}
	viewer, _ := middleware.CurrentUser(c)
	if h.notModified(c, "chains", viewer, "") {
		return
	}

	items, err := h.chainSvc.List(c.Request.Context(), q)
	if err != nil {
		failService(c, err)
		return
	}
	page, pageSize := clampPagination(c)
	items, p := paginate(items, page, pageSize)
	ok(c, http.StatusOK, ListChainsResponse{Chains: visible(items, viewer), Pagination: p})
}

// ListMyChains godoc
// @ID          listMyChains
// @Summary     List the caller's chains
// @Description Returns chains the caller created or joined, with the same filter, search, sort and
// @Description pagination parameters as the public listing. Supports weak ETag.
// @Tags        Chains
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (when no bearer token)"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       filter     query  string  false "all, hatim, salavat, sure, dua, topludua or toplu_dua"  default(all)
// @Param       search     query  string  false "Substring of title, description or owner name"
// @Param       sort       query  string  false "newest, oldest, ending_soon, ending_late, most_participants, least_participants"  default(newest)
// @Param       page       query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size  query  int     false "Items per page"  minimum(1) maximum(300) default(50)
//
// @Success     200  {object} handlers.ListChainsResponse
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Unknown filter or sort"
// @Failure     401  {object} handlers.ErrorResponse "No user identity"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /chains/mine [get]
func (h *Handlers) ListMyChains(c *gin.Context) {
	uid, _, okUser := requireUser(c)
	if !okUser {
		return
	}
	q, okQuery := listQuery(c)
	if !okQuery {
		return
	}
	if h.notModified(c, "mine", uid, uid) {
		return
	}
	items, err := h.chainSvc.ListByUser(c.Request.Context(), uid)
	if err != nil {
		failService(c, err)
		return
	}
	page, pageSize := clampPagination(c)
	items, p := paginate(q.Apply(items), page, pageSize)
	ok(c, http.StatusOK, ListChainsResponse{Chains: visible(items, uid), Pagination: p})
}

// listQuery parses filter, search and sort or writes 400 validation_failed.
func listQuery(c *gin.Context) (domain.ListQuery, bool) {
	q, err := domain.ParseListQuery(c.Query("filter"), c.Query("search"), c.Query("sort"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return domain.ListQuery{}, false
	}
	return q, true
}

// SearchChains godoc
// @ID          searchChains
// @Summary     Find chains by code
// @Description Case-insensitive substring match on chain ID or title, for share codes.
// @Tags        Chains
// @Produce     json
//
// @Param       code  query  string  true  "Share code or part of a title"  example(3f2a)
//
// @Success     200  {object} handlers.ChainsResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing code"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /chains/search [get]
func (h *Handlers) SearchChains(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "code required")
		return
	}
	items, err := h.chainSvc.SearchByCode(c.Request.Context(), code)
	if err != nil {
		failService(c, err)
		return
	}
	viewer, _ := middleware.CurrentUser(c)
	ok(c, http.StatusOK, ChainsResponse{Chains: visible(items, viewer)})
}

// RecentChains godoc
// @ID          recentChains
// @Summary     Newest chains
// @Tags        Chains
// @Produce     json
//
// @Param       limit  query  int  false "How many"  minimum(1) maximum(300) default(10)
//
// @Success     200  {object} handlers.ChainsResponse
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /chains/recent [get]
func (h *Handlers) RecentChains(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), services.DefaultRecentLimit)
	items, err := h.chainSvc.Recent(c.Request.Context(), limit)
	if err != nil {
		failService(c, err)
		return
	}
	viewer, _ := middleware.CurrentUser(c)
	ok(c, http.StatusOK, ChainsResponse{Chains: visible(items, viewer)})
}

// GetChain godoc
// @ID          getChain
// @Summary     Get a chain
// @Description Returns the chain and its progress. Claimer names are masked on chains with hidden participants unless the caller owns it.
// @Tags        Chains
// @Produce     json
//
// @Param       id  path  string  true  "Chain ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.ChainDetailResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad chain id"
// @Failure     404  {object} handlers.ErrorResponse "Chain not found"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /chains/{id} [get]
func (h *Handlers) GetChain(c *gin.Context) {
	id, okID := chainIDParam(c)
	if !okID {
		return
	}
	prog, ch, err := h.chainSvc.Progress(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	viewer, _ := middleware.CurrentUser(c)
	ok(c, http.StatusOK, ChainDetailResponse{Chain: ch.VisibleTo(viewer), Progress: prog})
}

// GetProgress godoc
// @ID          getProgress
// @Summary     Chain progress
// @Tags        Chains
// @Produce     json
//
// @Param       id  path  string  true  "Chain ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.ProgressResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad chain id"
// @Failure     404  {object} handlers.ErrorResponse "Chain not found"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /chains/{id}/progress [get]
func (h *Handlers) GetProgress(c *gin.Context) {
	id, okID := chainIDParam(c)
	if !okID {
		return
	}
	prog, ch, err := h.chainSvc.Progress(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ProgressResponse{ChainID: ch.ID, IsCompleted: ch.IsCompleted, Progress: prog})
}

// DeleteChain godoc
// @ID          deleteChain
// @Summary     Delete a chain
// @Description Permanently removes a chain. Only its owner may delete it.
// @Tags        Chains
//
// @Param       X-User-ID  header  string  false "User ID (when no bearer token)"
// @Param       id         path    string  true  "Chain ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad chain id"
// @Failure     401  {object} handlers.ErrorResponse "No user identity"
// @Failure     403  {object} handlers.ErrorResponse "Not the owner"
// @Failure     404  {object} handlers.ErrorResponse "Chain not found"
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /chains/{id} [delete]
func (h *Handlers) DeleteChain(c *gin.Context) {
	id, okID := chainIDParam(c)
	if !okID {
		return
	}
	uid, _, okUser := requireUser(c)
	if !okUser {
		return
	}
	if err := h.chainSvc.Delete(c.Request.Context(), id, uid); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// UserStats godoc
// @ID          userStats
// @Summary     User activity counts
// @Description Counts of chains created and joined and parts taken and completed. No scoring.
// @Tags        Users
// @Produce     json
//
// @Param       id  path  string  true  "User ID"
//
// @Success     200  {object} domain.UserStats
// @Failure     503  {object} handlers.ErrorResponse "Store unavailable"
// @Router      /users/{id}/stats [get]
func (h *Handlers) UserStats(c *gin.Context) {
	uid := strings.TrimSpace(c.Param("id"))
	if uid == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id required")
		return
	}
	st, err := h.chainSvc.UserStats(c.Request.Context(), uid)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, st)
}
