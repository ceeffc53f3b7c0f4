// Part HTTP handlers.
//
// This file exposes the claim/complete protocol:
//   - POST /chains/{id}/parts/{number}/claim
//   - POST /chains/{id}/parts/{number}/complete
//   - POST /chains/{id}/parts/{number}/force-complete  (owner)
//   - POST /chains/{id}/parts/{number}/release         (holder or owner)
//
// A transition that happened returns 200 with the updated chain. One that
// was refused returns a RefusedResponse whose code is the reason: 404
// not_found, 403 not_permitted, 409 wrong_status or conflict. Store failures
// are 503 and may be retried; refusals should not be.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kozoukioden/HatimChainApp/internal/domain"
	"github.com/kozoukioden/HatimChainApp/internal/services"
)

// PartResponse is the result of a transition that changed the chain.
type PartResponse struct {
	Changed  bool            `json:"changed" example:"true"`
	Op       domain.Op       `json:"op" example:"claim"`
	Part     int             `json:"part" example:"7"`
	Chain    domain.Chain    `json:"chain"`
	Progress domain.Progress `json:"progress"`
}

// partParams validates :id and :number. Numbers outside the chain are left
// to the protocol, which reports not_found.
func partParams(c *gin.Context) (string, int, bool) {
	id, okID := chainIDParam(c)
	if !okID {
		return "", 0, false
	}
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "part number must be an integer")
		return "", 0, false
	}
	return id, n, true
}

func (h *Handlers) partOp(c *gin.Context, op domain.Op) {
	chainID, n, okParams := partParams(c)
	if !okParams {
		return
	}
	uid, uname, okUser := requireUser(c)
	if !okUser {
		return
	}

	ctx := c.Request.Context()
	var (
		out services.Outcome
		err error
	)
	switch op {
	case domain.OpClaim:
		out, err = h.partSvc.ClaimPart(ctx, chainID, n, uid, uname)
	case domain.OpComplete:
		out, err = h.partSvc.CompletePart(ctx, chainID, n, uid)
	case domain.OpForceComplete:
		out, err = h.partSvc.ForceCompletePart(ctx, chainID, n, uid)
	case domain.OpRelease:
		out, err = h.partSvc.ReleasePart(ctx, chainID, n, uid)
	}
	if err != nil {
		failService(c, err)
		return
	}
	if !out.Changed {
		refused(c, out.Reason)
		return
	}

	ok(c, http.StatusOK, PartResponse{
		Changed:  true,
		Op:       op,
		Part:     n,
		Chain:    out.Chain.VisibleTo(uid),
		Progress: domain.GetProgress(out.Chain),
	})
}

// ClaimPart godoc
// @ID          claimPart
// @Summary     Claim a part
// @Description Moves an available part to taken by the caller and adds the caller to the participants.
// @Tags        Parts
// @Produce     json
//
// @Param       X-User-ID    header  string  false "User ID (when no bearer token)"
// @Param       X-User-Name  header  string  false "Display name stored on the part"
// @Param       id           path    string  true  "Chain ID (UUID)"  format(uuid)
// @Param       number       path    int     true  "Part number"      minimum(1)
//
// @Success     200  {object} handlers.PartResponse
// @Failure     400  {object} handlers.ErrorResponse    "Bad parameters"
// @Failure     401  {object} handlers.ErrorResponse    "No user identity"
// @Failure     404  {object} handlers.RefusedResponse  "Chain or part not found"
// @Failure     409  {object} handlers.RefusedResponse  "wrong_status or conflict"
// @Failure     503  {object} handlers.ErrorResponse    "Store unavailable"
// @Router      /chains/{id}/parts/{number}/claim [post]
func (h *Handlers) ClaimPart(c *gin.Context) { h.partOp(c, domain.OpClaim) }

// CompletePart godoc
// @ID          completePart
// @Summary     Complete a part
// @Description Marks a part completed. Only the user holding the part may complete it.
// @Tags        Parts
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (when no bearer token)"
// @Param       id         path    string  true  "Chain ID (UUID)"  format(uuid)
// @Param       number     path    int     true  "Part number"      minimum(1)
//
// @Success     200  {object} handlers.PartResponse
// @Failure     400  {object} handlers.ErrorResponse    "Bad parameters"
// @Failure     401  {object} handlers.ErrorResponse    "No user identity"
// @Failure     403  {object} handlers.RefusedResponse  "Held by someone else"
// @Failure     404  {object} handlers.RefusedResponse  "Chain or part not found"
// @Failure     409  {object} handlers.RefusedResponse  "wrong_status or conflict"
// @Failure     503  {object} handlers.ErrorResponse    "Store unavailable"
// @Router      /chains/{id}/parts/{number}/complete [post]
func (h *Handlers) CompletePart(c *gin.Context) { h.partOp(c, domain.OpComplete) }

// ForceCompletePart godoc
// @ID          forceCompletePart
// @Summary     Force-complete a part
// @Description Lets the chain owner complete an available or taken part.
// @Tags        Parts
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (when no bearer token)"
// @Param       id         path    string  true  "Chain ID (UUID)"  format(uuid)
// @Param       number     path    int     true  "Part number"      minimum(1)
//
// @Success     200  {object} handlers.PartResponse
// @Failure     400  {object} handlers.ErrorResponse    "Bad parameters"
// @Failure     401  {object} handlers.ErrorResponse    "No user identity"
// @Failure     403  {object} handlers.RefusedResponse  "Not the owner"
// @Failure     404  {object} handlers.RefusedResponse  "Chain or part not found"
// @Failure     409  {object} handlers.RefusedResponse  "Already completed or conflict"
// @Failure     503  {object} handlers.ErrorResponse    "Store unavailable"
// @Router      /chains/{id}/parts/{number}/force-complete [post]
func (h *Handlers) ForceCompletePart(c *gin.Context) { h.partOp(c, domain.OpForceComplete) }

// ReleasePart godoc
// @ID          releasePart
// @Summary     Release a part
// @Description Returns a taken part to available. The holder or the chain owner may release it.
// @Tags        Parts
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (when no bearer token)"
// @Param       id         path    string  true  "Chain ID (UUID)"  format(uuid)
// @Param       number     path    int     true  "Part number"      minimum(1)
//
// @Success     200  {object} handlers.PartResponse
// @Failure     400  {object} handlers.ErrorResponse    "Bad parameters"
// @Failure     401  {object} handlers.ErrorResponse    "No user identity"
// @Failure     403  {object} handlers.RefusedResponse  "Neither holder nor owner"
// @Failure     404  {object} handlers.RefusedResponse  "Chain or part not found"
// @Failure     409  {object} handlers.RefusedResponse  "Not taken or conflict"
// @Failure     503  {object} handlers.ErrorResponse    "Store unavailable"
// @Router      /chains/{id}/parts/{number}/release [post]
func (h *Handlers) ReleasePart(c *gin.Context) { h.partOp(c, domain.OpRelease) }
