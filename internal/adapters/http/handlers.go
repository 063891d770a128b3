package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/astrocall/callgate/internal/app"
	"github.com/astrocall/callgate/internal/domain"
)

// Handlers binds the services to gin routes.
type Handlers struct {
	Tokens    *app.TokenService
	Sessions  *app.SessionService
	Directory *app.Directory
}

// writeError maps the service error taxonomy onto HTTP statuses. The
// body always carries a single error string, matching what the call
// screen expects.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch app.ReasonOf(err) {
	case app.ReasonUnauthenticated:
		status = http.StatusUnauthorized
	case app.ReasonInvalidArgument:
		status = http.StatusBadRequest
	case app.ReasonNotFound:
		status = http.StatusNotFound
	case app.ReasonForbidden:
		status = http.StatusForbidden
	case app.ReasonUnavailable:
		status = http.StatusInternalServerError
	}

	msg := err.Error()
	var ae *app.Error
	if errors.As(err, &ae) {
		msg = ae.Message
	}
	c.JSON(status, gin.H{"error": msg})
}

type tokenRequest struct {
	Room string `json:"room"`
}

func (h *Handlers) issueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Room == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room is required"})
		return
	}

	id := caller(c)
	grant, err := h.Tokens.IssueToken(c.Request.Context(), id.UserID, id.Name, req.Room)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, grant)
}

type createSessionRequest struct {
	AstroID string `json:"astroId"`
}

func (h *Handlers) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, err := h.Sessions.Create(c.Request.Context(), callerID(c), domain.UserID(req.AstroID))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *Handlers) getSession(c *gin.Context) {
	sess, err := h.Sessions.Get(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handlers) listSessions(c *gin.Context) {
	sessions, err := h.Sessions.List(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func (h *Handlers) startSession(c *gin.Context) {
	sess, err := h.Sessions.Start(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handlers) endSession(c *gin.Context) {
	sess, err := h.Sessions.End(c.Request.Context(), callerID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

type reviewRequest struct {
	SessionID string `json:"sessionId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func (h *Handlers) submitReview(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	review, err := h.Sessions.SubmitReview(c.Request.Context(), callerID(c), req.SessionID, req.Rating, req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *Handlers) listAstrologers(c *gin.Context) {
	astros, err := h.Directory.ListOnline(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, astros)
}

func (h *Handlers) upsertProfile(c *gin.Context) {
	var req app.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	astro, err := h.Directory.UpsertProfile(c.Request.Context(), callerID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, astro)
}

type presenceRequest struct {
	IsOnline bool `json:"isOnline"`
}

func (h *Handlers) setPresence(c *gin.Context) {
	var req presenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.Directory.SetPresence(c.Request.Context(), callerID(c), req.IsOnline); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isOnline": req.IsOnline})
}

func (h *Handlers) listReviews(c *gin.Context) {
	reviews, err := h.Directory.Reviews(c.Request.Context(), domain.UserID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
