package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/diettrack/internal/config"
	"github.com/geocoder89/diettrack/internal/domain/user"
	"github.com/geocoder89/diettrack/internal/http/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// session cookie lifetime: 7 days
const sessionCookieMaxAge = 604800

type UserStore interface {
	Create(ctx context.Context, u user.User) error
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetBySessionID(ctx context.Context, sessionID string) (user.User, error)
}

type UsersHandler struct {
	users UserStore
}

func NewUsersHandler(users UserStore) *UsersHandler {
	return &UsersHandler{users: users}
}

// Create registers a new user. A request without a session cookie gets a
// fresh token minted and set before anything else, so the cookie survives
// even when registration then fails with a conflict. That ordering is part
// of the observed contract.
func (h *UsersHandler) Create(ctx *gin.Context) {
	sessionID, err := ctx.Cookie(middlewares.SessionCookieName)

	if err != nil || sessionID == "" {
		sessionID = uuid.NewString()

		setSessionCookie(ctx, sessionID)
	}

	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	_, err = h.users.GetByEmail(cctx, req.Email)

	if err == nil {
		RespondConflict(ctx, "User already exists")
		return
	}

	if !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u := user.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}

	err = h.users.Create(cctx, u)

	if err != nil {
		// two registrations can race past the lookup; the unique index
		// settles it
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "User already exists")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.Status(http.StatusCreated)
}

// GetCurrent resolves the session inline rather than through the gate, so
// an anonymous request gets the plain 401 payload instead of a short
// circuit.
func (h *UsersHandler) GetCurrent(ctx *gin.Context) {
	sessionID, err := ctx.Cookie(middlewares.SessionCookieName)

	if err != nil || sessionID == "" {
		RespondUnauthorized(ctx)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	u, err := h.users.GetBySessionID(cctx, sessionID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx)
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func setSessionCookie(ctx *gin.Context, sessionID string) {
	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		middlewares.SessionCookieName,
		sessionID,
		sessionCookieMaxAge,
		"/",
		"",
		false,
		true, // HttpOnly.
	)
}
