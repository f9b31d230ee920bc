package httpx

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/ariefcatur/bookstore-storefront/internal/auth"
	"github.com/ariefcatur/bookstore-storefront/internal/users"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserStore interface {
	Create(ctx context.Context, name, email, phone, password string) (users.User, error)
	VerifyCredentials(ctx context.Context, email, password string) (users.User, error)
}

// Admin holds the single configured admin account; it has no users row.
type Admin struct {
	Name     string
	Email    string
	Password string
}

type AuthHandler struct {
	Users  UserStore
	Tokens *auth.Tokens
	Admin  Admin
	Logger *zap.Logger
}

type signupReq struct {
	Name     string `json:"name" validate:"required,min=2,max=100,personname"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,len=11,numeric"`
	Password string `json:"password" validate:"required,min=6,letterdigit"`
}

func (r *signupReq) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
}

type signinReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *signinReq) normalize() { r.Email = strings.ToLower(strings.TrimSpace(r.Email)) }

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/api/auth/signup", h.signup)
	r.Post("/api/auth/signin", h.signin)
	r.Post("/api/auth/logout", h.logout)
	r.With(Authenticate(h.Tokens), RequireAdmin).Get("/api/admin/verify", h.verifyAdmin)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if !decode(w, r, &req) {
		return
	}

	u, err := h.Users.Create(r.Context(), req.Name, req.Email, req.Phone, req.Password)
	var dup *users.AlreadyExistsError
	switch {
	case errors.As(err, &dup):
		fail(w, http.StatusConflict, "USER_EXISTS", dup.Error())
		return
	case err != nil:
		h.Logger.Error("signup failed", zap.Error(err))
		fail(w, http.StatusInternalServerError, "SIGNUP_FAILED", "Registration failed")
		return
	}

	token, err := h.Tokens.Issue(auth.Claims{UserID: u.ID, Name: u.Name, Email: u.Email, Role: auth.RoleUser})
	if err != nil {
		h.Logger.Error("issue token", zap.Error(err))
		fail(w, http.StatusInternalServerError, "SIGNUP_FAILED", "Registration failed")
		return
	}
	setTokenCookie(w, token, int(h.Tokens.TTL.Seconds()))
	ok(w, http.StatusCreated, "User registered successfully", map[string]any{"token": token, "user": u})
}

func (h *AuthHandler) signin(w http.ResponseWriter, r *http.Request) {
	var req signinReq
	if !decode(w, r, &req) {
		return
	}

	if h.isAdmin(req.Email, req.Password) {
		token, err := h.Tokens.Issue(auth.Claims{Name: h.Admin.Name, Email: h.Admin.Email, Role: auth.RoleAdmin, IsAdmin: true})
		if err != nil {
			h.Logger.Error("issue admin token", zap.Error(err))
			fail(w, http.StatusInternalServerError, "SIGNIN_FAILED", "Authentication failed")
			return
		}
		setTokenCookie(w, token, int(h.Tokens.TTL.Seconds()))
		ok(w, http.StatusOK, "Admin login successful", map[string]any{
			"token": token,
			"admin": map[string]string{"name": h.Admin.Name, "email": h.Admin.Email, "role": auth.RoleAdmin},
		})
		return
	}

	u, err := h.Users.VerifyCredentials(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrInvalidCredentials):
		fail(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	case err != nil:
		h.Logger.Error("signin failed", zap.Error(err))
		fail(w, http.StatusInternalServerError, "SIGNIN_FAILED", "Authentication failed")
		return
	}

	token, err := h.Tokens.Issue(auth.Claims{UserID: u.ID, Email: u.Email, Role: auth.RoleUser})
	if err != nil {
		h.Logger.Error("issue token", zap.Error(err))
		fail(w, http.StatusInternalServerError, "SIGNIN_FAILED", "Authentication failed")
		return
	}
	setTokenCookie(w, token, int(h.Tokens.TTL.Seconds()))
	ok(w, http.StatusOK, "Login successful", map[string]any{
		"token": token,
		"user": map[string]any{
			"id": u.ID, "name": u.Name, "email": u.Email, "phone": u.Phone, "role": auth.RoleUser,
		},
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, _ *http.Request) {
	setTokenCookie(w, "", -1)
	ok(w, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) verifyAdmin(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r.Context())
	ok(w, http.StatusOK, "Admin verified", map[string]string{"name": c.Name, "email": c.Email, "role": c.Role})
}

func (h *AuthHandler) isAdmin(email, password string) bool {
	if h.Admin.Email == "" || h.Admin.Password == "" {
		return false
	}
	return strings.EqualFold(email, h.Admin.Email) &&
		subtle.ConstantTimeCompare([]byte(password), []byte(h.Admin.Password)) == 1
}
