package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"mediation-cms/internal/access"
	"mediation-cms/internal/middleware"
	"mediation-cms/internal/platform/logger"
	"mediation-cms/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// LoginRecorder es el subset de métricas que usa el login.
type LoginRecorder interface {
	LoginAttempt(success bool)
}

type HandlerDeps struct {
	Issuer  auth.TokenIssuer // nil => login deshabilitado (modo dev)
	Log     logger.Logger
	Metrics LoginRecorder

	// SecureCookie marca la cookie del token como Secure (https).
	SecureCookie bool
}

func RegisterRoutes(r chi.Router, svc *Service, deps HandlerDeps) {
	r.Route("/api/auth", func(ar chi.Router) {
		ar.Post("/login", loginHandler(svc, deps))
		ar.Post("/logout", logoutHandler(deps))
	})

	r.Route("/api/users", func(ur chi.Router) {
		ur.Get("/", listUsersHandler(svc))
		ur.Post("/", createUserHandler(svc))
		ur.Get("/me", meHandler(svc))
		ur.Get("/{userID}", getUserHandler(svc))
		ur.Patch("/{userID}", updateUserHandler(svc))
		ur.Delete("/{userID}", deleteUserHandler(svc))
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"exp"`
}

type userResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      access.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type createUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// loginHandler godoc
// @Summary Login del staff
// @Description Valida email/password y devuelve el usuario y un JWT. También setea la cookie `token` para el dashboard.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} loginResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Router /api/auth/login [post]
func loginHandler(svc *Service, deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Issuer == nil {
			writeError(w, http.StatusServiceUnavailable, "login disabled")
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		res, err := Login(r, svc, deps, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, ErrBadLogin) {
				writeError(w, http.StatusUnauthorized, "Invalid email or password")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		SetTokenCookie(w, deps, res.Token, res.ExpiresAt)
		writeJSON(w, http.StatusOK, loginResponse{
			User:      toUserResponse(res.User),
			Token:     res.Token,
			ExpiresAt: res.ExpiresAt,
		})
	}
}

type LoginResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// Login autentica y emite el token. Lo comparten el endpoint JSON y el
// formulario del dashboard. Credenciales inválidas => ErrBadLogin.
func Login(r *http.Request, svc *Service, deps HandlerDeps, email, password string) (LoginResult, error) {
	if deps.Issuer == nil {
		return LoginResult{}, errors.New("login disabled: no token issuer")
	}

	u, err := svc.Authenticate(r.Context(), email, password)
	if err != nil {
		if deps.Metrics != nil {
			deps.Metrics.LoginAttempt(false)
		}
		if !errors.Is(err, ErrBadLogin) && deps.Log != nil {
			deps.Log.Error("login failed", map[string]any{"error": err})
		}
		return LoginResult{}, err
	}

	token, exp, err := deps.Issuer.Issue(r.Context(), auth.Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   string(u.Role),
	})
	if err != nil {
		if deps.Log != nil {
			deps.Log.Error("issue token failed", map[string]any{"error": err, "user_id": u.ID})
		}
		return LoginResult{}, err
	}

	if deps.Metrics != nil {
		deps.Metrics.LoginAttempt(true)
	}
	return LoginResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// SetTokenCookie escribe la cookie HttpOnly del dashboard.
func SetTokenCookie(w http.ResponseWriter, deps HandlerDeps, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   deps.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearTokenCookie(w http.ResponseWriter, deps HandlerDeps) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   deps.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// logoutHandler godoc
// @Summary Logout
// @Tags auth
// @Success 204
// @Router /api/auth/logout [post]
func logoutHandler(deps HandlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		ClearTokenCookie(w, deps)
		w.WriteHeader(http.StatusNoContent)
	}
}

// listUsersHandler godoc
// @Summary Listar usuarios
// @Description Admin/coordinator ven todos; cualquier otro usuario solo su propio registro.
// @Tags users
// @Produce json
// @Param limit query int false "Máximo (1-200)"
// @Success 200 {array} userResponse
// @Failure 401 {object} messageResponse
// @Router /api/users [get]
func listUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items, err := svc.List(r.Context(), req, limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]userResponse, 0, len(items))
		for _, u := range items {
			out = append(out, toUserResponse(u))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// meHandler godoc
// @Summary Usuario actual
// @Tags users
// @Produce json
// @Success 200 {object} userResponse
// @Failure 401 {object} messageResponse
// @Router /api/users/me [get]
func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())
		if !req.Authenticated() {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		u, err := svc.Get(r.Context(), req, req.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// getUserHandler godoc
// @Summary Obtener usuario
// @Tags users
// @Produce json
// @Param userID path string true "ID del usuario"
// @Success 200 {object} userResponse
// @Failure 404 {object} messageResponse
// @Router /api/users/{userID} [get]
func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		u, err := svc.Get(r.Context(), req, chi.URLParam(r, "userID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// createUserHandler godoc
// @Summary Crear usuario (admin)
// @Tags users
// @Accept json
// @Produce json
// @Param payload body createUserRequest true "Datos del usuario"
// @Success 201 {object} userResponse
// @Failure 400 {object} messageResponse
// @Failure 401 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 409 {object} messageResponse
// @Router /api/users [post]
func createUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		var body createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := svc.Create(r.Context(), req, CreateInput{
			Email:    body.Email,
			Name:     body.Name,
			Role:     body.Role,
			Password: body.Password,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

// updateUserHandler godoc
// @Summary Actualizar usuario
// @Description Nombre/password: el propio usuario o staff. Rol: solo admin.
// @Tags users
// @Accept json
// @Produce json
// @Param userID path string true "ID del usuario"
// @Param payload body updateUserRequest true "Campos a modificar"
// @Success 200 {object} userResponse
// @Failure 400 {object} messageResponse
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/users/{userID} [patch]
func updateUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var body updateUserRequest
		if err := dec.Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		u, err := svc.Update(r.Context(), req, chi.URLParam(r, "userID"), UpdateInput{
			Name:     body.Name,
			Password: body.Password,
			Role:     body.Role,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// deleteUserHandler godoc
// @Summary Borrar usuario (admin)
// @Tags users
// @Param userID path string true "ID del usuario"
// @Success 204
// @Failure 403 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/users/{userID} [delete]
func deleteUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := middleware.RequesterFrom(r.Context())

		if err := svc.Delete(r.Context(), req, chi.URLParam(r, "userID")); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, access.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, access.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON/writeError se repiten en cada módulo.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: strings.TrimSpace(msg)})
}
