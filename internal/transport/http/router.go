package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wedding-guests/internal/authz"
	"wedding-guests/internal/domain"
	"wedding-guests/internal/dto"
	"wedding-guests/internal/netutil"
	"wedding-guests/internal/observability/middleware"
	"wedding-guests/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	CORSOrigins     []string
	LoginRateLimit  int // requests per window per client IP; <= 0 disables
	LoginRateWindow time.Duration
}

// RejectUnauthorized is the authz.RejectFunc used for admin routes.
func RejectUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, err)
}

// NewRouter wires the guest API. admin may be nil, in which case
// /admin/login is not mounted.
func NewRouter(guests service.GuestService, admin service.AdminService, guard *authz.Guard, opts Options) *chi.Mux {
	h := &handlers{guests: guests, admin: admin}
	r := chi.NewRouter()

	r.Use(middleware.WithRequestAndTrace)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originsIfSet(opts.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	limitLogin := loginLimiter(opts)

	r.Route("/guests", func(r chi.Router) {
		// self-registration is anonymous; a token, if sent, must be valid
		r.With(guard.Optional).Post("/", h.createGuest)

		r.With(limitLogin).Put("/", h.login)
		r.With(limitLogin).Post("/login", h.login)

		r.Group(func(r chi.Router) {
			r.Use(guard.Require)
			r.Get("/", h.listGuests)
			r.Get("/email/{email}", h.findGuest)
			r.Delete("/email/", h.missingEmail)
			r.Delete("/email/{email}", h.deleteGuest)
			r.Put("/email/{email}/responses/{ceremony}", h.respond)
		})
	})

	if admin != nil {
		r.With(limitLogin).Post("/admin/login", h.adminLogin)
	}

	return r
}

type handlers struct {
	guests service.GuestService
	admin  service.AdminService
}

func (h *handlers) createGuest(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateGuestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.guests.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if claims, ok := authz.ClaimsFrom(r.Context()); ok {
		slog.Info("guest created by admin", "guest_id", g.ID, "admin", claims.Subject,
			"request_id", middleware.RequestIDFromContext(r.Context()))
	}
	writeJSON(w, http.StatusCreated, dto.GuestResponse{Message: "Guest created successfully", Guest: g})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.guests.Login(r.Context(), req)
	if err != nil {
		slog.Info("guest login failed",
			"client_ip", netutil.ClientIP(r),
			"user_agent", netutil.TruncateUserAgent(r.UserAgent()),
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.GuestResponse{Message: "Login successful", Guest: g})
}

func (h *handlers) listGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := h.guests.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.GuestListResponse{Guests: guests})
}

func (h *handlers) findGuest(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	g, err := h.guests.FindByEmail(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.GuestResponse{Guest: g})
}

func (h *handlers) deleteGuest(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	if _, err := h.guests.DeleteByEmail(r.Context(), email); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Guest deleted successfully"})
}

func (h *handlers) missingEmail(w http.ResponseWriter, r *http.Request) {
	writeErrorCode(w, http.StatusBadRequest, CodeInvalidInput, "missing guest email")
}

func (h *handlers) respond(w http.ResponseWriter, r *http.Request) {
	email, ok := emailParam(w, r)
	if !ok {
		return
	}
	var req dto.RespondRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ceremony := domain.CeremonyType(chi.URLParam(r, "ceremony"))
	resp, err := h.guests.Respond(r.Context(), email, ceremony, domain.RSVP(req.Response))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CeremonyResponseResponse{Response: resp})
}

func (h *handlers) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tr, err := h.admin.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

func emailParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := chi.URLParam(r, "email")
	email, err := url.PathUnescape(raw)
	if err != nil {
		email = raw
	}
	if strings.TrimSpace(email) == "" {
		writeErrorCode(w, http.StatusBadRequest, CodeInvalidInput, "missing guest email")
		return "", false
	}
	return email, true
}

func loginLimiter(opts Options) func(http.Handler) http.Handler {
	if opts.LoginRateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	window := opts.LoginRateWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.Limit(opts.LoginRateLimit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeErrorCode(w, http.StatusTooManyRequests, CodeRateLimited, "too many login attempts, try again later")
		}),
	)
}

func originsIfSet(in []string) []string {
	out := []string{}
	for _, o := range in {
		if s := strings.TrimSpace(o); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
