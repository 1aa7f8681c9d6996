package handler

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/rl1809/banko/internal/core/domain"
	"github.com/rl1809/banko/internal/core/service"
	"github.com/rl1809/banko/internal/port"
)

const sessionCookie = "banko_session"

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type HTTPHandler struct {
	draws          *service.DrawService
	claims         *service.ClaimService
	gate           *service.AccessGate
	sessions       port.SessionRepository
	claimAllowAddr string
	log            *zap.Logger
}

type pageData struct {
	Page   string
	Admin  bool
	Board  domain.Board
	Today  map[int]bool
	Claims []domain.Claim
}

func NewHTTPHandler(
	draws *service.DrawService,
	claims *service.ClaimService,
	gate *service.AccessGate,
	sessions port.SessionRepository,
	claimAllowAddr string,
	log *zap.Logger,
) *HTTPHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPHandler{
		draws:          draws,
		claims:         claims,
		gate:           gate,
		sessions:       sessions,
		claimAllowAddr: claimAllowAddr,
		log:            log,
	}
}

func (h *HTTPHandler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.Board)
	mux.HandleFunc("GET /add/{n}", h.AddNumbers)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /winner", h.Winners)
	mux.HandleFunc("POST /banko", h.Banko)
	mux.HandleFunc("GET /about", h.staticPage("about"))
	mux.HandleFunc("GET /error", h.staticPage("error"))
	mux.HandleFunc("GET /health", h.HealthCheck)
	return mux
}

func (h *HTTPHandler) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.draws.Board(r.Context())
	if err != nil {
		h.log.Error("load board", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	today := make(map[int]bool, len(board.Today))
	for _, v := range board.Today {
		today[v] = true
	}

	h.render(w, "board", pageData{
		Page:  "board",
		Admin: h.isAdmin(r),
		Board: board,
		Today: today,
	})
}

func (h *HTTPHandler) AddNumbers(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Require(h.principal(r), domain.Admin); err != nil {
		writeText(w, http.StatusForbidden, service.DenialMessage)
		return
	}

	raw := r.PathValue("n")
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeText(w, http.StatusBadRequest, fmt.Sprintf("%s is an invalid number!", raw))
		return
	}

	values, err := h.draws.Draw(r.Context(), n)
	if err != nil {
		var partial *service.PartialDrawError
		switch {
		case errors.As(err, &partial):
			h.log.Error("draw stopped part way", zap.Int("requested", n), zap.Ints("added", partial.Added), zap.Error(err))
			writeText(w, http.StatusInternalServerError,
				fmt.Sprintf("Added %d of %d numbers before the draw failed.", len(partial.Added), n))
		case errors.Is(err, service.ErrInvalidCount), errors.Is(err, service.ErrPoolExhausted):
			writeText(w, http.StatusBadRequest, fmt.Sprintf("%d is an invalid number! %v", n, err))
		default:
			h.log.Error("draw failed", zap.Int("requested", n), zap.Error(err))
			writeText(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeText(w, http.StatusOK, fmt.Sprintf("Added %d numbers to the list!", len(values)))
}

// Login never reports failure; a wrong credential simply leaves the caller
// anonymous.
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		principal := h.gate.Login(r.PostFormValue("username"), r.PostFormValue("password"))
		if principal != domain.Anonymous {
			token, err := h.sessions.Create(r.Context(), principal)
			if err != nil {
				h.log.Error("create session", zap.Error(err))
			} else {
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				h.log.Info("admin logged in", zap.String("remote", r.RemoteAddr))
			}
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := h.sessions.Delete(r.Context(), c.Value); err != nil {
			h.log.Warn("delete session", zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *HTTPHandler) Winners(w http.ResponseWriter, r *http.Request) {
	claims, err := h.claims.List(r.Context())
	if err != nil {
		h.log.Error("list claims", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.render(w, "winner", pageData{Page: "winner", Admin: h.isAdmin(r), Claims: claims})
}

// Banko accepts a win claim from the allow-listed game room address only.
func (h *HTTPHandler) Banko(w http.ResponseWriter, r *http.Request) {
	if h.claimAllowAddr == "" || remoteHost(r) != h.claimAllowAddr {
		h.log.Warn("claim from address not on allow list", zap.String("remote", r.RemoteAddr))
		http.Redirect(w, r, "/error", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, "invalid form")
		return
	}
	name := r.PostFormValue("name")
	claimType, err := domain.ParseClaimType(r.PostFormValue("claimType"))
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.claims.Submit(r.Context(), name, claimType); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidClaim):
			writeText(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNotification):
			writeText(w, http.StatusBadGateway, err.Error())
		default:
			writeText(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeText(w, http.StatusOK, fmt.Sprintf("Thank you %s! Your claim has been sent to the host for verification.", name))
}

func (h *HTTPHandler) staticPage(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, page, pageData{Page: page, Admin: h.isAdmin(r)})
	}
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) isAdmin(r *http.Request) bool {
	return h.gate.Authorize(h.principal(r), domain.Admin)
}

func (h *HTTPHandler) principal(r *http.Request) domain.Principal {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return domain.Anonymous
	}
	principal, err := h.sessions.Principal(r.Context(), c.Value)
	if err != nil {
		h.log.Warn("session lookup failed", zap.Error(err))
		return domain.Anonymous
	}
	return principal
}

func (h *HTTPHandler) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.log.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(msg))
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
