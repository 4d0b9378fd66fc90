package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hackgods/clinidesk/internal/auth"
	"github.com/hackgods/clinidesk/internal/backend"
	"github.com/hackgods/clinidesk/internal/registration"
)

func loginHandler(client *backend.Client, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			if err := r.ParseForm(); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse form")
				return
			}
			req.Username, req.Password = r.PostForm.Get("username"), r.PostForm.Get("password")
		} else if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if strings.TrimSpace(req.Username) == "" || req.Password == "" {
			writeFieldErrors(w, "invalid_credentials", map[string]string{
				"username": "is required",
				"password": "is required",
			})
			return
		}

		tok, err := client.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			log.Warn("login failed", zap.String("username", req.Username), zap.Error(err))
			handleUpstreamError(w, err)
			return
		}

		// the token subject is authoritative over the echoed user fields
		resp := LoginResponse{
			AccessToken: tok.AccessToken,
			TokenType:   tok.TokenType,
			UserID:      tok.UserID,
			UserType:    auth.UserType(tok.UserType),
		}
		if claims, err := auth.ParseToken(tok.AccessToken); err == nil {
			resp.UserID = claims.UserID
			resp.UserType = claims.UserType
		}
		resp.HomePath = auth.HomePath(resp.UserType)

		writeJSON(w, http.StatusOK, resp)
	}
}

func meHandler(client *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := mustClaims(r)

		user, err := client.WithToken(claims.Token).TestToken(r.Context())
		if err != nil {
			handleUpstreamError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, MeResponse{
			UserID:   claims.UserID,
			UserType: claims.UserType,
			Username: user.Username,
			Email:    user.Email,
			HomePath: auth.HomePath(claims.UserType),
		})
	}
}

func dashboardHandler(w http.ResponseWriter, r *http.Request) {
	claims := mustClaims(r)
	writeJSON(w, http.StatusOK, DashboardResponse{
		UserID:   claims.UserID,
		UserType: claims.UserType,
		HomePath: auth.HomePath(claims.UserType),
	})
}

func listProfessionalsHandler(client *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := queryInt(q.Get("page"), 1)
		size := queryInt(q.Get("size"), 100)

		out, err := client.WithToken(mustClaims(r).Token).ListHealthProfessionals(r.Context(), page, size)
		if err != nil {
			handleUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listClinicsHandler(client *backend.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := backend.ClinicQuery{
			Skip:  queryInt(q.Get("skip"), 0),
			Limit: queryInt(q.Get("limit"), 10),
			Name:  q.Get("name"),
		}

		out, err := client.WithToken(mustClaims(r).Token).ListClinics(r.Context(), query)
		if err != nil {
			handleUpstreamError(w, err)
			return
		}
		if out == nil {
			out = []backend.Clinic{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func registerClinicHandler(svc *registration.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form registration.ClinicForm
		if err := decodeJSON(r, &form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		clinic, err := svc.RegisterClinic(r.Context(), form)
		if err != nil {
			handleUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, clinic)
	}
}

func registerProfessionalHandler(svc *registration.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form registration.ProfessionalForm
		if err := decodeJSON(r, &form); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		hp, err := svc.RegisterProfessional(r.Context(), form)
		if err != nil {
			handleUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, hp)
	}
}

func cepHandler(svc *registration.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := r.URL.Query().Get("number")
		if withoutNumber, _ := strconv.ParseBool(r.URL.Query().Get("sem_numero")); withoutNumber {
			number = ""
		}

		fill, err := svc.Autofill(r.Context(), chi.URLParam(r, "code"), number)
		if err != nil {
			handleUpstreamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, fill)
	}
}

func queryInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
