package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type signupRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
	Answer1  string `json:"answer1"`
	Answer2  string `json:"answer2"`
	Answer3  string `json:"answer3"`
}

type loginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type createItemRequest struct {
	TopicName  string `json:"topicName"`
	Password   string `json:"password"`
	IsFavorite bool   `json:"isFavorite"`
}

type retrieveRequest struct {
	Answer1 string `json:"answer1"`
	Answer2 string `json:"answer2"`
	Answer3 string `json:"answer3"`
}

func (r retrieveRequest) answers() [common.SecurityAnswerCount]string {
	return [common.SecurityAnswerCount]string{r.Answer1, r.Answer2, r.Answer3}
}

// Health handles GET /healthz.
func (s *HTTPServer) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, envelope{})
}

// Signup handles POST /api/auth/signup.
func (s *HTTPServer) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.mapError(r.Context(), w, err)
		return
	}

	answers := [common.SecurityAnswerCount]string{req.Answer1, req.Answer2, req.Answer3}
	account, token, err := s.accounts.Register(r.Context(), req.UserName, req.Password, answers)
	if err != nil {
		s.mapError(r.Context(), w, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "account_id", account.ID)
	s.sendSession(w, http.StatusCreated, account, token)
}

// Login handles POST /api/auth/login.
func (s *HTTPServer) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.mapError(r.Context(), w, err)
		return
	}
	if strings.TrimSpace(req.UserName) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	account, token, err := s.accounts.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		s.mapError(r.Context(), w, err)
		return
	}

	s.sendSession(w, http.StatusOK, account, token)
}

// Logout handles GET /api/auth/logout. Sessions are stateless, so this only
// expires the cookie.
func (s *HTTPServer) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	writeSuccess(w, http.StatusOK, envelope{"message": "logged out"})
}

// Me handles GET /api/auth/me.
func (s *HTTPServer) Me(w http.ResponseWriter, r *http.Request) {
	account, err := s.accounts.AccountByID(r.Context(), accountIDFromContext(r.Context()))
	if errors.Is(err, common.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, common.ErrNotAuthenticated.Error())
		return
	}
	if err != nil {
		s.mapError(r.Context(), w, err)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"user": account})
}

// CreateItem handles POST /api/passwords.
func (s *HTTPServer) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.mapError(r.Context(), w, err)
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	item, err := s.vault.CreateItem(r.Context(), accountIDFromContext(r.Context()), req.TopicName, req.Password, req.IsFavorite)
	if err != nil {
		s.mapError(r.Context(), w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, envelope{"data": item})
}

// ListItems handles GET /api/passwords.
func (s *HTTPServer) ListItems(w http.ResponseWriter, r *http.Request) {
	list, err := s.vault.ListItems(r.Context(), accountIDFromContext(r.Context()))
	if err != nil {
		s.mapError(r.Context(), w, err)
		return
	}
	if list == nil {
		list = []*models.ItemMetadata{}
	}
	writeSuccess(w, http.StatusOK, envelope{"results": len(list), "data": list})
}

// DeleteItem handles DELETE /api/passwords/{id}.
func (s *HTTPServer) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.vault.DeleteItem(r.Context(), accountIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.mapError(r.Context(), w, err)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"message": "item deleted"})
}

// RetrieveSecret handles POST /api/passwords/{id}/retrieve.
func (s *HTTPServer) RetrieveSecret(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.mapError(r.Context(), w, err)
		return
	}
	answers := req.answers()
	for _, a := range answers {
		if strings.TrimSpace(a) == "" {
			writeError(w, http.StatusBadRequest, "all security answers are required")
			return
		}
	}

	revealed, err := s.vault.RetrieveSecret(r.Context(), accountIDFromContext(r.Context()), chi.URLParam(r, "id"), answers)
	if err != nil {
		s.mapError(r.Context(), w, err)
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"data": revealed})
}

func (s *HTTPServer) sendSession(w http.ResponseWriter, status int, account *models.AccountView, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.opts.CookieValidity),
		MaxAge:   int(s.opts.CookieValidity / time.Second),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	writeSuccess(w, status, envelope{"token": token, "user": account})
}
