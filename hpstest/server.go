// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package hpstest provides an in-process, in-memory fake of an HPS
// deployment, for testing clients.  It serves a Keycloak-style token
// endpoint and generic job management and resource management
// collections over HTTP.  There is no persistence and no business
// logic: objects are stored as plain maps exactly as they were
// submitted, plus a server-assigned id.
//
// Tokens are issued in sequence as "A1", "A2", ... for access tokens
// and "R1", "R2", ... for refresh tokens, so tests can predict them.
// The entire server is behind a single lock.
package hpstest

import (
	"fmt"
	"github.com/diffeo/go-hps/restdata"
	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
)

// Request is one request the server received.
type Request struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	RequestID     string

	// GrantType is the form field of a token request.
	GrantType string
}

// OperationOutcome controls how copy operations created after it is
// set play out.
type OperationOutcome struct {
	// Polls is the number of times the operation is reported as
	// unfinished before it finishes.
	Polls int

	// Fail makes the operation finish unsuccessfully.
	Fail bool

	// Message is reported in the operation's messages on failure.
	Message string
}

type failure struct {
	status    int
	remaining int
}

// Server is a fake HPS deployment.  Use its URL field as the client's
// base URL.
type Server struct {
	*httptest.Server

	sem           sync.Mutex
	users         map[string]string
	clients       map[string]string
	accessTokens  map[string]bool
	refreshTokens map[string]bool
	accessSeq     int
	refreshSeq    int
	rejectTokens  bool
	failures      []failure
	outcome       OperationOutcome
	operations    map[string]*pendingOperation
	scopes        map[string]map[string]*collection
	requests      []Request
}

// New starts a fake server.  Close it when done.
func New() *Server {
	s := &Server{
		users:         make(map[string]string),
		clients:       make(map[string]string),
		accessTokens:  make(map[string]bool),
		refreshTokens: make(map[string]bool),
		operations:    make(map[string]*pendingOperation),
		scopes:        make(map[string]map[string]*collection),
	}
	n := negroni.New(negroni.NewRecovery(), negroni.HandlerFunc(s.middleware))
	n.UseHandler(s.router())
	s.Server = httptest.NewServer(n)
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/auth/realms/{realm}/protocol/openid-connect/token", s.token).Methods("POST")
	api := r.PathPrefix("/{service:jms|rms}/api/v1").Subrouter()
	api.HandleFunc("/projects/{project}/{collection}", s.collection)
	api.HandleFunc("/projects/{project}/{collection}/{id}", s.object).Methods("GET")
	api.HandleFunc("/{collection}", s.collection)
	api.HandleFunc("/{collection}/{id}", s.object).Methods("GET")
	return r
}

// AddUser allows a username and password for the password grant.
func (s *Server) AddUser(username, password string) {
	s.sem.Lock()
	defer s.sem.Unlock()
	s.users[username] = password
}

// AddClient allows a client id and secret for the client credentials
// grant.
func (s *Server) AddClient(clientID, secret string) {
	s.sem.Lock()
	defer s.sem.Unlock()
	s.clients[clientID] = secret
}

// ExpireAccessTokens invalidates every access token issued so far.
// Refresh tokens remain valid.
func (s *Server) ExpireAccessTokens() {
	s.sem.Lock()
	defer s.sem.Unlock()
	s.accessTokens = make(map[string]bool)
}

// RejectTokens makes every API request fail with 401 Unauthorized,
// whatever its token, until called again with false.
func (s *Server) RejectTokens(reject bool) {
	s.sem.Lock()
	defer s.sem.Unlock()
	s.rejectTokens = reject
}

// FailNext makes the next n API requests fail with the given HTTP
// status.
func (s *Server) FailNext(status, n int) {
	s.sem.Lock()
	defer s.sem.Unlock()
	s.failures = append(s.failures, failure{status: status, remaining: n})
}

// SetOperationOutcome controls copy operations created from now on.
func (s *Server) SetOperationOutcome(outcome OperationOutcome) {
	s.sem.Lock()
	defer s.sem.Unlock()
	s.outcome = outcome
}

// Requests returns every request received so far, including token
// requests.
func (s *Server) Requests() []Request {
	s.sem.Lock()
	defer s.sem.Unlock()
	return append([]Request(nil), s.requests...)
}

// APIRequests returns every request received so far other than token
// requests.
func (s *Server) APIRequests() []Request {
	var result []Request
	for _, r := range s.Requests() {
		if r.GrantType == "" {
			result = append(result, r)
		}
	}
	return result
}

// TokenRequests returns the grant types of every token request
// received so far, in order.
func (s *Server) TokenRequests() []string {
	var result []string
	for _, r := range s.Requests() {
		if r.GrantType != "" {
			result = append(result, r.GrantType)
		}
	}
	return result
}

// middleware records requests and enforces failure injection and
// authentication on everything but the token endpoint.
func (s *Server) middleware(w http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	isToken := strings.HasPrefix(req.URL.Path, "/auth/")
	record := Request{
		Method:        req.Method,
		Path:          req.URL.Path,
		Query:         req.URL.Query(),
		Authorization: req.Header.Get("Authorization"),
		RequestID:     req.Header.Get("X-Request-ID"),
	}
	if isToken {
		req.ParseForm()
		record.GrantType = req.PostForm.Get("grant_type")
	}

	s.sem.Lock()
	s.requests = append(s.requests, record)
	if isToken {
		s.sem.Unlock()
		next(w, req)
		return
	}
	status := 0
	if len(s.failures) > 0 {
		status = s.failures[0].status
		s.failures[0].remaining--
		if s.failures[0].remaining <= 0 {
			s.failures = s.failures[1:]
		}
	}
	token := strings.TrimPrefix(record.Authorization, "Bearer ")
	authorized := !s.rejectTokens && s.accessTokens[token]
	s.sem.Unlock()

	switch {
	case status != 0:
		writeError(w, status, http.StatusText(status), "injected failure")
	case !authorized:
		writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired access token")
	default:
		next(w, req)
	}
}

func (s *Server) token(w http.ResponseWriter, req *http.Request) {
	req.ParseForm()
	form := req.PostForm
	clientID := form.Get("client_id")

	s.sem.Lock()
	defer s.sem.Unlock()

	withRefresh := true
	switch form.Get("grant_type") {
	case "password":
		password, ok := s.users[form.Get("username")]
		if !ok || password != form.Get("password") {
			writeOAuthError(w, http.StatusUnauthorized, "invalid_grant", "Invalid user credentials")
			return
		}
	case "refresh_token":
		refresh := form.Get("refresh_token")
		if !s.refreshTokens[refresh] {
			writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "Token is not active")
			return
		}
		delete(s.refreshTokens, refresh)
	case "client_credentials":
		secret, ok := s.clients[clientID]
		if !ok || secret != form.Get("client_secret") {
			writeOAuthError(w, http.StatusUnauthorized, "unauthorized_client", "Invalid client secret")
			return
		}
		withRefresh = false
	default:
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "Unsupported grant type")
		return
	}

	s.accessSeq++
	access := fmt.Sprintf("A%d", s.accessSeq)
	s.accessTokens[access] = true
	body := map[string]interface{}{
		"access_token": access,
		"token_type":   "Bearer",
		"expires_in":   300,
		"scope":        form.Get("scope"),
	}
	if withRefresh {
		s.refreshSeq++
		refresh := fmt.Sprintf("R%d", s.refreshSeq)
		s.refreshTokens[refresh] = true
		body["refresh_token"] = refresh
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	out, err := restdata.Encode(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", restdata.JSONMediaType)
	w.WriteHeader(status)
	w.Write(out)
}

func writeError(w http.ResponseWriter, status int, title, description string) {
	writeJSON(w, status, restdata.ErrorResponse{Title: title, Description: description})
}

func writeOAuthError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, restdata.ErrorResponse{Error: code, ErrorDescription: description})
}
