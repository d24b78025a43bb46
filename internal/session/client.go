// Package session provides a client-side view of an authentication session.
//
// The client talks to the auth endpoints over HTTP, keeps the session cookie
// in a jar, and tracks whether the session is live. Local state is an
// optimistic cache of the server's answer: login and logout update it
// immediately, and a background reconciler re-checks it periodically since
// the server can revoke or expire a session at any time.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/webstack/webstack/internal/errors"
)

// State describes what the client currently believes about the session.
type State int

const (
	// StateUnknown means the client has not yet talked to the server.
	StateUnknown State = iota
	// StateAuthenticated means the last observation showed a live session.
	StateAuthenticated
	// StateUnauthenticated means the last observation showed no session.
	StateUnauthenticated
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// TransitionStatus tags how a state change was resolved against the server.
type TransitionStatus int

const (
	// TransitionPending means the state changed locally and the server call
	// that should acknowledge it is still in flight.
	TransitionPending TransitionStatus = iota
	// TransitionConfirmed means the server acknowledged the change.
	TransitionConfirmed
	// TransitionRolledBack means the server call failed. For logout the
	// local state keeps the unauthenticated value regardless, since the
	// cookie is already gone; the tag tells callers the server-side token
	// was never revoked and stays live until its natural expiry.
	TransitionRolledBack
)

// String returns a human-readable status name.
func (s TransitionStatus) String() string {
	switch s {
	case TransitionPending:
		return "pending"
	case TransitionConfirmed:
		return "confirmed"
	case TransitionRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Transition records a state change and whether the server acknowledged it.
type Transition struct {
	From   State
	To     State
	Status TransitionStatus
}

// User is the client-side view of the authenticated account.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// ErrNotAuthenticated indicates an operation that needs a live session ran
// without one.
var ErrNotAuthenticated = apperrors.Wrap(apperrors.ErrUnauthorized, "not authenticated")

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is
// attached if the given client has none.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for background reconciliation events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRequestTimeout bounds each individual HTTP call.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = timeout
	}
}

// WithOnUnauthenticated registers a hook invoked whenever the state moves
// from authenticated to unauthenticated, locally or via reconciliation.
// Typical use is redirecting the user back to a login screen.
func WithOnUnauthenticated(fn func()) Option {
	return func(c *Client) {
		c.onUnauthenticated = fn
	}
}

// GuardConfig describes client-side route guarding. Routes on the
// allow-list stay reachable without a session; navigating anywhere else
// while unauthenticated lands on the login route instead. The login route
// itself is always allowed.
type GuardConfig struct {
	AllowUnauthenticated []string
	LoginRoute           string
	// OnRedirect is invoked whenever the guard forces a route change.
	OnRedirect func(from, to string)
}

// WithGuard enables route guarding with the given configuration.
func WithGuard(cfg GuardConfig) Option {
	return func(c *Client) {
		allowed := make(map[string]struct{}, len(cfg.AllowUnauthenticated)+1)
		for _, route := range cfg.AllowUnauthenticated {
			allowed[route] = struct{}{}
		}
		allowed[cfg.LoginRoute] = struct{}{}
		c.guard = &routeGuard{
			allowed:    allowed,
			loginRoute: cfg.LoginRoute,
			onRedirect: cfg.OnRedirect,
		}
	}
}

type routeGuard struct {
	allowed    map[string]struct{}
	loginRoute string
	onRedirect func(from, to string)
}

func (g *routeGuard) allows(route string) bool {
	_, ok := g.allowed[route]
	return ok
}

// Client is a session-aware HTTP client for the auth API.
// All methods are safe for concurrent use.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         *slog.Logger
	requestTimeout time.Duration

	onUnauthenticated func()
	guard             *routeGuard

	mu           sync.RWMutex
	state        State
	user         *User
	currentRoute string
	transition   Transition
	// seq increments on every applied state change, local or observed, so a
	// slow status response from before a login, logout, or newer observation
	// cannot overwrite the more recent state.
	seq uint64
}

// NewClient creates a session client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, apperrors.Wrap(err, "invalid base url")
	}

	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		logger:         slog.Default(),
		requestTimeout: 10 * time.Second,
		state:          StateUnknown,
		transition:     Transition{From: StateUnknown, To: StateUnknown, Status: TransitionConfirmed},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to create cookie jar")
		}
		c.httpClient.Jar = jar
	}

	return c, nil
}

// State returns the current session state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// User returns the cached account for the session, or nil when there is none.
func (c *Client) User() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	user := *c.user
	return &user
}

// LastTransition returns the most recent state change and how it resolved.
func (c *Client) LastTransition() Transition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transition
}

// CurrentRoute returns the route the client last navigated to.
func (c *Client) CurrentRoute() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentRoute
}

// Navigate records a route change, applying the guard when one is
// configured: while unauthenticated, routes outside the allow-list land on
// the login route instead. It returns the route actually reached.
func (c *Client) Navigate(route string) string {
	c.mu.Lock()
	redirected := c.guard != nil && c.state == StateUnauthenticated && !c.guard.allows(route)
	target := route
	if redirected {
		target = c.guard.loginRoute
	}
	c.currentRoute = target
	c.mu.Unlock()

	if redirected && c.guard.onRedirect != nil {
		c.guard.onRedirect(route, target)
	}

	return target
}

// Register creates a new account. It does not start a session; call Login
// afterwards.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, error) {
	body := map[string]string{
		"name":             name,
		"email":            email,
		"password":         password,
		"password_confirm": password,
	}

	var user User
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/register", body, http.StatusCreated, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// loginResponse mirrors the login endpoint's body; only the user part
// matters to the client since the cookie carries the token.
type loginResponse struct {
	User User `json:"user"`
}

// Login starts a session. On success the server's cookie lands in the jar
// and the state flips to authenticated.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var resp loginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/auth/login", body, http.StatusOK, &resp); err != nil {
		return err
	}

	c.setState(StateAuthenticated, &resp.User, TransitionConfirmed)
	return nil
}

// Logout ends the session. The local state flips to unauthenticated before
// the server call and the cookie is deleted afterwards no matter how that
// call went, so the session is dead from the client's point of view even if
// the network is down. A failed server call is logged and tagged on the
// transition as rolled back, meaning the server-side token was never
// revoked and ages out on its own; it is not surfaced as an error.
func (c *Client) Logout(ctx context.Context) error {
	c.setState(StateUnauthenticated, nil, TransitionPending)

	err := c.doJSON(ctx, http.MethodPost, "/v1/auth/logout", nil, http.StatusOK, nil)
	c.clearCookies()
	if err != nil {
		c.logger.Warn("server logout failed, session already cleared locally",
			slog.String("error", err.Error()))
		c.resolvePending(TransitionRolledBack)
	} else {
		c.resolvePending(TransitionConfirmed)
	}

	if c.guard != nil {
		c.Navigate(c.guard.loginRoute)
	}

	return nil
}

// statusResponse mirrors the status endpoint's body.
type statusResponse struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user"`
}

// Refresh asks the server whether the session is still live and reconciles
// local state with the answer. Responses that raced with a local login or
// logout are discarded.
func (c *Client) Refresh(ctx context.Context) (State, error) {
	c.mu.RLock()
	seqBefore := c.seq
	c.mu.RUnlock()

	var resp statusResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/auth/status", nil, http.StatusOK, &resp); err != nil {
		// Transport failure says nothing about the session; keep the
		// current belief.
		return c.State(), err
	}

	state := StateUnauthenticated
	if resp.Authenticated {
		state = StateAuthenticated
	}

	c.applyObserved(seqBefore, state, resp.User)
	return c.State(), nil
}

// Me fetches the full account for the current session.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodGet, "/v1/users/me", nil, http.StatusOK, &user)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			c.setState(StateUnauthenticated, nil, TransitionConfirmed)
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	return &user, nil
}

// setState records a locally initiated state change.
func (c *Client) setState(state State, user *User, status TransitionStatus) {
	c.mu.Lock()
	from := c.state
	c.state = state
	c.user = user
	c.transition = Transition{From: from, To: state, Status: status}
	c.seq++
	redirectFrom, redirectTo, redirected := c.guardRedirectLocked(from, state)
	c.mu.Unlock()

	c.afterTransition(from, state, redirectFrom, redirectTo, redirected)
}

// applyObserved records a server observation unless a local change happened
// while the request was in flight.
func (c *Client) applyObserved(seqBefore uint64, state State, user *User) {
	c.mu.Lock()
	if c.seq != seqBefore {
		c.mu.Unlock()
		c.logger.Debug("discarding stale session observation")
		return
	}
	from := c.state
	c.state = state
	c.user = user
	c.transition = Transition{From: from, To: state, Status: TransitionConfirmed}
	// An applied observation is newer than anything still in flight, so it
	// invalidates those too, not just local changes.
	c.seq++
	redirectFrom, redirectTo, redirected := c.guardRedirectLocked(from, state)
	c.mu.Unlock()

	c.afterTransition(from, state, redirectFrom, redirectTo, redirected)
}

// resolvePending settles the in-flight transition once the server call that
// backs it has finished. Pending must never outlive the call; both the
// success and failure paths come through here.
func (c *Client) resolvePending(status TransitionStatus) {
	c.mu.Lock()
	if c.transition.Status == TransitionPending {
		c.transition.Status = status
	}
	c.mu.Unlock()
}

// guardRedirectLocked decides whether losing the session forces the current
// route onto the login route. Caller must hold c.mu.
func (c *Client) guardRedirectLocked(from, to State) (string, string, bool) {
	if c.guard == nil || to != StateUnauthenticated || from == StateUnauthenticated {
		return "", "", false
	}
	if c.currentRoute == "" || c.guard.allows(c.currentRoute) {
		return "", "", false
	}
	redirectFrom := c.currentRoute
	c.currentRoute = c.guard.loginRoute
	return redirectFrom, c.guard.loginRoute, true
}

// afterTransition fires user hooks outside the state lock.
func (c *Client) afterTransition(from, to State, redirectFrom, redirectTo string, redirected bool) {
	if from == StateAuthenticated && to == StateUnauthenticated && c.onUnauthenticated != nil {
		c.onUnauthenticated()
	}
	if redirected && c.guard.onRedirect != nil {
		c.guard.onRedirect(redirectFrom, redirectTo)
	}
}

// clearCookies drops the jar so the session cookie is gone locally no
// matter what the server did with the logout request.
func (c *Client) clearCookies() {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return
	}
	c.httpClient.Jar = jar
}

// doJSON performs one HTTP round trip with the client's timeout, encoding
// the request body and decoding the response when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(err, "failed to encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperrors.Wrap(err, "failed to create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return c.errorFromResponse(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.Wrap(err, "failed to decode response body")
		}
	}

	return nil
}

// apiError mirrors the server's error envelope.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorFromResponse maps an error response to the shared error taxonomy.
func (c *Client) errorFromResponse(resp *http.Response) error {
	var body apiError
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)

	message := body.Message
	if message == "" {
		message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return apperrors.Wrap(apperrors.ErrUnauthorized, message)
	case http.StatusForbidden:
		return apperrors.Wrap(apperrors.ErrForbidden, message)
	case http.StatusNotFound:
		return apperrors.Wrap(apperrors.ErrNotFound, message)
	case http.StatusConflict:
		return apperrors.Wrap(apperrors.ErrConflict, message)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.Wrap(apperrors.ErrInvalidInput, message)
	default:
		return apperrors.New(message)
	}
}
