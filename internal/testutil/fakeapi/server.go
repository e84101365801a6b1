// Package fakeapi is an in-memory stand-in for the remote user API. It serves
// the same routes and JSON shapes so the client and store can be exercised
// end to end without a real backend.
package fakeapi

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// User is the server-side representation of a user.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Request is one call the server received.
type Request struct {
	Method    string
	Path      string
	RequestID string
	At        time.Time
}

type createUserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// Server holds the user collection and the knobs tests use to shape responses.
type Server struct {
	mu       sync.RWMutex
	users    map[string]User
	order    []string
	failures map[string][]int
	latency  map[string]time.Duration
	requests []Request
	newID    func() string

	logger *zap.Logger
	engine *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger logs every request through logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithIDGenerator replaces the uuid-based ID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// New creates a server with an empty collection.
func New(opts ...Option) *Server {
	s := &Server{
		users:    make(map[string]User),
		failures: make(map[string][]int),
		latency:  make(map[string]time.Duration),
		newID:    uuid.NewString,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.setupRouter()
	return s
}

// Start serves s on a random local port for the duration of the test and
// returns the API base URL, e.g. http://127.0.0.1:PORT/api.
func Start(tb testing.TB, opts ...Option) (*Server, string) {
	tb.Helper()
	s := New(opts...)
	ts := httptest.NewServer(s)
	tb.Cleanup(ts.Close)
	return s, ts.URL + "/api"
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(cors.Default())
	router.Use(gin.Recovery())
	router.Use(s.recordRequest())
	router.Use(s.injectFaults())

	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.GET("", s.listUsers)
			users.POST("", s.createUser)
			users.PATCH("/:id", s.updateUser)
			users.DELETE("/:id", s.deleteUser)
		}
	}
	return router
}

// Seed adds users with server-assigned IDs and returns them.
func (s *Server) Seed(users ...User) []User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]User, 0, len(users))
	for _, u := range users {
		u.ID = s.newID()
		s.users[u.ID] = u
		s.order = append(s.order, u.ID)
		out = append(out, u)
	}
	return out
}

// Users returns the collection in insertion order.
func (s *Server) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Server) snapshot() []User {
	out := make([]User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.users[id])
	}
	return out
}

// FailNext makes the next request with method fail with status. Calls queue up.
func (s *Server) FailNext(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = append(s.failures[method], status)
}

// SetLatency delays every request with method by d before it is handled.
func (s *Server) SetLatency(method string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency[method] = d
}

// Requests returns every request received so far, oldest first.
func (s *Server) Requests() []Request {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Methods returns the method of every request received so far, oldest first.
func (s *Server) Methods() []string {
	reqs := s.Requests()
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Method
	}
	return out
}

func (s *Server) recordRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			RequestID: c.GetHeader("X-Request-ID"),
			At:        time.Now(),
		})
		delay := s.latency[c.Request.Method]
		s.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}

		c.Next()

		s.logger.Debug("Handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
			zap.Int("status", c.Writer.Status()))
	}
}

func (s *Server) injectFaults() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		queue := s.failures[c.Request.Method]
		var status int
		if len(queue) > 0 {
			status, s.failures[c.Request.Method] = queue[0], queue[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
			return
		}
		c.Next()
	}
}

func (s *Server) listUsers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": s.Users()})
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	s.mu.Lock()
	user := User{ID: s.newID(), Name: req.Name, Email: req.Email}
	s.users[user.ID] = user
	s.order = append(s.order, user.ID)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, user)
}

func (s *Server) updateUser(c *gin.Context) {
	id := c.Param("id")

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[id]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if req.Name != nil && *req.Name != "" {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != "" {
		user.Email = *req.Email
	}
	s.users[id] = user

	c.JSON(http.StatusOK, user)
}

func (s *Server) deleteUser(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	delete(s.users, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	c.Status(http.StatusNoContent)
}
