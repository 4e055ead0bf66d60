package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/vibin/llm-agent/config"
	"github.com/vibin/llm-agent/internal/core/services"
	"github.com/vibin/llm-agent/internal/logger"
)

// Handler is the HTTP handler for the agent
type Handler struct {
	service       *services.AgentService
	logger        logger.Logger
	router        *chi.Mux
	config        *config.Config
	defaultChatID string
	limiter       *rate.Limiter
}

// NewHandler creates a new HTTP handler. defaultChatID names the shared
// session used by the plain /chat endpoint.
func NewHandler(service *services.AgentService, cfg *config.Config, defaultChatID string, log logger.Logger) *Handler {
	h := &Handler{
		service:       service,
		logger:        log,
		config:        cfg,
		defaultChatID: defaultChatID,
	}

	if rpm := cfg.Server.RequestsPerMinute; rpm > 0 {
		h.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
	}

	h.setupRouter()
	return h
}

// setupRouter sets up the Chi router with middleware and routes
func (h *Handler) setupRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(h.logger))
	r.Use(middleware.Recoverer)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Shared-session chat endpoint used by the bundled web page
	r.Post("/chat", h.Chat)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/tools", h.ListTools)
		r.Get("/model", h.GetModelInfo)

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", h.ListChats)
			r.Post("/", h.CreateChat)
			r.Route("/{chatID}", func(r chi.Router) {
				r.Get("/", h.GetChat)
				r.Post("/messages", h.SendMessage)
				r.Delete("/", h.DeleteChat)
			})
		})
	})

	// Web UI
	r.Get("/", h.HomePage)

	h.router = r
}

// ServeHTTP implements the http.Handler interface
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// HomePage handles the home page request
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, "./web/templates/index.html")
}

// Chat handles a prompt on the shared default session and returns the
// assistant's final answer
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow() {
		h.respondWithError(w, http.StatusTooManyRequests, "Too many requests")
		return
	}

	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		h.respondWithError(w, http.StatusBadRequest, "Prompt must not be empty")
		return
	}

	chat, err := h.service.SendMessage(r.Context(), h.defaultChatID, prompt)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to process prompt")
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"response": chat.LastAssistantMessage(),
	})
}

// ListTools returns the invocation schemas of all registered tools
func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, h.service.ToolSchemas())
}

// CreateChat handles the create chat request
func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	chat, err := h.service.CreateChat(r.Context(), req.Title)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to create chat")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, chat)
}

// GetChat handles the get chat request
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	chat, err := h.service.GetChat(r.Context(), chatID)
	if err != nil {
		h.respondWithError(w, http.StatusNotFound, "Chat not found")
		return
	}

	h.respondWithJSON(w, http.StatusOK, chat)
}

// ListChats handles the list chats request
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.service.ListChats(r.Context())
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to list chats")
		return
	}

	h.respondWithJSON(w, http.StatusOK, chats)
}

// SendMessage handles the send message request
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	var req struct {
		Content string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	chat, err := h.service.SendMessage(r.Context(), chatID, req.Content)
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	h.respondWithJSON(w, http.StatusOK, chat)
}

// DeleteChat handles the delete chat request
func (h *Handler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	if err := h.service.DeleteChat(r.Context(), chatID); err != nil {
		h.respondWithError(w, http.StatusNotFound, "Chat not found")
		return
	}

	h.respondWithJSON(w, http.StatusNoContent, nil)
}

// GetModelInfo handles the get model info request
func (h *Handler) GetModelInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.GetModelInfo(r.Context())
	if err != nil {
		h.respondWithError(w, http.StatusInternalServerError, "Failed to get model info")
		return
	}

	h.respondWithJSON(w, http.StatusOK, info)
}

// respondWithError sends an error response
func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response
func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// LoggerMiddleware is a middleware that logs HTTP requests
func LoggerMiddleware(log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			ctx := context.WithValue(r.Context(), "logger", log)

			defer func() {
				log.Info("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}
