package router

import (
	"github.com/fub-assistant/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the widget API exposes
type Handlers struct {
	System  *handler.SystemHandler
	Auth    *handler.AuthHandler
	Chat    *handler.ChatHandler
	Note    *handler.NoteHandler
	Billing *handler.BillingHandler
	Webhook *handler.StripeWebhookHandler
}

// Router registers the widget API routes
type Router struct {
	engine     *gin.Engine
	apiVersion string
	handlers   Handlers
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, handlers Handlers, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		handlers:   handlers,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	if r.handlers.System != nil {
		api.GET("/health", r.handlers.System.Health)
		// Bare /health for load balancer probes
		r.engine.GET("/health", r.handlers.System.Health)
	}

	if r.handlers.Auth != nil {
		auth := api.Group("/auth")
		auth.POST("/iframe-login", r.handlers.Auth.IframeLogin)
		auth.POST("/refresh", r.handlers.Auth.Refresh)
	}

	if r.handlers.Chat != nil {
		chat := api.Group("/chat")
		chat.POST("/ask", r.handlers.Chat.Ask)
		chat.GET("/history", r.handlers.Chat.History)
	}

	if r.handlers.Note != nil {
		api.POST("/notes", r.handlers.Note.CreateNote)
	}

	if r.handlers.Billing != nil {
		billing := api.Group("/billing")
		billing.POST("/checkout", r.handlers.Billing.StartCheckout)
		billing.POST("/portal", r.handlers.Billing.OpenPortal)
	}

	if r.handlers.Webhook != nil {
		api.POST("/webhooks/stripe", r.handlers.Webhook.HandleStripeWebhook)
	}
}
