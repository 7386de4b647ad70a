// File: internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-granny/internal/middleware"
)

// Handlers groups everything the router serves. Exchange may be nil when the
// exchange log is disabled.
type Handlers struct {
	Chat     *ChatHandler
	Session  *SessionHandler
	Exchange *ExchangeHandler
	Log      *LogHandler
	Health   *HealthHandler
}

// NewRouter wires routes and middleware. CORS wraps the router itself so
// preflight requests are answered before route matching.
func NewRouter(h Handlers, logger Logger, secureCookies bool) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.RecoverPanic(logger))
	r.Use(middleware.LoggingMiddleware(logger))

	// --- Public Routes ---
	r.HandleFunc("/health", h.Health.Health).Methods("GET")
	r.HandleFunc("/api/log", h.Log.LogFrontendEvent).Methods("POST")
	r.HandleFunc("/api/chat", h.Chat.HandleChat).Methods("POST")
	if h.Exchange != nil {
		r.HandleFunc("/api/exchanges", h.Exchange.ListExchanges).Methods("GET")
	}

	// --- Session Routes ---
	session := r.PathPrefix("/api/session").Subrouter()
	session.Use(middleware.Session(secureCookies))
	session.HandleFunc("", h.Session.GetSession).Methods("GET")
	session.HandleFunc("/chats", h.Session.CreateChat).Methods("POST")
	session.HandleFunc("/chats/{id}/switch", h.Session.SwitchChat).Methods("POST")
	session.HandleFunc("/chats/{id}", h.Session.DeleteChat).Methods("DELETE")
	session.HandleFunc("/messages", h.Session.AddMessage).Methods("POST")
	session.HandleFunc("/messages", h.Session.ClearMessages).Methods("DELETE")
	session.HandleFunc("/history", h.Session.GetHistory).Methods("GET")
	session.HandleFunc("/limit", h.Session.SetLimit).Methods("PUT")
	session.HandleFunc("/send", h.Session.Send).Methods("POST")

	// --- Custom Error Handlers ---
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Not Found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	return middleware.CORS(r)
}
