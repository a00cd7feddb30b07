// Package api expõe a API REST do caminhão: status consolidado, última
// amostra, fila de comandos, rota ativa e as janelas de histórico e
// eventos persistidas no Redis.
package api

import (
	"net/http"
	"strings"

	"caminhao_go/internal/buffer"
	"caminhao_go/internal/redis"
	"caminhao_go/internal/route"
	"caminhao_go/internal/telemetry"
	"caminhao_go/pkg/logger"
)

// Router gerencia as rotas da API
type Router struct {
	handler     *Handler
	mux         *http.ServeMux
	basePath    string
	middlewares []Middleware
}

// NewRouter cria um novo router para a API do caminhão
func NewRouter(truckID int, tel *telemetry.Service, store *redis.Service, commands *buffer.BoundedBuffer[string], routes *route.Manager, basePath string) *Router {
	handler := NewHandler(truckID, tel, store, commands, routes)

	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	basePath = strings.TrimSuffix(basePath, "/")

	middlewares := []Middleware{
		LoggingMiddleware,
		RecoveryMiddleware,
		CorsMiddleware,
	}

	return &Router{
		handler:     handler,
		mux:         http.NewServeMux(),
		basePath:    basePath,
		middlewares: middlewares,
	}
}

// Setup configura todas as rotas
func (r *Router) Setup() {
	r.mux.HandleFunc(r.path("/status"), r.handler.GetStatus)
	r.mux.HandleFunc(r.path("/sample"), r.handler.GetSample)
	r.mux.HandleFunc(r.path("/command"), r.handler.PostCommand)
	r.mux.HandleFunc(r.path("/route"), r.handler.HandleRoute)
	r.mux.HandleFunc(r.path("/history"), r.handler.GetHistory)
	r.mux.HandleFunc(r.path("/events"), r.handler.GetEvents)

	logger.Infof("API configurada com base path: %s", r.basePath)
}

// Handler retorna o handler HTTP final com os middlewares aplicados
func (r *Router) Handler() http.Handler {
	return r.applyMiddleware(r.mux)
}

// AddMiddleware adiciona um novo middleware à cadeia
func (r *Router) AddMiddleware(middleware Middleware) {
	r.middlewares = append(r.middlewares, middleware)
}

// path retorna o caminho completo para uma rota
func (r *Router) path(route string) string {
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return r.basePath + route
}

// applyMiddleware aplica a cadeia de middlewares ao handler
func (r *Router) applyMiddleware(handler http.Handler) http.Handler {
	if len(r.middlewares) == 0 {
		return handler
	}
	return Chain(r.middlewares...)(handler)
}

// ServeHTTP implementa a interface http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.Handler().ServeHTTP(w, req)
}
