package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"caminhao_go/internal/buffer"
	"caminhao_go/internal/models"
	"caminhao_go/internal/redis"
	"caminhao_go/internal/route"
	"caminhao_go/internal/telemetry"
	"caminhao_go/pkg/logger"
)

// Limites das requisições aceitas pela API
const (
	defaultHistoryCount = 60
	maxHistoryCount     = 1000
	maxCommandBytes     = 4 * 1024
	maxRouteBytes       = 1 << 20
)

// Handler contém os handlers HTTP da API do caminhão
type Handler struct {
	truckID   int
	telemetry *telemetry.Service
	store     *redis.Service
	commands  *buffer.BoundedBuffer[string]
	routes    *route.Manager
}

// NewHandler cria um novo handler de API. store e routes podem ser nil;
// os endpoints correspondentes respondem como indisponíveis.
func NewHandler(truckID int, tel *telemetry.Service, store *redis.Service, commands *buffer.BoundedBuffer[string], routes *route.Manager) *Handler {
	return &Handler{
		truckID:   truckID,
		telemetry: tel,
		store:     store,
		commands:  commands,
		routes:    routes,
	}
}

// GetStatus retorna o último status consolidado do caminhão. Sem status
// em memória o Redis serve de retaguarda.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	if h.telemetry != nil {
		if status, ok := h.telemetry.LastStatus(); ok {
			h.respondWithJSON(w, http.StatusOK, status)
			return
		}
	}

	if h.store != nil && h.store.IsConnected() {
		if status, err := h.store.GetStatus(h.truckID); err == nil && status != nil {
			h.respondWithJSON(w, http.StatusOK, status)
			return
		}
	}

	h.respondWithError(w, http.StatusNotFound, "Nenhum status disponível")
}

// GetSample retorna a última amostra filtrada dos sensores
func (h *Handler) GetSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	if h.telemetry != nil {
		if sample, ok := h.telemetry.LastSample(); ok {
			h.respondWithJSON(w, http.StatusOK, sample)
			return
		}
	}

	h.respondWithError(w, http.StatusNotFound, "Nenhuma amostra disponível")
}

// PostCommand enfileira um comando de texto livre. O corpo pode ser o
// texto puro ou um JSON com o campo "command"; o comando entra na mesma
// fila dos clientes WebSocket e do painel.
func (h *Handler) PostCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCommandBytes))
	if err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Erro ao ler corpo da requisição")
		return
	}

	text := strings.TrimSpace(string(body))
	var msg models.CommandMessage
	if json.Unmarshal(body, &msg) == nil && msg.Command != "" {
		text = msg.Command
	}

	if text == "" {
		h.respondWithError(w, http.StatusBadRequest, "Comando vazio")
		return
	}

	if h.commands == nil {
		h.respondWithError(w, http.StatusServiceUnavailable, "Fila de comandos indisponível")
		return
	}

	h.commands.Push(text)
	logger.Infof("Comando recebido via API: %q", text)

	h.respondWithJSON(w, http.StatusAccepted, map[string]string{"queued": text})
}

// HandleRoute serve a rota ativa (GET) e a troca em execução (POST). O
// formato é o texto de waypoints "x y [vel]", uma linha por ponto.
func (h *Handler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	if h.routes == nil {
		h.respondWithError(w, http.StatusServiceUnavailable, "Gerenciador de rota indisponível")
		return
	}

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, h.routes.RouteText())

	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRouteBytes))
		if err != nil {
			h.respondWithError(w, http.StatusBadRequest, "Erro ao ler corpo da requisição")
			return
		}

		n := h.routes.ReplaceRoute(string(body))
		if n == 0 {
			h.respondWithError(w, http.StatusBadRequest, "Nenhum waypoint válido no corpo")
			return
		}

		logger.Infof("Rota trocada via API: %d waypoints", n)
		h.respondWithJSON(w, http.StatusOK, map[string]int{"waypoints": n})

	default:
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
	}
}

// GetHistory retorna a janela de status recentes gravada no Redis. O
// parâmetro count limita a janela (padrão 60, máximo 1000).
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	if h.store == nil || !h.store.IsConnected() {
		h.respondWithError(w, http.StatusServiceUnavailable, "Histórico indisponível sem Redis")
		return
	}

	history, err := h.store.GetHistory(h.truckID, h.countParam(r))
	if err != nil {
		logger.Errorf("Erro ao ler histórico do Redis: %v", err)
		h.respondWithError(w, http.StatusInternalServerError, "Erro ao consultar histórico")
		return
	}

	if history == nil {
		history = []models.VehicleStatus{}
	}
	h.respondWithJSON(w, http.StatusOK, history)
}

// GetEvents retorna os eventos de falha recentes gravados no Redis
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondWithError(w, http.StatusMethodNotAllowed, "Método não permitido")
		return
	}

	if h.store == nil || !h.store.IsConnected() {
		h.respondWithError(w, http.StatusServiceUnavailable, "Eventos indisponíveis sem Redis")
		return
	}

	events, err := h.store.GetEvents(h.truckID, h.countParam(r))
	if err != nil {
		logger.Errorf("Erro ao ler eventos do Redis: %v", err)
		h.respondWithError(w, http.StatusInternalServerError, "Erro ao consultar eventos")
		return
	}

	if events == nil {
		events = []models.ManagerFaultEvent{}
	}
	h.respondWithJSON(w, http.StatusOK, events)
}

// countParam extrai e limita o parâmetro count da query string
func (h *Handler) countParam(r *http.Request) int64 {
	count := int64(defaultHistoryCount)
	if v := r.URL.Query().Get("count"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			count = n
		}
	}
	if count > maxHistoryCount {
		count = maxHistoryCount
	}
	return count
}

// respondWithError responde com erro em formato JSON
func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON responde com JSON
func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Errorf("Erro ao codificar resposta JSON: %v", err)
		fmt.Fprintf(w, `{"error":"Erro interno ao processar resposta"}`)
	}
}
