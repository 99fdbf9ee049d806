// Package mock serves a scripted stand-in for the analytics backend so the
// TUI can be exercised without infrastructure. Each question keyword selects
// a pipeline script: the default classic flow, the orchestrated flow, an
// ambiguity round trip, or a pipeline error.
package mock

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/sjson"

	"pubgpt-tui/internal/logging"
	"pubgpt-tui/internal/protocol"
)

type Server struct {
	port   int
	delay  time.Duration
	logger *logging.Logger
}

func NewServer(port int, logger *logging.Logger) *Server {
	return &Server{port: port, delay: 250 * time.Millisecond, logger: logger}
}

// Handler builds the route table; exposed separately so tests can mount it
// on an httptest server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/chat/health", s.healthHandler)
	mux.HandleFunc("/api/v1/chat/stream", s.streamHandler)
	mux.HandleFunc("/api/v1/auth/login", s.loginHandler)
	mux.HandleFunc("/api/v1/conversations", s.conversationsHandler)
	mux.HandleFunc("/api/v1/conversations/", s.conversationHandler)
	mux.HandleFunc("/api/v1/tokens/user/", s.tokensHandler)
	return mux
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("mock backend listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"user": map[string]any{
			"id":       1,
			"login":    req.Login,
			"isActive": true,
		},
	})
}

func (s *Server) conversationsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode([]map[string]any{
		{
			"sessionId":      "mock-session-1",
			"title":          "Budget des campagnes 2025",
			"messageCount":   4,
			"createdAt":      time.Now().Add(-26 * time.Hour).Format(time.RFC3339),
			"lastAccessedAt": time.Now().Add(-2 * time.Hour).Format(time.RFC3339),
			"preview":        "Quel est le budget total des campagnes ?",
		},
	})
}

func (s *Server) conversationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodDelete {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"sessionId": strings.TrimPrefix(r.URL.Path, "/api/v1/conversations/"),
		"messages": []map[string]any{
			{"role": "user", "content": "Quel est le budget total des campagnes ?"},
			{
				"role":    "assistant",
				"content": "Le budget total est de 1,2 M€.",
				"context": map[string]any{
					"generatedSql": "SELECT SUM(budget) FROM campagne",
				},
			},
		},
	})
}

func (s *Server) tokensHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"idUser":              1,
		"totalTokensConsumed": 4200,
		"maxTokensAllowed":    100000,
		"remainingTokens":     95800,
		"usagePercentage":     4.2,
		"quotaExceeded":       false,
	})
}

func (s *Server) streamHandler(w http.ResponseWriter, r *http.Request) {
	question := r.URL.Query().Get("question")
	clarification := r.URL.Query().Get("clarificationJson")
	chartDemanded := r.URL.Query().Get("isChartDemanded") == "true"

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	st := &scriptWriter{w: w, flusher: flusher, delay: s.delay}
	st.emit(protocol.KindSessionCreated, "", `{"sessionId":"mock-session-1"}`)

	lower := strings.ToLower(question)
	switch {
	case strings.Contains(lower, "erreur") || strings.Contains(lower, "error"):
		s.scriptError(st)
	case strings.Contains(lower, "ambigu") && clarification == "":
		s.scriptAmbiguity(st)
	case strings.Contains(lower, "orchestr"):
		s.scriptOrchestrated(st, chartDemanded)
	default:
		s.scriptClassic(st, chartDemanded)
	}
}

func (s *Server) scriptClassic(st *scriptWriter, chart bool) {
	st.emit(protocol.KindIntent, "Analyse de l'intention", "")
	st.emit(protocol.KindIntentResult, "Intention: requête analytique", "")
	st.emit(protocol.KindWorkspace, "Sélection du workspace", "")
	st.emit(protocol.KindWorkspaceResult, "Workspace: campagnes", "")
	st.emit(protocol.KindTableSearch, "Recherche des tables", "")
	st.emit(protocol.KindTableSearchResult, "3 tables retenues", "")
	st.emit(protocol.KindSQLExamples, "Recherche d'exemples SQL", "")
	st.emit(protocol.KindSQLExamplesResult, "2 exemples trouvés", "")
	st.emit(protocol.KindSQLGeneration, "Génération de la requête SQL", "")
	st.emit(protocol.KindSQLPreview, "", `{"sql":"SELECT nom, budget FROM campagne ORDER BY budget DESC"}`)
	st.emit(protocol.KindExecution, "Exécution de la requête", "")
	st.emit(protocol.KindExecutionResult, "12 lignes", "")
	st.emit(protocol.KindAnswerGeneration, "Rédaction de la réponse", "")
	st.emit(protocol.KindResult, "", s.resultPayload(chart))
}

func (s *Server) scriptOrchestrated(st *scriptWriter, chart bool) {
	st.emit(protocol.KindIntent, "Analyse de l'intention", "")
	st.emit(protocol.KindIntentResult, "Intention: requête complexe", "")
	st.emit(protocol.KindOrchestrator, "Orchestration de la requête", "")
	st.emit(protocol.KindOrchestratorReasoning, "",
		`{"reasoning":"La question croise plusieurs dimensions, décomposition en étapes."}`)
	st.emit(protocol.KindPlannerRequested, "Planification", "")
	st.emit(protocol.KindPlannerStrategy, "Choix de la stratégie", "")
	st.emit(protocol.KindPlannerThinking, "Construction du plan", "")
	st.emit(protocol.KindPlannerSynthesis, "Synthèse du plan", "")
	st.emit(protocol.KindPlannerCompleted, "Plan terminé", "")
	st.emit(protocol.KindExecution, "Exécution du plan", "")
	st.emit(protocol.KindExecutionResult, "12 lignes", "")
	st.emit(protocol.KindOrchestratorSynthesis, "Synthèse de l'orchestration", "")
	st.emit(protocol.KindAnswerGeneration, "Rédaction de la réponse", "")
	st.emit(protocol.KindResult, "", s.resultPayload(chart))
}

func (s *Server) scriptAmbiguity(st *scriptWriter) {
	st.emit(protocol.KindIntent, "Analyse de l'intention", "")
	st.emit(protocol.KindIntentResult, "Intention: requête analytique", "")
	st.emit(protocol.KindSQLGeneration, "Génération de la requête SQL", "")

	payload := `{"hasAmbiguity":true}`
	payload, _ = sjson.Set(payload, "questions", []map[string]any{
		{
			"question": "Quelle période souhaitez-vous analyser ?",
			"choices":  []string{"Mois en cours", "Année 2025", "Tout l'historique"},
		},
	})
	st.emit(protocol.KindAmbiguityDetected, "Précisions nécessaires", payload)
}

func (s *Server) scriptError(st *scriptWriter) {
	st.emit(protocol.KindIntent, "Analyse de l'intention", "")
	st.emit(protocol.KindError, "La base de données est indisponible", "")
}

func (s *Server) resultPayload(chart bool) string {
	payload := "{}"
	payload, _ = sjson.Set(payload, "sessionId", "mock-session-1")
	payload, _ = sjson.Set(payload, "answer",
		"Voici les campagnes classées par budget décroissant. La campagne Printemps domine avec 320 k€.")
	payload, _ = sjson.Set(payload, "generatedSql",
		"SELECT nom, budget FROM campagne ORDER BY budget DESC")
	payload, _ = sjson.Set(payload, "queryResults", []map[string]any{
		{"nom": "Printemps", "budget": 320000},
		{"nom": "Rentrée", "budget": 275000},
		{"nom": "Fêtes", "budget": 190000},
	})
	payload, _ = sjson.Set(payload, "confidenceScore", map[string]any{
		"globalScore": 0.92,
		"level":       "high",
	})
	if chart {
		payload, _ = sjson.Set(payload, "chartData", map[string]any{
			"visualization": map[string]any{
				"type":       string(protocol.ChartBar),
				"dimensions": map[string]any{"x": "nom", "y": "budget"},
				"title":      "Budget par campagne",
				"unit":       "€",
			},
			"data": []map[string]any{
				{"nom": "Printemps", "budget": 320000},
				{"nom": "Rentrée", "budget": 275000},
				{"nom": "Fêtes", "budget": 190000},
			},
			"metadata": map[string]any{"rowCount": 3, "hasMoreData": false},
		})
	}
	return payload
}

type scriptWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	delay   time.Duration
}

func (st *scriptWriter) emit(kind protocol.EventKind, message, data string) {
	payload := "{}"
	payload, _ = sjson.Set(payload, "step", string(kind))
	if message != "" {
		payload, _ = sjson.Set(payload, "message", message)
	}
	if data != "" {
		payload, _ = sjson.SetRaw(payload, "data", data)
	}
	payload, _ = sjson.Set(payload, "timestamp", time.Now().Format(time.RFC3339))

	fmt.Fprintf(st.w, "event: %s\ndata: %s\n\n", kind, payload)
	st.flusher.Flush()
	if st.delay > 0 && !protocol.IsTerminal(kind) {
		time.Sleep(st.delay)
	}
}
