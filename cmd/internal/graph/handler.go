package graph

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/graphql-go/graphql"
)

const defaultMaxBodyBytes = 1 << 20 // 1 MiB

// Handler serves the /graphql endpoint.
type Handler struct {
	log    *slog.Logger
	schema graphql.Schema

	maxBodyBytes int64
}

// NewHandler builds the schema and returns the HTTP handler for it.
func NewHandler(log *slog.Logger, r *Resolver) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}

	schema, err := NewSchema(r)
	if err != nil {
		return nil, err
	}

	return &Handler{
		log:          log,
		schema:       schema,
		maxBodyBytes: defaultMaxBodyBytes,
	}, nil
}

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// ServeHTTP executes a single GraphQL request. Operation failures surface in
// the standard errors array with a 200 status; only transport-level problems
// produce non-200 responses.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req graphqlRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        WithRequest(r.Context(), r),
	})

	if result.HasErrors() {
		h.log.Warn("graphql.errors", "count", len(result.Errors), "first", result.Errors[0].Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(result)
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Ensure there is no extra data after the first JSON value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after JSON object")
	}
	return nil
}
