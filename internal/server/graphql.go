package server

import (
	"encoding/json"
	"mime"
	"net/http"

	"github.com/graph-gophers/graphql-go"
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"

	"github.com/VitaminP8/gqlapi/internal/logger"
)

type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// graphqlHandler executes queries and mutations sent as GET parameters or
// as a JSON POST body.
type graphqlHandler struct {
	schema *graphql.Schema
}

func (h *graphqlHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"errors": []map[string]string{{"message": err.Error()}},
		})
		return
	}

	if r.Method == http.MethodGet {
		if op := operationType(req); op != "" && op != ast.Query {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, map[string]interface{}{
				"errors": []map[string]string{{"message": "only query operations are allowed over GET, use POST for " + string(op)}},
			})
			return
		}
	}

	resp := h.schema.Exec(r.Context(), req.Query, req.OperationName, req.Variables)
	if len(resp.Errors) > 0 {
		logger.FromContext(r.Context()).Info("graphql request returned errors",
			zap.String("operation", req.OperationName),
			zap.Int("errors", len(resp.Errors)),
			zap.String("first_error", resp.Errors[0].Message),
		)
	}

	writeJSON(w, http.StatusOK, resp)
}

func decodeRequest(r *http.Request) (*graphqlRequest, error) {
	req := &graphqlRequest{}

	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		req.Query = query.Get("query")
		req.OperationName = query.Get("operationName")
		if vars := query.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &req.Variables); err != nil {
				return nil, errors.Wrap(err, "variables are not a valid JSON object")
			}
		}
	case http.MethodPost:
		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			return nil, errors.Wrap(err, "unable to parse media type")
		}
		if mediaType != "application/json" {
			return nil, errors.New("unrecognised Content-Type, use application/json for GraphQL requests")
		}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			return nil, errors.Wrap(err, "not a valid GraphQL request body")
		}
	default:
		return nil, errors.Errorf("method %s is not supported", r.Method)
	}

	if req.Query == "" {
		return nil, errors.New("query is required")
	}
	return req, nil
}

// operationType returns the type of the operation req selects, or "" when the
// document does not parse or the operation cannot be found. Exec reports
// those cases itself.
func operationType(req *graphqlRequest) ast.Operation {
	doc, err := parser.ParseQuery(&ast.Source{Input: req.Query})
	if err != nil {
		return ""
	}
	op := doc.Operations.ForName(req.OperationName)
	if op == nil {
		return ""
	}
	return op.Operation
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
