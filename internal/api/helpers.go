package api

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
)

func writeJSON(c *echo.Context, status int, v any) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeBadRequest(c *echo.Context, msg, code string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", code)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return writeJSON(c, status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

func queryBool(c *echo.Context, name string, def bool) bool {
	switch c.QueryParam(name) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return def
	}
}

func newDocumentID() string {
	return "doc_" + uuid.NewString()
}
