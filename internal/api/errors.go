package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/fbxcore/pkg/fbx"
)

var ErrNotFound = errors.New("not_found")

// loadErrorCode maps a load failure to the code reported to clients.
func loadErrorCode(err error) (int, string) {
	kind := fbx.KindOf(err)
	if kind == 0 {
		return http.StatusInternalServerError, "internal"
	}
	return http.StatusBadRequest, kind.String()
}
