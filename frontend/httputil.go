package frontend

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/frontierdb/frontier/pkg/flog"
	"github.com/frontierdb/frontier/pkg/models/ferror"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		flog.Zero.Error().Err(err).Msg("response encode failed")
	}
}

// writeErr classifies err and writes the plain-text error response.
func writeErr(w http.ResponseWriter, err error) {
	status := ferror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		flog.Zero.Error().Err(err).Msg("request failed")
	} else {
		flog.Zero.Debug().Err(err).Msg("request rejected")
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}

// boolParam decodes a boolean request parameter. An absent parameter
// means def; a present but unparsable one is a client error.
func boolParam(r *http.Request, name string, def bool) (bool, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, ferror.New(ferror.FQ_SEMANTIC, "parameter %s: %q is not a boolean", name, raw)
	}
	return v, nil
}
