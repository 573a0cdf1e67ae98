// Package conn holds the REST clients for the execution backends. Each
// client wraps one long-lived, process-wide connection; requests borrow
// it but never own it. Timeout policy lives here, not in the pipeline.
package conn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/frontierdb/frontier/pkg/models/ferror"
	"github.com/pkg/errors"
)

// QueryStatus is the backend's answer to a query submission or a status
// poll.
type QueryStatus struct {
	QueryID int64  `json:"queryId"`
	Status  string `json:"status"`
}

type restClient struct {
	base string
	hc   *http.Client
}

func (rc *restClient) getJSON(path string, out any) error {
	resp, err := rc.hc.Get(rc.base + path)
	if err != nil {
		return ferror.Wrap(errors.Wrapf(err, "GET %s", path), ferror.FQ_CONNECTIVITY)
	}
	return decodeResponse(resp, path, out)
}

func (rc *restClient) postJSON(path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return errors.Wrapf(err, "encoding body for %s", path)
	}
	resp, err := rc.hc.Post(rc.base+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		return ferror.Wrap(errors.Wrapf(err, "POST %s", path), ferror.FQ_CONNECTIVITY)
	}
	return decodeResponse(resp, path, out)
}

func decodeResponse(resp *http.Response, path string, out any) error {
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ferror.New(ferror.FQ_BACKEND_EXEC, "%s: backend returned %d: %s",
			path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding %s response", path)
	}
	return nil
}

// hostPortOf splits a parsed base URL into host and numeric port.
func hostPortOf(u *url.URL) (string, int) {
	port, _ := strconv.Atoi(u.Port())
	return u.Hostname(), port
}

func baseURL(scheme, host string, port int) string {
	return fmt.Sprintf("%s://%s:%d", scheme, host, port)
}
