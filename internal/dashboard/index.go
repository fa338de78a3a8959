package dashboard

import (
	"bytes"
	_ "embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/cybozu-go/port-dashboard/internal/common"
	"go.uber.org/zap"
)

var (
	errMethodNotAllowed = errors.New("method not allowed")
	errTooManyRequests  = errors.New("too many requests")
)

//go:embed index.html.tmpl
var indexTemplateText string

var indexTemplate = template.Must(template.New("index").Parse(indexTemplateText))

type indexParams struct {
	APIPath        string
	RefreshMillis  int64
	DegradedHeader string
	SystemPortMax  int
	RefreshLabel   string
}

type IndexHandler struct {
	apiPath         string
	refreshInterval time.Duration
	logger          *zap.Logger
}

// NewIndexHandler returns the handler of the dashboard page, which polls
// apiPath every refreshInterval.
func NewIndexHandler(apiPath string, refreshInterval time.Duration, logger *zap.Logger) http.Handler {
	return &IndexHandler{
		apiPath:         apiPath,
		refreshInterval: refreshInterval,
		logger:          logger,
	}
}

func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, indexParams{
		APIPath:        h.apiPath,
		RefreshMillis:  h.refreshInterval.Milliseconds(),
		DegradedHeader: common.HeaderDegraded,
		SystemPortMax:  common.SystemPortMax,
		RefreshLabel:   h.refreshInterval.String(),
	})
	if err != nil {
		h.logger.Error("failed to render page", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Add("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck
}
