package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cybozu-go/port-dashboard/internal/common"
	"github.com/cybozu-go/port-dashboard/internal/portscan"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// PortTableComputer computes the current port table.
type PortTableComputer interface {
	ComputePortTable(ctx context.Context) ([]common.PortRow, error)
}

type PortsHandler struct {
	computer PortTableComputer
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewPortsHandler returns the handler of the port table API.
// A nil limiter disables throttling.
func NewPortsHandler(computer PortTableComputer, limiter *rate.Limiter, logger *zap.Logger) http.Handler {
	return &PortsHandler{
		computer: computer,
		limiter:  limiter,
		logger:   logger,
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Add("Content-Type", "text/plain")
	w.WriteHeader(status)
	w.Write([]byte(err.Error())) //nolint:errcheck
}

func (h *PortsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}
	if h.limiter != nil && !h.limiter.Allow() {
		h.logger.Warn("throttled port table request", zap.String("remote", r.RemoteAddr))
		writeError(w, http.StatusTooManyRequests, errTooManyRequests)
		return
	}

	rows, err := h.computer.ComputePortTable(r.Context())
	if err != nil {
		// The rows stay usable; tell the page which sources are missing.
		h.logger.Warn("computed a degraded port table", zap.Error(err))
		if failed := portscan.FailedListers(err); len(failed) > 0 {
			w.Header().Set(common.HeaderDegraded, strings.Join(failed, ","))
		}
	}

	out, err := json.Marshal(rows)
	if err != nil {
		h.logger.Error("failed to marshal", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.Write(out) //nolint:errcheck
}
