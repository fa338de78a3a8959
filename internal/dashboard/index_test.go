package dashboard

import (
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

var _ = Describe("IndexHandler", func() {
	It("should render the dashboard page", func() {
		h := NewIndexHandler("/api/ports", 15*time.Second, zap.NewNop())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("text/html; charset=utf-8"))
		body := rec.Body.String()
		Expect(body).To(ContainSubstring("Port &amp; Software Dashboard"))
		Expect(body).To(ContainSubstring("Loading data..."))
		Expect(body).To(ContainSubstring("Failed to load data."))
		Expect(body).To(ContainSubstring("No ports match your filter."))
		Expect(body).To(ContainSubstring("Refreshes every 15s."))
		Expect(body).To(MatchRegexp(`const refreshMillis = \s*15000\s*;`))
		Expect(body).To(ContainSubstring("Some data sources are unavailable"))
	})

	It("should not serve other paths", func() {
		h := NewIndexHandler("/api/ports", 15*time.Second, zap.NewNop())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should reject other methods", func() {
		h := NewIndexHandler("/api/ports", 15*time.Second, zap.NewNop())
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/", nil))
		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
	})
})
