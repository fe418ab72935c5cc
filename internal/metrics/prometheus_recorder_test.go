package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveBuildDuration(ModeBundle, 500*time.Millisecond)
	pr.IncBuildOutcome(ModeBundle, OutcomeSuccess)
	pr.IncRebuild()
	pr.IncRebuild()
	pr.IncWatchError(false)
	pr.IncWatchError(true)
	pr.IncRestart()
	pr.SetSessionState("restarting")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.rebuilds))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.restarts))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.watchErrors.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.sessionState.WithLabelValues("restarting")))
	assert.Equal(t, 0.0, testutil.ToFloat64(pr.sessionState.WithLabelValues("running")))
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncRestart()

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pacpan_watch_restarts_total 1"))
}
