package logger

import (
	"testing"

	"github.com/maxaizer/swiss-jobs/internal/config"
	"github.com/maxaizer/swiss-jobs/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func Test_LogLevelMapping(t *testing.T) {
	assert.Equal(t, log.DebugLevel, toLogrusLevel(config.LevelDebug))
	assert.Equal(t, log.WarnLevel, toLogrusLevel(config.LevelWarning))
	assert.Equal(t, log.FatalLevel, toLogrusLevel(config.LevelFatal))
	assert.Equal(t, log.InfoLevel, toLogrusLevel("unknown"))
}

func Test_PrometheusHookCountsByErrorType(t *testing.T) {
	hook := &prometheusHook{}

	before := testutil.ToFloat64(metrics.ErrorsCounter.WithLabelValues(ErrorTypeDb))
	unknownBefore := testutil.ToFloat64(metrics.ErrorsCounter.WithLabelValues("unknown"))

	entry := log.NewEntry(log.StandardLogger()).WithField(ErrorTypeField, ErrorTypeDb)
	assert.NoError(t, hook.Fire(entry))
	assert.NoError(t, hook.Fire(log.NewEntry(log.StandardLogger())))

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ErrorsCounter.WithLabelValues(ErrorTypeDb)))
	assert.Equal(t, unknownBefore+1, testutil.ToFloat64(metrics.ErrorsCounter.WithLabelValues("unknown")))
}

func Test_LokiHookLevels(t *testing.T) {
	hook := &lokiHook{minLevel: log.WarnLevel}
	assert.Equal(t, []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel, log.WarnLevel}, hook.Levels())
}
