package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/sari-store/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  ProfilerConfig
		want string
	}{
		{"missing server", ProfilerConfig{Enabled: true, ApplicationName: "storefront"}, "server address"},
		{"missing name", ProfilerConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"}, "application name"},
		{"unknown type", ProfilerConfig{
			Enabled:         true,
			ServerAddress:   "http://pyroscope:4040",
			ApplicationName: "storefront",
			ProfileTypes:    []string{"cpu", "heap"},
		}, `unknown profile type "heap"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProfiler(tt.cfg, zap.NewNop())
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseProfileTypes(t *testing.T) {
	types, err := parseProfileTypes([]string{"cpu", "inuse_space", "cpu", "goroutines"})
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileInuseSpace,
		pyroscope.ProfileGoroutines,
	}, types)

	types, err = parseProfileTypes(nil)
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestProfilerConfigFrom(t *testing.T) {
	cfg := ProfilerConfigFrom(config.TelemetryConfig{
		ServiceName:            "sari-storefront",
		ProfilingEnabled:       true,
		ProfilingServerAddr:    "http://pyroscope:4040",
		ProfilingBasicAuthUser: "u",
		ProfilingBasicAuthPass: "p",
		ProfilingTypes:         []string{"cpu"},
	})

	assert.Equal(t, ProfilerConfig{
		Enabled:           true,
		ServerAddress:     "http://pyroscope:4040",
		ApplicationName:   "sari-storefront",
		BasicAuthUser:     "u",
		BasicAuthPassword: "p",
		ProfileTypes:      []string{"cpu"},
	}, cfg)
}

func TestProviders_EnableSpanProfiles(t *testing.T) {
	t.Run("without tracing", func(t *testing.T) {
		p := &Providers{logger: zap.NewNop()}
		assert.False(t, p.EnableSpanProfiles())
	})

	t.Run("wraps the global tracer provider", func(t *testing.T) {
		prev := otel.GetTracerProvider()
		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		t.Cleanup(func() {
			otel.SetTracerProvider(prev)
			_ = tp.Shutdown(context.Background())
		})

		p := &Providers{TracerProvider: tp, logger: zap.NewNop()}
		require.True(t, p.EnableSpanProfiles())
		assert.NotSame(t, tp, otel.GetTracerProvider())

		_, span := otel.Tracer("test").Start(context.Background(), "checkout")
		span.End()
		require.Len(t, recorder.Ended(), 1)
		assert.Equal(t, "checkout", recorder.Ended()[0].Name())
	})
}

func TestWithProfilingLabels(t *testing.T) {
	t.Run("attaches non-empty labels", func(t *testing.T) {
		long := strings.Repeat("x", maxLabelValueLength+10)
		called := false
		WithProfilingLabels(context.Background(), map[string]string{
			ProfilingLabelRoute:  "/api/v1/cart",
			ProfilingLabelMethod: "",
			"long":               long,
		}, func(ctx context.Context) {
			called = true
			route, ok := pprof.Label(ctx, ProfilingLabelRoute)
			assert.True(t, ok)
			assert.Equal(t, "/api/v1/cart", route)

			_, ok = pprof.Label(ctx, ProfilingLabelMethod)
			assert.False(t, ok)

			v, _ := pprof.Label(ctx, "long")
			assert.Len(t, v, maxLabelValueLength)
		})
		assert.True(t, called)
	})

	t.Run("no labels runs fn with the same context", func(t *testing.T) {
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "v")
		WithProfilingLabels(ctx, nil, func(got context.Context) {
			assert.Equal(t, ctx, got)
		})
	})
}
