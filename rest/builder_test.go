package rest_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/restpipe/credentials"
	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/logger"
	"github.com/kbukum/restpipe/pipeline"
	"github.com/kbukum/restpipe/policy"
	"github.com/kbukum/restpipe/rest"
	"github.com/kbukum/restpipe/serializer"
	"github.com/kbukum/restpipe/testutil"
	"github.com/kbukum/restpipe/transport"
	"github.com/kbukum/restpipe/version"
)

func fastRetry() policy.RetryOptions {
	return policy.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Logger:       logger.Nop(),
	}
}

func completeBuilder(tr pipeline.Transport) *rest.Builder {
	return rest.NewBuilder().
		WithBaseURL("https://api.example.com/v1").
		WithSerializerAdapter(serializer.JSON{}).
		WithResponseBuilderFactory(rest.DefaultResponseBuilderFactory{}).
		WithRetryOptions(fastRetry()).
		WithLogger(logger.Nop()).
		WithTransport(tr)
}

func TestBuild_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		builder *rest.Builder
		field   string
	}{
		{
			name:    "base URL",
			builder: rest.NewBuilder(),
			field:   "base URL",
		},
		{
			name:    "response builder factory",
			builder: rest.NewBuilder().WithBaseURL("https://x.example.com").WithSerializerAdapter(serializer.JSON{}),
			field:   "response builder factory",
		},
		{
			name: "serializer adapter",
			builder: rest.NewBuilder().WithBaseURL("https://x.example.com").
				WithResponseBuilderFactory(rest.DefaultResponseBuilderFactory{}),
			field: "serializer adapter",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, err := tc.builder.Build()
			assert.Nil(t, client)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeMissingField))
			assert.True(t, errors.IsConfiguration(err))
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestBuild_InvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*rest.Builder)
		field  string
	}{
		{"url", func(b *rest.Builder) { b.WithBaseURL("not a url") }, "base URL"},
		{"read timeout", func(b *rest.Builder) { b.WithReadTimeout(-time.Second) }, "read timeout"},
		{"connection timeout", func(b *rest.Builder) { b.WithConnectionTimeout(-time.Second) }, "connection timeout"},
		{"idle connections", func(b *rest.Builder) { b.WithMaxIdleConnections(-1) }, "max idle connections"},
		{"log level", func(b *rest.Builder) { b.WithLogLevel(policy.LogLevel(9)) }, "log level"},
		{"options log level", func(b *rest.Builder) { b.WithOptions(rest.Options{LogLevel: "loud"}) }, "log level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := completeBuilder(testutil.NewScriptedTransport())
			tc.mutate(b)
			_, err := b.Build()
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig), "got %v", err)
			assert.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestBuild_Defaults(t *testing.T) {
	client, err := rest.NewBuilder().
		WithBaseURL("https://api.example.com").
		WithSerializerAdapter(serializer.JSON{}).
		WithResponseBuilderFactory(rest.DefaultResponseBuilderFactory{}).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", client.BaseURL())
	assert.Equal(t, version.UserAgent(), client.UserAgent())
	assert.Equal(t, 10*time.Second, client.ReadTimeout())
	assert.Equal(t, 10*time.Second, client.ConnectionTimeout())
	assert.Equal(t, policy.LogNone, client.LogLevel())
	assert.Equal(t, policy.DefaultRetryOptions().MaxAttempts, client.RetryOptions().MaxAttempts)
	assert.Nil(t, client.Credentials())
	assert.Nil(t, client.Logger())
	assert.Empty(t, client.CustomPolicies())
	assert.Equal(t, serializer.JSON{}, client.SerializerAdapter())
	assert.Equal(t, rest.DefaultResponseBuilderFactory{}, client.ResponseBuilderFactory())

	// UserAgent and Retry only: no logging at LogNone, no credentials.
	assert.Equal(t, 2, client.Pipeline().Len())
}

func TestBuild_RepeatedBuildsAreIndependent(t *testing.T) {
	b := completeBuilder(testutil.NewScriptedTransport())
	first, err := b.Build()
	require.NoError(t, err)

	b.WithUserAgent("second/1.0")
	second, err := b.Build()
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, version.UserAgent(), first.UserAgent())
	assert.Equal(t, "second/1.0", second.UserAgent())
}

func TestBuild_CustomPolicyOrder(t *testing.T) {
	rec := &testutil.Recorder{}
	tr := testutil.NewScriptedTransport()
	client, err := completeBuilder(tr).
		AddCustomPolicy(rec.Factory("A")).
		AddCustomPolicy(rec.Factory("B")).
		AddCustomPolicy(rec.Factory("C")).
		Build()
	require.NoError(t, err)

	req, err := client.NewRequest(http.MethodGet, "items", nil)
	require.NoError(t, err)
	_, err = client.Send(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"A:pre", "B:pre", "C:pre", "C:post", "B:post", "A:post"}, rec.Events())
	assert.Len(t, client.CustomPolicies(), 3)
}

func TestBuild_BuiltInsRunBeforeCustomPolicies(t *testing.T) {
	var seen http.Header
	probe := pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		return pipeline.PolicyFunc(func(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
			seen = req.Header.Clone()
			return next.Send(ctx, req)
		})
	})
	client, err := completeBuilder(testutil.NewScriptedTransport()).
		WithUserAgent("probe/1.0").
		WithCredentials(credentials.Bearer("tok")).
		AddCustomPolicy(probe).
		Build()
	require.NoError(t, err)

	req, err := client.NewRequest(http.MethodGet, "items", nil)
	require.NoError(t, err)
	_, err = client.Send(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "probe/1.0", seen.Get("User-Agent"))
	assert.Equal(t, "Bearer tok", seen.Get("Authorization"))
}

func TestClient_NewBuilderLeavesSourceUnchanged(t *testing.T) {
	rec := &testutil.Recorder{}
	source, err := completeBuilder(testutil.NewScriptedTransport()).
		WithUserAgent("source/1.0").
		AddCustomPolicy(rec.Factory("A")).
		Build()
	require.NoError(t, err)

	derived, err := source.NewBuilder().
		WithUserAgent("derived/1.0").
		WithReadTimeout(time.Minute).
		WithLogLevel(policy.LogBasic).
		AddCustomPolicy(rec.Factory("B")).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "source/1.0", source.UserAgent())
	assert.Equal(t, 10*time.Second, source.ReadTimeout())
	assert.Equal(t, policy.LogNone, source.LogLevel())
	assert.Len(t, source.CustomPolicies(), 1)

	assert.Equal(t, "derived/1.0", derived.UserAgent())
	assert.Equal(t, time.Minute, derived.ReadTimeout())
	assert.Equal(t, policy.LogBasic, derived.LogLevel())
	assert.Len(t, derived.CustomPolicies(), 2)
	assert.Equal(t, source.BaseURL(), derived.BaseURL())
}

func TestBuilder_WithEnvironment(t *testing.T) {
	client, err := completeBuilder(testutil.NewScriptedTransport()).
		WithEnvironment(rest.AzureCloud, rest.EndpointResourceManager).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "https://management.azure.com/", client.BaseURL())

	_, err = completeBuilder(testutil.NewScriptedTransport()).
		WithEnvironment(rest.EnvironmentMap{}, rest.EndpointGraph).
		Build()
	assert.True(t, errors.HasCode(err, errors.ErrCodeMissingField))
}

func TestBuilder_WithOptions(t *testing.T) {
	tr := testutil.NewScriptedTransport()
	client, err := completeBuilder(tr).WithOptions(rest.Options{
		BaseURL:           "https://opts.example.com",
		UserAgent:         "opts/1.0",
		LogLevel:          "headers",
		ReadTimeout:       3 * time.Second,
		ConnectionTimeout: 4 * time.Second,
		Retry:             rest.RetrySettings{MaxAttempts: 5},
		Headers:           map[string]string{"X-Tenant": "acme"},
	}).Build()
	require.NoError(t, err)

	assert.Equal(t, "https://opts.example.com", client.BaseURL())
	assert.Equal(t, "opts/1.0", client.UserAgent())
	assert.Equal(t, policy.LogHeaders, client.LogLevel())
	assert.Equal(t, 3*time.Second, client.ReadTimeout())
	assert.Equal(t, 4*time.Second, client.ConnectionTimeout())
	assert.Equal(t, 5, client.RetryOptions().MaxAttempts)

	req, err := client.NewRequest(http.MethodGet, "x", nil)
	require.NoError(t, err)
	_, err = client.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "acme", tr.LastRequest().Header.Get("X-Tenant"))
}

func TestBuilder_WithOptionsTLS(t *testing.T) {
	_, err := completeBuilder(testutil.NewScriptedTransport()).WithOptions(rest.Options{
		TLS: transport.TLS{CAFile: "/nonexistent/ca.pem"},
	}).Build()
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))

	client, err := rest.NewBuilder().
		WithBaseURL("https://api.example.com").
		WithSerializerAdapter(serializer.JSON{}).
		WithResponseBuilderFactory(rest.DefaultResponseBuilderFactory{}).
		WithOptions(rest.Options{TLS: transport.TLS{SkipVerify: true}}).
		Build()
	require.NoError(t, err)
	assert.NotNil(t, client.Pipeline())
}
