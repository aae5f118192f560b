package policy_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/restpipe/pipeline"
	"github.com/kbukum/restpipe/policy"
	"github.com/kbukum/restpipe/testutil"
	"github.com/kbukum/restpipe/version"
)

func TestUserAgent_Overwrites(t *testing.T) {
	tr := testutil.NewScriptedTransport()
	p := pipeline.New(tr, policy.UserAgent("my-app/1.0"))

	req := newRequest(t, http.MethodGet)
	req.Header.Set("User-Agent", "curl/8")
	_, err := p.Send(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "my-app/1.0", tr.LastRequest().Header.Get("User-Agent"))
	assert.Len(t, tr.LastRequest().Header.Values("User-Agent"), 1)
}

func TestUserAgent_DefaultsToVersion(t *testing.T) {
	tr := testutil.NewScriptedTransport()
	p := pipeline.New(tr, policy.UserAgent(""))

	_, err := p.Send(context.Background(), newRequest(t, http.MethodGet))
	require.NoError(t, err)

	assert.Equal(t, version.UserAgent(), tr.LastRequest().Header.Get("User-Agent"))
}
