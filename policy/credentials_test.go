package policy_test

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/restpipe/credentials"
	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/pipeline"
	"github.com/kbukum/restpipe/policy"
	"github.com/kbukum/restpipe/testutil"
)

func TestCredentials_Authorizes(t *testing.T) {
	tr := testutil.NewScriptedTransport()
	p := pipeline.New(tr, policy.Credentials(credentials.Bearer("tok")))

	_, err := p.Send(context.Background(), newRequest(t, http.MethodGet))
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", tr.LastRequest().Header.Get("Authorization"))
}

func TestCredentials_NilIsPassthrough(t *testing.T) {
	p := pipeline.New(testutil.NewScriptedTransport(), policy.Credentials(nil))
	assert.Zero(t, p.Len())
}

func TestCredentials_Failures(t *testing.T) {
	cause := stderrors.New("vault sealed")

	tests := []struct {
		name  string
		creds credentials.Credentials
		code  errors.ErrorCode
	}{
		{"wrapped", credentials.Func(func(context.Context, *pipeline.Request) error { return cause }), errors.ErrCodeAuthenticationFailed},
		{"kept", credentials.Bearer(""), errors.ErrCodeUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := testutil.NewScriptedTransport()
			p := pipeline.New(tr, policy.Credentials(tc.creds))

			resp, err := p.Send(context.Background(), newRequest(t, http.MethodGet))
			assert.Nil(t, resp)
			assert.True(t, errors.HasCode(err, tc.code), "got %v", err)
			assert.True(t, errors.IsAuthentication(err))
			assert.False(t, errors.IsRetryable(err))
			assert.Zero(t, tr.Calls())
		})
	}

	_, err := pipeline.New(testutil.NewScriptedTransport(),
		policy.Credentials(credentials.Func(func(context.Context, *pipeline.Request) error { return cause })),
	).Send(context.Background(), newRequest(t, http.MethodGet))
	assert.ErrorIs(t, err, cause)
}
