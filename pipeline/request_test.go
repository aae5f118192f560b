package pipeline_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rperrors "github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/pipeline"
)

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	require.NotNil(t, rc)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestNewRequest_RequiresAbsoluteURL(t *testing.T) {
	_, err := pipeline.NewRequest(http.MethodGet, "/relative")
	require.Error(t, err)
	assert.True(t, rperrors.HasCode(err, rperrors.ErrCodeInvalidRequest), "got %v", err)
	assert.False(t, rperrors.IsConfiguration(err))

	_, err = pipeline.NewRequest(http.MethodGet, "http://[::1")
	require.Error(t, err)
}

func TestRequest_HeadersCaseInsensitive(t *testing.T) {
	req := newRequest(t)
	req.Header.Set("user-agent", "first")
	req.Header.Set("User-Agent", "second")

	assert.Equal(t, "second", req.Header.Get("USER-AGENT"))
	assert.Len(t, req.Header.Values("User-Agent"), 1)
}

func TestRequest_BodyIsReplayable(t *testing.T) {
	req := newRequest(t)
	req.SetBody([]byte(`{"a":1}`))

	assert.True(t, req.HasBody())
	assert.Equal(t, int64(7), req.ContentLength())

	first, err := req.Body()
	require.NoError(t, err)
	second, err := req.Body()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, readAll(t, first))
	assert.Equal(t, `{"a":1}`, readAll(t, second))
}

func TestRequest_SetBodyReader(t *testing.T) {
	req := newRequest(t)
	require.NoError(t, req.SetBodyReader(strings.NewReader("payload")))
	assert.Equal(t, []byte("payload"), req.BodyBytes())

	failing := newRequest(t)
	err := failing.SetBodyReader(io.MultiReader(strings.NewReader("x"), errReader{}))
	assert.Error(t, err)
	assert.False(t, failing.HasBody())
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("broken stream") }

func TestRequest_SetBodyFunc(t *testing.T) {
	opened := 0
	req := newRequest(t)
	req.SetBodyFunc(func() (io.ReadCloser, error) {
		opened++
		return io.NopCloser(strings.NewReader("large")), nil
	}, -1)

	assert.Equal(t, int64(-1), req.ContentLength())
	assert.Nil(t, req.BodyBytes())

	rc, err := req.Body()
	require.NoError(t, err)
	assert.Equal(t, "large", readAll(t, rc))
	rc, err = req.Clone().Body()
	require.NoError(t, err)
	assert.Equal(t, "large", readAll(t, rc))
	assert.Equal(t, 2, opened)
}

func TestRequest_NoBody(t *testing.T) {
	req := newRequest(t)
	rc, err := req.Body()
	require.NoError(t, err)
	assert.Nil(t, rc)
	assert.Zero(t, req.ContentLength())
	req.SetBody(nil)
	assert.False(t, req.HasBody())
}

func TestRequest_CloneIsIndependent(t *testing.T) {
	req := newRequest(t)
	req.Header.Set("X-Original", "1")
	req.SetBody([]byte("shared"))

	clone := req.Clone()
	clone.Header.Set("X-Original", "2")
	clone.Header.Set("X-Added", "yes")
	clone.URL.Path = "/other"

	assert.Equal(t, "1", req.Header.Get("X-Original"))
	assert.Empty(t, req.Header.Get("X-Added"))
	assert.Equal(t, "/items", req.URL.Path)
	assert.Equal(t, []byte("shared"), clone.BodyBytes())
}

func TestResponse_BytesBuffersOnce(t *testing.T) {
	closed := 0
	resp := &pipeline.Response{
		StatusCode: 200,
		Body:       &countingCloser{Reader: strings.NewReader("hello"), closed: &closed},
	}

	first, err := resp.Bytes()
	require.NoError(t, err)
	second, err := resp.Bytes()
	require.NoError(t, err)

	assert.Equal(t, "hello", string(first))
	assert.Equal(t, "hello", string(second))
	assert.Equal(t, "hello", readAll(t, resp.Body))
	assert.Equal(t, 1, closed)
	assert.True(t, resp.IsSuccess())
}

func TestResponse_NilBody(t *testing.T) {
	resp := &pipeline.Response{StatusCode: 404}
	data, err := resp.Bytes()
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.False(t, resp.IsSuccess())
	assert.NoError(t, (&pipeline.Response{}).Close())
}

func TestResponse_Drain(t *testing.T) {
	closed := 0
	resp := &pipeline.Response{Body: &countingCloser{Reader: strings.NewReader("ignored"), closed: &closed}}
	resp.Drain()
	assert.Equal(t, 1, closed)
}

type countingCloser struct {
	io.Reader
	closed *int
}

func (c *countingCloser) Close() error {
	*c.closed++
	return nil
}
