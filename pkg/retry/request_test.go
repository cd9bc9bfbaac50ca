package retry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestRequest_BuildIsFreshEachTime(t *testing.T) {
	body := []byte("payload")
	r := NewRequest(http.MethodPost, testURL, body)
	r.Header.Set("X-Trace", "abc")

	body[0] = 'P'
	assert.Equal(t, "payload", string(r.Body), "body is copied on construction")

	for i := 0; i < 3; i++ {
		req, err := r.Build(context.Background())
		require.NoError(t, err)

		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, testURL, req.URL.String())
		assert.Equal(t, "abc", req.Header.Get("X-Trace"))
		assert.Equal(t, int64(len("payload")), req.ContentLength)
		assert.Equal(t, "payload", readAll(t, req.Body))

		req.Header.Set("X-Trace", "mutated")
	}
	assert.Equal(t, "abc", r.Header.Get("X-Trace"), "built requests do not share headers with the descriptor")
}

func TestRequest_BuildCarriesContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, err := getRequest().Build(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, req.Context().Err(), context.Canceled)
	assert.Nil(t, req.Body)
}

func TestRequest_BuildInvalidURL(t *testing.T) {
	_, err := NewRequest(http.MethodGet, "://missing-scheme", nil).Build(context.Background())
	assert.Error(t, err)
}

func TestRequestFromHTTP(t *testing.T) {
	src, err := http.NewRequest(http.MethodPatch, testURL+"?q=1", strings.NewReader("a=b"))
	require.NoError(t, err)
	src.Header.Set("Authorization", "Bearer t")

	r, err := RequestFromHTTP(src)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, r.Method)
	assert.Equal(t, testURL+"?q=1", r.URL)
	assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
	assert.Equal(t, "a=b", string(r.Body))

	assert.Equal(t, "a=b", readAll(t, src.Body), "GetBody is used so the original body is left unread")
}

func TestRequestFromHTTP_NoBody(t *testing.T) {
	src, err := http.NewRequest(http.MethodGet, testURL, nil)
	require.NoError(t, err)

	r, err := RequestFromHTTP(src)
	require.NoError(t, err)
	assert.Nil(t, r.Body)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestRequestFromHTTP_ReadError(t *testing.T) {
	src, err := http.NewRequest(http.MethodPost, testURL, nil)
	require.NoError(t, err)
	src.Body = io.NopCloser(failingReader{})

	_, err = RequestFromHTTP(src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read request body")
}

func TestRewindable(t *testing.T) {
	src, err := http.NewRequest(http.MethodPost, testURL, nil)
	require.NoError(t, err)
	src.Body = io.NopCloser(strings.NewReader("once"))

	req, err := rewindable(src)
	require.NoError(t, err)
	require.NotNil(t, req.GetBody)
	assert.NotSame(t, src, req)
	assert.Equal(t, int64(4), req.ContentLength)

	for i := 0; i < 2; i++ {
		attempt, err := replay(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "once", readAll(t, attempt.Body))
	}
}

func TestRewindable_AlreadyRewindable(t *testing.T) {
	src, err := http.NewRequest(http.MethodPost, testURL, strings.NewReader("x"))
	require.NoError(t, err)

	req, err := rewindable(src)
	require.NoError(t, err)
	assert.Same(t, src, req)
}
