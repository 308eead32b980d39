package api

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/dshills/botflow/internal/logging"
	"github.com/dshills/botflow/internal/testutil/mockapi"
	"github.com/dshills/botflow/pkg/session"
	"github.com/dshills/botflow/pkg/storage"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	codec, err := session.NewCodec(testKey)
	require.NoError(t, err)
	return session.New(storage.NewMemoryCredentialStore(), codec, session.WithLogger(logging.NewNop()))
}

// newLoggedInClient starts a mock API, logs in with the default user and
// returns a client bound to the resulting session.
func newLoggedInClient(t *testing.T, apiOpts []mockapi.Option, opts ...Option) (*Client, *session.Session, *mockapi.Server) {
	t.Helper()
	mock := mockapi.New(apiOpts...)
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)

	sess := newTestSession(t)
	c := NewClient(sess, append([]Option{WithLogger(logging.NewNop())}, opts...)...)

	auth, err := c.Login(context.Background(), srv.URL, mockapi.DefaultUsername, mockapi.DefaultPassword)
	require.NoError(t, err)
	require.NoError(t, sess.Login(srv.URL, auth))
	return c, sess, mock
}
