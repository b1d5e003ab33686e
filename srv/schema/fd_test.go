package schema

import (
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
}

func TestFDFlgServesInheritedSocket(t *testing.T) {
	fd, addr := inheritedFD(t)
	spec := ListenerSpec{Name: "web", Kind: KindPlain, Type: "plain", FD: fd}

	sl, err := NewServerListener(spec, nil, Defaults{ListenLimit: 4})
	require.NoError(t, err)
	require.IsType(t, &FDFlg{}, sl)
	assert.Equal(t, SchemeHTTP, sl.Scheme())
	assert.Equal(t, spec, sl.Spec())

	ln, err := sl.Listener()
	require.NoError(t, err)
	assert.Equal(t, addr, ln.Addr().String())

	again, err := sl.Listener()
	require.NoError(t, err)
	assert.Same(t, ln, again)

	var eg errgroup.Group
	hs, err := sl.Serve(ServerConfig{Logger: discard, Handler: okHandler()}, &eg)
	require.NoError(t, err)

	c := http.Client{Timeout: 3 * time.Second}
	rsp, err := c.Get("http://" + addr + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(rsp.Body)
	rsp.Body.Close()
	assert.Equal(t, "OK", string(body))

	require.NoError(t, hs.Close())
	require.NoError(t, sl.Close())
	assert.NoError(t, eg.Wait())
}

func TestFDFlgBindErrors(t *testing.T) {
	t.Run("unopened descriptor", func(t *testing.T) {
		fd := 1 << 24

		sl, err := NewServerListener(ListenerSpec{Name: "web", Kind: KindPlain, FD: fd}, nil, Defaults{})
		require.NoError(t, err)

		_, err = sl.Listener()
		var berr *BindError
		require.True(t, errors.As(err, &berr), "got %v", err)
		assert.Equal(t, fd, berr.FD)
		assert.Equal(t, "web", berr.Name)

		_, err = sl.Serve(ServerConfig{Logger: discard, Handler: okHandler()}, &errgroup.Group{})
		assert.True(t, errors.As(err, &berr))
	})

	t.Run("not a socket", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plain-file")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		fd, err := syscall.Open(path, syscall.O_RDONLY, 0)
		require.NoError(t, err)

		sl, err := NewServerListener(ListenerSpec{Name: "file", Kind: KindPlain, FD: fd}, nil, Defaults{})
		require.NoError(t, err)
		_, err = sl.Listener()
		var berr *BindError
		assert.True(t, errors.As(err, &berr), "got %v", err)
	})
}

func TestNewServerListenerSecure(t *testing.T) {
	spec := ListenerSpec{Name: "api", Kind: KindSecure, Type: "secure", FD: 9}

	_, err := NewServerListener(spec, nil, Defaults{})
	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr), "missing secrets: %v", err)

	_, err = NewServerListener(spec, &SecretBundle{Key: []byte("nope"), Cert: []byte("nope")}, Defaults{})
	require.True(t, errors.As(err, &cerr), "garbage secrets: %v", err)

	sl, err := NewServerListener(spec, selfSigned(t), Defaults{})
	require.NoError(t, err)
	assert.IsType(t, &TLSFlg{}, sl)
	assert.Equal(t, SchemeHTTPS, sl.Scheme())
}

func TestNewServerListenerUnknownKindIsPlain(t *testing.T) {
	sl, err := NewServerListener(ListenerSpec{Name: "odd", Kind: KindUnknown, Type: "quic", FD: 9}, nil, Defaults{})
	require.NoError(t, err)
	assert.Equal(t, SchemeHTTP, sl.Scheme())
}

func TestTLSFlgServesInheritedSocket(t *testing.T) {
	fd, addr := inheritedFD(t)
	spec := ListenerSpec{Name: "api", Kind: KindSecure, Type: "secure", FD: fd}

	sl, err := NewServerListener(spec, selfSigned(t), Defaults{})
	require.NoError(t, err)

	var eg errgroup.Group
	hs, err := sl.Serve(ServerConfig{
		Logger:  discard,
		Handler: okHandler(),
		HSTS:    &HSTSConfig{MaxAge: time.Hour},
	}, &eg)
	require.NoError(t, err)

	c := http.Client{
		Timeout: 3 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	rsp, err := c.Get("https://" + addr + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(rsp.Body)
	rsp.Body.Close()

	assert.Equal(t, "OK", string(body))
	assert.NotNil(t, rsp.TLS)
	assert.NotEmpty(t, rsp.Header.Get("Strict-Transport-Security"))

	require.NoError(t, hs.Close())
	assert.NoError(t, eg.Wait())
}
