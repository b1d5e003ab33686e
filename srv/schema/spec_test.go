package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListenerSpec(t *testing.T) {
	tests := []struct {
		token string
		want  ListenerSpec
	}{
		{"web,plain,3", ListenerSpec{Name: "web", Kind: KindPlain, Type: "plain", FD: 3}},
		{"api,secure,4", ListenerSpec{Name: "api", Kind: KindSecure, Type: "secure", FD: 4}},
		{"old,insecure,5", ListenerSpec{Name: "old", Kind: KindPlain, Type: "insecure", FD: 5}},
		{"odd,quic,6", ListenerSpec{Name: "odd", Kind: KindUnknown, Type: "quic", FD: 6}},
		{"zero,plain,0", ListenerSpec{Name: "zero", Kind: KindPlain, Type: "plain", FD: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseListenerSpec(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseListenerSpecErrors(t *testing.T) {
	for _, token := range []string{
		"web,plain",
		"web,plain,3,4",
		",plain,3",
		"web,plain,three",
		"web,plain,-1",
	} {
		t.Run(token, func(t *testing.T) {
			_, err := ParseListenerSpec(token)
			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr), "got %v", err)
			assert.Equal(t, token, cerr.Token)
			assert.Contains(t, err.Error(), "'"+token+"'")
		})
	}
}

func TestParseFileSpec(t *testing.T) {
	got, err := ParseFileSpec("key,7")
	require.NoError(t, err)
	assert.Equal(t, FileSpec{Key: FileKey, FD: 7}, got)

	got, err = ParseFileSpec("cert,8")
	require.NoError(t, err)
	assert.Equal(t, FileSpec{Key: FileCert, FD: 8}, got)

	for _, token := range []string{"key", "key,7,8", "pem,7", "cert,x"} {
		_, err := ParseFileSpec(token)
		var cerr *ConfigError
		assert.True(t, errors.As(err, &cerr), "token %q: got %v", token, err)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "plain", ParseKind("insecure").String())
	assert.Equal(t, "secure", ParseKind("secure").String())
	assert.Equal(t, "unknown", ParseKind("SECURE").String())
}
