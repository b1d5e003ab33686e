package schema

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/a-h/hsts"
	"golang.org/x/sync/errgroup"
)

// TLSFlg serves HTTPS on an inherited descriptor using the shared secrets.
type TLSFlg struct {
	*FDFlg
	Secrets *SecretBundle

	cert tls.Certificate
}

func newTLSFlg(fl *FDFlg, secrets *SecretBundle) (*TLSFlg, error) {
	if secrets == nil {
		return nil, &ConfigError{Token: fl.Name, Reason: "secure listener has no key and cert"}
	}
	cert, err := tls.X509KeyPair(secrets.Cert, secrets.Key)
	if err != nil {
		return nil, &ConfigError{Token: fl.Name, Reason: fmt.Sprintf("failed to load TLS certificate and key: %v", err)}
	}
	return &TLSFlg{FDFlg: fl, Secrets: secrets, cert: cert}, nil
}

func (t *TLSFlg) Serve(s ServerConfig, eg *errgroup.Group) (*http.Server, error) {
	listener, err := t.Listener()
	if err != nil {
		return nil, err
	}

	httpsServer := t.newServer(s)
	httpsServer.Addr = listener.Addr().String()

	if s.HSTS != nil {
		h := hsts.NewHandler(httpsServer.Handler)
		h.MaxAge = s.HSTS.MaxAge
		h.SendPreloadDirective = s.HSTS.SendPreload
		httpsServer.Handler = h
	}

	httpsServer.TLSConfig = &tls.Config{
		Certificates:     []tls.Certificate{t.cert},
		CurvePreferences: []tls.CurveID{tls.CurveP256, tls.X25519, tls.CurveP384},
		NextProtos:       []string{"h2", "http/1.1"},
		MinVersion:       tls.VersionTLS12,
		CipherSuites: []uint16{
			tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
			tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
			tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		},
	}

	if s.Callbacks != nil {
		s.Callbacks.ConfigureTLS(httpsServer.TLSConfig)
		s.Callbacks.ConfigureListener(httpsServer, t.Scheme(), listener.Addr().String())
	}

	t.serve(s, eg, httpsServer, tls.NewListener(listener, httpsServer.TLSConfig), t.Scheme())
	return httpsServer, nil
}

func (t *TLSFlg) Scheme() string {
	return SchemeHTTPS
}

func (t *TLSFlg) String() string {
	return t.FDFlg.String() + ",TLS: true"
}
