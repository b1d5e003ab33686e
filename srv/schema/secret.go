package schema

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// SecretBundle is the key and certificate shared by every secure listener.
// Listeners only read it.
type SecretBundle struct {
	Key  []byte
	Cert []byte
}

// SecretLoader turns a descriptor into the bytes it holds.
type SecretLoader func(fd int) ([]byte, error)

// ReadDescriptor reads up to 2048 bytes from fd and closes it.
func ReadDescriptor(fd int) ([]byte, error) {
	f := os.NewFile(uintptr(fd), fmt.Sprintf("secret fd %d", fd))
	if f == nil {
		return nil, fmt.Errorf("invalid descriptor %d", fd)
	}
	defer f.Close()

	buf := make([]byte, secretBufferSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading descriptor %d: %w", fd, err)
	}
	return buf[:n], nil
}

// LoadSecrets reads the key and certificate named by files.
func LoadSecrets(files []FileSpec, load SecretLoader) (*SecretBundle, error) {
	if load == nil {
		load = ReadDescriptor
	}

	byKey := make(map[string]FileSpec, len(files))
	for _, f := range files {
		byKey[f.Key] = f
	}
	keyFile, hasKey := byKey[FileKey]
	certFile, hasCert := byKey[FileCert]
	if !hasKey || !hasCert {
		return nil, &ConfigError{Reason: "secure sockets specified but no key and cert file provided"}
	}

	key, err := load(keyFile.FD)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("cannot read key from fd %d: %v", keyFile.FD, err)}
	}
	cert, err := load(certFile.FD)
	if err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("cannot read cert from fd %d: %v", certFile.FD, err)}
	}
	return &SecretBundle{Key: key, Cert: cert}, nil
}
