package transport

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/kbukum/restpipe/errors"
)

// TLS holds file-based TLS settings that can come from configuration.
type TLS struct {
	// SkipVerify disables server certificate verification.
	SkipVerify bool `mapstructure:"skip_verify" yaml:"skip_verify"`
	// CAFile is a PEM bundle replacing the system roots.
	CAFile string `mapstructure:"ca_file" yaml:"ca_file"`
	// CertFile and KeyFile hold the client certificate for mutual TLS.
	CertFile string `mapstructure:"cert_file" yaml:"cert_file"`
	KeyFile  string `mapstructure:"key_file" yaml:"key_file"`
	// ServerName overrides the name checked against the server certificate.
	ServerName string `mapstructure:"server_name" yaml:"server_name"`
	// MinVersion defaults to TLS 1.2.
	MinVersion uint16 `mapstructure:"min_version" yaml:"min_version"`
}

// IsZero reports whether no setting is configured.
func (c TLS) IsZero() bool {
	return !c.SkipVerify && c.CAFile == "" && c.CertFile == "" && c.KeyFile == "" &&
		c.ServerName == "" && c.MinVersion == 0
}

// Build loads the referenced files into a *tls.Config. A zero TLS returns
// nil so the net/http defaults apply.
func (c TLS) Build() (*tls.Config, error) {
	if c.IsZero() {
		return nil, nil
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		return nil, errors.InvalidConfig("TLS", "cert_file and key_file must be set together")
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify,
		ServerName:         c.ServerName,
		MinVersion:         c.MinVersion,
	}
	if cfg.MinVersion == 0 {
		cfg.MinVersion = tls.VersionTLS12
	}

	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, errors.InvalidConfig("TLS", "read CA file").WithCause(err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, errors.InvalidConfig("TLS", "no certificates in CA file "+c.CAFile)
		}
		cfg.RootCAs = pool
	}

	if c.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, errors.InvalidConfig("TLS", "load client certificate").WithCause(err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}
