package cs104

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"time"

	"github.com/tjeske/go-iec60870/transport"
)

// TLSSetup bundles everything needed to materialize the IEC 62351-4
// TLS profile over the standard library's crypto/tls: the option
// surface (transport.TLSOptions), the local key pair, trust anchors,
// an optional allow-list of peer certificates and a security event
// sink.
type TLSSetup struct {
	Options     transport.TLSOptions
	Certificate tls.Certificate
	// RootCAs anchors chain validation. nil falls back to the system
	// pool.
	RootCAs *x509.CertPool
	// KnownCertificates holds raw DER certificates accepted when
	// Options.AllowOnlyKnownCertificates is set.
	KnownCertificates [][]byte
	// Events receives security notifications (severity + ALM_* code).
	// nil discards them.
	Events func(transport.SecurityEvent)
}

func (s *TLSSetup) event(code int, sev transport.SecuritySeverity, format string, args ...interface{}) {
	if s.Events != nil {
		s.Events(transport.SecurityEvent{
			Code:     code,
			Severity: sev,
			Message:  fmt.Sprintf(format, args...),
		})
	}
}

// suiteIDs maps the IEC 62351-4 suite names onto crypto/tls
// identifiers. The DHE and AES-CCM members of the mandatory set have
// no Go counterpart; NewTLSConfig reports each as a WARNING and
// negotiates with the remainder.
var suiteIDs = map[string]uint16{
	"TLS_RSA_WITH_AES_128_CBC_SHA256":         tls.TLS_RSA_WITH_AES_128_CBC_SHA256,
	"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256":   tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384":   tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384": tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	"TLS_AES_128_GCM_SHA256":                  tls.TLS_AES_128_GCM_SHA256,
	"TLS_AES_256_GCM_SHA384":                  tls.TLS_AES_256_GCM_SHA384,
}

func tlsVersion(v transport.TLSVersion, fallback uint16) uint16 {
	switch v {
	case transport.TLSVersion1_2:
		return tls.VersionTLS12
	case transport.TLSVersion1_3:
		return tls.VersionTLS13
	default:
		return fallback
	}
}

// NewTLSConfig builds a *tls.Config enforcing the configured posture.
// Skipped ciphersuites and disabled chain validation are reported as
// WARNING events with code AlmUnsecureCommunication. Disabling time
// validation (Options.ValidateTimes == false) downgrades expired or
// not-yet-valid peer certificates to WARNING events instead of failing;
// that callback and the known-certificates check report a rejected
// peer as an INCIDENT with code AlmCertificateNotTrusted. Handshake
// failures detected by crypto/tls itself, such as a protocol version
// mismatch or a chain rejected by the default verifier, fail the
// handshake without raising an event.
func NewTLSConfig(setup *TLSSetup) (*tls.Config, error) {
	opts := setup.Options

	var suites []uint16
	names := opts.CipherSuites
	if len(names) == 0 {
		names = transport.MandatoryCipherSuites
	}
	for _, name := range names {
		id, ok := suiteIDs[name]
		if !ok {
			setup.event(transport.AlmUnsecureCommunication, transport.SeverityWarning,
				"ciphersuite %s not available, skipped", name)
			continue
		}
		suites = append(suites, id)
	}
	if len(suites) == 0 {
		return nil, errors.New("cs104: no usable ciphersuite configured")
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{setup.Certificate},
		RootCAs:      setup.RootCAs,
		CipherSuites: suites,
		MinVersion:   tlsVersion(opts.MinVersion, tls.VersionTLS12),
		MaxVersion:   tlsVersion(opts.MaxVersion, 0),
	}

	if !opts.SessionResumption {
		cfg.SessionTicketsDisabled = true
	} else {
		cfg.ClientSessionCache = tls.NewLRUClientSessionCache(8)
	}

	switch {
	case !opts.ValidateChain:
		cfg.InsecureSkipVerify = true
		setup.event(transport.AlmUnsecureCommunication, transport.SeverityWarning,
			"certificate chain validation disabled by configuration")

	case !opts.ValidateTimes:
		// Take over verification so validity periods can be checked
		// leniently while the chain itself is still enforced.
		cfg.InsecureSkipVerify = true
		cfg.VerifyPeerCertificate = setup.verifyIgnoringTimes
	}

	if opts.AllowOnlyKnownCertificates {
		prev := cfg.VerifyPeerCertificate
		cfg.InsecureSkipVerify = true
		cfg.VerifyPeerCertificate = func(rawCerts [][]byte, chains [][]*x509.Certificate) error {
			if err := setup.verifyKnown(rawCerts); err != nil {
				return err
			}
			if prev != nil {
				return prev(rawCerts, chains)
			}
			return nil
		}
	}

	return cfg, nil
}

// verifyIgnoringTimes validates the peer chain against the configured
// roots with the verification time pinned inside the leaf's validity
// window, then reports (rather than enforces) any real-time validity
// violation.
func (s *TLSSetup) verifyIgnoringTimes(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		s.event(transport.AlmCertificateNotTrusted, transport.SeverityIncident,
			"peer presented no certificate")
		return errors.New("cs104: peer presented no certificate")
	}
	leaf, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("cs104: bad peer certificate: %w", err)
	}
	intermediates := x509.NewCertPool()
	for _, raw := range rawCerts[1:] {
		c, err := x509.ParseCertificate(raw)
		if err != nil {
			return fmt.Errorf("cs104: bad intermediate certificate: %w", err)
		}
		intermediates.AddCert(c)
	}

	now := time.Now()
	if now.After(leaf.NotAfter) {
		s.event(transport.AlmCertificateExpired, transport.SeverityWarning,
			"peer certificate expired %s, accepted by configuration", leaf.NotAfter)
	}
	if now.Before(leaf.NotBefore) {
		s.event(transport.AlmCertificateNotYetValid, transport.SeverityWarning,
			"peer certificate not valid before %s, accepted by configuration", leaf.NotBefore)
	}

	_, err = leaf.Verify(x509.VerifyOptions{
		Roots:         s.RootCAs,
		Intermediates: intermediates,
		CurrentTime:   leaf.NotBefore.Add(time.Second),
	})
	if err != nil {
		s.event(transport.AlmCertificateNotTrusted, transport.SeverityIncident,
			"peer certificate chain rejected: %v", err)
		return fmt.Errorf("cs104: certificate validation failed: %w", err)
	}
	return nil
}

// verifyKnown enforces the allow-only-known-certificates posture by
// raw DER comparison of the peer's leaf.
func (s *TLSSetup) verifyKnown(rawCerts [][]byte) error {
	if len(rawCerts) == 0 {
		return errors.New("cs104: peer presented no certificate")
	}
	for _, known := range s.KnownCertificates {
		if bytes.Equal(rawCerts[0], known) {
			return nil
		}
	}
	s.event(transport.AlmCertificateNotTrusted, transport.SeverityIncident,
		"peer certificate not in the known-certificates list")
	return errors.New("cs104: peer certificate not known")
}
