package tlsroots

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAddCertPEM(t *testing.T) {
	two := append(generateTestCertPEM(t), generateTestCertPEM(t)...)
	key := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte("k")})
	invalid := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("junk")})

	tests := []struct {
		name    string
		data    []byte
		wantErr error
		anyErr  bool
	}{
		{name: "one certificate", data: generateTestCertPEM(t)},
		{name: "bundle", data: two},
		{name: "other blocks skipped", data: append(key, generateTestCertPEM(t)...)},
		{name: "empty", data: nil, wantErr: ErrNoCertsFound},
		{name: "not pem", data: []byte("not a certificate"), wantErr: ErrNoCertsFound},
		{name: "key only", data: key, wantErr: ErrNoCertsFound},
		{name: "invalid certificate", data: invalid, anyErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewEmptyPool().AddCertPEM(tt.data)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("AddCertPEM() error = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Error("AddCertPEM() accepted an invalid certificate")
				}
			default:
				if err != nil {
					t.Errorf("AddCertPEM() error = %v", err)
				}
			}
		})
	}
}

func TestAddCertFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ca.pem")
	if err := os.WriteFile(path, generateTestCertPEM(t), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := NewEmptyPool().AddCertFile(path); err != nil {
		t.Errorf("AddCertFile() error = %v", err)
	}

	if err := NewEmptyPool().AddCertFile(filepath.Join(dir, "missing.pem")); err == nil {
		t.Error("AddCertFile() of a missing file succeeded")
	}

	empty := filepath.Join(dir, "empty.pem")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if err := NewEmptyPool().AddCertFile(empty); !errors.Is(err, ErrNoCertsFound) {
		t.Errorf("AddCertFile(empty) error = %v", err)
	}
}

func TestTLSConfig(t *testing.T) {
	p := NewPool()
	cfg := p.TLSConfig()
	if cfg.RootCAs != p.Pool() {
		t.Error("TLSConfig() does not trust the pool")
	}
	if cfg.MinVersion != 0x0303 {
		t.Errorf("MinVersion = %x, want TLS 1.2", cfg.MinVersion)
	}
}

func TestHTTPClient(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("cover"))
	}))
	t.Cleanup(srv.Close)

	// The test server's certificate is self-signed, so only a pool that
	// holds it can reach the server.
	if _, err := NewEmptyPool().HTTPClient(5 * time.Second).Get(srv.URL); err == nil {
		t.Fatal("untrusted server was reached")
	}

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw})
	if err := os.WriteFile(caFile, certPEM, 0o600); err != nil {
		t.Fatal(err)
	}
	client, err := ClientForCAFile(caFile, 5*time.Second)
	if err != nil {
		t.Fatalf("ClientForCAFile() error = %v", err)
	}
	if client.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", client.Timeout)
	}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "cover" {
		t.Errorf("body = %q", body)
	}

	if _, err := ClientForCAFile(filepath.Join(t.TempDir(), "none.pem"), 0); err == nil {
		t.Error("ClientForCAFile() with a missing file succeeded")
	}
}

func generateTestCertPEM(t *testing.T) []byte {
	t.Helper()
	return pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: generateTestCert(t).Raw,
	})
}

// generateTestCert generates a self-signed CA certificate.
func generateTestCert(t *testing.T) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
			CommonName:   "covers.test",
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate() error = %v", err)
	}
	return cert
}
