package gate

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"unicode/utf16"
)

var ErrInvalidLicense = errors.New("invalid license")

// DefaultPublicKeyPEM verifies licenses issued for the desktop release.
var DefaultPublicKeyPEM = []byte(`-----BEGIN PUBLIC KEY-----
MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEAty+myD4zgg8SruKIk1Wp
pKz5EPVCpZrz+3BMHwa+mdIhuTNi68p4s0WArh+DxX7DKxKh/THy+Rr9uW2QJCrM
fRCLvPYhgk5XxMbtm5+SGzYeIn2woswuLoJyo0PLfAe84LooziPRRIlE4XOOG/KF
jiVclwOKhb63TWtOprzb+9FRkwE7sUVjUtkbeFHYtQgf/6GpZ3dTaNbjnfCJg+AF
6+Y2yV6BQ3Cu/91lk/gXV/SoQaiJCDZiK3n8Y0vf002xPpxYE3kVeD1F1JwgjlxP
L896o/gdExahfAny3H60F67tvmM1lHdMHTQfyjdXaxfuMdIp/LxrWWphMwXZWNCf
uQIDAQAB
-----END PUBLIC KEY-----`)

// License is a verified license file without its signature.
type License struct {
	Fields map[string]any
}

// Owner returns the licensee, or "Unknown".
func (l *License) Owner() string {
	if s, ok := l.Fields["owner"].(string); ok && s != "" {
		return s
	}
	return "Unknown"
}

// Info renders the license line shown in the about screen.
func Info(l *License) string {
	if l == nil {
		return "Keine gültige Lizenz"
	}
	return "Lizenziert für: " + l.Owner()
}

// Verifier checks RSA PKCS#1 v1.5 SHA-256 signatures over the canonical JSON
// of a license: every field but "signature", keys sorted, encoded with
// ", " and ": " separators and ASCII-only escapes.
type Verifier struct {
	key *rsa.PublicKey
}

// NewVerifier parses a PEM encoded PKIX public key.
func NewVerifier(pemData []byte) (*Verifier, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("no PEM block in public key")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	key, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("public key is not RSA")
	}
	return &Verifier{key: key}, nil
}

// Verify parses and checks a license document.
func (v *Verifier) Verify(data []byte) (*License, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLicense, err)
	}
	sigText, _ := fields["signature"].(string)
	if sigText == "" {
		return nil, fmt.Errorf("%w: missing signature", ErrInvalidLicense)
	}
	sig, err := base64.StdEncoding.DecodeString(sigText)
	if err != nil {
		return nil, fmt.Errorf("%w: signature encoding: %v", ErrInvalidLicense, err)
	}
	delete(fields, "signature")

	payload, err := CanonicalJSON(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLicense, err)
	}
	digest := sha256.Sum256(payload)
	if err := rsa.VerifyPKCS1v15(v.key, crypto.SHA256, digest[:], sig); err != nil {
		return nil, fmt.Errorf("%w: bad signature", ErrInvalidLicense)
	}
	return &License{Fields: fields}, nil
}

// VerifyFile verifies the license at path.
func (v *Verifier) VerifyFile(path string) (*License, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read license: %w", err)
	}
	return v.Verify(data)
}

// Install verifies src and copies it to dst only when valid.
func (v *Verifier) Install(src, dst string) (*License, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("read license: %w", err)
	}
	lic, err := v.Verify(data)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("install license: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return nil, fmt.Errorf("install license: %w", err)
	}
	return lic, nil
}

// CanonicalJSON encodes v with sorted keys, ", " and ": " separators and
// non-ASCII characters escaped as \uXXXX. Numbers keep their literal text
// when decoded with UseNumber.
func CanonicalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case json.Number:
		buf.WriteString(x.String())
	case float64:
		buf.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	case int:
		buf.WriteString(strconv.Itoa(x))
	case string:
		writeASCIIString(buf, x)
	case []any:
		buf.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				buf.WriteString(", ")
			}
			if err := writeCanonical(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteString(", ")
			}
			writeASCIIString(buf, k)
			buf.WriteString(": ")
			if err := writeCanonical(buf, x[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported value of type %T", v)
	}
	return nil
}

func writeASCIIString(buf *bytes.Buffer, s string) {
	const hexDigits = "0123456789abcdef"
	writeU := func(r rune) {
		buf.WriteString(`\u`)
		buf.WriteByte(hexDigits[r>>12&0xf])
		buf.WriteByte(hexDigits[r>>8&0xf])
		buf.WriteByte(hexDigits[r>>4&0xf])
		buf.WriteByte(hexDigits[r&0xf])
	}
	buf.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"':
			buf.WriteString(`\"`)
		case r == '\\':
			buf.WriteString(`\\`)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r == '\t':
			buf.WriteString(`\t`)
		case r == '\b':
			buf.WriteString(`\b`)
		case r == '\f':
			buf.WriteString(`\f`)
		case r < 0x20 || (r >= 0x80 && r <= 0xffff):
			writeU(r)
		case r > 0xffff:
			r1, r2 := utf16.EncodeRune(r)
			writeU(r1)
			writeU(r2)
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}
