// Package sanitizer redacts secret values from HTTP debug dumps before
// they reach logs or stderr. Secrets are replaced with a salted hash
// marker so repeated occurrences stay correlatable without being
// recoverable.
package sanitizer

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"sort"
)

type target struct {
	secret      string
	needle      []byte
	replacement []byte
}

// Redactor replaces a fixed set of secret values with hash markers.
// Build it once per run and reuse it for every dump; target
// preparation is done up front.
type Redactor struct {
	targets []target
}

// New builds a Redactor for the given secret values. Non-string and
// empty values are ignored. Longer secrets are matched before shorter
// ones so an overlapping pair redacts deterministically.
func New(secrets []any, salt string) *Redactor {
	unique := make(map[string]struct{}, len(secrets))
	for _, value := range secrets {
		secret, ok := value.(string)
		if !ok || secret == "" {
			continue
		}
		unique[secret] = struct{}{}
	}

	targets := make([]target, 0, len(unique))
	for secret := range unique {
		targets = append(targets, target{
			secret:      secret,
			needle:      []byte(secret),
			replacement: marker(secret, salt),
		})
	}

	sort.Slice(targets, func(i, j int) bool {
		leftLen := len(targets[i].needle)
		rightLen := len(targets[j].needle)
		if leftLen != rightLen {
			return leftLen > rightLen
		}

		return targets[i].secret < targets[j].secret
	})

	return &Redactor{targets: targets}
}

// DumpRequest dumps an outgoing HTTP request with secrets redacted.
func (r *Redactor) DumpRequest(req *http.Request) ([]byte, error) {
	dump, err := httputil.DumpRequestOut(req, true)
	if err != nil {
		return nil, fmt.Errorf("failed to dump request: %w", err)
	}

	return r.Redact(dump), nil
}

// DumpResponse dumps an HTTP response with secrets redacted. The body
// is supplied separately because the runner has already drained it.
func (r *Redactor) DumpResponse(resp *http.Response, body []byte) ([]byte, error) {
	clone := new(http.Response)
	*clone = *resp
	clone.Body = io.NopCloser(bytes.NewReader(body))

	dump, err := httputil.DumpResponse(clone, true)
	if err != nil {
		return nil, fmt.Errorf("failed to dump response: %w", err)
	}

	return r.Redact(dump), nil
}

// Redact replaces every occurrence of a known secret in data with its
// marker. The input slice is returned unchanged when nothing matches.
func (r *Redactor) Redact(data []byte) []byte {
	if len(r.targets) == 0 || len(data) == 0 {
		return data
	}

	var out []byte
	for index := 0; index < len(data); {
		match := r.matchAt(data, index)
		if match == nil {
			if out != nil {
				out = append(out, data[index])
			}
			index++
			continue
		}

		if out == nil {
			out = make([]byte, 0, len(data))
			out = append(out, data[:index]...)
		}

		out = append(out, match.replacement...)
		index += len(match.needle)
	}

	if out != nil {
		return out
	}

	return data
}

func (r *Redactor) matchAt(data []byte, index int) *target {
	remaining := data[index:]
	for targetIndex := range r.targets {
		candidate := &r.targets[targetIndex]
		if len(remaining) < len(candidate.needle) {
			continue
		}
		if bytes.Equal(remaining[:len(candidate.needle)], candidate.needle) {
			return candidate
		}
	}

	return nil
}

// marker derives the replacement token for a secret, [S256:hash] with
// the first eight bytes of sha256(salt+secret) in hex.
func marker(secret, salt string) []byte {
	sum := sha256.Sum256([]byte(salt + secret))
	short := hex.EncodeToString(sum[:8])
	return []byte("[S256:" + short + "]")
}
