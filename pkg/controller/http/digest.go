package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1" // #nosec G505 -- X-Hub-Signature is defined as HMAC-SHA1
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/ghtrigger/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// SignatureAlgorithm is the only digest method accepted in X-Hub-Signature
	SignatureAlgorithm = "sha1"

	// maxWebhookBodySize is the largest payload the listener buffers. GitHub
	// caps deliveries at 25 MB.
	maxWebhookBodySize = 32 * 1024 * 1024
)

type digestCtxKey struct{}

// ComputeDigest returns the lowercase hex HMAC-SHA1 of body keyed by secret
func ComputeDigest(secret string, body []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// withDigest attaches a computed body digest to ctx
func withDigest(ctx context.Context, digest string) context.Context {
	return context.WithValue(ctx, digestCtxKey{}, digest)
}

// digestFrom returns the digest attached by BodyDigestMiddleware, if any
func digestFrom(ctx context.Context) (string, bool) {
	digest, ok := ctx.Value(digestCtxKey{}).(string)
	return digest, ok
}

// BodyDigestMiddleware buffers the request body once and replays it to the
// next handler. When a secret is configured and the sender supplied a
// signature header, the digest of the buffered bytes is stored in the request
// context for the authorization step.
func BodyDigestMiddleware(secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
			if err != nil {
				logger := ctxlog.From(r.Context())
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					logger.Warn("Webhook payload too large", "limit", maxErr.Limit)
					writeError(w, goerr.New("payload too large"), http.StatusRequestEntityTooLarge)
					return
				}
				logger.Error("Failed to read request body", "error", err)
				writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			if _, signed := lookupHeader(r.Header, HeaderSignature); signed && secret != "" {
				r = r.WithContext(withDigest(r.Context(), ComputeDigest(secret, body)))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// VerifySignature checks a client supplied X-Hub-Signature value against the
// body digest. hasDigest is false when the digest middleware did not run.
// Every failure is tagged ErrTagUnauthorized.
func VerifySignature(secret, signature, digest string, hasDigest bool) error {
	if secret == "" {
		return goerr.New("signature provided, but no secret defined", goerr.T(types.ErrTagUnauthorized))
	}

	parts := strings.SplitN(signature, "=", 2)
	if len(parts) < 2 {
		return goerr.New("unsupported signature format",
			goerr.V("signature", signature),
			goerr.T(types.ErrTagUnauthorized),
		)
	}
	if parts[0] != SignatureAlgorithm {
		return goerr.New("unsupported signature digest method",
			goerr.V("method", parts[0]),
			goerr.T(types.ErrTagUnauthorized),
		)
	}

	if !hasDigest {
		return goerr.New("body digest not stored; digest middleware may be broken",
			goerr.T(types.ErrTagUnauthorized),
			goerr.T(types.ErrTagDigestMissing),
		)
	}

	claimed := strings.ToLower(parts[1])
	if !hmac.Equal([]byte(claimed), []byte(strings.ToLower(digest))) {
		return goerr.New("body digest does not match signature",
			goerr.V("claimed", parts[1]),
			goerr.V("computed", digest),
			goerr.T(types.ErrTagUnauthorized),
		)
	}
	return nil
}
