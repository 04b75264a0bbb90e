package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestBodyDigestMiddleware_AttachesDigestOnlyWhenSigned(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		signed   bool
		wantSeen bool
	}{
		{name: "secret and signature", secret: "s3cr3t", signed: true, wantSeen: true},
		{name: "secret without signature", secret: "s3cr3t", signed: false, wantSeen: false},
		{name: "signature without secret", secret: "", signed: true, wantSeen: false},
		{name: "neither", secret: "", signed: false, wantSeen: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				digest string
				ok     bool
			)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				digest, ok = digestFrom(r.Context())
			})

			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"zen":"x"}`)))
			if tt.signed {
				req.Header.Set(HeaderSignature, "sha1=anything")
			}
			BodyDigestMiddleware(tt.secret)(next).ServeHTTP(httptest.NewRecorder(), req)

			gt.Value(t, ok).Equal(tt.wantSeen)
			if tt.wantSeen {
				gt.Value(t, digest).Equal(ComputeDigest(tt.secret, []byte(`{"zen":"x"}`)))
			}
		})
	}
}

func TestParseHeaders(t *testing.T) {
	t.Run("reports every missing header", func(t *testing.T) {
		_, err := parseHeaders(http.Header{})
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains(HeaderEvent)
		gt.String(t, err.Error()).Contains(HeaderDelivery)
	})

	t.Run("blank values count as missing", func(t *testing.T) {
		h := http.Header{}
		h.Set(HeaderEvent, "push")
		h.Set(HeaderDelivery, "   ")
		_, err := parseHeaders(h)
		gt.Error(t, err)
		gt.String(t, err.Error()).Contains(HeaderDelivery)
		gt.False(t, bytes.Contains([]byte(err.Error()), []byte(HeaderEvent)))
	})

	t.Run("empty signature header is still a signature", func(t *testing.T) {
		h := http.Header{}
		h.Set(HeaderEvent, "ping")
		h.Set(HeaderDelivery, "d-1")
		h[HeaderSignature] = []string{""}
		event, err := parseHeaders(h)
		gt.NoError(t, err)
		gt.True(t, event.Signed)
		gt.Value(t, event.Signature).Equal("")
	})
}
