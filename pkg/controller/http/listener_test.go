package http_test

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	controller "github.com/m-mizutani/ghtrigger/pkg/controller/http"
	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
	"github.com/m-mizutani/ghtrigger/pkg/usecase"
)

func TestListener_ServeAndShutdown(t *testing.T) {
	ctx := context.Background()
	secret := "listener-secret"
	listener := controller.NewListener(secret)

	matcher, err := model.NewBranchMatcher([]string{"main"})
	gt.NoError(t, err)
	slot := &model.PendingSlot{}

	endpoint, err := model.ParseEndpoint("http://127.0.0.1:0/hooks/")
	gt.NoError(t, err)
	gt.NoError(t, listener.Serve(ctx, endpoint, usecase.NewWebhook(matcher, slot)))
	gt.NotNil(t, listener.Addr())

	// a second Serve on the same listener is refused
	gt.Error(t, listener.Serve(ctx, endpoint, usecase.NewWebhook(matcher, slot)))

	payload := []byte(`{"ref":"refs/heads/main","pusher":{"name":"octocat"}}`)
	req, err := http.NewRequest(http.MethodPost, "http://"+listener.Addr().String()+"/hooks/github", bytes.NewReader(payload))
	gt.NoError(t, err)
	req.Header.Set("X-GitHub-Event", "push")
	req.Header.Set("X-GitHub-Delivery", "listener-test")
	req.Header.Set("X-Hub-Signature", generateSignature(secret, payload))

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	gt.NoError(t, err)
	_ = resp.Body.Close()
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

	pb := slot.Take()
	gt.NotNil(t, pb)
	gt.Value(t, pb.Branch).Equal("main")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	gt.NoError(t, listener.Shutdown(shutdownCtx))
}

func TestListener_BindFailure(t *testing.T) {
	endpoint := &model.Endpoint{Raw: "http://256.0.0.1:1/", Addr: "256.0.0.1:1", Path: "/"}
	matcher, err := model.NewBranchMatcher([]string{"main"})
	gt.NoError(t, err)

	listener := controller.NewListener("")
	err = listener.Serve(context.Background(), endpoint, usecase.NewWebhook(matcher, &model.PendingSlot{}))
	gt.Error(t, err)
	gt.Nil(t, listener.Addr())
	gt.NoError(t, listener.Shutdown(context.Background()))
}
