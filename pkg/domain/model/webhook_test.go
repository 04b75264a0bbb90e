package model_test

import (
	"testing"

	"github.com/m-mizutani/ghtrigger/pkg/domain/model"
)

func TestWebhookEvent_IsSupportedEvent(t *testing.T) {
	tests := []struct {
		name     string
		event    *model.WebhookEvent
		expected bool
	}{
		{
			name:     "Push event - supported",
			event:    &model.WebhookEvent{Type: model.EventTypePush},
			expected: true,
		},
		{
			name:     "Ping event - supported",
			event:    &model.WebhookEvent{Type: model.EventTypePing},
			expected: true,
		},
		{
			name:     "Upper case push - supported",
			event:    &model.WebhookEvent{Type: model.WebhookEventType("PUSH")},
			expected: true,
		},
		{
			name:     "Deployment event - not supported",
			event:    &model.WebhookEvent{Type: model.WebhookEventType("deployment")},
			expected: false,
		},
		{
			name:     "Prefix of push - not supported",
			event:    &model.WebhookEvent{Type: model.WebhookEventType("pus")},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.IsSupportedEvent()
			if got != tt.expected {
				t.Errorf("IsSupportedEvent() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPushInfo_Branch(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{ref: "refs/heads/master", want: "master"},
		{ref: "refs/heads/feature/login", want: "login"},
		{ref: "main", want: "main"},
		{ref: "refs/heads/", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			p := &model.PushInfo{Ref: tt.ref}
			if got := p.Branch(); got != tt.want {
				t.Errorf("Branch() = %q, want %q", got, tt.want)
			}
		})
	}
}
