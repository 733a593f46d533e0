package router

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hrygo/helpgpt/plugin/ai/aitime"
)

// TestRouterServiceContract tests the RouterService contract.
func TestRouterServiceContract(t *testing.T) {
	ctx := context.Background()
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, loc)

	var svc RouterService = NewRouter(Config{
		Routes: []Route{
			NewProviderRoute(NewMockProvider("zoom"), false),
			NewProviderRoute(NewMockProvider("telemost"), true),
		},
		TimeService: aitime.NewServiceWithClock(loc, func() time.Time { return now }),
	})

	t.Run("Classify_IsSideEffectFree", func(t *testing.T) {
		route, intent := svc.Classify("удали встречу в зуме 81234567890")
		if route.Provider != "zoom" {
			t.Errorf("expected zoom route, got %q", route.Provider)
		}
		if intent.Kind != IntentDeleteOne || intent.ID != "81234567890" {
			t.Errorf("unexpected intent: %+v", intent)
		}
		if got := route.Adapter.(*MockProvider).Deleted(); len(got) != 0 {
			t.Errorf("Classify must not call the adapter, got deletes %v", got)
		}
	})

	t.Run("Handle_RoutedMessageIsHandled", func(t *testing.T) {
		reply, handled := svc.Handle(ctx, "список встреч")
		if !handled {
			t.Fatal("expected message to be handled")
		}
		if reply != "🗓️ Встреч нет." {
			t.Errorf("unexpected reply: %q", reply)
		}
	})

	t.Run("Handle_UnroutedMessageFallsThrough", func(t *testing.T) {
		reply, handled := svc.Handle(ctx, "расскажи анекдот")
		if handled {
			t.Errorf("expected fall through, got reply %q", reply)
		}
	})

	t.Run("Handle_NeverReturnsBareError", func(t *testing.T) {
		reply, handled := svc.Handle(ctx, "удали встречу zoom 404404")
		if !handled {
			t.Fatal("expected message to be handled")
		}
		if strings.Contains(reply, "meeting 404404 not found") {
			t.Errorf("reply leaks the raw error: %q", reply)
		}
	})
}
