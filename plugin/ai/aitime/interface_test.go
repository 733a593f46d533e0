package aitime

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestTimeServiceContract tests the TimeService contract.
func TestTimeServiceContract(t *testing.T) {
	ctx := context.Background()
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatalf("LoadLocation failed: %v", err)
	}

	fixedNow := time.Date(2024, 1, 10, 9, 0, 0, 0, loc)
	var svc TimeService = NewServiceWithClock(loc, func() time.Time { return fixedNow })

	t.Run("Resolve_TomorrowAtClock", func(t *testing.T) {
		result, err := svc.Resolve(ctx, "создай встречу завтра в 15:00")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if result.Instant.Day() != 11 || result.Instant.Hour() != 15 {
			t.Errorf("unexpected instant: %v", result.Instant)
		}
	})

	t.Run("Resolve_ResultInServiceTimezone", func(t *testing.T) {
		result, err := svc.Resolve(ctx, "в 18")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if result.Instant.Location() != svc.Location() {
			t.Errorf("expected location %v, got %v", svc.Location(), result.Instant.Location())
		}
	})

	t.Run("Resolve_TimeOnlyIsInFuture", func(t *testing.T) {
		for _, expr := range []string{"в 8", "в 9:00", "в 23:59", "к 0ч"} {
			result, err := svc.Resolve(ctx, expr)
			if err != nil {
				t.Errorf("Resolve(%s) failed: %v", expr, err)
				continue
			}
			if !result.Instant.After(svc.Now()) {
				t.Errorf("Resolve(%s): %v is not after now", expr, result.Instant)
			}
		}
	})

	t.Run("Resolve_DateOnlyDefaultsToMorning", func(t *testing.T) {
		result, err := svc.Resolve(ctx, "послезавтра")
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if result.Instant.Hour() != DefaultHour || result.HadExplicitTime {
			t.Errorf("expected default hour %d, got %v", DefaultHour, result.Instant)
		}
	})

	t.Run("Resolve_NothingFound", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "как дела")
		if !errors.Is(err, ErrUnresolved) {
			t.Errorf("expected ErrUnresolved, got %v", err)
		}
	})

	t.Run("Now_InServiceTimezone", func(t *testing.T) {
		if svc.Now().Location() != loc {
			t.Errorf("expected %v, got %v", loc, svc.Now().Location())
		}
	})
}
