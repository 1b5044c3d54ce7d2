package scheduler

import (
	"testing"
	"time"

	"github.com/shaiso/Argus/internal/domain"
)

func TestCalculateNextDue_Interval(t *testing.T) {
	sched := &domain.Schedule{IntervalSec: 300}
	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := from.Add(5 * time.Minute)
	if !next.Equal(want) {
		t.Errorf("expected %s, got %s", want, next)
	}
}

func TestCalculateNextDue_Cron(t *testing.T) {
	// Каждый час в :00
	sched := &domain.Schedule{CronExpr: "0 * * * *"}
	from := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %s, got %s", want, next)
	}
}

func TestCalculateNextDue_CronWithTimezone(t *testing.T) {
	// Ежедневно в 09:00 по Москве = 06:00 UTC
	sched := &domain.Schedule{CronExpr: "0 9 * * *", Timezone: "Europe/Moscow"}
	from := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 12:00 UTC = 15:00 MSK, следующие 09:00 MSK — завтра, 06:00 UTC
	want := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %s, got %s", want, next)
	}

	// Результат всегда приводится к UTC для хранения
	if next.Location() != time.UTC {
		t.Errorf("expected UTC result, got %s", next.Location())
	}
}

func TestCalculateNextDue_InvalidTimezoneFallsBackToUTC(t *testing.T) {
	sched := &domain.Schedule{CronExpr: "0 * * * *", Timezone: "Mars/Olympus"}
	from := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	next, err := CalculateNextDue(sched, from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected UTC fallback %s, got %s", want, next)
	}
}

func TestCalculateNextDue_NeitherModeIsError(t *testing.T) {
	if _, err := CalculateNextDue(&domain.Schedule{}, time.Now()); err == nil {
		t.Error("expected error for schedule without cron_expr and interval_sec")
	}
}

func TestValidateCronExpr(t *testing.T) {
	valid := []string{"0 * * * *", "*/5 * * * *", "0 9 * * 1-5"}
	for _, expr := range valid {
		if err := ValidateCronExpr(expr); err != nil {
			t.Errorf("%q should be valid: %v", expr, err)
		}
	}

	invalid := []string{"", "not cron", "0 * * *", "0 0 0 0 0 0 0"}
	for _, expr := range invalid {
		if err := ValidateCronExpr(expr); err == nil {
			t.Errorf("%q should be invalid", expr)
		}
	}
}

func TestIdempotencyKey_Stable(t *testing.T) {
	sched := &domain.Schedule{}
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Один и тот же момент due — один и тот же ключ, независимо от
	// того, когда тикает планировщик
	if sched.IdempotencyKey(due) != sched.IdempotencyKey(due.In(time.FixedZone("MSK", 3*3600))) {
		t.Error("idempotency key should not depend on timezone representation")
	}
}
