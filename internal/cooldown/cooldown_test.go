package cooldown

import (
	"context"
	"testing"
	"time"
)

var base = time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func TestEnd(t *testing.T) {
	future := base.Add(2 * time.Hour)
	past := base.Add(-2 * time.Hour)

	tests := []struct {
		name string
		prev *time.Time
		want time.Time
	}{
		{"no previous", nil, base.Add(day)},
		{"previous in future is kept", &future, future},
		{"previous in past is replaced", &past, base.Add(day)},
		{"previous exactly now is replaced", &base, base.Add(day)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := End(base, day, tt.prev)
			if !got.Equal(tt.want) {
				t.Errorf("End = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnd_Idempotent(t *testing.T) {
	first := End(base, day, nil)
	second := End(base.Add(time.Minute), day, &first)
	if !second.Equal(first) {
		t.Errorf("second End = %v, want %v", second, first)
	}
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		end  time.Time
		want time.Duration
	}{
		{base.Add(90 * time.Minute), 90 * time.Minute},
		{base, 0},
		{base.Add(-time.Hour), 0},
	}
	for _, tt := range tests {
		if got := Remaining(base, tt.end); got != tt.want {
			t.Errorf("Remaining(%v) = %v, want %v", tt.end, got, tt.want)
		}
	}
}

func TestElapsedPeriods(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantCount int
		wantEnd   time.Time
	}{
		{"not elapsed", base.Add(-time.Second), 0, base},
		{"exactly at end", base, 1, base.Add(day)},
		{"one nanosecond past", base.Add(time.Nanosecond), 1, base.Add(day)},
		{"just under two periods", base.Add(2*day - time.Nanosecond), 2, base.Add(2 * day)},
		{"exactly two periods", base.Add(2 * day), 3, base.Add(3 * day)},
		{"three and a half", base.Add(3*day + 12*time.Hour), 4, base.Add(4 * day)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, end := ElapsedPeriods(tt.now, base, day)
			if count != tt.wantCount {
				t.Errorf("count = %d, want %d", count, tt.wantCount)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestElapsedPeriods_Bounds(t *testing.T) {
	periods := []time.Duration{time.Minute, 90 * time.Minute, day, 7 * day}
	for _, period := range periods {
		for offset := -3 * period; offset <= 800*period; offset += period/7 + 13*time.Second {
			now := base.Add(offset)
			count, end := ElapsedPeriods(now, base, period)

			if !end.Equal(base.Add(time.Duration(count) * period)) {
				t.Fatalf("period %v offset %v: end %v not base+count*period", period, offset, end)
			}
			if !end.After(now) {
				t.Fatalf("period %v offset %v: end %v not after now %v", period, offset, end, now)
			}
			if count > 0 && base.Add(time.Duration(count-1)*period).After(now) {
				t.Fatalf("period %v offset %v: count %d is not minimal", period, offset, count)
			}
			if count == 0 && !base.After(now) {
				t.Fatalf("period %v offset %v: count 0 but end not in future", period, offset)
			}
		}
	}
}

func TestElapsedPeriods_LongAbsence(t *testing.T) {
	now := base.Add(500*day + 5*time.Hour)
	count, end := ElapsedPeriods(now, base, day)
	if count != 501 {
		t.Errorf("count = %d, want 501", count)
	}
	if !end.Equal(base.Add(501 * day)) {
		t.Errorf("end = %v, want %v", end, base.Add(501*day))
	}
}

func TestElapsedPeriods_NonPositivePeriod(t *testing.T) {
	count, end := ElapsedPeriods(base.Add(day), base, 0)
	if count != 0 || !end.Equal(base) {
		t.Errorf("got (%d, %v), want (0, %v)", count, end, base)
	}
}

func TestFakeClock(t *testing.T) {
	c := NewFake(base)
	c.Advance(time.Hour)
	got, err := c.Now(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(base.Add(time.Hour)) {
		t.Errorf("Now = %v, want %v", got, base.Add(time.Hour))
	}
	c.Set(base)
	got, _ = c.Now(context.Background())
	if !got.Equal(base) {
		t.Errorf("Now after Set = %v, want %v", got, base)
	}
}
