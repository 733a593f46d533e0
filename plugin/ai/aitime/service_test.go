package aitime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moscow(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	return loc
}

func TestResolve_Normalization(t *testing.T) {
	loc := moscow(t)
	// Wednesday 2024-01-10 09:00
	fixedNow := time.Date(2024, 1, 10, 9, 0, 0, 0, loc)

	tests := []struct {
		name     string
		input    string
		wantTime string
	}{
		{"colon", "завтра в 15:00", "2024-01-11 15:00"},
		{"space separated", "завтра в 15 00", "2024-01-11 15:00"},
		{"dash separated", "завтра в 17-30", "2024-01-11 17:30"},
		{"dot with zero minutes", "завтра 17.00", "2024-01-11 17:00"},
		{"dot after preposition", "завтра в 10.05", "2024-01-11 10:05"},
		{"hour suffix", "послезавтра к 14ч", "2024-01-12 14:00"},
		{"hour suffix with space", "завтра в 14 ч", "2024-01-11 14:00"},
		{"hours word", "завтра в 3 часа", "2024-01-11 03:00"},
		{"bare hour", "завтра в 9", "2024-01-11 09:00"},
		{"no-break space", "завтра в 15\u00a000", "2024-01-11 15:00"},
		{"narrow no-break space", "завтра\u202fв\u202f16:45", "2024-01-11 16:45"},
		{"upper case", "ЗАВТРА В 15:00", "2024-01-11 15:00"},
		{"space separated after numeric year", "создай встречу 15.01.2025 15 00", "2025-01-15 15:00"},
		{"space separated after month-name year", "15 января 2025 15 00", "2025-01-15 15:00"},
		{"dash separated after numeric year", "15.01.2025 17-00", "2025-01-15 17:00"},
		{"colon after numeric year", "15.01.2025 17:00", "2025-01-15 17:00"},
		{"space separated after day and month", "15.01 15 00", "2024-01-15 15:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input, loc, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, got.Instant.Format("2006-01-02 15:04"))
			assert.True(t, got.HadExplicitDate)
			assert.True(t, got.HadExplicitTime)
		})
	}
}

func TestResolve_DurationIsNotClockTime(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 1, 10, 9, 0, 0, 0, loc)

	t.Run("duration alone", func(t *testing.T) {
		_, err := Resolve("создай встречу через 2 часа", loc, fixedNow)
		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	tests := []struct {
		name  string
		input string
	}{
		{"через with date", "завтра через 2 часа"},
		{"на with date", "созвон завтра на 2 часа"},
		{"short suffix after через", "завтра через 3ч"},
		{"hours word without preposition", "завтра 5 часов"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input, loc, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, "2024-01-11 10:00", got.Instant.Format("2006-01-02 15:04"))
			assert.True(t, got.HadExplicitDate)
			assert.False(t, got.HadExplicitTime)
		})
	}

	got, err := Resolve("завтра на 2 часа в 16 часов", loc, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11 16:00", got.Instant.Format("2006-01-02 15:04"))
	assert.True(t, got.HadExplicitTime)
}

func TestResolve_RelativeDates(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 1, 10, 9, 0, 0, 0, loc)

	tests := []struct {
		name     string
		input    string
		wantDate string
	}{
		{"сегодня", "встреча сегодня", "2024-01-10"},
		{"завтра", "встреча завтра", "2024-01-11"},
		{"послезавтра", "встреча послезавтра", "2024-01-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input, loc, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, got.Instant.Format("2006-01-02"))
			// Date without time defaults to 10:00 local.
			assert.Equal(t, 10, got.Instant.Hour())
			assert.Equal(t, 0, got.Instant.Minute())
			assert.True(t, got.HadExplicitDate)
			assert.False(t, got.HadExplicitTime)
		})
	}
}

func TestResolve_ExplicitDates(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 1, 10, 9, 0, 0, 0, loc)

	tests := []struct {
		name     string
		input    string
		wantTime string
	}{
		{"numeric with year", "15.02.2025 в 12:30", "2025-02-15 12:30"},
		{"numeric without year", "15.02 в 12:30", "2024-02-15 12:30"},
		{"numeric date only", "встреча 20.01", "2024-01-20 10:00"},
		{"month name", "5 марта в 11", "2024-03-05 11:00"},
		{"month name with year", "7 мая 2025 в 18:15", "2025-05-07 18:15"},
		{"month name genitive", "1 сентября", "2024-09-01 10:00"},
		{"bare hour before month", "в 10 января", "2024-01-10 10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input, loc, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, got.Instant.Format("2006-01-02 15:04"))
		})
	}
}

func TestResolve_FirstDateRuleWins(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 1, 10, 9, 0, 0, 0, loc)

	// The relative keyword is consulted before the numeric date.
	got, err := Resolve("завтра, а не 20.01, в 12:00", loc, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11 12:00", got.Instant.Format("2006-01-02 15:04"))

	// An invalid numeric date does not count and the month name is used.
	got, err = Resolve("31.02 или 3 апреля", loc, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-03", got.Instant.Format("2006-01-02"))
}

func TestResolve_TimeOnly(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 1, 10, 9, 0, 0, 0, loc)

	tests := []struct {
		name     string
		input    string
		wantTime string
	}{
		{"later today", "в 15:00", "2024-01-10 15:00"},
		{"earlier today rolls forward", "в 8:30", "2024-01-11 08:30"},
		{"exactly now rolls forward", "в 9:00", "2024-01-11 09:00"},
		{"bare hour later today", "созвон в 18", "2024-01-10 18:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.input, loc, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTime, got.Instant.Format("2006-01-02 15:04"))
			assert.False(t, got.HadExplicitDate)
			assert.True(t, got.HadExplicitTime)
			assert.True(t, got.Instant.After(fixedNow))
		})
	}
}

func TestResolve_InvalidClockIsIgnored(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 1, 10, 9, 0, 0, 0, loc)

	got, err := Resolve("завтра в 25:00", loc, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11 10:00", got.Instant.Format("2006-01-02 15:04"))
	assert.False(t, got.HadExplicitTime)

	_, err = Resolve("в 24:61", loc, fixedNow)
	require.Error(t, err)
}

func TestResolve_BareDayMonthRollsToNextYear(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 12, 31, 12, 0, 0, 0, loc)

	got, err := Resolve("создай встречу 31.12 в 9", loc, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-31 09:00", got.Instant.Format("2006-01-02 15:04"))

	// An explicit year is never rolled.
	got, err = Resolve("31.12.2024 в 9", loc, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31 09:00", got.Instant.Format("2006-01-02 15:04"))
}

func TestResolve_Unresolved(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 1, 10, 9, 0, 0, 0, loc)

	for _, input := range []string{"", "создай встречу", "привет, как дела?", "5 четвергов"} {
		t.Run(input, func(t *testing.T) {
			_, err := Resolve(input, loc, fixedNow)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnresolved)
			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 1, 10, 9, 0, 0, 0, loc)

	for _, input := range []string{"завтра в 15 00", "31.12 в 9", "в 8", "5 марта"} {
		first, err := Resolve(input, loc, fixedNow)
		require.NoError(t, err)
		second, err := Resolve(input, loc, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, first, second, input)
	}
}

func TestService_Resolve(t *testing.T) {
	loc := moscow(t)
	fixedNow := time.Date(2024, 1, 10, 9, 0, 0, 0, loc)
	svc := NewServiceWithClock(loc, func() time.Time { return fixedNow.UTC() })

	got, err := svc.Resolve(context.Background(), "создай встречу завтра в 15:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 11, 15, 0, 0, 0, loc), got.Instant)
	assert.Equal(t, "11.01.2024 15:00", got.Instant.Format("02.01.2006 15:04"))
	assert.Equal(t, loc, svc.Location())
	assert.Equal(t, fixedNow, svc.Now())
}
