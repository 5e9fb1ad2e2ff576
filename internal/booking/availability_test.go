package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/omriShneor/tailortalk/internal/gcal"
	"github.com/omriShneor/tailortalk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_Check(t *testing.T) {
	start := time.Date(2025, time.January, 11, 9, 30, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	tests := []struct {
		name    string
		setup   func(f *testutil.FakeCalendar)
		want    Verdict
		wantErr error
	}{
		{
			name:  "empty calendar is free",
			setup: func(f *testutil.FakeCalendar) {},
			want:  VerdictFree,
		},
		{
			name: "overlap is busy",
			setup: func(f *testutil.FakeCalendar) {
				f.AddBusy(start.Add(45*time.Minute), end.Add(time.Hour))
			},
			want: VerdictBusy,
		},
		{
			name: "interval ending at start is free",
			setup: func(f *testutil.FakeCalendar) {
				f.AddBusy(start.Add(-time.Hour), start)
			},
			want: VerdictFree,
		},
		{
			name: "interval starting at end is free",
			setup: func(f *testutil.FakeCalendar) {
				f.AddBusy(end, end.Add(time.Hour))
			},
			want: VerdictFree,
		},
		{
			name: "backend error is unavailable, never free",
			setup: func(f *testutil.FakeCalendar) {
				f.SetFreeBusyError(errors.Join(gcal.ErrUnavailable, errors.New("401")))
			},
			want:    VerdictUnavailable,
			wantErr: gcal.ErrUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeCalendar()
			tt.setup(fake)

			verdict, err := NewChecker(fake, "primary", time.Second).Check(context.Background(), start, end)
			assert.Equal(t, tt.want, verdict)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, fake.FreeBusyCalls())
		})
	}
}

func TestChecker_Timeout(t *testing.T) {
	fake := testutil.NewFakeCalendar()
	fake.SetDelay(time.Second)

	start := time.Date(2025, time.January, 11, 9, 30, 0, 0, time.UTC)
	verdict, err := NewChecker(fake, "primary", 20*time.Millisecond).Check(context.Background(), start, start.Add(time.Hour))

	assert.Equal(t, VerdictUnavailable, verdict)
	assert.ErrorIs(t, err, gcal.ErrTimeout)
}

func TestChecker_InvalidInterval(t *testing.T) {
	fake := testutil.NewFakeCalendar()
	start := time.Date(2025, time.January, 11, 9, 30, 0, 0, time.UTC)

	verdict, err := NewChecker(fake, "primary", 0).Check(context.Background(), start, start)
	require.Error(t, err)
	assert.Equal(t, VerdictUnavailable, verdict)
	assert.Zero(t, fake.FreeBusyCalls())
}

func TestVerdictZeroValueIsNotFree(t *testing.T) {
	var v Verdict
	assert.Equal(t, VerdictUnavailable, v)
	assert.Equal(t, "unavailable", v.String())
	assert.Equal(t, "free", VerdictFree.String())
	assert.Equal(t, "busy", VerdictBusy.String())
}
