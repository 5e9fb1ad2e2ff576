package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDuration(t *testing.T) {
	tests := []struct {
		text string
		want time.Duration
	}{
		{"Book a meeting tomorrow at 3 PM", 30 * time.Minute},
		{"for 1 hour", time.Hour},
		{"45 minutes sync", 45 * time.Minute},
		{"a 90min review", 90 * time.Minute},
		{"for 2 hrs", 2 * time.Hour},
		{"for 1.5 hours", 90 * time.Minute},
		{"30 min call for 2 hours", 30 * time.Minute},
		{"for 2 Hours then 10 minutes", 2 * time.Hour},
		{"0 minutes", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveDuration(tt.text))
		})
	}
}

func TestExtractAttendees(t *testing.T) {
	text := "invite john@example.com, Jane.Doe+cal@corp.co.uk and JOHN@example.com. cc john@example.com"

	first := ExtractAttendees(text)
	second := ExtractAttendees(text)

	assert.Equal(t, []string{"john@example.com", "Jane.Doe+cal@corp.co.uk"}, first)
	assert.Equal(t, first, second)

	assert.Empty(t, ExtractAttendees("no addresses here, not even user@localhost"))
}

func TestExtractAgenda(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *string
	}{
		{
			name: "agenda colon stops at keyword",
			text: "book a meeting agenda: Q3 planning with john@example.com at 3pm",
			want: strPtr("Q3 planning"),
		},
		{
			name: "agenda dash to end of string",
			text: "2025-01-11 15:00 agenda - roadmap review",
			want: strPtr("roadmap review"),
		},
		{
			name: "titled with single quotes",
			text: "schedule a call titled 'Interview with Meta' tomorrow at 10am",
			want: strPtr("Interview with Meta"),
		},
		{
			name: "titled with double quotes",
			text: `book a meeting titled "Budget" on friday at 2pm`,
			want: strPtr("Budget"),
		},
		{
			name: "about",
			text: "book a meeting about the hiring plan on monday at 11:00",
			want: strPtr("the hiring plan"),
		},
		{
			name: "agenda beats about",
			text: "meeting about stuff agenda: launch",
			want: strPtr("launch"),
		},
		{
			name: "about beats titled",
			text: "Book a meeting about roadmap titled 'Sync' tomorrow at 3pm",
			want: strPtr("roadmap titled 'Sync' tomorrow"),
		},
		{
			name: "empty agenda falls through",
			text: "agenda: with bob about pricing",
			want: strPtr("pricing"),
		},
		{
			name: "no agenda is nil",
			text: "Book a meeting tomorrow at 3 PM with john@example.com for 1 hour",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractAgenda(tt.text)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestParser_Parse(t *testing.T) {
	kolkata := loadZone(t, "Asia/Kolkata")
	parser := NewParser(kolkata)
	now := time.Date(2025, time.January, 10, 9, 0, 0, 0, kolkata)

	t.Run("tomorrow at 3 PM for 1 hour", func(t *testing.T) {
		got, err := parser.Parse("Book a meeting tomorrow at 3 PM with john@example.com for 1 hour", now)
		require.NoError(t, err)

		assert.True(t, time.Date(2025, time.January, 11, 15, 0, 0, 0, kolkata).Equal(got.Start))
		assert.True(t, time.Date(2025, time.January, 11, 16, 0, 0, 0, kolkata).Equal(got.End))
		assert.Equal(t, "2025-01-11 15:00", got.LocalStart().Format("2006-01-02 15:04"))
		assert.Equal(t, "16:00", got.LocalEnd().Format("15:04"))
		assert.Equal(t, time.Hour, got.Duration)
		assert.Equal(t, []string{"john@example.com"}, got.Attendees)
		assert.Nil(t, got.Agenda)
		assert.Equal(t, DefaultSummary, got.Summary)
		assert.True(t, got.End.After(got.Start))
	})

	t.Run("insufficient without time", func(t *testing.T) {
		got, err := parser.Parse("Book a meeting with jane@x.com", now)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrInsufficient)
	})

	t.Run("insufficient with date only", func(t *testing.T) {
		_, err := parser.Parse("Book a meeting on 2025-02-01 with jane@x.com", now)
		assert.ErrorIs(t, err, ErrInsufficient)
	})

	t.Run("title becomes summary", func(t *testing.T) {
		got, err := parser.Parse("Book a meeting titled 'Interview with Meta' on 2025-01-20 at 14:00 for 45 minutes", now)
		require.NoError(t, err)
		assert.Equal(t, "Interview with Meta", got.Summary)
		assert.Equal(t, 45*time.Minute, got.Duration)
	})

	t.Run("title wins summary while about wins agenda", func(t *testing.T) {
		got, err := parser.Parse("Book a meeting about roadmap titled 'Sync' tomorrow at 3pm", now)
		require.NoError(t, err)
		assert.Equal(t, "Sync", got.Summary)
		require.NotNil(t, got.Agenda)
		assert.Equal(t, "roadmap titled 'Sync' tomorrow", *got.Agenda)
	})

	t.Run("agenda becomes summary", func(t *testing.T) {
		got, err := parser.Parse("tomorrow 10:00 agenda: sprint review", now)
		require.NoError(t, err)
		assert.Equal(t, "sprint review", got.Summary)
		require.NotNil(t, got.Agenda)
		assert.Equal(t, "sprint review", *got.Agenda)
	})

	t.Run("past dates are still parsed", func(t *testing.T) {
		got, err := parser.Parse("2024-01-01 at 10:00", now)
		require.NoError(t, err)
		assert.True(t, got.Start.Before(now))
	})

	t.Run("details", func(t *testing.T) {
		got, err := parser.Parse("Book a meeting tomorrow at 3 PM with john@example.com", now)
		require.NoError(t, err)

		d := got.Details()
		assert.Equal(t, "2025-01-11", d.Date)
		assert.Equal(t, "15:00", d.Time)
		assert.Equal(t, "2025-01-11T15:00:00+05:30", d.Start)
		assert.Equal(t, "2025-01-11T15:30:00+05:30", d.End)
		assert.Equal(t, 30, d.DurationMinutes)
		assert.Equal(t, "Asia/Kolkata", d.Timezone)
	})
}

func strPtr(s string) *string {
	return &s
}
