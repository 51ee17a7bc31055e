package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibetickets/helpdesk/internal/domain"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func TestComputeDeadline_HourTable(t *testing.T) {
	tests := []struct {
		priority domain.TicketPriority
		hours    time.Duration
	}{
		{domain.TicketPriorityLow, 24 * time.Hour},
		{domain.TicketPriorityMedium, 8 * time.Hour},
		{domain.TicketPriorityHigh, 4 * time.Hour},
		{domain.TicketPriorityCritical, 1 * time.Hour},
		{domain.TicketPriority("BOGUS"), 8 * time.Hour},
		{domain.TicketPriority(""), 8 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			deadline := ComputeDeadline(tt.priority, t0)
			assert.Equal(t, tt.hours, deadline.Sub(t0))
		})
	}
}

func TestEvaluate_Bands(t *testing.T) {
	deadlineAt := func(d time.Duration) *time.Time {
		dl := t0.Add(d)
		return &dl
	}

	tests := []struct {
		name     string
		deadline *time.Time
		label    string
		urgency  Urgency
	}{
		{"no deadline", nil, "N/A", UrgencyNeutral},
		{"past by a second", deadlineAt(-time.Second), "Breached", UrgencyCritical},
		{"past by a day", deadlineAt(-24 * time.Hour), "Breached", UrgencyCritical},
		{"one hour left", deadlineAt(time.Hour), "Critical", UrgencyHigh},
		{"three hours left", deadlineAt(3 * time.Hour), "Warning", UrgencyMedium},
		{"ten hours left", deadlineAt(10 * time.Hour), "On Track", UrgencyNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.deadline, t0)
			assert.Equal(t, tt.label, got.Label)
			assert.Equal(t, tt.urgency, got.Urgency)
		})
	}
}

func TestEvaluate_ExactBoundariesFallToWiderBand(t *testing.T) {
	// Comparisons are strict <, so a tie belongs to the calmer band.
	twoHours := t0.Add(2 * time.Hour)
	assert.Equal(t, "Warning", Evaluate(&twoHours, t0).Label)

	eightHours := t0.Add(8 * time.Hour)
	assert.Equal(t, "On Track", Evaluate(&eightHours, t0).Label)

	// A deadline of exactly now has zero remaining, not negative.
	exactlyNow := t0
	assert.Equal(t, "Critical", Evaluate(&exactlyNow, t0).Label)
}

func TestCriticalTicketScenario(t *testing.T) {
	deadline := ComputeDeadline(domain.TicketPriorityCritical, t0)
	require.Equal(t, t0.Add(time.Hour), deadline)

	assert.Equal(t, "Critical", Evaluate(&deadline, t0.Add(45*time.Minute)).Label)
	assert.Equal(t, "Breached", Evaluate(&deadline, t0.Add(2*time.Hour)).Label)
}

func TestBreached(t *testing.T) {
	past := t0.Add(-time.Minute)
	future := t0.Add(time.Minute)

	assert.True(t, Breached(domain.TicketStatusOpen, &past, t0))
	assert.True(t, Breached(domain.TicketStatusInProgress, &past, t0))
	assert.True(t, Breached(domain.TicketStatusWaitingCustomer, &past, t0))

	assert.False(t, Breached(domain.TicketStatusResolved, &past, t0))
	assert.False(t, Breached(domain.TicketStatusClosed, &past, t0))
	assert.False(t, Breached(domain.TicketStatusOpen, &future, t0))
	assert.False(t, Breached(domain.TicketStatusOpen, nil, t0))
}
