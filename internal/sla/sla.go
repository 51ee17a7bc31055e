// Package sla computes first-response deadlines and deadline-derived
// status for tickets. All functions are pure; callers pass the clock.
package sla

import (
	"time"

	"github.com/vibetickets/helpdesk/internal/domain"
)

// Urgency ranks how pressing a deadline is for display purposes.
type Urgency string

const (
	UrgencyNeutral  Urgency = "neutral"
	UrgencyNormal   Urgency = "normal"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Status describes how a ticket is tracking against its deadline.
type Status struct {
	Label   string  `json:"label"`
	Urgency Urgency `json:"urgency"`
}

// Hours-to-first-response per priority tier.
var responseHours = map[domain.TicketPriority]int{
	domain.TicketPriorityLow:      24,
	domain.TicketPriorityMedium:   8,
	domain.TicketPriorityHigh:     4,
	domain.TicketPriorityCritical: 1,
}

const defaultResponseHours = 8

const (
	criticalWindow = 2 * time.Hour
	warningWindow  = 8 * time.Hour
)

// ComputeDeadline returns the first-response deadline for a ticket
// created at createdAt. Unknown priorities fall back to the MEDIUM tier.
func ComputeDeadline(priority domain.TicketPriority, createdAt time.Time) time.Time {
	hours, ok := responseHours[priority]
	if !ok {
		hours = defaultResponseHours
	}
	return createdAt.Add(time.Duration(hours) * time.Hour)
}

// Evaluate maps a deadline to a display status at the given instant.
// Window comparisons are strict: a deadline exactly 2h away is still
// in the Warning band, exactly 8h away is still On Track.
func Evaluate(deadline *time.Time, now time.Time) Status {
	if deadline == nil {
		return Status{Label: "N/A", Urgency: UrgencyNeutral}
	}
	remaining := deadline.Sub(now)
	switch {
	case remaining < 0:
		return Status{Label: "Breached", Urgency: UrgencyCritical}
	case remaining < criticalWindow:
		return Status{Label: "Critical", Urgency: UrgencyHigh}
	case remaining < warningWindow:
		return Status{Label: "Warning", Urgency: UrgencyMedium}
	default:
		return Status{Label: "On Track", Urgency: UrgencyNormal}
	}
}

// Breached reports whether a ticket counts as an SLA breach: still
// unresolved with its deadline in the past.
func Breached(status domain.TicketStatus, deadline *time.Time, now time.Time) bool {
	if deadline == nil || status.IsFinished() {
		return false
	}
	return now.After(*deadline)
}
