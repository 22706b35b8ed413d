package reminder

import (
	"fmt"
	"time"
)

// Kind tells how a reminder's month and day were obtained.
type Kind int

const (
	// KindDirect reminders state their date in the subject.
	KindDirect Kind = iota + 1
	// KindAccelerating ("Zeno") reminders carry no date; they concern the
	// day of the scan.
	KindAccelerating
)

func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindAccelerating:
		return "accelerating"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Reminder is a Beeminder nag email recognized from its subject line.
type Reminder struct {
	ThreadID string
	Subject  string
	Kind     Kind
	Username string
	Goal     string
	Month    time.Month
	Day      int
}

// GoalSlug returns "username/goal".
func (r *Reminder) GoalSlug() string {
	return r.Username + "/" + r.Goal
}

// Decision is the outcome of reconciling one reminder with its goal data.
type Decision struct {
	Reminder     Reminder
	DataDate     time.Time
	ReminderDate time.Time
	Archive      bool

	// Err is set when the reminder was skipped without a decision: the
	// goal data could not be fetched, was empty, or was unusable.
	Err error
}

// Skipped reports whether no archive decision could be made.
func (d *Decision) Skipped() bool {
	return d.Err != nil
}
