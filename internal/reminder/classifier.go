package reminder

import (
	"regexp"
	"strconv"
	"time"

	gmail "google.golang.org/api/gmail/v1"
)

// SubjectHeader is the only header looked at when classifying a message.
const SubjectHeader = "Subject"

var (
	// alice/weight on 01/15 (+1 due by midnight) ... respond with beeminder data
	directSubject = regexp.MustCompile(
		`^(\w+)/(\w+) on (\d\d)/(\d\d) \(.*\).*respond with beeminder data`)

	// Eep! alice/weight is due today at 11:59pm for alice/weight ($5)
	acceleratingSubject = regexp.MustCompile(
		`^Eep!.* at \d{1,2}:\d\d(?:am|pm) for (\w+)/(\w+) \(\$[^)]*\)`)
)

// Classifier turns a subject line into a Reminder. now is the scan time.
type Classifier interface {
	Classify(subject string, now time.Time) (*Reminder, bool)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(subject string, now time.Time) (*Reminder, bool)

// Classify calls f.
func (f ClassifierFunc) Classify(subject string, now time.Time) (*Reminder, bool) {
	return f(subject, now)
}

// Direct recognizes reminders whose subject carries the month and day.
var Direct = ClassifierFunc(func(subject string, _ time.Time) (*Reminder, bool) {
	m := directSubject.FindStringSubmatch(subject)
	if m == nil {
		return nil, false
	}
	month, _ := strconv.Atoi(m[3])
	day, _ := strconv.Atoi(m[4])
	return &Reminder{
		Subject:  subject,
		Kind:     KindDirect,
		Username: m[1],
		Goal:     m[2],
		Month:    time.Month(month),
		Day:      day,
	}, true
})

// Accelerating recognizes "Eep!" reminders. They carry no date, so the
// month and day of now are used: they are assumed to be about today, which
// only holds when the scan runs between the data deadline and midnight.
var Accelerating = ClassifierFunc(func(subject string, now time.Time) (*Reminder, bool) {
	m := acceleratingSubject.FindStringSubmatch(subject)
	if m == nil {
		return nil, false
	}
	return &Reminder{
		Subject:  subject,
		Kind:     KindAccelerating,
		Username: m[1],
		Goal:     m[2],
		Month:    now.Month(),
		Day:      now.Day(),
	}, true
})

// Chain tries each classifier in order; the first match wins.
type Chain []Classifier

// DefaultChain recognizes direct reminders first, then accelerating ones.
var DefaultChain = Chain{Direct, Accelerating}

// Classify returns the first match, or false when no classifier matches.
func (c Chain) Classify(subject string, now time.Time) (*Reminder, bool) {
	for _, cl := range c {
		if r, ok := cl.Classify(subject, now); ok {
			return r, true
		}
	}
	return nil, false
}

// SubjectFromHeaders returns the value of the header named exactly
// "Subject".
func SubjectFromHeaders(headers []*gmail.MessagePartHeader) (string, bool) {
	for _, h := range headers {
		if h != nil && h.Name == SubjectHeader {
			return h.Value, true
		}
	}
	return "", false
}
