package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	gmail "google.golang.org/api/gmail/v1"

	"github.com/teemow/beefewer/internal/beeminder"
	"github.com/teemow/beefewer/internal/instrumentation"
	"github.com/teemow/beefewer/internal/logging"
)

// Mailbox is the mail side of a reconciliation.
type Mailbox interface {
	// InboxThreadIDs lists the threads currently in the inbox.
	InboxThreadIDs(ctx context.Context) ([]string, error)
	// MessageHeaders returns the headers of the message with the given ID.
	MessageHeaders(ctx context.Context, id string) ([]*gmail.MessagePartHeader, error)
	// ArchiveThreads removes the given threads from the inbox.
	ArchiveThreads(ctx context.Context, ids []string) error
}

// GoalData looks up goal datapoints, most recent first.
type GoalData interface {
	Datapoints(ctx context.Context, username, goal string) ([]beeminder.Datapoint, error)
}

// Result summarizes one reconciliation run.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	DryRun     bool

	// Scanned counts inbox threads looked at, Matched the ones recognized
	// as reminders. Failed counts threads whose headers could not be read,
	// Skipped reminders for which no decision could be made.
	Scanned int
	Matched int
	Failed  int
	Skipped int

	Decisions []Decision
	ToArchive []string
	Archived  int
}

// Summary returns the one-line report printed at the end of a run.
func (r *Result) Summary() string {
	if r.DryRun {
		return fmt.Sprintf("Done! Would archive %d email(s).", len(r.ToArchive))
	}
	return fmt.Sprintf("Done! Archived %d email(s).", r.Archived)
}

// Reconciler archives Beeminder reminders whose goal already has data for
// the reminded day. It is sequential and keeps no state between runs.
type Reconciler struct {
	mailbox     Mailbox
	goals       GoalData
	classifiers Chain
	logger      logging.Logger
	metrics     *instrumentation.Metrics
	audit       *instrumentation.AuditLogger
	now         func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l logging.Logger) Option {
	return func(r *Reconciler) { r.logger = l }
}

// WithMetrics records run, reminder and decision metrics on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// WithAuditLogger logs every decision of a run on al.
func WithAuditLogger(al *instrumentation.AuditLogger) Option {
	return func(r *Reconciler) { r.audit = al }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// New creates a Reconciler over an authorized mailbox and goal-data source.
func New(mailbox Mailbox, goals GoalData, opts ...Option) *Reconciler {
	r := &Reconciler{
		mailbox:     mailbox,
		goals:       goals,
		classifiers: DefaultChain,
		logger:      logging.DefaultLogger(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run scans the inbox and, unless dryRun is set, archives the stale
// reminders in one batch. A failed batch is returned as an error together
// with the scan result; nothing is retried since re-running is safe.
func (r *Reconciler) Run(ctx context.Context, dryRun bool) (res *Result, err error) {
	start := time.Now()
	defer func() {
		r.metrics.RecordRun(ctx, instrumentation.StatusOf(err), time.Since(start))
	}()

	res, err = r.Scan(ctx)
	if err != nil {
		return nil, err
	}
	res.DryRun = dryRun

	if !dryRun {
		if err := r.Apply(ctx, res.ToArchive); err != nil {
			r.auditDecisions(ctx, res)
			res.FinishedAt = r.now()
			return res, fmt.Errorf("failed to archive %d thread(s): %w", len(res.ToArchive), err)
		}
		res.Archived = len(res.ToArchive)
	}

	r.auditDecisions(ctx, res)
	res.FinishedAt = r.now()
	return res, nil
}

// Scan decides for every reminder in the inbox whether it is stale, without
// changing the mailbox. The current time is read once and used for every
// reminder. Failures concerning a single thread or reminder are logged and
// counted; only a failure to list the inbox aborts the scan.
func (r *Reconciler) Scan(ctx context.Context) (res *Result, err error) {
	now := r.now()
	res = &Result{RunID: uuid.NewString(), StartedAt: now}
	logger := r.logger.With(logging.RunID(res.RunID))

	ctx, span := instrumentation.StartSpan(ctx, "reminder.scan",
		attribute.String(instrumentation.SpanAttrRunID, res.RunID))
	defer func() { instrumentation.EndSpan(span, err) }()

	ids, err := r.mailbox.InboxThreadIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox: %w", err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Scanned++

		rem, err := r.classifyThread(ctx, id, now)
		if err != nil {
			res.Failed++
			logger.Warn("failed to read message",
				logging.Service(instrumentation.ServiceGmail),
				logging.Operation(instrumentation.OperationGet),
				logging.Thread(id), logging.Err(err))
			continue
		}
		if rem == nil {
			continue
		}

		res.Matched++
		r.metrics.RecordReminder(ctx, rem.Kind.String())
		logger.Info("found a beeminder reminder email",
			logging.Thread(id), logging.Goal(rem.Username, rem.Goal),
			"kind", rem.Kind.String(), "month", int(rem.Month), "day", rem.Day)

		d := r.decide(ctx, rem, now)
		res.Decisions = append(res.Decisions, d)

		switch {
		case d.Skipped():
			res.Skipped++
			r.metrics.RecordDecision(ctx, instrumentation.DecisionSkip)
			logger.Warn("skipping reminder without usable goal data",
				logging.Thread(id), logging.Goal(rem.Username, rem.Goal), logging.Err(d.Err))
		case d.Archive:
			res.ToArchive = append(res.ToArchive, id)
			r.metrics.RecordDecision(ctx, instrumentation.DecisionArchive)
			logger.Info("going to archive this email",
				logging.Thread(id),
				"data_date", d.DataDate.Format(time.DateOnly),
				"reminder_date", d.ReminderDate.Format(time.DateOnly))
		default:
			r.metrics.RecordDecision(ctx, instrumentation.DecisionKeep)
			logger.Info("skipping this email",
				logging.Thread(id),
				"data_date", d.DataDate.Format(time.DateOnly),
				"reminder_date", d.ReminderDate.Format(time.DateOnly))
		}
	}

	return res, nil
}

// classifyThread returns the reminder in thread id, or nil when its subject
// is missing or not a reminder.
func (r *Reconciler) classifyThread(ctx context.Context, id string, now time.Time) (*Reminder, error) {
	headers, err := r.mailbox.MessageHeaders(ctx, id)
	if err != nil {
		return nil, err
	}
	subject, ok := SubjectFromHeaders(headers)
	if !ok {
		return nil, nil
	}
	rem, ok := r.classifiers.Classify(subject, now)
	if !ok {
		return nil, nil
	}
	rem.ThreadID = id
	return rem, nil
}

// decide fetches the goal's latest datapoint and compares its day with the
// reminder's.
func (r *Reconciler) decide(ctx context.Context, rem *Reminder, now time.Time) Decision {
	d := Decision{Reminder: *rem}

	points, err := r.goals.Datapoints(ctx, rem.Username, rem.Goal)
	if err != nil {
		d.Err = err
		return d
	}
	if len(points) == 0 {
		d.Err = fmt.Errorf("goal %s has no datapoints", rem.GoalSlug())
		return d
	}

	d.DataDate, err = points[0].Date(now.Location())
	if err != nil {
		d.Err = err
		return d
	}
	d.ReminderDate, err = ReminderDate(d.DataDate, rem.Month, rem.Day, now)
	if err != nil {
		d.Err = err
		return d
	}
	d.Archive = ShouldArchive(d.DataDate, d.ReminderDate)
	return d
}

// Apply archives ids as one batch. Archiving is idempotent and reversible.
func (r *Reconciler) Apply(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	for _, id := range ids {
		r.logger.Info("archiving thread",
			logging.Operation(instrumentation.OperationArchive), logging.Thread(id))
	}
	if err := r.mailbox.ArchiveThreads(ctx, ids); err != nil {
		return err
	}
	r.metrics.RecordArchived(ctx, len(ids))
	return nil
}

func (r *Reconciler) auditDecisions(ctx context.Context, res *Result) {
	for i := range res.Decisions {
		d := &res.Decisions[i]
		if d.Skipped() {
			continue
		}
		r.audit.LogDecision(ctx, &instrumentation.DecisionEvent{
			RunID:        res.RunID,
			ThreadID:     d.Reminder.ThreadID,
			Username:     d.Reminder.Username,
			Goal:         d.Reminder.Goal,
			Kind:         d.Reminder.Kind.String(),
			Subject:      d.Reminder.Subject,
			DataDate:     d.DataDate,
			ReminderDate: d.ReminderDate,
			Archive:      d.Archive,
			DryRun:       res.DryRun,
		})
	}
}
