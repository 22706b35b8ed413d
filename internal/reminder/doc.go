// Package reminder reconciles Beeminder reminder emails with goal data.
//
// A Reconciler walks the inbox once, recognizes reminder subjects with a
// Chain of classifiers, looks up the latest datapoint of each reminded goal
// and archives the reminders whose goal already has data for the reminded
// day:
//
//	r := reminder.New(gmailClient, beeminderClient)
//	res, err := r.Run(ctx, false)
//	fmt.Println(res.Summary())
//
// Subjects carry no year. ReminderDate borrows the datapoint's year and
// steps back 52 weeks at a time until the date is not in the future.
//
// Accelerating ("Eep!") reminders carry no date at all and are assumed to
// be about the day of the scan. Run the reconciler between the goal's data
// deadline and midnight; a scan after midnight compares yesterday's
// reminders against today.
//
// Runs keep no state. Archived threads leave the inbox, so running twice
// archives nothing the second time.
package reminder
