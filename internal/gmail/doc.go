// Package gmail provides the mailbox side of beefewer on top of the Gmail API.
//
// It lists inbox threads, reads message headers and archives threads by
// removing the INBOX label. Archiving is reversible: UnarchiveThreads puts
// threads back.
//
// Authentication uses the per-account Google OAuth token managed by the
// google package (~/.cache/beefewer/google-<account>.token).
//
// Example usage:
//
//	client, err := gmail.NewClientForAccount(ctx, "default")
//	if err != nil {
//	    return err
//	}
//	ids, err := client.InboxThreadIDs(ctx)
package gmail
