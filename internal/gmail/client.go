package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/beefewer/internal/google"
	"github.com/teemow/beefewer/internal/instrumentation"
)

// InboxLabel is the system label that makes a thread show up in the inbox.
const InboxLabel = "INBOX"

// Client wraps the Gmail Users service
type Client struct {
	svc     *gmail.UsersService
	account string // The account this client is associated with
	metrics *instrumentation.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records every API call on m.
func WithMetrics(m *instrumentation.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a new Gmail client with OAuth2 authentication for a specific account
func NewClientForAccount(ctx context.Context, account string, opts ...Option) (*Client, error) {
	hc, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w", account, err)
	}

	c, err := NewClient(ctx, hc, opts...)
	if err != nil {
		return nil, err
	}
	c.account = account
	return c, nil
}

// NewClient creates a Gmail client on top of an already authorized HTTP client.
func NewClient(ctx context.Context, hc *http.Client, opts ...Option) (*Client, error) {
	return newClient(ctx, []option.ClientOption{option.WithHTTPClient(hc)}, opts...)
}

func newClient(ctx context.Context, clientOpts []option.ClientOption, opts ...Option) (*Client, error) {
	svc, err := gmail.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	c := &Client{svc: svc.Users, account: "default"}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// observe wraps one API call in a span and a metrics record.
func (c *Client) observe(ctx context.Context, operation, threadID string, call func(context.Context) error) error {
	var attrs []attribute.KeyValue
	if threadID != "" {
		attrs = append(attrs, attribute.String(instrumentation.SpanAttrThreadID, threadID))
	}
	ctx, span := instrumentation.StartAPISpan(ctx, instrumentation.ServiceGmail, operation, attrs...)
	start := time.Now()

	err := call(ctx)

	c.metrics.RecordAPIOperation(ctx, instrumentation.ServiceGmail, operation, instrumentation.StatusOf(err), time.Since(start))
	instrumentation.EndSpan(span, err)
	return err
}

// ForeachThread iterates over all threads carrying every label in labelIDs
// and matching q (either may be empty).
func (c *Client) ForeachThread(ctx context.Context, q string, labelIDs []string, fn func(*gmail.Thread) error) error {
	pageToken := ""
	for {
		var res *gmail.ListThreadsResponse
		err := c.observe(ctx, instrumentation.OperationList, "", func(ctx context.Context) error {
			req := c.svc.Threads.List("me").Context(ctx)
			if q != "" {
				req.Q(q)
			}
			if len(labelIDs) > 0 {
				req.LabelIds(labelIDs...)
			}
			if pageToken != "" {
				req.PageToken(pageToken)
			}
			var err error
			res, err = req.Do()
			return err
		})
		if err != nil {
			return err
		}
		for _, t := range res.Threads {
			if err := fn(t); err != nil {
				return err
			}
		}
		if res.NextPageToken == "" {
			return nil
		}
		pageToken = res.NextPageToken
	}
}

// InboxThreadIDs lists the IDs of all threads in the inbox, in the order
// Gmail returns them.
func (c *Client) InboxThreadIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := c.ForeachThread(ctx, "", []string{InboxLabel}, func(t *gmail.Thread) error {
		ids = append(ids, t.Id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox threads: %w", err)
	}
	return ids, nil
}

// MessageHeaders returns the headers of message id. A thread's ID is also
// the ID of its first message, so thread IDs are accepted here.
func (c *Client) MessageHeaders(ctx context.Context, id string) ([]*gmail.MessagePartHeader, error) {
	var msg *gmail.Message
	err := c.observe(ctx, instrumentation.OperationGet, id, func(ctx context.Context) error {
		var err error
		msg, err = c.svc.Messages.Get("me", id).Format("metadata").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	if msg.Payload == nil {
		return nil, nil
	}
	return msg.Payload.Headers, nil
}

// ArchiveThread archives a thread by removing the INBOX label
func (c *Client) ArchiveThread(ctx context.Context, tid string) error {
	return c.modifyThread(ctx, tid, &gmail.ModifyThreadRequest{
		RemoveLabelIds: []string{InboxLabel},
	})
}

// UnarchiveThread moves a thread back to inbox by adding the INBOX label
func (c *Client) UnarchiveThread(ctx context.Context, tid string) error {
	return c.modifyThread(ctx, tid, &gmail.ModifyThreadRequest{
		AddLabelIds: []string{InboxLabel},
	})
}

func (c *Client) modifyThread(ctx context.Context, tid string, req *gmail.ModifyThreadRequest) error {
	return c.observe(ctx, instrumentation.OperationModify, tid, func(ctx context.Context) error {
		_, err := c.svc.Threads.Modify("me", tid, req).Context(ctx).Do()
		return err
	})
}

// ArchiveThreads archives every thread in tids. Archiving is idempotent, so
// all IDs are attempted even after a failure; failures are joined.
func (c *Client) ArchiveThreads(ctx context.Context, tids []string) error {
	return c.forEachID(tids, "archiving", func(tid string) error {
		return c.ArchiveThread(ctx, tid)
	})
}

// UnarchiveThreads moves every thread in tids back to the inbox, undoing
// ArchiveThreads.
func (c *Client) UnarchiveThreads(ctx context.Context, tids []string) error {
	return c.forEachID(tids, "unarchiving", func(tid string) error {
		return c.UnarchiveThread(ctx, tid)
	})
}

func (c *Client) forEachID(tids []string, verb string, fn func(tid string) error) error {
	var errs []error
	for _, tid := range tids {
		if err := fn(tid); err != nil {
			errs = append(errs, fmt.Errorf("%s thread %s: %w", verb, tid, err))
		}
	}
	return errors.Join(errs...)
}
