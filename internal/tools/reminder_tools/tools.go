package reminder_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/beefewer/internal/google"
	"github.com/teemow/beefewer/internal/reminder"
	"github.com/teemow/beefewer/internal/server"
	"github.com/teemow/beefewer/internal/tools/common"
	"github.com/teemow/beefewer/internal/tools/google_tools"
)

// DecisionOutput is the JSON form of a reminder.Decision.
type DecisionOutput struct {
	ThreadID     string `json:"thread_id"`
	Goal         string `json:"goal"`
	Kind         string `json:"kind"`
	Subject      string `json:"subject"`
	DataDate     string `json:"data_date,omitempty"`
	ReminderDate string `json:"reminder_date,omitempty"`
	Archive      bool   `json:"archive"`
	Error        string `json:"error,omitempty"`
}

// RunOutput is the JSON form of a reminder.Result.
type RunOutput struct {
	RunID     string           `json:"run_id"`
	DryRun    bool             `json:"dry_run"`
	Scanned   int              `json:"scanned"`
	Matched   int              `json:"matched"`
	Skipped   int              `json:"skipped"`
	Failed    int              `json:"failed"`
	ToArchive []string         `json:"to_archive"`
	Archived  int              `json:"archived"`
	Decisions []DecisionOutput `json:"decisions"`
	Summary   string           `json:"summary"`
}

// ClassifyOutput is the JSON form of a classified subject.
type ClassifyOutput struct {
	Match    bool   `json:"match"`
	Kind     string `json:"kind,omitempty"`
	Username string `json:"username,omitempty"`
	Goal     string `json:"goal,omitempty"`
	Month    int    `json:"month,omitempty"`
	Day      int    `json:"day,omitempty"`

	// DateError is set when the subject matched but its month/day cannot
	// be a calendar date; the reconciler skips such reminders.
	DateError string `json:"date_error,omitempty"`
}

// RegisterReminderTools registers the Beeminder reminder tools with the MCP
// server. The archiving tool is only registered when readOnly is false.
func RegisterReminderTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTool := mcp.NewTool("beeminder_list_reminders",
		mcp.WithDescription("Scan the Gmail inbox for Beeminder reminder emails and report, without archiving, which ones are already satisfied by goal data"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(listTool, common.InstrumentedToolHandler("beeminder_list_reminders", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRun(ctx, request, sc, true)
		}))

	classifyTool := mcp.NewTool("beeminder_classify_subject",
		mcp.WithDescription("Check whether an email subject is a Beeminder reminder and extract its goal and date"),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("The email subject line"),
		),
	)

	s.AddTool(classifyTool, common.InstrumentedToolHandler("beeminder_classify_subject", sc, handleClassifySubject))

	if readOnly {
		return nil
	}

	archiveTool := mcp.NewTool("beeminder_archive_stale_reminders",
		mcp.WithDescription("Archive all Beeminder reminder emails in the Gmail inbox whose goal already has data for the reminded day"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(archiveTool, common.InstrumentedToolHandler("beeminder_archive_stale_reminders", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleRun(ctx, request, sc, false)
		}))

	return nil
}

func handleRun(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, dryRun bool) (*mcp.CallToolResult, error) {
	account := common.GetAccountFromArgs(request.GetArguments())

	r, err := sc.ReconcilerForAccount(account)
	if err != nil {
		if !google.HasTokenForAccount(account) {
			return mcp.NewToolResultError(google_tools.AuthRequiredMessage(account)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := r.Run(ctx, dryRun)
	if err != nil {
		if res == nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to scan inbox: %v", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Failed to archive %d reminder(s): %v", len(res.ToArchive), err)), nil
	}

	return jsonResult(NewRunOutput(res))
}

func handleClassifySubject(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subject, ok := request.GetArguments()["subject"].(string)
	if !ok || subject == "" {
		return mcp.NewToolResultError("subject is required"), nil
	}

	out := ClassifyOutput{}
	if rem, ok := reminder.DefaultChain.Classify(subject, time.Now()); ok {
		out = ClassifyOutput{
			Match:    true,
			Kind:     rem.Kind.String(),
			Username: rem.Username,
			Goal:     rem.Goal,
			Month:    int(rem.Month),
			Day:      rem.Day,
		}
		if err := reminder.CheckMonthDay(rem.Month, rem.Day); err != nil {
			out.DateError = err.Error()
		}
	}
	return jsonResult(out)
}

// NewRunOutput converts a run result to its JSON form.
func NewRunOutput(res *reminder.Result) RunOutput {
	out := RunOutput{
		RunID:     res.RunID,
		DryRun:    res.DryRun,
		Scanned:   res.Scanned,
		Matched:   res.Matched,
		Skipped:   res.Skipped,
		Failed:    res.Failed,
		ToArchive: append([]string{}, res.ToArchive...),
		Archived:  res.Archived,
		Decisions: make([]DecisionOutput, 0, len(res.Decisions)),
		Summary:   res.Summary(),
	}
	for _, d := range res.Decisions {
		do := DecisionOutput{
			ThreadID: d.Reminder.ThreadID,
			Goal:     d.Reminder.GoalSlug(),
			Kind:     d.Reminder.Kind.String(),
			Subject:  d.Reminder.Subject,
			Archive:  d.Archive,
		}
		if !d.DataDate.IsZero() {
			do.DataDate = d.DataDate.Format(time.DateOnly)
		}
		if !d.ReminderDate.IsZero() {
			do.ReminderDate = d.ReminderDate.Format(time.DateOnly)
		}
		if d.Err != nil {
			do.Error = d.Err.Error()
		}
		out.Decisions = append(out.Decisions, do)
	}
	return out
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
