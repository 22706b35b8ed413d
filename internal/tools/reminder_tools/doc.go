// Package reminder_tools exposes the Beeminder reminder reconciler as MCP
// tools.
//
// Available tools:
//   - beeminder_list_reminders: scan the inbox and report decisions (read-only)
//   - beeminder_classify_subject: classify a single subject line (read-only)
//   - beeminder_archive_stale_reminders: scan and archive (requires --yolo)
//
// Results are returned as JSON.
package reminder_tools
