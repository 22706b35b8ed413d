// Package beeminder is a minimal client for the Beeminder goal-data API.
//
// Only the datapoints endpoint is needed: the latest datapoint's daystamp
// tells whether a reminder email has already been answered.
//
//	client := beeminder.NewClient(token)
//	points, err := client.Datapoints(ctx, "alice", "weight")
//
// Non-2xx answers are reported as *APIError; transport and JSON errors are
// wrapped. All of them are distinguishable with errors.As / errors.Is.
package beeminder
