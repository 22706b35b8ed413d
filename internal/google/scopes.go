package google

import gmail "google.golang.org/api/gmail/v1"

// DefaultOAuthScopes are the Google OAuth scopes beefewer asks for. Archiving
// only needs to read headers and change labels.
var DefaultOAuthScopes = []string{
	gmail.GmailModifyScope,
}
