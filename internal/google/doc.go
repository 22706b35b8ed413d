// Package google provides OAuth2 authentication and token storage for the
// Gmail API.
//
// Tokens are stored per account under the user cache directory
// (~/.cache/beefewer/google-<account>.token on Linux). The first run obtains
// one interactively: visit GetAuthURL, paste the code, SaveTokenForAccount.
package google
