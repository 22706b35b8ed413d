// Package google_tools provides MCP tools for Google OAuth authentication.
//
// The OAuth flow:
//  1. A beeminder tool reports that the account has no token
//  2. Call google_get_auth_url to get the authorization URL
//  3. The user visits the URL, authorizes access and copies the code
//  4. Call google_save_auth_code with the code to save the token
//
// The saved token is refreshed automatically.
package google_tools
