package common

// DefaultAccount is used when a request names no account.
const DefaultAccount = "default"

// GetAccountFromArgs extracts the account name from request arguments,
// falling back to DefaultAccount.
func GetAccountFromArgs(args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return DefaultAccount
}
