package google

import "context"

// TokenStore is the first-run authorization surface: check for a stored
// token, hand out the consent URL and exchange the code the user pastes back.
type TokenStore interface {
	HasTokenForAccount(account string) bool
	AuthURL(account string) (string, error)
	Exchange(ctx context.Context, account, code string) error
}

// FileTokenStore keeps tokens in the per-account files under the user cache dir.
type FileTokenStore struct{}

// NewFileTokenStore returns the file-backed TokenStore.
func NewFileTokenStore() *FileTokenStore {
	return &FileTokenStore{}
}

func (FileTokenStore) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}

func (FileTokenStore) AuthURL(account string) (string, error) {
	return GetAuthURL(account)
}

// Exchange trades code for a token and writes it to the account's file.
func (FileTokenStore) Exchange(ctx context.Context, account, code string) error {
	return SaveTokenForAccount(ctx, account, code)
}
