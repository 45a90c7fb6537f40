package model

// Account is a registered identity. The ID is assigned by the store on
// creation and never changes afterwards. Usernames are matched
// case-sensitively, exactly as stored.
type Account struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Identity identifies the account a request is acting as.
type Identity struct {
	Username string `json:"username"`
}
