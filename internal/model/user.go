package model

// User is a row of the users table. Rows are provisioned out-of-band; a
// NULL or empty PasswordHash marks an invited account that has not been
// activated yet.
type User struct {
	Email        string  `json:"email" gorm:"column:email;primaryKey;size:255"`
	PasswordHash *string `json:"-" gorm:"column:password_hash;size:255"`
	UserGroup    string  `json:"user_group" gorm:"column:user_group;size:100;not null;default:''"`
}

// TableName pins the table name used by the credential store.
func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the account has been activated.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != nil && *u.PasswordHash != ""
}

// Hash returns the stored hash, or "" for an invited account.
func (u *User) Hash() string {
	if u == nil || u.PasswordHash == nil {
		return ""
	}
	return *u.PasswordHash
}
