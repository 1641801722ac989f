package types

// DefaultUserType is the role assigned when registration does not name one.
const DefaultUserType = "user"

// User represents an account in the system.
type User struct {
	// ID is derived from the creation time in epoch milliseconds.
	ID int64 `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// Email is the user's email address, unique across users.
	Email string `json:"email" db:"email"`

	// Password stores the bcrypt hash of the user's password.
	// It is persisted but never exposed in API responses; see Public.
	Password string `json:"password" db:"password_hash"`

	// UserType is a free-form role label such as "user" or "admin".
	UserType string `json:"userType" db:"user_type"`
}

// PublicUser is the API representation of a user.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserType string `json:"userType"`
}

// Public strips the password hash.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		UserType: u.UserType,
	}
}
