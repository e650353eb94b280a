package models

// Role decides which mutations a user may perform.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Accounts are the built-in users the app can sign in as.
func Accounts() []User {
	return []User{
		{ID: "admin-1", Name: "Site Manager", Email: "admin@contractor.com", Role: RoleAdmin},
		{ID: "user-1", Name: "Field Agent", Email: "agent@contractor.com", Role: RoleUser},
	}
}

// FindAccount matches by id or email.
func FindAccount(idOrEmail string) (User, bool) {
	for _, u := range Accounts() {
		if u.ID == idOrEmail || u.Email == idOrEmail {
			return u, true
		}
	}
	return User{}, false
}
