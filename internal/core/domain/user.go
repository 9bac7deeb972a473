package domain

import "time"

type User struct {
	Username  string    `db:"username"`
	Password  string    `db:"password"` // bcrypt hashed
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func NewUser(username, hashedPassword, email string) *User {
	now := time.Now()
	return &User{
		Username:  username,
		Password:  hashedPassword,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
