package models

import (
	"moviecatalog/proj/internal/domain/fields"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Account is a stored admin or user. PasswordHash and RefreshToken never leave the server.
type Account struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash []byte    `db:"password_hash"`
	Role         Role      `db:"role"`
	RefreshToken *string   `db:"refresh_token"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Safe returns the projection of the account that may be exposed to clients and signed into tokens.
func (a *Account) Safe() SafeUser {
	return SafeUser{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type SafeUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Principal is the authenticated actor attached to a request.
type Principal struct {
	ID       int64
	Username string
	Email    string
	Role     Role
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

type Movie struct {
	ID          int64       `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Director    string      `json:"director" db:"director"`
	ReleaseDate fields.Date `json:"release_date" db:"release_date"`
	Genre       string      `json:"genre" db:"genre"`
	Duration    int32       `json:"duration" db:"duration"` // minutes
	Synopsis    *string     `json:"synopsis" db:"synopsis"`
	Cast        string      `json:"cast" db:"cast"`
	Poster      *string     `json:"poster" db:"poster"` // relative reference served under /uploads
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

type ReviewAuthor struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type ReviewMovie struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Review struct {
	ID        int64         `json:"id"`
	Rating    float64       `json:"rating"`
	Review    string        `json:"review"`
	UserID    int64         `json:"userId"`
	MovieID   int64         `json:"movieId"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	User      *ReviewAuthor `json:"User,omitempty"`
	Movie     *ReviewMovie  `json:"Movie,omitempty"`
}

// MovieSortSafelist lists the movie columns a listing may be sorted by.
var MovieSortSafelist = []string{"id", "name", "release_date", "genre", "duration"}
