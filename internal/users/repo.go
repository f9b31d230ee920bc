package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/bookstore-storefront/internal/postgres"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AlreadyExistsError names the fields that collided with an existing user.
type AlreadyExistsError struct{ Fields []string }

func (e *AlreadyExistsError) Error() string {
	return "user already exists with this " + strings.Join(e.Fields, " and ")
}

const bcryptCost = 10

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"-"`
}

type Repo struct{ DB postgres.DB }

// Create registers a user. Email and phone must both be unused.
func (r *Repo) Create(ctx context.Context, name, email, phone, password string) (User, error) {
	rows, err := r.DB.Query(ctx, `SELECT email, phone FROM users WHERE email = $1 OR phone = $2`, email, phone)
	if err != nil {
		return User{}, err
	}
	var emailTaken, phoneTaken bool
	for rows.Next() {
		var e, p string
		if err := rows.Scan(&e, &p); err != nil {
			rows.Close()
			return User{}, err
		}
		emailTaken = emailTaken || e == email
		phoneTaken = phoneTaken || p == phone
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return User{}, err
	}
	if emailTaken || phoneTaken {
		return User{}, conflict(emailTaken, phoneTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	u := User{Name: name, Email: email, Phone: phone}
	err = r.DB.QueryRow(ctx, `
		INSERT INTO users(name, email, phone, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, name, email, phone, string(hash)).Scan(&u.ID, &u.CreatedAt)
	switch {
	case postgres.UniqueViolation(err, "users_email_key"):
		return User{}, conflict(true, false)
	case postgres.UniqueViolation(err, "users_phone_key"):
		return User{}, conflict(false, true)
	case err != nil:
		return User{}, err
	}
	return u, nil
}

// VerifyCredentials returns the user for a matching email and password.
func (r *Repo) VerifyCredentials(ctx context.Context, email, password string) (User, error) {
	var (
		u    User
		hash string
	)
	err := r.DB.QueryRow(ctx, `SELECT id, name, email, phone, password FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func conflict(email, phone bool) *AlreadyExistsError {
	e := &AlreadyExistsError{}
	if email {
		e.Fields = append(e.Fields, "email")
	}
	if phone {
		e.Fields = append(e.Fields, "phone")
	}
	return e
}
