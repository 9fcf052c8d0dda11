// Package users registers accounts and checks their credentials.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"noteful/internal/apperr"
	"noteful/internal/auth"
	"noteful/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the stored account. Password holds the bcrypt digest only.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	FullName string             `bson:"full_name,omitempty"`
	Username string             `bson:"username"`
	Password string             `bson:"password"`
}

// UserView never carries the password digest.
type UserView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
}

func ToView(u *User) *UserView {
	return &UserView{ID: u.ID.Hex(), Username: u.Username, FullName: u.FullName}
}

// Registration is a validated sign-up request.
type Registration struct {
	FullName string
	Username string
	Password string
}

// RegisterRequest is the sign-up body. Pointers tell a missing field apart
// from an empty one. bcrypt ignores password bytes past 72.
type RegisterRequest struct {
	FullName *string `json:"fullName"`
	Username *string `json:"username" validate:"required,trimmed,min=1"`
	Password *string `json:"password" validate:"required,trimmed,min=8,max=72"`
}

// Registration validates the request and returns its values.
func (req RegisterRequest) Registration() (Registration, error) {
	if err := validation.Struct(req); err != nil {
		return Registration{}, err
	}
	reg := Registration{Username: *req.Username, Password: *req.Password}
	if req.FullName != nil {
		reg.FullName = strings.TrimSpace(*req.FullName)
	}
	return reg, nil
}

type Store interface {
	Insert(ctx context.Context, u *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
}

type Service struct {
	store  Store
	hasher auth.PasswordHasher
}

func NewService(store Store, hasher auth.PasswordHasher) *Service {
	return &Service{store: store, hasher: hasher}
}

// Register stores a new account. A taken username yields apperr.ErrDuplicateName.
func (s *Service) Register(ctx context.Context, reg Registration) (*UserView, error) {
	digest, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return nil, err
	}
	u := &User{FullName: reg.FullName, Username: reg.Username, Password: digest}
	if err := s.store.Insert(ctx, u); err != nil {
		return nil, err
	}
	return ToView(u), nil
}

// Authenticate implements auth.Authenticator.
func (s *Service) Authenticate(ctx context.Context, username, password string) (auth.Principal, error) {
	u, err := s.store.FindByUsername(ctx, username)
	if errors.Is(err, apperr.ErrNotFound) {
		return auth.Principal{}, fmt.Errorf("%w: incorrect username or password", apperr.ErrUnauthorized)
	}
	if err != nil {
		return auth.Principal{}, err
	}
	if !s.hasher.Compare(password, u.Password) {
		return auth.Principal{}, fmt.Errorf("%w: incorrect username or password", apperr.ErrUnauthorized)
	}
	return auth.Principal{ID: u.ID, Username: u.Username, FullName: u.FullName}, nil
}
