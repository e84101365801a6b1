package users

import (
	"context"
)

// UserReader exposes the list state of the user collection
type UserReader interface {
	Users() []User
	Loading() bool
	Err() error
	Mutations() MutationStatus
}

// UserWriter defines the mutations; each one is followed by a list refetch
type UserWriter interface {
	AddUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User, id string) error
	DeleteUser(ctx context.Context, id string) error
}

// UserManager is the full facade consumed by front ends
type UserManager interface {
	UserReader
	UserWriter
	Activate(ctx context.Context) error
	Refresh(ctx context.Context) error
}
