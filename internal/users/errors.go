package users

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotConfigured is returned by a Store that was not built with NewStore.
	ErrNotConfigured = errors.New("users: store is not configured, construct it with NewStore")
	// ErrMissingID is returned when an update or delete names no user.
	ErrMissingID = errors.New("users: id is required")
	// ErrIDAssigned is returned when a user passed to AddUser already has an ID.
	ErrIDAssigned = errors.New("users: id is assigned by the server")
)

// ValidationErrors maps a field name to the reason it was rejected.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, v[field]))
	}
	return "users: invalid user (" + strings.Join(parts, "; ") + ")"
}
