package users

import (
	"fmt"
	"slices"
	"strings"
)

// Field names a searchable and sortable user attribute.
type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
)

// ParseField accepts "name" or "email".
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(s)); f {
	case FieldName, FieldEmail:
		return f, nil
	default:
		return "", fmt.Errorf("users: unknown field %q (want name or email)", s)
	}
}

func (f Field) value(u User) string {
	switch f {
	case FieldEmail:
		return u.Email
	default:
		return u.Name
	}
}

// Direction is a sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortConfig is the active sort column and order.
type SortConfig struct {
	Key       Field
	Direction Direction
}

// Toggle returns the config after selecting key: the same key flips from
// ascending to descending, anything else starts ascending.
func (c SortConfig) Toggle(key Field) SortConfig {
	if c.Key == key && c.Direction == Ascending {
		return SortConfig{Key: key, Direction: Descending}
	}
	return SortConfig{Key: key, Direction: Ascending}
}

// Filter returns the users whose field contains text, ignoring case. An empty
// text matches every user.
func Filter(users []User, field Field, text string) []User {
	if text == "" {
		return slices.Clone(users)
	}

	needle := strings.ToLower(text)
	out := make([]User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(field.value(u)), needle) {
			out = append(out, u)
		}
	}
	return out
}

// Sort returns a sorted copy of users. Comparison ignores case and users
// with an empty key value go last in either direction.
func Sort(users []User, cfg SortConfig) []User {
	out := slices.Clone(users)
	slices.SortStableFunc(out, func(a, b User) int {
		av, bv := strings.ToLower(cfg.Key.value(a)), strings.ToLower(cfg.Key.value(b))
		switch {
		case av == bv:
			return 0
		case av == "":
			return 1
		case bv == "":
			return -1
		}
		c := strings.Compare(av, bv)
		if cfg.Direction == Descending {
			return -c
		}
		return c
	})
	return out
}

// View is the search and sort state of a list screen.
type View struct {
	SearchBy Field
	Query    string
	Sort     SortConfig
}

// DefaultView searches by name with no query, sorted by name ascending.
func DefaultView() View {
	return View{
		SearchBy: FieldName,
		Sort:     SortConfig{Key: FieldName, Direction: Ascending},
	}
}

// Apply filters users by the query and then sorts the result.
func (v View) Apply(users []User) []User {
	return Sort(Filter(users, v.SearchBy, v.Query), v.Sort)
}

// Reset clears the query and returns to the default view.
func (v View) Reset() View {
	return DefaultView()
}
