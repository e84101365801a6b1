package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/userdesk/userdesk/internal/api"
)

const collectionPath = "/users"

// Compile-time interface check.
var _ UserManager = (*Store)(nil)

// RefetchPolicy decides whether a failed mutation is followed by a list refetch.
type RefetchPolicy int

const (
	// RefetchAlways refetches after every mutation, whatever its outcome.
	RefetchAlways RefetchPolicy = iota
	// RefetchOnSuccess refetches only after a mutation the server accepted.
	RefetchOnSuccess
)

func (p RefetchPolicy) String() string {
	switch p {
	case RefetchAlways:
		return "always"
	case RefetchOnSuccess:
		return "on_success"
	default:
		return fmt.Sprintf("RefetchPolicy(%d)", int(p))
	}
}

// ParseRefetchPolicy accepts "always" or "on_success".
func ParseRefetchPolicy(s string) (RefetchPolicy, error) {
	switch s {
	case "always":
		return RefetchAlways, nil
	case "on_success":
		return RefetchOnSuccess, nil
	default:
		return 0, fmt.Errorf("users: unknown refetch policy %q", s)
	}
}

// Store is the read/write facade over the remote user collection. It owns one
// executor per operation and never edits the list locally: after every
// mutation the list is read again from the server.
//
// A Store is safe for concurrent use. Overlapping mutations are not
// serialized; the list executor commits only the most recently issued fetch.
type Store struct {
	list   *api.Executor[ListResponse]
	create *api.Executor[User]
	update *api.Executor[User]
	remove *api.Executor[struct{}]

	policy    RefetchPolicy
	logger    *zap.Logger
	activated atomic.Bool
}

// Option configures a Store.
type Option func(*Store)

// WithRefetchPolicy selects what happens after a failed mutation.
func WithRefetchPolicy(p RefetchPolicy) Option {
	return func(s *Store) {
		s.policy = p
	}
}

// WithLogger sets the logger used to report failed calls.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore wires the four executors to client. It issues no request; call
// Activate to load the list.
func NewStore(client *api.Client, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, ErrNotConfigured
	}

	s := &Store{
		list:   api.NewExecutor[ListResponse](client),
		create: api.NewExecutor[User](client),
		update: api.NewExecutor[User](client),
		remove: api.NewExecutor[struct{}](client),
		policy: RefetchAlways,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) configured() bool {
	return s != nil && s.list != nil
}

// Activate performs the initial list fetch. Only the first call issues a
// request; later calls return nil immediately.
func (s *Store) Activate(ctx context.Context) error {
	if !s.configured() {
		return ErrNotConfigured
	}
	if !s.activated.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("Failed to fetch users", zap.Error(err))
		return err
	}
	return nil
}

// Refresh reads the list from the server.
func (s *Store) Refresh(ctx context.Context) error {
	if !s.configured() {
		return ErrNotConfigured
	}
	return s.list.Trigger(ctx, collectionPath, http.MethodGet, nil)
}

// AddUser creates user on the server and then refetches the list.
func (s *Store) AddUser(ctx context.Context, user User) error {
	if !s.configured() {
		return ErrNotConfigured
	}
	if user.ID != "" {
		return ErrIDAssigned
	}
	if err := user.Validate(); err != nil {
		return err
	}

	return s.mutate(ctx, "add user", func() error {
		return s.create.Trigger(ctx, collectionPath, http.MethodPost, user)
	})
}

// UpdateUser patches the user identified by id and then refetches the list.
func (s *Store) UpdateUser(ctx context.Context, user User, id string) error {
	if !s.configured() {
		return ErrNotConfigured
	}
	if id == "" {
		return ErrMissingID
	}
	if err := user.ValidatePartial(); err != nil {
		return err
	}

	return s.mutate(ctx, "update user", func() error {
		return s.update.Trigger(ctx, userPath(id), http.MethodPatch, user)
	})
}

// DeleteUser removes the user identified by id and then refetches the list.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if !s.configured() {
		return ErrNotConfigured
	}
	if id == "" {
		return ErrMissingID
	}

	return s.mutate(ctx, "delete user", func() error {
		return s.remove.Trigger(ctx, userPath(id), http.MethodDelete, nil)
	})
}

// mutate runs call to completion, then refetches according to the policy.
// The refetch is never issued before call has settled.
func (s *Store) mutate(ctx context.Context, op string, call func() error) error {
	err := call()
	if err != nil {
		s.logger.Error("Failed to "+op, zap.Error(err))
		if s.policy == RefetchOnSuccess {
			return err
		}
	}

	if refetchErr := s.Refresh(ctx); refetchErr != nil {
		s.logger.Error("Failed to refetch users", zap.String("after", op), zap.Error(refetchErr))
		return errors.Join(err, refetchErr)
	}
	return err
}

// Users returns a copy of the list from the latest committed fetch, or nil if
// none has completed.
func (s *Store) Users() []User {
	if !s.configured() {
		return nil
	}
	data := s.list.Data()
	if data == nil {
		return nil
	}
	return slices.Clone(data.Users)
}

// Loading reports whether the list fetch is in flight. Mutations are not
// reflected here; see Mutations.
func (s *Store) Loading() bool {
	if !s.configured() {
		return false
	}
	return s.list.Loading()
}

// Err returns the error of the latest list fetch.
func (s *Store) Err() error {
	if !s.configured() {
		return ErrNotConfigured
	}
	return s.list.Err()
}

// Mutations reports the state of the create, update and delete executors.
func (s *Store) Mutations() MutationStatus {
	if !s.configured() {
		return MutationStatus{}
	}
	c, u, d := s.create.State(), s.update.State(), s.remove.State()
	return MutationStatus{
		Creating:  c.Loading,
		Updating:  u.Loading,
		Deleting:  d.Loading,
		CreateErr: c.Err,
		UpdateErr: u.Err,
		DeleteErr: d.Err,
	}
}

// Policy returns the refetch policy in effect.
func (s *Store) Policy() RefetchPolicy {
	return s.policy
}

func userPath(id string) string {
	return collectionPath + "/" + url.PathEscape(id)
}
