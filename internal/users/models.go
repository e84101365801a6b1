package users

// User is a record of the remote user collection. ID is assigned by the
// server and is empty until the user has been created.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ListResponse is the body of GET /users.
type ListResponse struct {
	Users []User `json:"users"`
}

// MutationStatus reports the create, update and delete calls separately from
// the list, which Loading and Err on the store describe.
type MutationStatus struct {
	Creating  bool
	Updating  bool
	Deleting  bool
	CreateErr error
	UpdateErr error
	DeleteErr error
}

// InFlight reports whether any mutation is still running.
func (m MutationStatus) InFlight() bool {
	return m.Creating || m.Updating || m.Deleting
}
