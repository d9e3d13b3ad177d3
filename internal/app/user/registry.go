package user

import (
	"sort"
	"strings"
	"sync"

	"relaychat/internal/pkg/errs"
)

// Registry is the single owner of all connected-user records.
// Rooms are not stored; a room is the set of users whose Room matches.
type Registry struct {
	// users maps connection id to its record.
	users map[string]User

	// nextSeq is the join sequence handed to the next added user.
	nextSeq uint64

	// mu makes add/remove/lookup atomic with respect to each other.
	mu sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]User),
	}
}

// AddUser validates and stores a new user for connectionID.
// Username and room are trimmed and kept in their original casing; uniqueness is checked
// on the case-folded forms. On failure the registry is left untouched.
func (r *Registry) AddUser(connectionID, rawUsername, rawRoom string) (User, *errs.CustomError) {
	username := strings.TrimSpace(rawUsername)
	room := strings.TrimSpace(rawRoom)

	if username == "" || room == "" {
		return User{}, errs.NewError(errs.ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[connectionID]; exists {
		return User{}, errs.NewError(errs.ErrAlreadyJoined)
	}

	nameKey := normalize(username)
	roomKey := normalize(room)
	for _, existing := range r.users {
		if normalize(existing.Room) == roomKey && normalize(existing.Username) == nameKey {
			return User{}, errs.NewError(errs.ErrDuplicateName)
		}
	}

	r.nextSeq++
	u := User{
		ID:       connectionID,
		Username: username,
		Room:     room,
		seq:      r.nextSeq,
	}
	r.users[connectionID] = u

	return u, nil
}

// RemoveUser deletes and returns the record for connectionID.
// The boolean is false when no such user exists; repeated calls are harmless.
func (r *Registry) RemoveUser(connectionID string) (User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[connectionID]
	if !ok {
		return User{}, false
	}
	delete(r.users, connectionID)

	return u, true
}

// GetUser looks up the record for connectionID.
func (r *Registry) GetUser(connectionID string) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[connectionID]
	return u, ok
}

// GetUsersInRoom returns every user in room (case-insensitive), ordered by join sequence.
func (r *Registry) GetUsersInRoom(room string) []User {
	roomKey := normalize(room)

	r.mu.RLock()
	members := make([]User, 0)
	for _, u := range r.users {
		if normalize(u.Room) == roomKey {
			members = append(members, u)
		}
	}
	r.mu.RUnlock()

	sort.Slice(members, func(i, j int) bool {
		return members[i].seq < members[j].seq
	})

	return members
}

// Count returns the number of live users.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users)
}

// Clear removes every user and returns how many there were.
func (r *Registry) Clear() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.users)
	r.users = make(map[string]User)
	return n
}

// RoomCount returns the number of distinct non-empty rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make(map[string]struct{})
	for _, u := range r.users {
		rooms[normalize(u.Room)] = struct{}{}
	}
	return len(rooms)
}
