// Package storage persists per-chat moderation state (lock lists, welcome
// text, privacy flags, member rosters) in a JSON file datastore with
// auto-save and backups.
package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/keshon/datastore"
)

const rosterLimit = 2000

type Storage struct {
	mu sync.Mutex
	ds *datastore.DataStore
}

// LockRecord describes one locked user in a chat.
type LockRecord struct {
	UserID   int64     `json:"user_id"`
	Reason   string    `json:"reason"`
	LockedAt time.Time `json:"locked_at"`
}

// RosterEntry remembers a member the bot has seen in a chat. The Bot API
// cannot enumerate chat members, so the mass-mention feature works off
// this observed roster.
type RosterEntry struct {
	UserID   int64     `json:"user_id"`
	Username string    `json:"username"`
	SeenAt   time.Time `json:"seen_at"`
}

// Record is the unit of persistence, one per chat.
type Record struct {
	Locks   map[string]LockRecord  `json:"locks"`
	Welcome string                 `json:"welcome"`
	Silent  bool                   `json:"silent"`
	Roster  map[string]RosterEntry `json:"roster"`
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// getOrCreateChatRecord loads a chat's record, creating an empty one on
// first touch. Callers must hold s.mu.
func (s *Storage) getOrCreateChatRecord(chatID int64) (*Record, error) {
	data, exists := s.ds.Get(chatKey(chatID))
	if !exists {
		record := &Record{
			Locks:  map[string]LockRecord{},
			Roster: map[string]RosterEntry{},
		}
		s.ds.Add(chatKey(chatID), record)
		return record, nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("error marshalling data: %w", err)
	}

	var record Record
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("error unmarshalling to *Record: %w", err)
	}

	if record.Locks == nil {
		record.Locks = map[string]LockRecord{}
	}
	if record.Roster == nil {
		record.Roster = map[string]RosterEntry{}
	}
	return &record, nil
}

// LockUser adds a user to a chat's lock list.
func (s *Storage) LockUser(chatID, userID int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateChatRecord(chatID)
	if err != nil {
		return err
	}
	record.Locks[chatKey(userID)] = LockRecord{
		UserID:   userID,
		Reason:   reason,
		LockedAt: time.Now(),
	}
	s.ds.Add(chatKey(chatID), record)
	return nil
}

// UnlockUser removes a user from a chat's lock list, reporting whether
// they were present.
func (s *Storage) UnlockUser(chatID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateChatRecord(chatID)
	if err != nil {
		return false, err
	}
	if _, ok := record.Locks[chatKey(userID)]; !ok {
		return false, nil
	}
	delete(record.Locks, chatKey(userID))
	s.ds.Add(chatKey(chatID), record)
	return true, nil
}

// IsLocked reports whether a user is on a chat's lock list.
func (s *Storage) IsLocked(chatID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateChatRecord(chatID)
	if err != nil {
		return false, err
	}
	_, ok := record.Locks[chatKey(userID)]
	return ok, nil
}

// LockedUsers returns a chat's lock list.
func (s *Storage) LockedUsers(chatID int64) ([]LockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateChatRecord(chatID)
	if err != nil {
		return nil, err
	}
	locks := make([]LockRecord, 0, len(record.Locks))
	for _, l := range record.Locks {
		locks = append(locks, l)
	}
	return locks, nil
}

// SetWelcome stores a chat's welcome text. Empty text clears it.
func (s *Storage) SetWelcome(chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateChatRecord(chatID)
	if err != nil {
		return err
	}
	record.Welcome = text
	s.ds.Add(chatKey(chatID), record)
	return nil
}

// Welcome returns a chat's welcome text, empty if unset.
func (s *Storage) Welcome(chatID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateChatRecord(chatID)
	if err != nil {
		return "", err
	}
	return record.Welcome, nil
}

// SetSilent flags a chat for silent (private-reply) operation.
func (s *Storage) SetSilent(chatID int64, silent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateChatRecord(chatID)
	if err != nil {
		return err
	}
	record.Silent = silent
	s.ds.Add(chatKey(chatID), record)
	return nil
}

// IsSilent reports whether a chat runs in silent mode.
func (s *Storage) IsSilent(chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateChatRecord(chatID)
	if err != nil {
		return false, err
	}
	return record.Silent, nil
}

// RememberMember records a member sighting for the mass-mention roster.
func (s *Storage) RememberMember(chatID, userID int64, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateChatRecord(chatID)
	if err != nil {
		return err
	}
	if len(record.Roster) >= rosterLimit {
		if _, known := record.Roster[chatKey(userID)]; !known {
			return nil
		}
	}
	record.Roster[chatKey(userID)] = RosterEntry{
		UserID:   userID,
		Username: username,
		SeenAt:   time.Now(),
	}
	s.ds.Add(chatKey(chatID), record)
	return nil
}

// ForgetMember drops a member from the roster, e.g. after they leave.
func (s *Storage) ForgetMember(chatID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateChatRecord(chatID)
	if err != nil {
		return err
	}
	delete(record.Roster, chatKey(userID))
	s.ds.Add(chatKey(chatID), record)
	return nil
}

// Members returns the observed roster of a chat.
func (s *Storage) Members(chatID int64) ([]RosterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateChatRecord(chatID)
	if err != nil {
		return nil, err
	}
	members := make([]RosterEntry, 0, len(record.Roster))
	for _, m := range record.Roster {
		members = append(members, m)
	}
	return members, nil
}
