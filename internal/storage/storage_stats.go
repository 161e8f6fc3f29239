package storage

// TrackedChats returns how many chats have a persisted record.
func (s *Storage) TrackedChats() int {
	return len(s.ds.Keys())
}
