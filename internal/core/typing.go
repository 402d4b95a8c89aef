package core

// TypingNames derives the advisory "who is typing" set from a registry
// snapshot. Order follows the snapshot and carries no meaning.
func TypingNames(snapshot []Presence) []string {
	names := make([]string, 0, len(snapshot))
	for _, p := range snapshot {
		if p.Typing {
			names = append(names, p.DisplayName)
		}
	}
	return names
}
