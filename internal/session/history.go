package session

// Visit records a fresh topic selection (search submission, link click,
// random pick). The departed topic, if any, is pushed onto the history
// stack and the future stack is cleared, matching standard browser
// diverging-history semantics.
func (s *Session) Visit(topic string) {
	if s.Topic != "" && s.Topic != topic {
		s.History = append(s.History, s.Topic)
	}
	s.Future = nil
	s.Topic = topic
	s.SectionIndex = 0
}

// Back navigates to the most recent history entry. The topic being left is
// pushed onto the future stack and the remote section index is reset.
// Returns false (no-op) when the history stack is empty.
func (s *Session) Back() bool {
	if len(s.History) == 0 {
		return false
	}
	prev := s.History[len(s.History)-1]
	s.History = s.History[:len(s.History)-1]
	if s.Topic != "" {
		s.Future = append(s.Future, s.Topic)
	}
	s.Topic = prev
	s.SectionIndex = 0
	return true
}

// Forward is the mirror of Back, using the future stack.
// Returns false (no-op) when the future stack is empty.
func (s *Session) Forward() bool {
	if len(s.Future) == 0 {
		return false
	}
	next := s.Future[len(s.Future)-1]
	s.Future = s.Future[:len(s.Future)-1]
	if s.Topic != "" {
		s.History = append(s.History, s.Topic)
	}
	s.Topic = next
	s.SectionIndex = 0
	return true
}
