package tui

import (
	"slices"

	"github.com/hay-kot/whatsnew/internal/core/theme"
)

// Stack holds the visible notification cards ordered by descending z-index
// and tracks which one has keyboard focus.
type Stack struct {
	cards []Notification
	focus int
}

// Push inserts a card after every card with an equal or higher z-index. The
// focused card keeps focus.
func (s *Stack) Push(n Notification) {
	i := 0
	for i < len(s.cards) && s.cards[i].ZIndex >= n.ZIndex {
		i++
	}
	s.cards = slices.Insert(s.cards, i, n)
	if len(s.cards) > 1 && i <= s.focus {
		s.focus++
	}
}

// Focused returns the card that key presses act on.
func (s *Stack) Focused() (Notification, bool) {
	if len(s.cards) == 0 {
		return Notification{}, false
	}
	return s.cards[s.focus], true
}

// FocusIndex returns the position of the focused card in Cards.
func (s *Stack) FocusIndex() int { return s.focus }

// Next moves focus to the next card, wrapping around.
func (s *Stack) Next() {
	if len(s.cards) > 0 {
		s.focus = (s.focus + 1) % len(s.cards)
	}
}

// Remove takes the focused card off the stack and returns it.
func (s *Stack) Remove() (Notification, bool) {
	n, ok := s.Focused()
	if !ok {
		return n, false
	}
	s.cards = slices.Delete(s.cards, s.focus, s.focus+1)
	if s.focus >= len(s.cards) {
		s.focus = 0
	}
	return n, true
}

// SetTheme applies a resolved theme to every card.
func (s *Stack) SetTheme(t theme.Theme) {
	for i := range s.cards {
		s.cards[i].Theme = t
	}
}

// Len returns the number of cards.
func (s *Stack) Len() int { return len(s.cards) }

// Cards returns the cards, highest z-index first.
func (s *Stack) Cards() []Notification { return s.cards }
