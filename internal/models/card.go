package models

import "strings"

// Card is one estimation subject together with its votes and the
// estimate the owner eventually accepted for it
type Card struct {
	Subject          string `json:"subject"`
	Description      string `json:"description,omitempty"`
	AcceptedEstimate string `json:"acceptedEstimate,omitempty"`
	// OriginalIndex is the card's position before any shuffle; results
	// are always reported in this order
	OriginalIndex int `json:"originalIndex"`
	// Votes is keyed by transport identity. Entries may transiently
	// reference a removed player; readers skip those instead of failing.
	Votes map[string]string `json:"-"`
}

// descriptionSeparator splits a question line into subject and
// optional description
const descriptionSeparator = "|"

// NewCardsFromText parses question text into cards, one per non-blank
// line. A line's first separator splits it into subject and description.
func NewCardsFromText(text string) []*Card {
	var cards []*Card
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		subject := line
		description := ""
		if i := strings.Index(line, descriptionSeparator); i >= 0 {
			subject = strings.TrimSpace(line[:i])
			description = strings.TrimSpace(line[i+len(descriptionSeparator):])
		}
		if subject == "" {
			continue
		}

		cards = append(cards, &Card{
			Subject:       subject,
			Description:   description,
			OriginalIndex: len(cards),
			Votes:         make(map[string]string),
		})
	}
	return cards
}

// ResetVotes clears all votes and the accepted estimate for a revote
func (c *Card) ResetVotes() {
	c.Votes = make(map[string]string)
	c.AcceptedEstimate = ""
}
