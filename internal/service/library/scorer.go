package library

import (
	"github.com/google/uuid"

	"github.com/mkovalev/mybooks-backend/internal/domain"
)

const (
	coverBonus       = 10
	qualityBonus     = 5
	qualityThreshold = 8
)

// PickPrimaryEdition deterministically selects the edition to show for a
// work. An edition the user owns always wins, regardless of score; otherwise
// the highest-scoring candidate wins and ties keep the earliest input
// position. Returns nil only for an empty candidate list.
func PickPrimaryEdition(editions []*domain.Edition, ownedEditionID *uuid.UUID) *domain.Edition {
	if ownedEditionID != nil {
		for _, e := range editions {
			if e.ID == *ownedEditionID {
				return e
			}
		}
	}

	var best *domain.Edition
	bestScore := 0
	for _, e := range editions {
		if s := score(e); best == nil || s > bestScore {
			best = e
			bestScore = s
		}
	}
	return best
}

func score(e *domain.Edition) int {
	s := 0
	if e.CoverURL != "" {
		s += coverBonus
	}
	s += formatBonus(e.Format)
	s += recencyBonus(e.PubYear)
	if e.Quality >= qualityThreshold {
		s += qualityBonus
	}
	return s
}

func formatBonus(f domain.EditionFormat) int {
	switch f {
	case domain.FormatHardcover:
		return 3
	case domain.FormatPaperback, domain.FormatEbook:
		return 2
	case domain.FormatAudiobook:
		return 1
	}
	return 0
}

// recencyBonus grows by one point per decade since 1900. A missing year
// contributes nothing; it is never an error.
func recencyBonus(year *int) int {
	if year == nil {
		return 0
	}
	b := (*year - 1900) / 10
	if b < 0 {
		return 0
	}
	return b
}
