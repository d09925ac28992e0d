package resolver

import (
	"log/slog"

	"github.com/mkovalev/mybooks-backend/internal/domain"
)

// Works builds the resolver for canonical works.
func Works(logger *slog.Logger, store Store[*domain.Work], cache Cache) *Resolver[*domain.Work, domain.WorkRecord] {
	return New(logger, domain.EntityKindWork, store, cache,
		domain.NewWorkFromRecord,
		func(w *domain.Work, rec domain.WorkRecord) { w.ApplyRecord(rec) },
	)
}

// Editions builds the resolver for canonical editions.
func Editions(logger *slog.Logger, store Store[*domain.Edition], cache Cache) *Resolver[*domain.Edition, domain.EditionRecord] {
	return New(logger, domain.EntityKindEdition, store, cache,
		domain.NewEditionFromRecord,
		func(e *domain.Edition, rec domain.EditionRecord) { e.ApplyRecord(rec) },
	)
}

// Authors builds the resolver for canonical authors.
func Authors(logger *slog.Logger, store Store[*domain.Author], cache Cache) *Resolver[*domain.Author, domain.AuthorRecord] {
	return New(logger, domain.EntityKindAuthor, store, cache,
		domain.NewAuthorFromRecord,
		func(a *domain.Author, rec domain.AuthorRecord) { a.ApplyRecord(rec) },
	)
}
