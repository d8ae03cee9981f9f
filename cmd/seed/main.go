// Package main provides a tool to seed the database with a starter catalog.
//
// It creates a small set of well-known children's books across the age
// brackets and fills the per-bracket recommendation snapshots, so a fresh
// install has something to recommend before the first CSV import.
//
// Usage:
//
//	STORE_PATH=~/.book-recommendation/store go run ./cmd/seed
//	STORE_PATH=~/.book-recommendation/store go run ./cmd/seed --reset-groups
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/largefullmoon/backend-book-recommendation/internal/domain"
	"github.com/largefullmoon/backend-book-recommendation/internal/id"
	"github.com/largefullmoon/backend-book-recommendation/internal/store"
)

var resetGroups = flag.Bool("reset-groups", false, "Rebuild age-group snapshots from the seeded catalog")

type seedBook struct {
	title       string
	author      string
	genres      []string
	minAge      int
	maxAge      int
	description string
	tags        []string
}

var starterCatalog = []seedBook{
	{"The Very Hungry Caterpillar", "Eric Carle", []string{"Picture Books"}, 2, 5,
		"A caterpillar eats his way through the week before becoming a butterfly.", []string{"classic", "animals"}},
	{"Where the Wild Things Are", "Maurice Sendak", []string{"Picture Books", "Fantasy"}, 4, 7,
		"Max sails to the land of the Wild Things and becomes their king.", []string{"classic", "imagination"}},
	{"Dog Man", "Dav Pilkey", []string{"Graphic Novels", "Humor"}, 6, 9,
		"A part-dog, part-man hero fights crime in this graphic novel series.", []string{"series", "humor"}},
	{"The Magic Tree House: Dinosaurs Before Dark", "Mary Pope Osborne", []string{"Adventure", "Fantasy"}, 6, 9,
		"Jack and Annie discover a tree house that whisks them back to the age of dinosaurs.", []string{"series", "time travel"}},
	{"Charlotte's Web", "E.B. White", []string{"Animals", "Classics"}, 7, 10,
		"A pig named Wilbur is saved by the cleverness of a spider named Charlotte.", []string{"classic", "friendship"}},
	{"The Wild Robot", "Peter Brown", []string{"Science Fiction", "Animals"}, 8, 11,
		"Robot Roz learns to survive on a remote island and befriends its animals.", []string{"series", "nature"}},
	{"Harry Potter and the Sorcerer's Stone", "J.K. Rowling", []string{"Fantasy", "Adventure"}, 8, 12,
		"An orphaned boy discovers he is a wizard and attends Hogwarts.", []string{"series", "magic"}},
	{"Percy Jackson: The Lightning Thief", "Rick Riordan", []string{"Fantasy", "Mythology"}, 9, 12,
		"Percy learns he is the son of Poseidon and sets out to prevent a war among the gods.", []string{"series", "mythology"}},
	{"Wonder", "R.J. Palacio", []string{"Realistic Fiction"}, 9, 13,
		"Auggie Pullman, born with a facial difference, starts mainstream school.", []string{"kindness", "school"}},
	{"The Hunger Games", "Suzanne Collins", []string{"Science Fiction", "Adventure"}, 12, 18,
		"Katniss volunteers to take her sister's place in a televised fight for survival.", []string{"series", "dystopia"}},
}

func main() {
	flag.Parse()

	storePath := os.Getenv("STORE_PATH")
	if storePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		storePath = filepath.Join(home, ".book-recommendation", "store")
	}

	fmt.Printf("Opening store at: %s\n", storePath)

	s, err := store.New(storePath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if err := s.EnsureAgeGroups(ctx); err != nil {
		log.Fatalf("Failed to initialize age groups: %v", err)
	}

	created := 0
	for _, sb := range starterCatalog {
		existing, err := s.GetBookByTitleAuthor(ctx, sb.title, sb.author)
		if err == nil && existing != nil {
			fmt.Printf("  skip %q (already present)\n", sb.title)
			continue
		}
		if err != nil && !errors.Is(err, store.ErrBookNotFound) {
			log.Fatalf("Failed to look up %q: %v", sb.title, err)
		}

		now := time.Now().UTC()
		book := &domain.Book{
			ID:          id.MustGenerate(id.PrefixBook),
			Title:       sb.title,
			Author:      sb.author,
			Genres:      sb.genres,
			AgeRange:    domain.AgeRange{Min: sb.minAge, Max: sb.maxAge},
			Description: sb.description,
			Tags:        sb.tags,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.CreateBook(ctx, book); err != nil {
			log.Fatalf("Failed to create %q: %v", sb.title, err)
		}
		fmt.Printf("  created %q (%s)\n", book.Title, book.ID)
		created++
	}

	fmt.Printf("Seeded %d new books\n", created)

	if *resetGroups {
		if err := rebuildAgeGroups(ctx, s); err != nil {
			log.Fatalf("Failed to rebuild age groups: %v", err)
		}
	}
}

// rebuildAgeGroups fills each bracket snapshot with every catalog book whose
// age range overlaps the bracket.
func rebuildAgeGroups(ctx context.Context, s *store.Store) error {
	books, err := s.ListBooks(ctx)
	if err != nil {
		return err
	}

	for _, bracket := range domain.DefaultAgeBrackets {
		var ids []string
		for _, book := range books {
			if overlaps(bracket, book.AgeRange) {
				ids = append(ids, book.ID)
			}
		}
		snapshot := domain.AgeGroupRecommendations{AgeGroup: bracket.Label, BookIDs: ids}
		if err := s.AgeGroups.Upsert(ctx, bracket.Label, &snapshot); err != nil {
			return err
		}
		fmt.Printf("  age group %s: %d books\n", bracket.Label, len(ids))
	}
	return nil
}

func overlaps(bracket domain.AgeBracket, r domain.AgeRange) bool {
	if r.Max < bracket.Min {
		return false
	}
	return bracket.Max < 0 || r.Min <= bracket.Max
}
