package enums

import "fmt"

// Genre is the fixed list of book genres accepted at submission.
type Genre string

const (
	GenreFiction        Genre = "fiction"
	GenreNonFiction     Genre = "non_fiction"
	GenreMystery        Genre = "mystery"
	GenreThriller       Genre = "thriller"
	GenreRomance        Genre = "romance"
	GenreScienceFiction Genre = "science_fiction"
	GenreFantasy        Genre = "fantasy"
	GenreHorror         Genre = "horror"
	GenreBiography      Genre = "biography"
	GenreSelfHelp       Genre = "self_help"
	GenreChildren       Genre = "children"
	GenreYoungAdult     Genre = "young_adult"
	GenreBusiness       Genre = "business"
	GenreHistory        Genre = "history"
	GenrePoetry         Genre = "poetry"
)

var validGenres = []Genre{
	GenreFiction,
	GenreNonFiction,
	GenreMystery,
	GenreThriller,
	GenreRomance,
	GenreScienceFiction,
	GenreFantasy,
	GenreHorror,
	GenreBiography,
	GenreSelfHelp,
	GenreChildren,
	GenreYoungAdult,
	GenreBusiness,
	GenreHistory,
	GenrePoetry,
}

// String implements fmt.Stringer.
func (g Genre) String() string {
	return string(g)
}

// IsValid reports whether the value is a known Genre.
func (g Genre) IsValid() bool {
	for _, candidate := range validGenres {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGenre converts raw input into a Genre.
func ParseGenre(value string) (Genre, error) {
	for _, candidate := range validGenres {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid genre %q", value)
}
