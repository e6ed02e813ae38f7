package boxoffice

import "strings"

// Genre is a closed vocabulary of detail-service genres.
type Genre string

// Known genres.
const (
	GenreAction      Genre = "action"
	GenreAdventure   Genre = "adventure"
	GenreAnimation   Genre = "animation"
	GenreBiography   Genre = "biography"
	GenreComedy      Genre = "comedy"
	GenreCrime       Genre = "crime"
	GenreDocumentary Genre = "documentary"
	GenreDrama       Genre = "drama"
	GenreFamily      Genre = "family"
	GenreFantasy     Genre = "fantasy"
	GenreFilmNoir    Genre = "film_noir"
	GenreGameShow    Genre = "game_show"
	GenreHistory     Genre = "history"
	GenreHorror      Genre = "horror"
	GenreMusic       Genre = "music"
	GenreMusical     Genre = "musical"
	GenreMystery     Genre = "mystery"
	GenreNews        Genre = "news"
	GenreRealityTV   Genre = "reality_tv"
	GenreRomance     Genre = "romance"
	GenreSciFi       Genre = "sci_fi"
	GenreSport       Genre = "sport"
	GenreTalkShow    Genre = "talk_show"
	GenreThriller    Genre = "thriller"
	GenreWar         Genre = "war"
	GenreWestern     Genre = "western"
)

var genreLabels = map[Genre]string{
	GenreAction:      "Action",
	GenreAdventure:   "Adventure",
	GenreAnimation:   "Animation",
	GenreBiography:   "Biography",
	GenreComedy:      "Comedy",
	GenreCrime:       "Crime",
	GenreDocumentary: "Documentary",
	GenreDrama:       "Drama",
	GenreFamily:      "Family",
	GenreFantasy:     "Fantasy",
	GenreFilmNoir:    "Film-Noir",
	GenreGameShow:    "Game-Show",
	GenreHistory:     "History",
	GenreHorror:      "Horror",
	GenreMusic:       "Music",
	GenreMusical:     "Musical",
	GenreMystery:     "Mystery",
	GenreNews:        "News",
	GenreRealityTV:   "Reality-TV",
	GenreRomance:     "Romance",
	GenreSciFi:       "Sci-Fi",
	GenreSport:       "Sport",
	GenreTalkShow:    "Talk-Show",
	GenreThriller:    "Thriller",
	GenreWar:         "War",
	GenreWestern:     "Western",
}

var genresByLabel = invert(genreLabels)

// Genres returns every known genre.
func Genres() []Genre {
	out := make([]Genre, 0, len(genreLabels))
	for g := range genreLabels {
		out = append(out, g)
	}
	return out
}

// Label returns the display label, or "" for an unknown value.
func (g Genre) Label() string {
	return genreLabels[g]
}

// ParseGenre maps a display label back to its Genre.
func ParseGenre(label string) (Genre, bool) {
	g, ok := genresByLabel[normalizeLabel(label)]
	return g, ok
}

func invert[K comparable](labels map[K]string) map[string]K {
	out := make(map[string]K, len(labels))
	for k, label := range labels {
		out[normalizeLabel(label)] = k
	}
	return out
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
