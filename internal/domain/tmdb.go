package domain

// TMDBMovie is a movie as returned by the TMDB listing and detail endpoints.
// Fields are left untyped since TMDB occasionally returns nulls or strings
// where numbers are expected.
type TMDBMovie struct {
	ID          any `json:"id"`
	Title       any `json:"title"`
	ReleaseDate any `json:"release_date"`
	VoteAverage any `json:"vote_average"`
	Popularity  any `json:"popularity"`
	GenreIDs    any `json:"genre_ids"`
	// Genres is only present on /movie/{id}
	Genres any `json:"genres"`
}

type TMDBPage struct {
	Page         int         `json:"page"`
	Results      []TMDBMovie `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

type TMDBGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type TMDBGenreList struct {
	Genres []TMDBGenre `json:"genres"`
}
