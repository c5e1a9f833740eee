package domain

// OMDBMovie is the subset of the OMDb title response that gets imported.
// OMDb encodes every value as a string and uses "N/A" for missing data.
type OMDBMovie struct {
	Title      any    `json:"Title"`
	Year       any    `json:"Year"`
	Genre      any    `json:"Genre"`
	IMDBRating any    `json:"imdbRating"`
	IMDBVotes  any    `json:"imdbVotes"`
	BoxOffice  any    `json:"BoxOffice"`
	IMDBID     string `json:"imdbID"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}
