// Package normalize converts loosely typed source fields into typed values.
// Conversions never fail: a value that cannot be converted degrades to the
// supplied fallback and the problem is logged.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/varoOP/moviedb/internal/domain"
)

// DefaultTitle is stored when a source record has no usable title
const DefaultTitle = "Unknown"

var (
	yearPattern = regexp.MustCompile(`^\d{4}`)
	errInvalid  = errors.New("invalid value")
)

type Normalizer struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Normalizer {
	return &Normalizer{
		log: log.With().Str("module", "normalize").Logger(),
	}
}

func (n *Normalizer) withTitle(title string) *Normalizer {
	return &Normalizer{log: n.log.With().Str("title", title).Logger()}
}

// Int converts v to an int, returning fallback for missing or non-numeric input
func (n *Normalizer) Int(field string, v any, fallback int) int {
	i, err := toInt(v)
	if err != nil {
		n.warn(field, v, fallback)
		return fallback
	}

	return i
}

// Float converts v to a float64, returning fallback for missing or non-numeric input
func (n *Normalizer) Float(field string, v any, fallback float64) float64 {
	if isMissing(v) || isBool(v) {
		n.warn(field, v, fallback)
		return fallback
	}

	f, err := toFloat(v)
	if err != nil {
		n.warn(field, v, fallback)
		return fallback
	}

	return f
}

// String converts v to a trimmed string, returning fallback when it is empty
func (n *Normalizer) String(field string, v any, fallback string) string {
	if isMissing(v) || isBool(v) {
		n.warn(field, v, fallback)
		return fallback
	}

	s, err := cast.ToStringE(v)
	if err != nil || strings.TrimSpace(s) == "" {
		n.warn(field, v, fallback)
		return fallback
	}

	return strings.TrimSpace(s)
}

// Year extracts the leading four digit year from a date such as 2021-10-01,
// 2021 or 2010–2014. Empty input returns fallback without logging, malformed
// input returns fallback with a warning. A nil fallback keeps the year unknown.
func (n *Normalizer) Year(field string, v any, fallback *int) *int {
	if isMissing(v) {
		return fallback
	}

	s, err := cast.ToStringE(v)
	if err != nil || isBool(v) {
		n.warn(field, v, fallback)
		return fallback
	}

	match := yearPattern.FindString(strings.TrimSpace(s))
	if match == "" {
		n.warn(field, v, fallback)
		return fallback
	}

	year, err := strconv.Atoi(match)
	if err != nil {
		n.warn(field, v, fallback)
		return fallback
	}

	return &year
}

// IntList converts a JSON array into ints. Anything that is not a list
// returns an empty, non-nil slice; unconvertible elements are dropped.
func (n *Normalizer) IntList(field string, v any) []int {
	switch items := v.(type) {
	case []int:
		return append([]int{}, items...)
	case []any:
		out := make([]int, 0, len(items))
		for _, item := range items {
			i, err := toInt(item)
			if err != nil {
				n.warn(field, item, "skipped")
				continue
			}
			out = append(out, i)
		}
		return out
	default:
		n.log.Warn().Str("field", field).Interface("value", v).Msg("invalid or missing list, using empty list")
		return []int{}
	}
}

// StringList splits a comma separated string (or converts a JSON array of
// strings) into trimmed non-empty values. Missing input returns an empty slice.
func (n *Normalizer) StringList(field string, v any) []string {
	var parts []string
	switch items := v.(type) {
	case string:
		parts = strings.Split(items, ",")
	case []string:
		parts = items
	case []any:
		for _, item := range items {
			s, err := cast.ToStringE(item)
			if err != nil {
				n.warn(field, item, "skipped")
				continue
			}
			parts = append(parts, s)
		}
	default:
		if v != nil {
			n.log.Warn().Str("field", field).Interface("value", v).Msg("invalid list, using empty list")
		}
		return []string{}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || strings.EqualFold(p, "N/A") {
			continue
		}
		out = append(out, p)
	}

	return out
}

// Money parses amounts such as "$292,587,330" into whole units
func (n *Normalizer) Money(field string, v any, fallback int64) int64 {
	if isMissing(v) || isBool(v) {
		n.warn(field, v, fallback)
		return fallback
	}

	if s, ok := v.(string); ok {
		v = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	}

	f, err := toFloat(v)
	if err != nil || f < 0 || f >= math.MaxInt64 {
		n.warn(field, v, fallback)
		return fallback
	}

	return int64(f)
}

// TMDB normalizes a TMDB listing or detail record
func (n *Normalizer) TMDB(raw domain.TMDBMovie) domain.Record {
	title := n.String("title", raw.Title, DefaultTitle)
	m := n.withTitle(title)

	rec := domain.Record{
		Movie: domain.Movie{
			Title:       title,
			ReleaseYear: m.Year("release_date", raw.ReleaseDate, nil),
			VoteAverage: m.Float("vote_average", raw.VoteAverage, 0),
			Popularity:  m.Float("popularity", raw.Popularity, 0),
		},
	}

	if raw.GenreIDs == nil && raw.Genres != nil {
		rec.GenreIDs = m.genreObjectIDs(raw.Genres)
	} else {
		rec.GenreIDs = m.IntList("genre_ids", raw.GenreIDs)
	}

	return rec
}

// OMDB normalizes an OMDb title record. OMDb has no popularity figure.
func (n *Normalizer) OMDB(raw domain.OMDBMovie) domain.Record {
	title := n.String("Title", raw.Title, DefaultTitle)
	m := n.withTitle(title)

	return domain.Record{
		Movie: domain.Movie{
			Title:       title,
			ReleaseYear: m.Year("Year", raw.Year, nil),
			VoteAverage: m.Float("imdbRating", raw.IMDBRating, 0),
			BoxOffice:   m.Money("BoxOffice", raw.BoxOffice, 0),
		},
		GenreNames: m.StringList("Genre", raw.Genre),
	}
}

// genreObjectIDs reads ids out of a [{id, name}] list
func (n *Normalizer) genreObjectIDs(v any) []int {
	items, ok := v.([]any)
	if !ok {
		n.log.Warn().Str("field", "genres").Interface("value", v).Msg("invalid genres, using empty list")
		return []int{}
	}

	out := make([]int, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			n.warn("genres", item, "skipped")
			continue
		}
		id, err := toInt(obj["id"])
		if err != nil {
			n.warn("genres.id", obj["id"], "skipped")
			continue
		}
		out = append(out, id)
	}

	return out
}

func (n *Normalizer) warn(field string, v, fallback any) {
	n.log.Warn().
		Str("field", field).
		Interface("value", v).
		Interface("fallback", fallback).
		Msg("invalid value, using fallback")
}

func toInt(v any) (int, error) {
	if isMissing(v) || isBool(v) {
		return 0, errInvalid
	}

	if s, ok := v.(string); ok {
		return strconv.Atoi(strings.TrimSpace(s))
	}

	return cast.ToIntE(v)
}

// toFloat rejects NaN and the infinities, which strconv happily parses
func toFloat(v any) (float64, error) {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errInvalid
	}

	return f, nil
}

func isMissing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(t)
		return s == "" || strings.EqualFold(s, "N/A")
	}
	return false
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}
