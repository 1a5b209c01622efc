package scoring

import (
	"math"

	"github.com/okian/gigmatch/internal/domain/model"
)

// DefaultGenrePenalty weighs genres held by only one side.
const DefaultGenrePenalty = 0.2

// tagSet holds normalized, de-duplicated tags.
type tagSet map[string]struct{}

func newTagSet(tags []string) tagSet {
	set := make(tagSet, len(tags))
	for _, t := range tags {
		if n := normalizeTag(t); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// GenreAffinity scores one participant: shared genres minus penalty times
// the genres unique to either side.
func GenreAffinity(userGenres, participantGenres []string, penalty float64) float64 {
	return genreAffinity(newTagSet(userGenres), newTagSet(participantGenres), penalty)
}

func genreAffinity(user, other tagSet, penalty float64) float64 {
	shared := 0
	for g := range other {
		if _, ok := user[g]; ok {
			shared++
		}
	}
	unique := len(user) + len(other) - 2*shared
	return float64(shared) - penalty*float64(unique)
}

// GenreOverlap averages GenreAffinity over participants, 0 for none.
func GenreOverlap(userGenres []string, participants []model.Participant, penalty float64) float64 {
	if len(participants) == 0 {
		return 0
	}
	user := newTagSet(userGenres)
	var sum float64
	for _, p := range participants {
		sum += genreAffinity(user, newTagSet(p.Genres), penalty)
	}
	return sum / float64(len(participants))
}

// InstrumentAffinity averages the table weight of every viewer/participant
// instrument pair present in the table, 0 when no pair is.
func InstrumentAffinity(userInstruments, participantInstruments []string) float64 {
	var sum float64
	pairs := 0
	for _, mine := range userInstruments {
		for _, theirs := range participantInstruments {
			if w, ok := Compatibility(mine, theirs); ok {
				sum += w
				pairs++
			}
		}
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}

// InstrumentOverlap averages InstrumentAffinity over participants, 0 for none.
func InstrumentOverlap(userInstruments []string, participants []model.Participant) float64 {
	if len(participants) == 0 {
		return 0
	}
	var sum float64
	for _, p := range participants {
		sum += InstrumentAffinity(userInstruments, p.Instruments)
	}
	return sum / float64(len(participants))
}

// HistoryAffinity is sqrt(shared / max(|participant history|, |user events|))
// with both sides compared as id sets. It is 0 when both are empty.
func HistoryAffinity(userEvents, participantHistory []string) float64 {
	return historyAffinity(newIDSet(userEvents), newIDSet(participantHistory))
}

func historyAffinity(user, other map[string]struct{}) float64 {
	denom := max(len(user), len(other))
	if denom == 0 {
		return 0
	}
	shared := 0
	for id := range other {
		if _, ok := user[id]; ok {
			shared++
		}
	}
	return math.Sqrt(float64(shared) / float64(denom))
}

func newIDSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}
