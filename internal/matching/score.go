// internal/matching/score.go
package matching

import (
	"math"

	"registry-matcher/internal/models"
)

// Each of the seven compared fields carries an equal share of the total.
const fieldWeight = 100.0 / 7.0

// Score compares a pending record against a reference record and returns
// the rounded per-field scores plus the overall confidence in [0, 100].
//
// The confidence is computed from the unrounded field scores and rounded
// once at the end; the FieldScores values are rounded independently for
// display. The two roundings can disagree by ±1 when summed by eye, which
// is the expected behavior of the scoring contract.
func Score(pending, reference models.CitizenRecord) (models.FieldScores, int) {
	last := Similarity(Normalize(pending.LastName), Normalize(reference.LastName))
	first := Similarity(Normalize(pending.FirstName), Normalize(reference.FirstName))
	middle := Similarity(NormalizePtr(pending.MiddleName), NormalizePtr(reference.MiddleName))
	extension := Similarity(NormalizePtr(pending.ExtensionName), NormalizePtr(reference.ExtensionName))

	month := exactMatch(pending.BirthDate.Month() == reference.BirthDate.Month())
	day := exactMatch(pending.BirthDate.Day() == reference.BirthDate.Day())
	year := exactMatch(pending.BirthDate.Year() == reference.BirthDate.Year())

	total := (last + first + middle + extension + month + day + year) * fieldWeight / 100.0
	confidence := int(math.Round(total))

	fields := models.FieldScores{
		LastName:      roundScore(last),
		FirstName:     roundScore(first),
		MiddleName:    roundScore(middle),
		ExtensionName: roundScore(extension),
		BirthMonth:    int(month),
		BirthDay:      int(day),
		BirthYear:     int(year),
	}
	fields.NameScore = roundScore(float64(fields.LastName+fields.FirstName+fields.MiddleName+fields.ExtensionName) / 4.0)
	fields.BirthDateScore = roundScore(float64(fields.BirthMonth+fields.BirthDay+fields.BirthYear) / 3.0)

	return fields, confidence
}

func exactMatch(equal bool) float64 {
	if equal {
		return 100
	}
	return 0
}

func roundScore(v float64) int {
	return int(math.Round(v))
}
