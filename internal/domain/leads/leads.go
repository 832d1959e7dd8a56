// Package leads normalises raw uploaded rows into distributable items.
package leads

import (
	"strings"

	"github.com/okian/leadsplit/internal/domain/model"
)

// Accepted header spellings, highest priority first.
var (
	FirstNameKeys = []string{"FirstName", "firstName", "firstname", "FIRSTNAME"}
	PhoneKeys     = []string{"Phone", "phone", "PHONE"}
	NotesKeys     = []string{"Notes", "notes", "NOTES"}
)

// Normalize resolves the first name, phone and notes columns of rec and
// returns the trimmed item. It reports false when first name or phone is
// missing; an empty cell counts as missing.
func Normalize(rec model.RawRecord) (model.Item, bool) {
	firstName := lookup(rec, FirstNameKeys)
	phone := lookup(rec, PhoneKeys)
	if firstName == "" || phone == "" {
		return model.Item{}, false
	}
	return model.Item{
		FirstName: strings.TrimSpace(firstName),
		Phone:     strings.TrimSpace(phone),
		Notes:     strings.TrimSpace(lookup(rec, NotesKeys)),
	}, true
}

// Filter normalises every record in order, dropping rejected ones silently.
// It returns the accepted items and how many records were dropped.
func Filter(recs []model.RawRecord) ([]model.Item, int) {
	items := make([]model.Item, 0, len(recs))
	for _, rec := range recs {
		if item, ok := Normalize(rec); ok {
			items = append(items, item)
		}
	}
	return items, len(recs) - len(items)
}

func lookup(rec model.RawRecord, keys []string) string {
	for _, k := range keys {
		if v := rec[k]; v != "" {
			return v
		}
	}
	return ""
}
