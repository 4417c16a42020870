package jobroom

import (
	"sort"
	"strings"

	"github.com/maxaizer/swiss-jobs/internal/errs"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const minPartialMatchLength = 3

type LocationResolver interface {
	Resolve(text string) ([]string, error)
	ResolveSafe(text string) []string
}

// Locations maps city names and postal codes to BFS communal codes.
type Locations struct {
	cities      map[string][]string
	postalCodes map[string][]string
	cityKeys    []string
}

func NewLocations() *Locations {
	return newLocations(cityCodes, postalCodeTable())
}

func newLocations(cities, postalCodes map[string][]string) *Locations {
	l := &Locations{
		cities:      make(map[string][]string, len(cities)),
		postalCodes: postalCodes,
	}
	for name, codes := range cities {
		l.cities[normalizeLocation(name)] = codes
	}
	l.cityKeys = lo.Keys(l.cities)
	sort.Strings(l.cityKeys)
	return l
}

// Resolve fails with *errs.LocationNotFoundError when text matches nothing.
func (l *Locations) Resolve(text string) ([]string, error) {
	codes := l.lookup(text)
	if len(codes) == 0 {
		return nil, &errs.LocationNotFoundError{Location: text}
	}
	return codes, nil
}

func (l *Locations) ResolveSafe(text string) []string {
	codes := l.lookup(text)
	if codes == nil {
		return []string{}
	}
	return codes
}

// AllCities returns the known city keys, lowercased and sorted.
func (l *Locations) AllCities() []string {
	return append([]string(nil), l.cityKeys...)
}

func (l *Locations) lookup(text string) []string {
	key := normalizeLocation(text)
	if key == "" {
		return nil
	}

	if codes, ok := l.cities[key]; ok {
		return append([]string(nil), codes...)
	}
	if codes, ok := l.postalCodes[key]; ok {
		return append([]string(nil), codes...)
	}

	if len([]rune(key)) < minPartialMatchLength {
		return nil
	}

	var matched []string
	for _, city := range l.cityKeys {
		if strings.Contains(city, key) {
			matched = append(matched, l.cities[city]...)
		}
	}
	return lo.Uniq(matched)
}

func normalizeLocation(text string) string {
	text = strings.TrimSpace(norm.NFC.String(text))
	return cases.Fold().String(text)
}
