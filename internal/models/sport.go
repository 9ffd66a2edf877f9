package models

import "fmt"

// Sport identifies one of the supported leagues
type Sport string

const (
	SportNBA    Sport = "nba"
	SportNFL    Sport = "nfl"
	SportSoccer Sport = "soccer"
	SportF1     Sport = "f1"
	SportMMA    Sport = "mma"
)

// AllSports lists every supported sport in a stable order
var AllSports = []Sport{SportNBA, SportNFL, SportSoccer, SportF1, SportMMA}

// ParseSport validates a sport string from config or CLI flags
func ParseSport(s string) (Sport, error) {
	for _, sport := range AllSports {
		if string(sport) == s {
			return sport, nil
		}
	}
	return "", fmt.Errorf("unknown sport: %q", s)
}

// Category is one entity category processed during collection.
// The declaration order matches the collection dependency order:
// weather/betting/advanced need events to exist first.
type Category string

const (
	CategoryEvents       Category = "events"
	CategoryParticipants Category = "participants"
	CategoryTeams        Category = "teams"
	CategoryWeather      Category = "weather"
	CategoryBetting      Category = "betting"
	CategoryAdvanced     Category = "advanced"
)

// CollectionName returns the document-store collection for a sport+category,
// e.g. "nba_events". One collection per sport per category so concurrent
// sport pipelines never write the same collection.
func CollectionName(sport Sport, category Category) string {
	return fmt.Sprintf("%s_%s", sport, category)
}
