package sports

import (
	"time"

	"sportsedge/ingestion/internal/models"
	"sportsedge/ingestion/internal/provider"
)

// NewNBA builds the NBA adapter. Season runs October through June; games
// happen any day of the week, so live polling gates only on the season
// window. Arenas are indoor, which makes the weather category a no-op by
// construction (no outdoor events to derive from).
func NewNBA() Adapter {
	return &teamSportAdapter{cfg: teamSportConfig{
		sport:         models.SportNBA,
		displayName:   "NBA",
		basePath:      "basketball/nba",
		indoorDefault: true,
		window:        SeasonWindow{Start: time.October, End: time.June},
		cadence: CadenceConfig{
			DailyCron:    "0 6 * * *",
			WeeklyCron:   "0 5 * * 1",
			Timezone:     "America/New_York",
			LiveInterval: 5 * time.Minute,
		},
		lifecycleFlag:    "lineup",
		preEventResource: provider.ResourceRoster,
	}}
}
