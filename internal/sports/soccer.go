package sports

import (
	"time"

	"sportsedge/ingestion/internal/models"
	"sportsedge/ingestion/internal/provider"
)

// NewSoccer builds the soccer adapter (Premier League calendar). Match
// lineups publish about an hour before kickoff and drive the pre-event
// routine.
func NewSoccer() Adapter {
	return &teamSportAdapter{cfg: teamSportConfig{
		sport:         models.SportSoccer,
		displayName:   "Soccer",
		basePath:      "soccer/eng.1",
		indoorDefault: false,
		window:        SeasonWindow{Start: time.August, End: time.May},
		cadence: CadenceConfig{
			DailyCron:    "0 6 * * *",
			WeeklyCron:   "0 5 * * 1",
			Timezone:     "Europe/London",
			LiveInterval: 10 * time.Minute,
			GameDays:     []time.Weekday{time.Saturday, time.Sunday},
		},
		lifecycleFlag:    "lineup",
		preEventResource: provider.ResourceRoster,
	}}
}
