package sports

import (
	"time"

	"sportsedge/ingestion/internal/models"
	"sportsedge/ingestion/internal/provider"
)

// NewNFL builds the NFL adapter. Live polling only runs on Thursday,
// Sunday and Monday; the pre-event trigger is the inactive list, published
// roughly 90 minutes before kickoff.
func NewNFL() Adapter {
	return &teamSportAdapter{cfg: teamSportConfig{
		sport:         models.SportNFL,
		displayName:   "NFL",
		basePath:      "football/nfl",
		indoorDefault: false,
		window:        SeasonWindow{Start: time.September, End: time.February},
		cadence: CadenceConfig{
			DailyCron:    "0 7 * * *",
			WeeklyCron:   "0 5 * * 2",
			Timezone:     "America/New_York",
			LiveInterval: 10 * time.Minute,
			GameDays:     []time.Weekday{time.Thursday, time.Sunday, time.Monday},
		},
		lifecycleFlag:    "inactives",
		preEventResource: provider.ResourceInjuries,
	}}
}
