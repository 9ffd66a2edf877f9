package sports

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"sportsedge/ingestion/internal/models"
	"sportsedge/ingestion/internal/provider"
)

// f1Adapter covers Formula 1. Races carry ranked participants instead of
// home/away sides, teams are constructors, and the pre-event trigger is
// the completion of qualifying.
type f1Adapter struct {
	window  SeasonWindow
	cadence CadenceConfig
}

// NewF1 builds the F1 adapter
func NewF1() Adapter {
	return &f1Adapter{
		window: SeasonWindow{Start: time.March, End: time.December},
		cadence: CadenceConfig{
			DailyCron:    "0 8 * * *",
			WeeklyCron:   "0 8 * * 1",
			Timezone:     "Europe/Paris",
			LiveInterval: 5 * time.Minute,
			GameDays:     []time.Weekday{time.Friday, time.Saturday, time.Sunday},
		},
	}
}

func (a *f1Adapter) Sport() models.Sport        { return models.SportF1 }
func (a *f1Adapter) DisplayName() string        { return "Formula 1" }
func (a *f1Adapter) SeasonWindow() SeasonWindow { return a.window }
func (a *f1Adapter) Cadence() CadenceConfig     { return a.cadence }
func (a *f1Adapter) LifecycleFlag() string      { return "qualifying" }

func (a *f1Adapter) PreEventResource() provider.ResourceKind {
	return provider.ResourceQualifying
}

func (a *f1Adapter) Plan() []CategoryPlan {
	return []CategoryPlan{
		{Category: models.CategoryEvents, Resource: provider.ResourceSchedule},
		{Category: models.CategoryParticipants, Resource: provider.ResourceRoster},
		{Category: models.CategoryTeams, Resource: provider.ResourceStandings},
		{Category: models.CategoryWeather, DependsOnEvents: true, Estimated: true},
		{Category: models.CategoryBetting, DependsOnEvents: true, Estimated: true},
		{Category: models.CategoryAdvanced, DependsOnEvents: true, Estimated: true},
	}
}

func (a *f1Adapter) ResourcePath(req provider.Request) (string, url.Values, error) {
	switch req.Kind {
	case provider.ResourceSchedule:
		return "racing/f1/schedule", seasonParams(req.Season), nil
	case provider.ResourceRoster:
		return "racing/f1/drivers", seasonParams(req.Season), nil
	case provider.ResourceStandings:
		return "racing/f1/standings", seasonParams(req.Season), nil
	case provider.ResourceLiveScoreboard:
		return "racing/f1/scoreboard", nil, nil
	case provider.ResourceResults:
		params := seasonParams(req.Season)
		if req.Round > 0 {
			params.Set("round", fmt.Sprintf("%d", req.Round))
		}
		return "racing/f1/results", params, nil
	case provider.ResourceQualifying:
		params := seasonParams(req.Season)
		if req.Round > 0 {
			params.Set("round", fmt.Sprintf("%d", req.Round))
		}
		return "racing/f1/qualifying", params, nil
	case provider.ResourceCircuits:
		return "racing/f1/circuits", seasonParams(req.Season), nil
	default:
		return "", nil, provider.ErrUnsupportedResource
	}
}

// Raw payload shapes

type rawRaceCalendar struct {
	Races []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Date    string `json:"date"`
		Round   int    `json:"round"`
		Season  int    `json:"season"`
		Status  string `json:"status"`
		Circuit struct {
			Name    string `json:"name"`
			City    string `json:"city"`
			Country string `json:"country"`
		} `json:"circuit"`
		Results []rawRaceResult `json:"results"`
	} `json:"races"`
}

type rawRaceResult struct {
	Position int     `json:"position"`
	Points   float64 `json:"points"`
	Driver   struct {
		ID       string `json:"id"`
		FullName string `json:"fullName"`
	} `json:"driver"`
}

type rawDriverList struct {
	Drivers []struct {
		ID          string `json:"id"`
		FullName    string `json:"fullName"`
		Country     string `json:"country"`
		BirthDate   string `json:"dateOfBirth"`
		Constructor struct {
			ID string `json:"id"`
		} `json:"constructor"`
		Statistics struct {
			Starts int     `json:"starts"`
			Wins   int     `json:"wins"`
			Points float64 `json:"points"`
		} `json:"statistics"`
	} `json:"drivers"`
}

type rawConstructorStandings struct {
	Constructors []struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Points float64 `json:"points"`
		Wins   int     `json:"wins"`
	} `json:"constructors"`
}

type rawQualifyingSheet struct {
	RaceID string `json:"raceId"`
	Grid   []struct {
		Position int `json:"position"`
		Driver   struct {
			ID       string `json:"id"`
			FullName string `json:"fullName"`
		} `json:"driver"`
	} `json:"grid"`
}

func (a *f1Adapter) Normalize(kind provider.ResourceKind, payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	switch kind {
	case provider.ResourceSchedule, provider.ResourceResults, provider.ResourceLiveScoreboard:
		return a.normalizeRaces(kind, payload, nctx)
	case provider.ResourceRoster:
		return a.normalizeDrivers(payload, nctx)
	case provider.ResourceStandings:
		return a.normalizeConstructors(payload, nctx)
	case provider.ResourceQualifying:
		return a.normalizeQualifying(payload, nctx)
	default:
		return nil, &NormalizationError{Sport: models.SportF1, Kind: kind,
			Err: fmt.Errorf("no normalizer for resource")}
	}
}

func (a *f1Adapter) normalizeRaces(kind provider.ResourceKind, payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	var raw rawRaceCalendar
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &NormalizationError{Sport: models.SportF1, Kind: kind, Err: err}
	}

	var docs []models.Document
	for _, race := range raw.Races {
		if race.ID == "" {
			continue
		}

		event := models.Event{
			EventID: race.ID,
			Sport:   models.SportF1,
			Season:  race.Season,
			Round:   race.Round,
			Status:  mapRaceStatus(race.Status),
			Venue: models.Venue{
				Name:   race.Circuit.Name,
				City:   race.Circuit.City,
				Indoor: false,
			},
			LifecycleFlags: map[string]string{
				a.LifecycleFlag(): models.FlagPending,
			},
			CollectedAt: nctx.Now,
		}
		if event.Season == 0 {
			event.Season = nctx.Season
		}
		if t, err := parseEventDate(race.Date); err == nil {
			event.Date = t
		}

		for _, res := range race.Results {
			event.Participants = append(event.Participants, models.EventParticipant{
				ParticipantID: res.Driver.ID,
				Name:          res.Driver.FullName,
				Rank:          res.Position,
				Score:         int(res.Points),
			})
		}

		docs = append(docs, models.EventDocument(event))
	}

	return docs, nil
}

func (a *f1Adapter) normalizeDrivers(payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	var raw rawDriverList
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &NormalizationError{Sport: models.SportF1, Kind: provider.ResourceRoster, Err: err}
	}

	var docs []models.Document
	for _, d := range raw.Drivers {
		if d.ID == "" {
			continue
		}

		p := models.Participant{
			ParticipantID: d.ID,
			Sport:         models.SportF1,
			Season:        nctx.Season,
			Name:          d.FullName,
			Country:       d.Country,
			BirthDate:     d.BirthDate,
			CareerStats: models.CareerStats{
				Appearances: d.Statistics.Starts,
				Wins:        d.Statistics.Wins,
				Points:      d.Statistics.Points,
			},
			CollectedAt: nctx.Now,
		}
		if d.Constructor.ID != "" {
			teamID := d.Constructor.ID
			p.TeamID = &teamID
		}

		docs = append(docs, models.ParticipantDocument(p))
	}

	return docs, nil
}

func (a *f1Adapter) normalizeConstructors(payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	var raw rawConstructorStandings
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &NormalizationError{Sport: models.SportF1, Kind: provider.ResourceStandings, Err: err}
	}

	var docs []models.Document
	for rank, c := range raw.Constructors {
		if c.ID == "" {
			continue
		}

		docs = append(docs, models.TeamDocument(models.Team{
			TeamID:      c.ID,
			Sport:       models.SportF1,
			Season:      nctx.Season,
			Name:        c.Name,
			Wins:        c.Wins,
			Points:      c.Points,
			Ranking:     rank + 1,
			CollectedAt: nctx.Now,
		}))
	}

	return docs, nil
}

// normalizeQualifying rewrites the race event with the published grid and
// flips the qualifying flag to announced. The event must already exist in
// the normalize context; an unknown race id produces nothing.
func (a *f1Adapter) normalizeQualifying(payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	var raw rawQualifyingSheet
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &NormalizationError{Sport: models.SportF1, Kind: provider.ResourceQualifying, Err: err}
	}

	for _, event := range nctx.Events {
		if event.EventID != raw.RaceID {
			continue
		}

		// The struct copy still shares its slice and map with the caller's
		// event, so build fresh ones rather than mutating in place.
		grid := make([]models.EventParticipant, 0, len(raw.Grid))
		for _, slot := range raw.Grid {
			grid = append(grid, models.EventParticipant{
				ParticipantID: slot.Driver.ID,
				Name:          slot.Driver.FullName,
				Rank:          slot.Position,
			})
		}
		event.Participants = grid

		flags := make(map[string]string, len(event.LifecycleFlags)+1)
		for name, value := range event.LifecycleFlags {
			flags[name] = value
		}
		flags[a.LifecycleFlag()] = models.FlagAnnounced
		event.LifecycleFlags = flags
		event.CollectedAt = nctx.Now

		return []models.Document{models.EventDocument(event)}, nil
	}

	return nil, nil
}

func mapRaceStatus(status string) models.EventStatus {
	switch status {
	case "completed", "finished":
		return models.StatusCompleted
	case "in-progress", "live":
		return models.StatusInProgress
	case "postponed", "cancelled":
		return models.StatusPostponed
	default:
		return models.StatusScheduled
	}
}
