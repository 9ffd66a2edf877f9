package sports

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"sportsedge/ingestion/internal/models"
	"sportsedge/ingestion/internal/provider"
)

// Shared normalization for the three team sports (NBA, NFL, soccer). The
// provider payloads follow the ESPN site API shapes; each sport supplies
// its base path, calendar and lifecycle configuration.

type teamSportConfig struct {
	sport            models.Sport
	displayName      string
	basePath         string
	indoorDefault    bool
	window           SeasonWindow
	cadence          CadenceConfig
	lifecycleFlag    string
	preEventResource provider.ResourceKind
	// bettingEstimated switches the betting category to the estimator for
	// sports whose odds feed is not wired.
	bettingEstimated bool
}

type teamSportAdapter struct {
	cfg teamSportConfig
}

func (a *teamSportAdapter) Sport() models.Sport        { return a.cfg.sport }
func (a *teamSportAdapter) DisplayName() string        { return a.cfg.displayName }
func (a *teamSportAdapter) SeasonWindow() SeasonWindow { return a.cfg.window }
func (a *teamSportAdapter) Cadence() CadenceConfig     { return a.cfg.cadence }
func (a *teamSportAdapter) LifecycleFlag() string      { return a.cfg.lifecycleFlag }

func (a *teamSportAdapter) PreEventResource() provider.ResourceKind {
	return a.cfg.preEventResource
}

func (a *teamSportAdapter) Plan() []CategoryPlan {
	return []CategoryPlan{
		{Category: models.CategoryEvents, Resource: provider.ResourceSchedule},
		{Category: models.CategoryParticipants, Resource: provider.ResourceRoster},
		{Category: models.CategoryTeams, Resource: provider.ResourceStandings},
		{Category: models.CategoryWeather, DependsOnEvents: true, Estimated: true},
		{Category: models.CategoryBetting, Resource: provider.ResourceOdds, DependsOnEvents: true, Estimated: a.cfg.bettingEstimated},
		{Category: models.CategoryAdvanced, DependsOnEvents: true, Estimated: true},
	}
}

func (a *teamSportAdapter) ResourcePath(req provider.Request) (string, url.Values, error) {
	switch req.Kind {
	case provider.ResourceSchedule:
		return a.cfg.basePath + "/schedule", seasonParams(req.Season), nil
	case provider.ResourceRoster:
		return a.cfg.basePath + "/athletes", seasonParams(req.Season), nil
	case provider.ResourceStandings:
		return a.cfg.basePath + "/standings", seasonParams(req.Season), nil
	case provider.ResourceLiveScoreboard:
		return a.cfg.basePath + "/scoreboard", nil, nil
	case provider.ResourceResults:
		params := url.Values{}
		if !req.Date.IsZero() {
			params.Set("dates", req.Date.Format("20060102"))
		}
		return a.cfg.basePath + "/scoreboard", params, nil
	case provider.ResourceInjuries:
		return a.cfg.basePath + "/injuries", nil, nil
	case provider.ResourceOdds:
		return a.cfg.basePath + "/odds", seasonParams(req.Season), nil
	default:
		return "", nil, provider.ErrUnsupportedResource
	}
}

func (a *teamSportAdapter) Normalize(kind provider.ResourceKind, payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	switch kind {
	case provider.ResourceSchedule, provider.ResourceResults, provider.ResourceLiveScoreboard:
		return a.normalizeEvents(payload, nctx)
	case provider.ResourceRoster:
		return a.normalizeRoster(payload, nctx)
	case provider.ResourceInjuries:
		return a.normalizeInjuries(payload, nctx)
	case provider.ResourceStandings:
		return a.normalizeStandings(payload, nctx)
	case provider.ResourceOdds:
		return a.normalizeOdds(payload, nctx)
	default:
		return nil, &NormalizationError{Sport: a.cfg.sport, Kind: kind,
			Err: fmt.Errorf("no normalizer for resource")}
	}
}

// Raw payload shapes (ESPN site API)

type rawScoreboard struct {
	Events []rawEvent `json:"events"`
}

type rawEvent struct {
	ID     string `json:"id"`
	Date   string `json:"date"`
	Season struct {
		Year int `json:"year"`
	} `json:"season"`
	Week struct {
		Number int `json:"number"`
	} `json:"week"`
	Status struct {
		Type struct {
			State string `json:"state"`
		} `json:"type"`
	} `json:"status"`
	Competitions []rawCompetition `json:"competitions"`
}

type rawCompetition struct {
	Venue struct {
		FullName string `json:"fullName"`
		Indoor   *bool  `json:"indoor"`
		Address  struct {
			City string `json:"city"`
		} `json:"address"`
	} `json:"venue"`
	Competitors []rawCompetitor `json:"competitors"`
	Lineups     []struct {
		Published bool `json:"published"`
	} `json:"lineups"`
}

type rawCompetitor struct {
	ID       string `json:"id"`
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Team     struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"team"`
}

type rawRoster struct {
	Athletes []rawAthlete `json:"athletes"`
}

type rawAthlete struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Position struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"position"`
	BirthDate string `json:"dateOfBirth"`
	Team      struct {
		ID string `json:"id"`
	} `json:"team"`
	Statistics struct {
		Appearances int     `json:"gamesPlayed"`
		Points      float64 `json:"points"`
		Rating      float64 `json:"rating"`
	} `json:"statistics"`
}

type rawInjuryReport struct {
	Injuries []struct {
		Status  string     `json:"status"`
		Athlete rawAthlete `json:"athlete"`
	} `json:"injuries"`
}

type rawStandings struct {
	Standings []struct {
		Team struct {
			ID           string `json:"id"`
			DisplayName  string `json:"displayName"`
			Abbreviation string `json:"abbreviation"`
		} `json:"team"`
		Stats []struct {
			Name  string  `json:"name"`
			Value float64 `json:"value"`
		} `json:"stats"`
	} `json:"standings"`
}

type rawOddsFeed struct {
	Items []struct {
		EventID       string  `json:"eventId"`
		MoneylineHome int     `json:"moneylineHome"`
		MoneylineAway int     `json:"moneylineAway"`
		Spread        float64 `json:"spread"`
		OverUnder     float64 `json:"overUnder"`
	} `json:"items"`
}

func (a *teamSportAdapter) normalizeEvents(payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	var raw rawScoreboard
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &NormalizationError{Sport: a.cfg.sport, Kind: provider.ResourceSchedule, Err: err}
	}

	var docs []models.Document
	for _, re := range raw.Events {
		if re.ID == "" {
			continue
		}

		event := models.Event{
			EventID: re.ID,
			Sport:   a.cfg.sport,
			Season:  re.Season.Year,
			Round:   re.Week.Number,
			Status:  mapEventState(re.Status.Type.State),
			Venue: models.Venue{
				Indoor: a.cfg.indoorDefault,
			},
			LifecycleFlags: map[string]string{
				a.cfg.lifecycleFlag: models.FlagPending,
			},
			CollectedAt: nctx.Now,
		}
		if event.Season == 0 {
			event.Season = nctx.Season
		}
		if t, err := parseEventDate(re.Date); err == nil {
			event.Date = t
		}

		if len(re.Competitions) > 0 {
			comp := re.Competitions[0]
			event.Venue.Name = comp.Venue.FullName
			event.Venue.City = comp.Venue.Address.City
			if comp.Venue.Indoor != nil {
				event.Venue.Indoor = *comp.Venue.Indoor
			}
			for _, c := range comp.Competitors {
				event.Participants = append(event.Participants, models.EventParticipant{
					ParticipantID: c.Team.ID,
					Name:          c.Team.DisplayName,
					HomeAway:      c.HomeAway,
					Score:         atoiOrZero(c.Score),
				})
			}
			for _, lineup := range comp.Lineups {
				if lineup.Published {
					event.LifecycleFlags[a.cfg.lifecycleFlag] = models.FlagAnnounced
					break
				}
			}
		}

		docs = append(docs, models.EventDocument(event))
	}

	return docs, nil
}

func (a *teamSportAdapter) normalizeRoster(payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	var raw rawRoster
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &NormalizationError{Sport: a.cfg.sport, Kind: provider.ResourceRoster, Err: err}
	}

	var docs []models.Document
	for _, ath := range raw.Athletes {
		if ath.ID == "" {
			continue
		}
		docs = append(docs, models.ParticipantDocument(athleteToParticipant(a.cfg.sport, ath, "", nctx)))
	}

	return docs, nil
}

func (a *teamSportAdapter) normalizeInjuries(payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	var raw rawInjuryReport
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &NormalizationError{Sport: a.cfg.sport, Kind: provider.ResourceInjuries, Err: err}
	}

	var docs []models.Document
	for _, inj := range raw.Injuries {
		if inj.Athlete.ID == "" {
			continue
		}
		docs = append(docs, models.ParticipantDocument(athleteToParticipant(a.cfg.sport, inj.Athlete, inj.Status, nctx)))
	}

	return docs, nil
}

func (a *teamSportAdapter) normalizeStandings(payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	var raw rawStandings
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &NormalizationError{Sport: a.cfg.sport, Kind: provider.ResourceStandings, Err: err}
	}

	var docs []models.Document
	for rank, entry := range raw.Standings {
		if entry.Team.ID == "" {
			continue
		}

		team := models.Team{
			TeamID:      entry.Team.ID,
			Sport:       a.cfg.sport,
			Season:      nctx.Season,
			Name:        entry.Team.DisplayName,
			Code:        entry.Team.Abbreviation,
			Ranking:     rank + 1,
			CollectedAt: nctx.Now,
		}
		for _, stat := range entry.Stats {
			switch stat.Name {
			case "wins":
				team.Wins = int(stat.Value)
			case "losses":
				team.Losses = int(stat.Value)
			case "ties", "draws":
				team.Draws = int(stat.Value)
			case "points":
				team.Points = stat.Value
			}
		}

		docs = append(docs, models.TeamDocument(team))
	}

	return docs, nil
}

// normalizeOdds joins market prices onto already-collected events. Items
// for unknown events are skipped, never invented.
func (a *teamSportAdapter) normalizeOdds(payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	var raw rawOddsFeed
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &NormalizationError{Sport: a.cfg.sport, Kind: provider.ResourceOdds, Err: err}
	}

	eventsByID := make(map[string]models.Event, len(nctx.Events))
	for _, e := range nctx.Events {
		eventsByID[e.EventID] = e
	}

	var docs []models.Document
	for _, item := range raw.Items {
		event, ok := eventsByID[item.EventID]
		if !ok {
			continue
		}

		line := models.BettingLine{
			EventID:       event.EventID,
			Sport:         a.cfg.sport,
			Season:        event.Season,
			MoneylineHome: item.MoneylineHome,
			MoneylineAway: item.MoneylineAway,
			Spread:        item.Spread,
			Total:         item.OverUnder,
			CollectedAt:   nctx.Now,
		}
		if event.IsCompleted() {
			line.ActualResult = event.Winner()
		}

		docs = append(docs, models.BettingDocument(line))
	}

	return docs, nil
}

// Shared helpers

func athleteToParticipant(sport models.Sport, ath rawAthlete, injuryStatus string, nctx NormalizeContext) models.Participant {
	p := models.Participant{
		ParticipantID: ath.ID,
		Sport:         sport,
		Season:        nctx.Season,
		Name:          ath.FullName,
		Position:      ath.Position.Abbreviation,
		BirthDate:     ath.BirthDate,
		InjuryStatus:  injuryStatus,
		CollectedAt:   nctx.Now,
		CareerStats: models.CareerStats{
			Appearances: ath.Statistics.Appearances,
			Points:      ath.Statistics.Points,
			Rating:      ath.Statistics.Rating,
		},
	}
	if ath.Team.ID != "" {
		teamID := ath.Team.ID
		p.TeamID = &teamID
	}
	return p
}

func mapEventState(state string) models.EventStatus {
	switch state {
	case "pre":
		return models.StatusScheduled
	case "in":
		return models.StatusInProgress
	case "post":
		return models.StatusCompleted
	case "postponed":
		return models.StatusPostponed
	default:
		return models.StatusScheduled
	}
}

// parseEventDate accepts the two timestamp layouts the provider emits.
func parseEventDate(s string) (t time.Time, err error) {
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04Z", s)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
