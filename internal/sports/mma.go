package sports

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"sportsedge/ingestion/internal/models"
	"sportsedge/ingestion/internal/provider"
)

// mmaAdapter covers MMA fight cards. There is no team concept, so the
// backfill plan omits the teams category entirely. Fighters are ranked by
// card position (1 = main event).
type mmaAdapter struct {
	window  SeasonWindow
	cadence CadenceConfig
}

// NewMMA builds the MMA adapter. Cards run year-round.
func NewMMA() Adapter {
	return &mmaAdapter{
		window: SeasonWindow{Start: time.January, End: time.December},
		cadence: CadenceConfig{
			DailyCron:    "0 9 * * *",
			WeeklyCron:   "0 9 * * 2",
			Timezone:     "America/New_York",
			LiveInterval: 5 * time.Minute,
			GameDays:     []time.Weekday{time.Saturday},
		},
	}
}

func (a *mmaAdapter) Sport() models.Sport        { return models.SportMMA }
func (a *mmaAdapter) DisplayName() string        { return "MMA" }
func (a *mmaAdapter) SeasonWindow() SeasonWindow { return a.window }
func (a *mmaAdapter) Cadence() CadenceConfig     { return a.cadence }
func (a *mmaAdapter) LifecycleFlag() string      { return "fight-card" }

func (a *mmaAdapter) PreEventResource() provider.ResourceKind {
	return provider.ResourceRoster
}

func (a *mmaAdapter) Plan() []CategoryPlan {
	return []CategoryPlan{
		{Category: models.CategoryEvents, Resource: provider.ResourceSchedule},
		{Category: models.CategoryParticipants, Resource: provider.ResourceRoster},
		{Category: models.CategoryWeather, DependsOnEvents: true, Estimated: true},
		{Category: models.CategoryBetting, DependsOnEvents: true, Estimated: true},
		{Category: models.CategoryAdvanced, DependsOnEvents: true, Estimated: true},
	}
}

func (a *mmaAdapter) ResourcePath(req provider.Request) (string, url.Values, error) {
	switch req.Kind {
	case provider.ResourceSchedule:
		return "mma/ufc/schedule", seasonParams(req.Season), nil
	case provider.ResourceRoster:
		return "mma/ufc/fighters", seasonParams(req.Season), nil
	case provider.ResourceLiveScoreboard:
		return "mma/ufc/scoreboard", nil, nil
	case provider.ResourceResults:
		params := seasonParams(req.Season)
		if !req.Date.IsZero() {
			params.Set("dates", req.Date.Format("20060102"))
		}
		return "mma/ufc/results", params, nil
	default:
		return "", nil, provider.ErrUnsupportedResource
	}
}

// Raw payload shapes

type rawFightCardList struct {
	Cards []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Date      string `json:"date"`
		Season    int    `json:"season"`
		Status    string `json:"status"`
		Announced bool   `json:"cardAnnounced"`
		Venue     struct {
			Name   string `json:"name"`
			City   string `json:"city"`
			Indoor bool   `json:"indoor"`
		} `json:"venue"`
		Bouts []struct {
			Order    int `json:"order"`
			Fighters []struct {
				ID       string `json:"id"`
				FullName string `json:"fullName"`
				Winner   bool   `json:"winner"`
			} `json:"fighters"`
		} `json:"bouts"`
	} `json:"cards"`
}

type rawFighterList struct {
	Fighters []struct {
		ID          string `json:"id"`
		FullName    string `json:"fullName"`
		Country     string `json:"country"`
		BirthDate   string `json:"dateOfBirth"`
		WeightClass string `json:"weightClass"`
		Record      struct {
			Wins   int `json:"wins"`
			Losses int `json:"losses"`
			Draws  int `json:"draws"`
		} `json:"record"`
	} `json:"fighters"`
}

func (a *mmaAdapter) Normalize(kind provider.ResourceKind, payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	switch kind {
	case provider.ResourceSchedule, provider.ResourceResults, provider.ResourceLiveScoreboard:
		return a.normalizeCards(kind, payload, nctx)
	case provider.ResourceRoster:
		return a.normalizeFighters(payload, nctx)
	default:
		return nil, &NormalizationError{Sport: models.SportMMA, Kind: kind,
			Err: fmt.Errorf("no normalizer for resource")}
	}
}

func (a *mmaAdapter) normalizeCards(kind provider.ResourceKind, payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	var raw rawFightCardList
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &NormalizationError{Sport: models.SportMMA, Kind: kind, Err: err}
	}

	var docs []models.Document
	for _, card := range raw.Cards {
		if card.ID == "" {
			continue
		}

		flag := models.FlagPending
		if card.Announced {
			flag = models.FlagAnnounced
		}

		event := models.Event{
			EventID: card.ID,
			Sport:   models.SportMMA,
			Season:  card.Season,
			Status:  mapCardStatus(card.Status),
			Venue: models.Venue{
				Name:   card.Venue.Name,
				City:   card.Venue.City,
				Indoor: card.Venue.Indoor,
			},
			LifecycleFlags: map[string]string{
				a.LifecycleFlag(): flag,
			},
			CollectedAt: nctx.Now,
		}
		if event.Season == 0 {
			event.Season = nctx.Season
		}
		if t, err := parseEventDate(card.Date); err == nil {
			event.Date = t
		}

		for _, bout := range card.Bouts {
			for _, f := range bout.Fighters {
				ep := models.EventParticipant{
					ParticipantID: f.ID,
					Name:          f.FullName,
					Rank:          bout.Order,
				}
				if f.Winner {
					ep.Score = 1
				}
				event.Participants = append(event.Participants, ep)
			}
		}

		docs = append(docs, models.EventDocument(event))
	}

	return docs, nil
}

func (a *mmaAdapter) normalizeFighters(payload []byte, nctx NormalizeContext) ([]models.Document, error) {
	var raw rawFighterList
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &NormalizationError{Sport: models.SportMMA, Kind: provider.ResourceRoster, Err: err}
	}

	var docs []models.Document
	for _, f := range raw.Fighters {
		if f.ID == "" {
			continue
		}

		docs = append(docs, models.ParticipantDocument(models.Participant{
			ParticipantID: f.ID,
			Sport:         models.SportMMA,
			Season:        nctx.Season,
			Name:          f.FullName,
			Position:      f.WeightClass,
			Country:       f.Country,
			BirthDate:     f.BirthDate,
			CareerStats: models.CareerStats{
				Appearances: f.Record.Wins + f.Record.Losses + f.Record.Draws,
				Wins:        f.Record.Wins,
				Losses:      f.Record.Losses,
			},
			CollectedAt: nctx.Now,
		}))
	}

	return docs, nil
}

func mapCardStatus(status string) models.EventStatus {
	switch status {
	case "completed", "final":
		return models.StatusCompleted
	case "in-progress", "live":
		return models.StatusInProgress
	case "postponed", "cancelled":
		return models.StatusPostponed
	default:
		return models.StatusScheduled
	}
}
