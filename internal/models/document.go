package models

// Document is the store-agnostic envelope for one canonical record.
// ID keys the upsert; Sport and Season are promoted for range queries;
// Body is the canonical record itself.
type Document struct {
	ID     string
	Sport  Sport
	Season int
	Body   any
}

// EventDocument wraps an Event for writing
func EventDocument(e Event) Document {
	return Document{ID: e.EventID, Sport: e.Sport, Season: e.Season, Body: e}
}

// ParticipantDocument wraps a Participant for writing
func ParticipantDocument(p Participant) Document {
	return Document{ID: p.ParticipantID, Sport: p.Sport, Season: p.Season, Body: p}
}

// TeamDocument wraps a Team for writing
func TeamDocument(t Team) Document {
	return Document{ID: t.TeamID, Sport: t.Sport, Season: t.Season, Body: t}
}

// WeatherDocument wraps a WeatherRecord; keyed by its event id (1:1)
func WeatherDocument(w WeatherRecord) Document {
	return Document{ID: w.EventID, Sport: w.Sport, Season: w.Season, Body: w}
}

// BettingDocument wraps a BettingLine; keyed by its event id (1:1)
func BettingDocument(b BettingLine) Document {
	return Document{ID: b.EventID, Sport: b.Sport, Season: b.Season, Body: b}
}

// AdvancedDocument wraps AdvancedMetrics; keyed by its event id (1:1)
func AdvancedDocument(a AdvancedMetrics) Document {
	return Document{ID: a.EventID, Sport: a.Sport, Season: a.Season, Body: a}
}
