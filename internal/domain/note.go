package domain

import (
	"strings"
	"time"
)

// Media types an observation can carry.
const (
	MediaImage = "image"
	MediaVideo = "video"
	MediaAudio = "audio"
)

// ImpactRecord is the narrow projection the analytics aggregator consumes.
// Both field notes and feed observations project into it.
type ImpactRecord struct {
	ID         string
	Categories []CategoryTag
	CreatedAt  time.Time
	Country    string
	City       string
	State      string
}

// FieldNote is a personal notebook entry. The embedded LocationDraft
// flattens into the platform's field layout when marshaled.
type FieldNote struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Notes       string `json:"notes,omitempty"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"` // YYYY-MM-DD
	Time        string `json:"time,omitempty"` // HH:MM
	Weather     string `json:"weather,omitempty"`
	Temperature string `json:"temperature,omitempty"`
	LocationDraft
	SpeciesObserved      []string      `json:"species_observed,omitempty"`
	HumanImpact          string        `json:"human_impact,omitempty"`
	ClimateChangeImpacts string        `json:"climate_change_impacts,omitempty"`
	TreeEquityIndex      *float64      `json:"tree_equity_index,omitempty"`
	ActionPlan           string        `json:"action_plan,omitempty"`
	SDGGoals             []int         `json:"sdg_goals,omitempty"`
	Tags                 []string      `json:"tags,omitempty"`
	ImpactCategories     []CategoryTag `json:"impact_categories,omitempty"`
	Images               []string      `json:"images,omitempty"`
	Visibility           string        `json:"visibility,omitempty"`
	CreatedBy            string        `json:"created_by,omitempty"`
	CreatedAt            time.Time     `json:"created_date,omitzero"`
}

// ImpactRecord projects the note into the aggregator's input shape.
func (n FieldNote) ImpactRecord() ImpactRecord {
	return ImpactRecord{
		ID:         n.ID,
		Categories: n.ImpactCategories,
		CreatedAt:  n.CreatedAt,
		Country:    n.Country,
		City:       n.City,
		State:      n.State,
	}
}

// Observation is a media post in the social feed.
type Observation struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	MediaType   string `json:"media_type,omitempty"` // MediaImage, MediaVideo or MediaAudio
	MediaURL    string `json:"media_url,omitempty"`
	LocationDraft
	ImpactCategories []CategoryTag `json:"impact_categories,omitempty"`
	Tags             []string      `json:"tags,omitempty"`
	Likes            int           `json:"likes,omitempty"`
	CreatedBy        string        `json:"created_by,omitempty"`
	CreatedAt        time.Time     `json:"created_date,omitzero"`
	ProcessedAt      time.Time     `json:"processed_at,omitzero"`
}

// ImpactRecord projects the observation into the aggregator's input shape.
func (o Observation) ImpactRecord() ImpactRecord {
	return ImpactRecord{
		ID:         o.ID,
		Categories: o.ImpactCategories,
		CreatedAt:  o.CreatedAt,
		Country:    o.Country,
		City:       o.City,
		State:      o.State,
	}
}

// Notification is a community event addressed to the current user.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type,omitempty"`
	Message   string    `json:"message,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_date,omitzero"`
}

// User is the authenticated platform account.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// FieldNoteDraft is one not-yet-persisted notebook row as produced by the
// platform's file-extraction integration. Tags arrive as a single
// comma-separated string.
type FieldNoteDraft struct {
	Title                string `json:"title"`
	Notes                string `json:"notes"`
	Description          string `json:"description"`
	Date                 string `json:"date"`
	Time                 string `json:"time"`
	Weather              string `json:"weather"`
	Temperature          string `json:"temperature"`
	LocationName         string `json:"location_name"`
	Address              string `json:"address"`
	City                 string `json:"city"`
	State                string `json:"state"`
	Country              string `json:"country"`
	HumanImpact          string `json:"human_impact"`
	ClimateChangeImpacts string `json:"climate_change_impacts"`
	Tags                 string `json:"tags"`
}

// Note converts the draft into a persistable FieldNote, applying the
// importer's defaults: untitled rows get a placeholder title, undated rows
// get today's date, and everything imports as public.
func (d FieldNoteDraft) Note() FieldNote {
	note := FieldNote{
		Title:       d.Title,
		Notes:       d.Notes,
		Description: d.Description,
		Date:        d.Date,
		Time:        d.Time,
		Weather:     d.Weather,
		Temperature: d.Temperature,
		LocationDraft: LocationDraft{
			LocationName: d.LocationName,
			Address:      d.Address,
			City:         d.City,
			State:        d.State,
			Country:      d.Country,
		},
		HumanImpact:          d.HumanImpact,
		ClimateChangeImpacts: d.ClimateChangeImpacts,
		Tags:                 splitTags(d.Tags),
		Visibility:           "public",
	}
	if note.Title == "" {
		note.Title = "Untitled Entry"
	}
	if note.Date == "" {
		note.Date = clock.Now().UTC().Format("2006-01-02")
	}
	return note
}

// splitTags turns "a, b ,c" into ["a","b","c"], dropping empties.
func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// Now returns the package clock's current time. Stamps derived from it are
// deterministic in tests via SetClock.
func Now() time.Time {
	return clock.Now()
}
