package platform

import (
	"context"

	"github.com/Earth-Teach-Alliance/ecocast-tracker/internal/domain"
)

// Entity collection names as the platform knows them.
const (
	EntityFieldNote    = "FieldNote"
	EntityObservation  = "Observation"
	EntityNotification = "Notification"
	EntityComment      = "Comment"
	EntityGroup        = "Group"
	EntityGroupMember  = "GroupMember"
	EntityMessage      = "Message"
	EntityFollow       = "Follow"
)

// ListFieldNotes fetches field notes, newest first.
func (c *Client) ListFieldNotes(ctx context.Context, limit int) ([]domain.FieldNote, error) {
	var notes []domain.FieldNote
	if err := c.ListEntities(ctx, EntityFieldNote, "-created_date", limit, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// ListObservations fetches feed observations, newest first.
func (c *Client) ListObservations(ctx context.Context, limit int) ([]domain.Observation, error) {
	var obs []domain.Observation
	if err := c.ListEntities(ctx, EntityObservation, "-created_date", limit, &obs); err != nil {
		return nil, err
	}
	return obs, nil
}

// CreateObservation persists a new observation and returns it with its
// server-assigned ID and creation time.
func (c *Client) CreateObservation(ctx context.Context, obs domain.Observation) (domain.Observation, error) {
	var created domain.Observation
	if err := c.CreateEntity(ctx, EntityObservation, obs, &created); err != nil {
		return domain.Observation{}, err
	}
	return created, nil
}

// BulkCreateFieldNotes persists a batch of imported notes in one request.
func (c *Client) BulkCreateFieldNotes(ctx context.Context, notes []domain.FieldNote) error {
	return c.BulkCreate(ctx, EntityFieldNote, notes)
}

// ListUnreadNotifications fetches the user's unread notifications, newest first.
func (c *Client) ListUnreadNotifications(ctx context.Context) ([]domain.Notification, error) {
	var ns []domain.Notification
	if err := c.FilterEntities(ctx, EntityNotification, map[string]any{"read": false}, "-created_date", &ns); err != nil {
		return nil, err
	}
	return ns, nil
}

// MarkNotificationRead flags one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.UpdateEntity(ctx, EntityNotification, id, map[string]any{"read": true})
}

// ImpactRecords fetches all field notes and observations and projects them
// into the analytics aggregator's input shape.
func (c *Client) ImpactRecords(ctx context.Context) ([]domain.ImpactRecord, error) {
	notes, err := c.ListFieldNotes(ctx, 0)
	if err != nil {
		return nil, err
	}
	obs, err := c.ListObservations(ctx, 0)
	if err != nil {
		return nil, err
	}

	records := make([]domain.ImpactRecord, 0, len(notes)+len(obs))
	for _, n := range notes {
		records = append(records, n.ImpactRecord())
	}
	for _, o := range obs {
		records = append(records, o.ImpactRecord())
	}
	return records, nil
}
