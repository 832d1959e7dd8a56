package repository

import (
	"context"
	"time"

	"github.com/okian/leadsplit/internal/domain/model"
	"github.com/okian/leadsplit/pkg/logger"
)

// InsertAssignments writes every item inside one transaction and returns the
// number of rows persisted. Statements are chunked to stay under SQLite's
// bound-parameter limit; a failure in any chunk rolls back the whole batch.
func (s *SQLiteStore) InsertAssignments(ctx context.Context, items []model.AssignedItem) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, nil
	}
	defer observe("insert_assignments", time.Now())

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, storageError("insert_assignments", err)
	}
	defer func() { _ = tx.Rollback() }()

	created := toUnix(s.now())
	for start := 0; start < len(items); start += s.batchSize {
		end := min(start+s.batchSize, len(items))

		ib := flavor.NewInsertBuilder()
		ib.InsertInto(tableListItems).Cols(itemColumns...)
		for _, it := range items[start:end] {
			ib.Values(it.FirstName, it.Phone, it.Notes, it.AssignedTo, created)
		}
		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, storageError("insert_assignments", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, storageError("insert_assignments", err)
	}
	s.log.Debug(ctx, "assignments stored", logger.Int("items", len(items)))
	return len(items), nil
}

// ListDistribution joins items to their agents and groups them in Go. Rows
// arrive ordered by agent name, then agent id, then insertion order, so a
// group ends whenever the agent id changes.
func (s *SQLiteStore) ListDistribution(ctx context.Context) ([]model.AgentDistribution, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	defer observe("list_distribution", time.Now())

	sb := flavor.NewSelectBuilder()
	sb.Select(
		sb.As("a.id", "agent_id"),
		sb.As("a.name", "agent_name"),
		sb.As("a.email", "agent_email"),
		sb.As("a.mobile", "agent_mobile"),
		sb.As("a.created_at", "agent_created_at"),
		sb.As("li.first_name", "first_name"),
		sb.As("li.phone", "phone"),
		sb.As("li.notes", "notes"),
	)
	sb.From(sb.As(tableListItems, "li"))
	sb.Join(sb.As(tableAgents, "a"), "a.id = li.assigned_to")
	sb.OrderBy("a.name ASC", "a.id ASC", "li.seq ASC")
	query, args := sb.Build()

	var rows []distributionRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storageError("list_distribution", err)
	}

	out := make([]model.AgentDistribution, 0)
	for _, r := range rows {
		if n := len(out); n == 0 || out[n-1].Agent.ID != r.AgentID {
			out = append(out, model.AgentDistribution{Agent: model.Agent{
				ID:        r.AgentID,
				Name:      r.AgentName,
				Email:     r.AgentEmail,
				Mobile:    r.AgentMobile,
				CreatedAt: fromUnix(r.AgentCreated),
			}})
		}
		g := &out[len(out)-1]
		g.Items = append(g.Items, model.Item{FirstName: r.FirstName, Phone: r.Phone, Notes: r.Notes})
		g.Count++
	}
	return out, nil
}

// AgentItems returns the items assigned to agentID in insertion order.
func (s *SQLiteStore) AgentItems(ctx context.Context, agentID string) ([]model.Item, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	defer observe("agent_items", time.Now())

	sb := flavor.NewSelectBuilder()
	sb.Select("first_name", "phone", "notes").From(tableListItems)
	sb.Where(sb.Equal("assigned_to", agentID))
	sb.OrderBy("seq ASC")
	query, args := sb.Build()

	var rows []struct {
		FirstName string `db:"first_name"`
		Phone     string `db:"phone"`
		Notes     string `db:"notes"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storageError("agent_items", err)
	}
	items := make([]model.Item, len(rows))
	for i, r := range rows {
		items[i] = model.Item{FirstName: r.FirstName, Phone: r.Phone, Notes: r.Notes}
	}
	return items, nil
}
