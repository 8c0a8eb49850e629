package gormrepo

import (
	"context"

	"timelapse/internal/adapter/repo/gorm/model"
	"timelapse/internal/domain/world"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PortalRepo persists the portal catalog. SaveAll is insert-or-ignore on
// the primary key, matching the history store's idempotency requirement
// (§4.3): a portal already on record keeps its first-observed team.
type PortalRepo struct {
	db *gorm.DB
}

func NewPortalRepo(db *gorm.DB) PortalRepo {
	return PortalRepo{db: db}
}

func (r PortalRepo) SaveAll(ctx context.Context, portals []world.Portal) error {
	if len(portals) == 0 {
		return nil
	}
	rows := make([]model.Portal, 0, len(portals))
	for _, p := range portals {
		rows = append(rows, model.Portal{
			ID:      p.ID,
			Lat:     p.Lat,
			Lng:     p.Lng,
			Name:    p.Name,
			Address: p.Address,
			Team:    string(p.Team),
		})
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r PortalRepo) ListAll(ctx context.Context) ([]world.Portal, error) {
	var rows []model.Portal
	if err := getDBFromCtx(ctx, r.db).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]world.Portal, 0, len(rows))
	for _, row := range rows {
		out = append(out, world.Portal{
			ID:      row.ID,
			Lat:     row.Lat,
			Lng:     row.Lng,
			Name:    row.Name,
			Address: row.Address,
			Team:    world.Faction(row.Team),
		})
	}
	return out, nil
}
