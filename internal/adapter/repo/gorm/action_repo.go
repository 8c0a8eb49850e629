package gormrepo

import (
	"context"

	"timelapse/internal/adapter/repo/gorm/model"
	"timelapse/internal/domain/world"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActionRepo persists normalized actions. SaveAll is insert-or-ignore on
// the primary key, which is what makes re-ingesting an overlapping feed
// window idempotent (scenario 6).
type ActionRepo struct {
	db *gorm.DB
}

func NewActionRepo(db *gorm.DB) ActionRepo {
	return ActionRepo{db: db}
}

func (r ActionRepo) SaveAll(ctx context.Context, actions []world.Action) error {
	if len(actions) == 0 {
		return nil
	}
	rows := make([]model.Action, 0, len(actions))
	for _, a := range actions {
		rows = append(rows, model.Action{
			ID:             a.ID,
			TimestampMs:    a.TimestampMs,
			Type:           string(a.Type),
			Verb:           string(a.Verb),
			PortalID:       a.PortalID,
			TargetPortalID: a.TargetPortalID,
		})
	}
	return getDBFromCtx(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r ActionRepo) ListOrderedByTime(ctx context.Context, fromMs, toMs int64) ([]world.Action, error) {
	query := getDBFromCtx(ctx, r.db).Order("timestamp_ms ASC, id ASC")
	if fromMs > 0 {
		query = query.Where("timestamp_ms >= ?", fromMs)
	}
	if toMs > 0 {
		query = query.Where("timestamp_ms <= ?", toMs)
	}
	var rows []model.Action
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]world.Action, 0, len(rows))
	for _, row := range rows {
		out = append(out, world.Action{
			ID:             row.ID,
			TimestampMs:    row.TimestampMs,
			Type:           world.ActionType(row.Type),
			Verb:           world.Verb(row.Verb),
			PortalID:       row.PortalID,
			TargetPortalID: row.TargetPortalID,
		})
	}
	return out, nil
}

func (r ActionRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := getDBFromCtx(ctx, r.db).Model(&model.Action{}).Count(&count).Error
	return count, err
}
