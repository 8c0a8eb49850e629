// Package model holds the GORM row types for the history store's two
// relations. They are written by hand against migrations/0001_init.sql,
// not generated: field names follow the domain types (Verb for the
// action column), so they differ from what tools/modelgen (gorm.io/gen)
// would emit for the same schema.
package model

// Portal is the generated row type for the portals relation (§4.3):
// keyed by id, team is the first-observed value and is never updated by
// SaveAll once a row exists.
type Portal struct {
	ID      string  `gorm:"column:id;primaryKey"`
	Lat     float64 `gorm:"column:lat"`
	Lng     float64 `gorm:"column:lng"`
	Name    string  `gorm:"column:name"`
	Address string  `gorm:"column:address"`
	Team    string  `gorm:"column:team"`
}

func (Portal) TableName() string { return "portals" }

// Action is the generated row type for the actions relation (§4.3):
// keyed by id, ordered for replay by timestamp ascending.
type Action struct {
	ID             string `gorm:"column:id;primaryKey"`
	TimestampMs    int64  `gorm:"column:timestamp_ms;index"`
	Type           string `gorm:"column:type"`
	Verb           string `gorm:"column:action"`
	PortalID       string `gorm:"column:portal_id"`
	TargetPortalID string `gorm:"column:target_portal_id"`
}

func (Action) TableName() string { return "actions" }
