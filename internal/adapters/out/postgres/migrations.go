package postgres

import (
	"warehouse/internal/adapters/out/postgres/cellrepo"
	"warehouse/internal/adapters/out/postgres/historyrepo"
	"warehouse/internal/adapters/out/postgres/lockrepo"
	"warehouse/internal/adapters/out/postgres/moverepo"
	"warehouse/internal/adapters/out/postgres/taskrepo"
	"warehouse/internal/adapters/out/postgres/unitrepo"

	"gorm.io/gorm"
)

// Tables lists the tables created by Migrate, in truncation-safe order.
var Tables = []string{
	"picking_task_history",
	"unit_moves",
	"picking_task_units",
	"picking_tasks",
	"units",
	"cells",
	"inventory_locks",
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&cellrepo.CellDTO{},
		&unitrepo.UnitDTO{},
		&taskrepo.TaskDTO{},
		&taskrepo.TaskUnitDTO{},
		&moverepo.MoveDTO{},
		&historyrepo.EventDTO{},
		&lockrepo.LockDTO{},
	)
}
