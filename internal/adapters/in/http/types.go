package http

import (
	"time"

	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/core/application/usecases/queries"
	"warehouse/internal/core/domain/model/cell"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/task"
	"warehouse/internal/pkg/batch"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type MoveUnitRequest struct {
	CellID string `json:"cell_id" validate:"required,uuid"`
}

type ChangeCellStateRequest struct {
	Action string `json:"action" validate:"required,oneof=activate deactivate block unblock"`
}

type CreatePickingTaskRequest struct {
	UnitIDs      []string `json:"unit_ids"       validate:"required,min=1,dive,uuid"`
	TargetCellID string   `json:"target_cell_id" validate:"required,uuid"`
	Scenario     *string  `json:"scenario"       validate:"omitempty,max=64"`
}

type ImportPickingTasksRequest struct {
	Scenario *string            `json:"scenario" validate:"omitempty,max=64"`
	Rows     []ImportRowRequest `json:"rows"     validate:"required,min=1,dive"`
}

type ImportRowRequest struct {
	Barcode        string  `json:"barcode"          validate:"required,max=64"`
	TargetCellCode string  `json:"target_cell_code" validate:"required,max=64"`
	Scenario       *string `json:"scenario"         validate:"omitempty,max=64"`
}

type CompletePickingTaskRequest struct {
	FromCellCode string `json:"from_cell_code" validate:"required,max=64"`
	ToCellCode   string `json:"to_cell_code"   validate:"required,max=64"`
	Barcode      string `json:"barcode"        validate:"required,max=64"`
}

type CloseStaleTasksRequest struct {
	OlderThanDays  int     `json:"older_than_days" validate:"required,min=1,max=3650"`
	AllWarehouses  bool    `json:"all_warehouses"`
	Scenario       *string `json:"scenario"        validate:"omitempty,max=64"`
	IncludePicking bool    `json:"include_picking"`
}

type MoveResult struct {
	UnitID         string  `json:"unit_id"`
	CellID         string  `json:"cell_id"`
	Status         string  `json:"status"`
	PreviousCellID *string `json:"previous_cell_id,omitempty"`
}

type UnitMove struct {
	FromCellID   *string   `json:"from_cell_id,omitempty"`
	FromCellCode string    `json:"from_cell_code,omitempty"`
	ToCellID     string    `json:"to_cell_id"`
	ToCellCode   string    `json:"to_cell_code"`
	ToStatus     string    `json:"to_status"`
	Source       string    `json:"source"`
	Actor        string    `json:"actor"`
	MovedAt      time.Time `json:"moved_at"`
}

type Cell struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Type     string `json:"type"`
	IsActive bool   `json:"is_active"`
	Blocked  bool   `json:"blocked"`
}

type PickingTask struct {
	ID           string            `json:"id"`
	WarehouseID  string            `json:"warehouse_id"`
	TargetCellID string            `json:"target_cell_id"`
	Scenario     *string           `json:"scenario,omitempty"`
	Status       string            `json:"status"`
	CreatedBy    string            `json:"created_by"`
	CreatedAt    time.Time         `json:"created_at"`
	Units        []PickingTaskUnit `json:"units"`
}

type PickingTaskUnit struct {
	UnitID     string  `json:"unit_id"`
	FromCellID *string `json:"from_cell_id,omitempty"`
}

type ImportReport struct {
	Created []ImportedTask `json:"created"`
	Failed  []RowFailure   `json:"failed"`
}

type ImportedTask struct {
	Row            int    `json:"row"`
	TaskID         string `json:"task_id"`
	UnitID         string `json:"unit_id"`
	Barcode        string `json:"barcode"`
	TargetCellCode string `json:"target_cell_code"`
}

type RowFailure struct {
	Row   int    `json:"row"`
	Key   string `json:"key"`
	Error string `json:"error"`
}

type PickingTaskView struct {
	ID             string                `json:"id"`
	WarehouseID    string                `json:"warehouse_id"`
	TargetCellID   string                `json:"target_cell_id"`
	TargetCellCode string                `json:"target_cell_code"`
	Scenario       *string               `json:"scenario,omitempty"`
	Status         string                `json:"status"`
	CreatedBy      string                `json:"created_by"`
	CreatedAt      time.Time             `json:"created_at"`
	PickedBy       *string               `json:"picked_by,omitempty"`
	PickedAt       *time.Time            `json:"picked_at,omitempty"`
	CompletedBy    *string               `json:"completed_by,omitempty"`
	CompletedAt    *time.Time            `json:"completed_at,omitempty"`
	CanceledBy     *string               `json:"canceled_by,omitempty"`
	CanceledAt     *time.Time            `json:"canceled_at,omitempty"`
	CloseNote      *string               `json:"close_note,omitempty"`
	Units          []PickingTaskUnitView `json:"units"`
}

type PickingTaskUnitView struct {
	UnitID          string  `json:"unit_id"`
	Barcode         string  `json:"barcode"`
	Status          string  `json:"status"`
	CurrentCellID   *string `json:"current_cell_id,omitempty"`
	CurrentCellCode string  `json:"current_cell_code,omitempty"`
	FromCellID      *string `json:"from_cell_id,omitempty"`
	FromCellCode    string  `json:"from_cell_code,omitempty"`
}

type CompleteResult struct {
	TaskID     string     `json:"task_id"`
	TaskStatus string     `json:"task_status"`
	Remaining  int        `json:"remaining"`
	Move       MoveResult `json:"move"`
}

type CancelResult struct {
	TaskID    string        `json:"task_id"`
	Returned  int           `json:"returned"`
	Total     int           `json:"total"`
	Finalized bool          `json:"finalized"`
	Failures  []UnitFailure `json:"failures"`
}

type UnitFailure struct {
	UnitID string `json:"unit_id"`
	Error  string `json:"error"`
}

type TaskFailure struct {
	TaskID string `json:"task_id"`
	Error  string `json:"error"`
}

type SweepResult struct {
	Cutoff   time.Time     `json:"cutoff"`
	Scanned  int           `json:"scanned"`
	Eligible int           `json:"eligible"`
	Closed   int           `json:"closed"`
	Failures []TaskFailure `json:"failures"`
}

func idPtr(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toMoveResult(r commands.MoveResult) MoveResult {
	return MoveResult{
		UnitID:         r.UnitID.String(),
		CellID:         r.CellID.String(),
		Status:         r.Status.String(),
		PreviousCellID: idPtr(r.PreviousCellID),
	}
}

func toCell(c *cell.Cell) Cell {
	return Cell{
		ID:       c.ID().String(),
		Code:     c.Code(),
		Type:     c.Type().String(),
		IsActive: c.IsActive(),
		Blocked:  c.IsBlocked(),
	}
}

func toPickingTask(t *task.Task) PickingTask {
	units := make([]PickingTaskUnit, 0, len(t.Units()))
	for _, u := range t.Units() {
		units = append(units, PickingTaskUnit{
			UnitID:     u.UnitID().String(),
			FromCellID: idPtr(u.FromCellID()),
		})
	}
	return PickingTask{
		ID:           t.ID().String(),
		WarehouseID:  t.WarehouseID().String(),
		TargetCellID: t.TargetCellID().String(),
		Scenario:     t.Scenario(),
		Status:       t.Status().String(),
		CreatedBy:    t.CreatedBy(),
		CreatedAt:    t.CreatedAt(),
		Units:        units,
	}
}

func toImportReport(r batch.Report[commands.ImportedTask]) ImportReport {
	report := ImportReport{
		Created: make([]ImportedTask, 0, len(r.Succeeded)),
		Failed:  make([]RowFailure, 0, len(r.Failed)),
	}
	for _, o := range r.Succeeded {
		report.Created = append(report.Created, ImportedTask{
			Row:            o.Index,
			TaskID:         o.Value.TaskID.String(),
			UnitID:         o.Value.UnitID.String(),
			Barcode:        o.Value.Barcode.String(),
			TargetCellCode: o.Value.TargetCellCode,
		})
	}
	for _, o := range r.Failed {
		report.Failed = append(report.Failed, RowFailure{Row: o.Index, Key: o.Key, Error: o.Err.Error()})
	}
	return report
}

func toPickingTaskView(v queries.GetPickingTaskQueryResponse) PickingTaskView {
	units := make([]PickingTaskUnitView, 0, len(v.Units))
	for _, u := range v.Units {
		units = append(units, PickingTaskUnitView{
			UnitID:          u.UnitID.String(),
			Barcode:         u.Barcode,
			Status:          u.Status.String(),
			CurrentCellID:   idPtr(u.CurrentCellID),
			CurrentCellCode: u.CurrentCellCode,
			FromCellID:      idPtr(u.FromCellID),
			FromCellCode:    u.FromCellCode,
		})
	}
	return PickingTaskView{
		ID:             v.ID.String(),
		WarehouseID:    v.WarehouseID.String(),
		TargetCellID:   v.TargetCellID.String(),
		TargetCellCode: v.TargetCellCode,
		Scenario:       v.Scenario,
		Status:         v.Status.String(),
		CreatedBy:      v.CreatedBy,
		CreatedAt:      v.CreatedAt,
		PickedBy:       v.PickedBy,
		PickedAt:       v.PickedAt,
		CompletedBy:    v.CompletedBy,
		CompletedAt:    v.CompletedAt,
		CanceledBy:     v.CanceledBy,
		CanceledAt:     v.CanceledAt,
		CloseNote:      v.CloseNote,
		Units:          units,
	}
}

func toUnitMoves(moves []queries.GetUnitMovesQueryResponse) []UnitMove {
	out := make([]UnitMove, 0, len(moves))
	for _, m := range moves {
		out = append(out, UnitMove{
			FromCellID:   idPtr(m.FromCellID),
			FromCellCode: m.FromCellCode,
			ToCellID:     m.ToCellID.String(),
			ToCellCode:   m.ToCellCode,
			ToStatus:     m.ToStatus.String(),
			Source:       m.Source.String(),
			Actor:        m.Actor,
			MovedAt:      m.MovedAt,
		})
	}
	return out
}

func toCancelResult(r commands.CancelResult) CancelResult {
	failures := make([]UnitFailure, 0, len(r.Failures))
	for _, f := range r.Failures {
		failures = append(failures, UnitFailure{UnitID: f.Key, Error: f.Err.Error()})
	}
	return CancelResult{
		TaskID:    r.TaskID.String(),
		Returned:  r.Returned,
		Total:     r.Total,
		Finalized: r.Finalized,
		Failures:  failures,
	}
}

func toSweepResult(r commands.SweepResult) SweepResult {
	failures := make([]TaskFailure, 0, len(r.Failed))
	for _, f := range r.Failed {
		failures = append(failures, TaskFailure{TaskID: f.Key, Error: f.Err.Error()})
	}
	return SweepResult{
		Cutoff:   r.Cutoff,
		Scanned:  r.Scanned,
		Eligible: r.Eligible,
		Closed:   r.Closed,
		Failures: failures,
	}
}
