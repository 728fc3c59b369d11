package unit_test

import (
	"testing"

	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/unit"
	"warehouse/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnit(t *testing.T) {
	warehouseID := kernel.NewUUID()

	u, err := unit.NewUnit(kernel.NewUUID(), warehouseID, "00-1234-56")

	require.NoError(t, err)
	require.NoError(t, u.Validate())
	assert.Equal(t, kernel.Barcode("00123456"), u.Barcode())
	assert.Nil(t, u.CellID())
	assert.Equal(t, unit.Unset, u.Status())
	assert.True(t, u.BelongsTo(warehouseID))
	assert.Empty(t, u.Meta())
}

func TestNewUnit_EmptyBarcode(t *testing.T) {
	_, err := unit.NewUnit(kernel.NewUUID(), kernel.NewUUID(), "none")

	require.ErrorIs(t, err, kernel.ErrBarcodeIsEmpty)
}

func TestRestoreUnit_StatusMustAgreeWithCell(t *testing.T) {
	cellID := kernel.NewUUID()

	testCases := []struct {
		name   string
		cellID *kernel.UUID
		status unit.Status
		valid  bool
	}{
		{name: "stored_in_cell", cellID: &cellID, status: unit.Stored, valid: true},
		{name: "out_without_cell", cellID: nil, status: unit.Out, valid: true},
		{name: "unset_without_cell", cellID: nil, status: unit.Unset, valid: true},
		{name: "stored_without_cell", cellID: nil, status: unit.Stored},
		{name: "out_with_cell", cellID: &cellID, status: unit.Out},
		{name: "unset_with_cell", cellID: &cellID, status: unit.Unset},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := unit.RestoreUnit(kernel.NewUUID(), kernel.NewUUID(), "1", tc.cellID, tc.status, nil)

			if tc.valid {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, unit.ErrStatusDisagreesWithCell)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		})
	}
}

func TestUnit_MoveTo(t *testing.T) {
	u, err := unit.NewUnit(kernel.NewUUID(), kernel.NewUUID(), "123")
	require.NoError(t, err)
	target := kernel.NewUUID()

	require.NoError(t, u.MoveTo(target, unit.Stored))

	assert.True(t, u.IsIn(target))
	assert.Equal(t, unit.Stored, u.Status())
}

func TestUnit_MoveTo_RejectsOutStatus(t *testing.T) {
	u, err := unit.NewUnit(kernel.NewUUID(), kernel.NewUUID(), "123")
	require.NoError(t, err)

	err = u.MoveTo(kernel.NewUUID(), unit.Out)

	require.ErrorIs(t, err, unit.ErrStatusDisagreesWithCell)
	assert.Nil(t, u.CellID())
	assert.Equal(t, unit.Unset, u.Status())
}

func TestUnit_CellIDIsACopy(t *testing.T) {
	cellID := kernel.NewUUID()
	u, err := unit.RestoreUnit(kernel.NewUUID(), kernel.NewUUID(), "1", &cellID, unit.Shipping, nil)
	require.NoError(t, err)

	got := u.CellID()
	*got = kernel.NewUUID()

	assert.True(t, u.IsIn(cellID))
}

func TestUnit_Meta(t *testing.T) {
	meta := map[string]any{"order": "A-1"}
	u, err := unit.RestoreUnit(kernel.NewUUID(), kernel.NewUUID(), "1", nil, unit.Unset, meta)
	require.NoError(t, err)

	meta["order"] = "changed"
	u.SetMeta("weight", 3)

	assert.Equal(t, map[string]any{"order": "A-1", "weight": 3}, u.Meta())
}

func TestParseStatus(t *testing.T) {
	s, err := unit.ParseStatus("stored")
	require.NoError(t, err)
	assert.Equal(t, unit.Stored, s)

	s, err = unit.ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, unit.Unset, s)

	_, err = unit.ParseStatus("lost")
	require.ErrorIs(t, err, unit.ErrUnknownStatus)
}

func TestUnit_ZeroValue(t *testing.T) {
	var u unit.Unit

	require.ErrorIs(t, u.Validate(), unit.ErrUnitIsNotConstructed)
}
