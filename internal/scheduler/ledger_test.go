package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLedgerReserveAndFree(t *testing.T) {
	ledger := NewLedger()

	assert.True(t, ledger.Free(DimFaculty, "f1", 1, "09:00"))
	ledger.Reserve(DimFaculty, "f1", 1, "09:00")
	assert.False(t, ledger.Free(DimFaculty, "f1", 1, "09:00"))

	// Other keys, slots and dimensions stay free.
	assert.True(t, ledger.Free(DimFaculty, "f2", 1, "09:00"))
	assert.True(t, ledger.Free(DimFaculty, "f1", 2, "09:00"))
	assert.True(t, ledger.Free(DimFaculty, "f1", 1, "10:00"))
	assert.True(t, ledger.Free(DimBatch, "f1", 1, "09:00"))
	assert.True(t, ledger.Free(DimRoom, "f1", 1, "09:00"))
	assert.True(t, ledger.Free(DimCourse, "f1", 1, "09:00"))
}

func TestLedgerDimensionsAreIndependent(t *testing.T) {
	ledger := NewLedger()

	ledger.Reserve(DimBatch, "b1", 3, "11:15")
	ledger.Reserve(DimRoom, "r1", 3, "11:15")

	assert.False(t, ledger.Free(DimBatch, "b1", 3, "11:15"))
	assert.False(t, ledger.Free(DimRoom, "r1", 3, "11:15"))
	assert.True(t, ledger.Free(DimCourse, "b1", 3, "11:15"))
	assert.True(t, ledger.Free(DimFaculty, "r1", 3, "11:15"))
}
