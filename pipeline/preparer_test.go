package pipeline

import (
	"context"
	"strconv"
	"testing"

	"github.com/0xrawsec/golang-evtx/evtx"
	"github.com/huntops/evtxscan/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawWithEventID(id int64) *models.RawRecord {
	tree := evtx.GoEvtxMap{
		"Event": evtx.GoEvtxMap{
			"System": evtx.GoEvtxMap{
				"EventID": id,
			},
		},
	}
	return models.NewRawRecord("test.evtx", 0, tree)
}

func TestPrepareFlattensOnlyRequestedKeys(t *testing.T) {
	batch := []*models.RawRecord{rawWithEventID(4624), rawWithEventID(4625)}
	keys := []string{models.EventIDPath, models.ComputerPath}

	prepared, err := Prepare(context.Background(), batch, keys, 2)
	require.NoError(t, err)
	require.Len(t, prepared, 2)

	assert.Equal(t, "4624", prepared[0].Flat[models.EventIDPath])
	assert.Equal(t, "4625", prepared[1].Flat[models.EventIDPath])
	_, hasComputer := prepared[0].Flat[models.ComputerPath]
	assert.False(t, hasComputer)
}

func TestPreparePreservesInputOrder(t *testing.T) {
	var batch []*models.RawRecord
	for i := int64(0); i < 50; i++ {
		batch = append(batch, rawWithEventID(i))
	}

	prepared, err := Prepare(context.Background(), batch, []string{models.EventIDPath}, 8)
	require.NoError(t, err)
	require.Len(t, prepared, 50)

	for i, rec := range prepared {
		id, ok := rec.Field(models.EventIDPath)
		require.True(t, ok)
		assert.Equal(t, strconv.Itoa(i), id)
	}
}

func TestPrepareWithZeroWorkersStillRuns(t *testing.T) {
	batch := []*models.RawRecord{rawWithEventID(1)}
	prepared, err := Prepare(context.Background(), batch, []string{models.EventIDPath}, 0)
	require.NoError(t, err)
	assert.Equal(t, "1", prepared[0].Flat[models.EventIDPath])
}
