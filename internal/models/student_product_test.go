package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeacherStateProjection(t *testing.T) {
	sp := StudentProduct{}
	assert.False(t, sp.TeacherState().IsAttached())
	assert.True(t, sp.IsAlone())

	sp.SetTeacherState(Attached(50, TeacherTypeCurator))
	state := sp.TeacherState()
	assert.True(t, state.IsAttached())
	assert.Equal(t, int64(50), state.TeacherProductID())
	assert.Equal(t, TeacherTypeCurator, state.TeacherType())
	require.NotNil(t, sp.TeacherProductID)
	require.NotNil(t, sp.TeacherType)
	assert.Equal(t, int64(50), *sp.TeacherProductID)
	assert.False(t, sp.IsAlone())

	sp.SetTeacherState(Alone())
	assert.Nil(t, sp.TeacherProductID)
	assert.Nil(t, sp.TeacherType)
	assert.True(t, sp.IsAlone())
}

func TestTeacherStateMarshalJSON(t *testing.T) {
	alone, err := json.Marshal(Alone())
	require.NoError(t, err)
	assert.JSONEq(t, `"alone"`, string(alone))

	attached, err := json.Marshal(Attached(50, TeacherTypeMentor))
	require.NoError(t, err)
	assert.JSONEq(t, `{"teacher_product_id":50,"teacher_type":"MENTOR"}`, string(attached))
}
