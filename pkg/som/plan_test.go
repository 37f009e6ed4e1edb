package som

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatesCenter(t *testing.T) {
	x, y := Coordinates{10, 20, 100, 50}.Center()
	assert.Equal(t, 60, x)
	assert.Equal(t, 45, y)
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction(" Click ")
	assert.True(t, ok)
	assert.Equal(t, ActionClick, a)

	a, ok = ParseAction("scroll")
	assert.False(t, ok)
	assert.Equal(t, Action("scroll"), a)
}

func TestPlanExecutable(t *testing.T) {
	c := Coordinates{1, 2, 3, 4}
	assert.True(t, (&ActionPlan{Action: ActionWait}).Executable())
	assert.True(t, (&ActionPlan{Action: ActionClick, Coordinates: &c}).Executable())
	assert.False(t, (&ActionPlan{Action: ActionType}).Executable())
	assert.False(t, (&ActionPlan{Action: "scroll", Coordinates: &c}).Executable())
}

func TestPlanWireShape(t *testing.T) {
	c := Coordinates{10, 20, 100, 50}
	res := BuildResult{
		ResultJSON: ActionPlan{
			Action:      ActionClick,
			Element:     "Text Box ID 0: OK",
			Coordinates: &c,
		},
		ResultImage: "aGVsbG8=",
	}
	data, err := res.Marshal()
	require.NoError(t, err)

	var raw struct {
		ResultJSON  map[string]any `json:"result_json"`
		ResultImage string         `json:"result_image"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "click", raw.ResultJSON["ACTION"])
	assert.Equal(t, []any{10.0, 20.0, 100.0, 50.0}, raw.ResultJSON["COORDINATES"])
	assert.Equal(t, "aGVsbG8=", raw.ResultImage)
}
