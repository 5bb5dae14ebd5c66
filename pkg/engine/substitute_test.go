package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveArgs_Literals(t *testing.T) {
	raw := map[string]interface{}{
		"str":  "literal",
		"num":  float64(3),
		"flag": true,
		"nil":  nil,
	}

	resolved, err := ResolveArgs(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, raw, resolved)
}

func TestResolveArgs_ExactReferenceKeepsType(t *testing.T) {
	table := map[string]interface{}{
		"volumes": []string{"vol-1", "vol-2"},
		"wait":    true,
		"sketch":  nil,
	}
	raw := map[string]interface{}{
		"v": "@volumes",
		"w": "@wait",
		"s": "@sketch",
	}

	resolved, err := ResolveArgs(raw, table)
	require.NoError(t, err)
	assert.Equal(t, []string{"vol-1", "vol-2"}, resolved["v"])
	assert.Equal(t, true, resolved["w"])
	assert.Nil(t, resolved["s"])
}

func TestResolveArgs_EmbeddedReference(t *testing.T) {
	table := map[string]interface{}{"project": "forensics-prod", "sketch_id": 42}
	raw := map[string]interface{}{
		"path": "gs://@project/evidence",
		"name": "sketch-@sketch_id",
	}

	resolved, err := ResolveArgs(raw, table)
	require.NoError(t, err)
	assert.Equal(t, "gs://forensics-prod/evidence", resolved["path"])
	assert.Equal(t, "sketch-42", resolved["name"])
}

func TestResolveArgs_SentinelUntouched(t *testing.T) {
	resolved, err := ResolveArgs(map[string]interface{}{"input": ""}, map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "", resolved["input"])
}

func TestResolveArgs_Nested(t *testing.T) {
	table := map[string]interface{}{"region": "us-east-1"}
	raw := map[string]interface{}{
		"targets": []interface{}{"@region", "literal"},
		"options": map[string]interface{}{"region": "@region"},
	}

	resolved, err := ResolveArgs(raw, table)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"us-east-1", "literal"}, resolved["targets"])
	assert.Equal(t, map[string]interface{}{"region": "us-east-1"}, resolved["options"])
}

func TestResolveArgs_MissingReference(t *testing.T) {
	_, err := ResolveArgs(map[string]interface{}{"r": "@ghost"}, map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "@ghost")

	_, err = ResolveArgs(map[string]interface{}{"r": "prefix-@ghost"}, map[string]interface{}{})
	assert.Error(t, err)
}

// Resolution never mutates its inputs.
func TestResolveArgs_Pure(t *testing.T) {
	raw := map[string]interface{}{"r": "@region"}
	table := map[string]interface{}{"region": "us-east-1"}

	first, err := ResolveArgs(raw, table)
	require.NoError(t, err)
	second, err := ResolveArgs(raw, table)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "@region", raw["r"])
}

func TestCollectReferences(t *testing.T) {
	refs := collectReferences(map[string]interface{}{
		"a": "@region",
		"b": "gs://@project/x",
		"c": []interface{}{"@region", map[string]interface{}{"d": "@zone"}},
		"e": "",
	})
	assert.Equal(t, []string{"project", "region", "zone"}, refs)
}
