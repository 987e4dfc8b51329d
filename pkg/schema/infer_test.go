package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_InferShape(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		assertFn func(*testing.T, *Node)
	}{
		{
			name:  "null becomes an editable string field",
			value: nil,
			assertFn: func(t *testing.T, n *Node) {
				require.Equal(t, KindString, n.Kind)
				require.Nil(t, n.Default)
			},
		},
		{
			name:  "bool",
			value: true,
			assertFn: func(t *testing.T, n *Node) {
				require.Equal(t, KindBoolean, n.Kind)
				require.Equal(t, true, n.Default)
			},
		},
		{
			name:  "string",
			value: "ClusterIP",
			assertFn: func(t *testing.T, n *Node) {
				require.Equal(t, KindString, n.Kind)
				require.Equal(t, "ClusterIP", n.Default)
			},
		},
		{
			name:  "whole float is an integer",
			value: float64(3),
			assertFn: func(t *testing.T, n *Node) {
				require.Equal(t, KindInteger, n.Kind)
			},
		},
		{
			name:  "fractional float is a number",
			value: 0.5,
			assertFn: func(t *testing.T, n *Node) {
				require.Equal(t, KindNumber, n.Kind)
			},
		},
		{
			name:  "json.Number integer",
			value: json.Number("8080"),
			assertFn: func(t *testing.T, n *Node) {
				require.Equal(t, KindInteger, n.Kind)
			},
		},
		{
			name:  "json.Number fraction",
			value: json.Number("99.9"),
			assertFn: func(t *testing.T, n *Node) {
				require.Equal(t, KindNumber, n.Kind)
			},
		},
		{
			name:  "empty object",
			value: map[string]interface{}{},
			assertFn: func(t *testing.T, n *Node) {
				require.Equal(t, KindObject, n.Kind)
				require.Empty(t, n.Children)
			},
		},
		{
			name:  "empty array gets string items",
			value: []interface{}{},
			assertFn: func(t *testing.T, n *Node) {
				require.Equal(t, KindArray, n.Kind)
				require.NotNil(t, n.Items)
				require.Equal(t, KindString, n.Items.Kind)
			},
		},
		{
			name: "array items come from the first element",
			value: []interface{}{
				map[string]interface{}{"host": "a.example.com", "port": float64(443)},
				map[string]interface{}{"host": "b.example.com"},
			},
			assertFn: func(t *testing.T, n *Node) {
				require.Equal(t, KindArray, n.Kind)
				require.Equal(t, KindObject, n.Items.Kind)
				require.Len(t, n.Items.Children, 2)
				require.Equal(t, KindString, n.Items.Child("host").Kind)
				require.Equal(t, KindInteger, n.Items.Child("port").Kind)
			},
		},
		{
			name: "object children are sorted by name",
			value: map[string]interface{}{
				"replicas": float64(2),
				"image":    "nginx",
				"debug":    false,
			},
			assertFn: func(t *testing.T, n *Node) {
				require.Equal(t, KindObject, n.Kind)
				names := []string{}
				for _, f := range n.Children {
					names = append(names, f.Name)
				}
				require.Equal(t, []string{"debug", "image", "replicas"}, names)
			},
		},
		{
			name: "nested trees recurse",
			value: map[string]interface{}{
				"service": map[string]interface{}{
					"type": "ClusterIP",
					"port": float64(80),
				},
				"tolerations": []interface{}{
					map[string]interface{}{"key": "dedicated", "value": "infra"},
				},
			},
			assertFn: func(t *testing.T, n *Node) {
				service := n.Child("service")
				require.NotNil(t, service)
				require.Equal(t, KindObject, service.Kind)
				require.Equal(t, KindInteger, service.Child("port").Kind)
				require.Equal(t, KindString, service.Child("type").Kind)

				tolerations := n.Child("tolerations")
				require.NotNil(t, tolerations)
				require.Equal(t, KindArray, tolerations.Kind)
				require.Equal(t, KindObject, tolerations.Items.Kind)
				require.Equal(t, KindString, tolerations.Items.Child("key").Kind)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.assertFn(t, InferShape(tt.value))
		})
	}
}

func Test_InferShape_IsTotalOverUnmarshaledJSON(t *testing.T) {
	raw := `{"a": null, "b": {}, "c": [], "d": [null], "e": 1.5, "f": -0, "g": "x"}`

	var v interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &v))

	node := InferShape(v)
	require.Equal(t, KindObject, node.Kind)
	require.Len(t, node.Children, 7)
	for _, f := range node.Children {
		require.NotEmpty(t, f.Node.Kind, "field %s has no kind", f.Name)
	}
}
