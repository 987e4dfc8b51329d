package overrides

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Flatten(t *testing.T) {
	tests := []struct {
		name    string
		tree    interface{}
		want    []Assignment
		wantErr bool
	}{
		{
			name: "scalars pick their channels",
			tree: map[string]interface{}{
				"replicas": int64(3),
				"debug":    true,
				"image":    "nginx",
				"weight":   0.5,
				"empty":    nil,
			},
			want: []Assignment{
				{Key: "debug", Value: "true", Channel: ChannelSet},
				{Key: "empty", Value: "null", Channel: ChannelSet},
				{Key: "image", Value: "nginx", Channel: ChannelSet},
				{Key: "replicas", Value: "3", Channel: ChannelSet},
				{Key: "weight", Value: "0.5", Channel: ChannelSetJSON},
			},
		},
		{
			name: "strings the generic grammar would retype ride the string channel",
			tree: map[string]interface{}{
				"versionLabel": "1",
				"mode":         "0644",
				"enabledStr":   "true",
				"nullStr":      "null",
				"blank":        "",
				"plain":        "hello",
			},
			want: []Assignment{
				{Key: "blank", Value: "", Channel: ChannelSetString},
				{Key: "enabledStr", Value: "true", Channel: ChannelSetString},
				{Key: "mode", Value: "0644", Channel: ChannelSetString},
				{Key: "nullStr", Value: "null", Channel: ChannelSetString},
				{Key: "plain", Value: "hello", Channel: ChannelSet},
				{Key: "versionLabel", Value: "1", Channel: ChannelSetString},
			},
		},
		{
			name: "nested objects use dotted keys",
			tree: map[string]interface{}{
				"service": map[string]interface{}{
					"type": "ClusterIP",
					"port": int64(80),
				},
			},
			want: []Assignment{
				{Key: "service.port", Value: "80", Channel: ChannelSet},
				{Key: "service.type", Value: "ClusterIP", Channel: ChannelSet},
			},
		},
		{
			name: "arrays use bracketed indices",
			tree: map[string]interface{}{
				"tolerations": []interface{}{
					map[string]interface{}{"key": "dedicated"},
					map[string]interface{}{"key": "infra"},
				},
			},
			want: []Assignment{
				{Key: "tolerations[0].key", Value: "dedicated", Channel: ChannelSet},
				{Key: "tolerations[1].key", Value: "infra", Channel: ChannelSet},
			},
		},
		{
			name: "whole floats past int64 range ride the json channel",
			tree: map[string]interface{}{
				// 2^63: whole, but int64(f) would overflow to the sign bit
				"boundary": float64(1 << 63),
				"huge":     1e30,
				"min":      float64(math.MinInt64),
			},
			want: []Assignment{
				{Key: "boundary", Value: "9223372036854776000", Channel: ChannelSetJSON},
				{Key: "huge", Value: "1e+30", Channel: ChannelSetJSON},
				{Key: "min", Value: "-9223372036854775808", Channel: ChannelSet},
			},
		},
		{
			name: "empty containers are emitted, not omitted",
			tree: map[string]interface{}{
				"extraLabels": map[string]interface{}{},
				"extraHosts":  []interface{}{},
			},
			want: []Assignment{
				{Key: "extraHosts", Value: "[]", Channel: ChannelSetJSON},
				{Key: "extraLabels", Value: "{}", Channel: ChannelSetJSON},
			},
		},
		{
			name: "structural characters in keys and values are escaped",
			tree: map[string]interface{}{
				"annotations": map[string]interface{}{
					"app.kubernetes.io/name": "web",
				},
				"args": "a,b",
			},
			want: []Assignment{
				{Key: `annotations.app\.kubernetes\.io/name`, Value: "web", Channel: ChannelSet},
				{Key: "args", Value: `a\,b`, Channel: ChannelSet},
			},
		},
		{
			name: "empty root flattens to nothing",
			tree: map[string]interface{}{},
			want: nil,
		},
		{
			name:    "non-object root errors",
			tree:    []interface{}{"a"},
			wantErr: true,
		},
		{
			name: "non-json value errors",
			tree: map[string]interface{}{
				"oops": struct{ X int }{X: 1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Flatten(tt.tree)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func Test_Flatten_IsDeterministic(t *testing.T) {
	tree := map[string]interface{}{
		"b": map[string]interface{}{"y": int64(2), "x": int64(1)},
		"a": []interface{}{"one", "two"},
		"c": "plain",
	}

	first, err := Flatten(tree)
	require.NoError(t, err)
	second, err := Flatten(tree)
	require.NoError(t, err)

	require.Equal(t, first, second)

	// keys come out in lexicographic pre-order
	keys := []string{}
	for _, a := range first {
		keys = append(keys, a.Key)
	}
	require.Equal(t, []string{"a[0]", "a[1]", "b.x", "b.y", "c"}, keys)
}

func Test_FlattenApply_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tree map[string]interface{}
	}{
		{
			name: "scalars of every kind",
			tree: map[string]interface{}{
				"replicas": int64(3),
				"debug":    true,
				"image":    "nginx",
				"weight":   0.5,
				"off":      nil,
			},
		},
		{
			name: "retypeable strings survive as strings",
			tree: map[string]interface{}{
				"versionLabel": "1",
				"mode":         "0644",
				"flag":         "false",
				"blank":        "",
			},
		},
		{
			name: "nested structure",
			tree: map[string]interface{}{
				"service": map[string]interface{}{
					"type": "NodePort",
					"port": int64(8080),
				},
				"tolerations": []interface{}{
					map[string]interface{}{"key": "dedicated", "operator": "Equal", "value": "infra"},
				},
			},
		},
		{
			name: "empty containers",
			tree: map[string]interface{}{
				"extraLabels": map[string]interface{}{},
				"extraHosts":  []interface{}{},
				"name":        "web",
			},
		},
		{
			name: "escaped keys and values",
			tree: map[string]interface{}{
				"annotations": map[string]interface{}{
					"app.kubernetes.io/name": "web",
				},
				"args": "one,two",
			},
		},
		{
			name: "whole floats at the int64 boundary",
			tree: map[string]interface{}{
				"boundary": float64(1 << 63),
				"min":      float64(math.MinInt64),
				"huge":     1e30,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assignments, err := Flatten(tt.tree)
			require.NoError(t, err)

			rebuilt, err := BuildValues(assignments)
			require.NoError(t, err)

			wantJSON, err := json.Marshal(tt.tree)
			require.NoError(t, err)
			gotJSON, err := json.Marshal(rebuilt)
			require.NoError(t, err)
			require.JSONEq(t, string(wantJSON), string(gotJSON))
		})
	}
}

func Test_ApplyAssignments_UnknownChannel(t *testing.T) {
	err := ApplyAssignments([]Assignment{{Key: "a", Value: "b", Channel: "set-yaml"}}, map[string]interface{}{})
	require.Error(t, err)
}
