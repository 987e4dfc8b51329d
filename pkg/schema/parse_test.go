package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ParseDocument(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantErr  bool
		assertFn func(*testing.T, *Node, []string)
	}{
		{
			name: "empty document yields an empty object",
			raw:  "",
			assertFn: func(t *testing.T, n *Node, skipped []string) {
				require.Equal(t, KindObject, n.Kind)
				require.Empty(t, n.Children)
				require.Empty(t, skipped)
			},
		},
		{
			name: "property order is preserved",
			raw: `{
				"type": "object",
				"properties": {
					"zebra": {"type": "string"},
					"apple": {"type": "integer"},
					"mango": {"type": "boolean"}
				}
			}`,
			assertFn: func(t *testing.T, n *Node, skipped []string) {
				names := []string{}
				for _, f := range n.Children {
					names = append(names, f.Name)
				}
				require.Equal(t, []string{"zebra", "apple", "mango"}, names)
			},
		},
		{
			name: "defaults and descriptions are carried",
			raw: `{
				"properties": {
					"replicas": {
						"type": "integer",
						"description": "number of pod replicas",
						"default": 2
					}
				}
			}`,
			assertFn: func(t *testing.T, n *Node, skipped []string) {
				replicas := n.Child("replicas")
				require.NotNil(t, replicas)
				require.Equal(t, KindInteger, replicas.Kind)
				require.Equal(t, "number of pod replicas", replicas.Description)
				require.Equal(t, float64(2), replicas.Default)
			},
		},
		{
			name: "string enum becomes a closed choice set",
			raw: `{
				"properties": {
					"serviceType": {
						"type": "string",
						"enum": ["ClusterIP", "NodePort", "LoadBalancer"]
					}
				}
			}`,
			assertFn: func(t *testing.T, n *Node, skipped []string) {
				st := n.Child("serviceType")
				require.NotNil(t, st)
				require.Equal(t, []string{"ClusterIP", "NodePort", "LoadBalancer"}, st.Enum)
			},
		},
		{
			name: "unsupported type is skipped by dotted path",
			raw: `{
				"properties": {
					"config": {
						"type": "object",
						"properties": {
							"raw": {"type": "weird"},
							"name": {"type": "string"}
						}
					}
				}
			}`,
			assertFn: func(t *testing.T, n *Node, skipped []string) {
				require.Equal(t, []string{"config.raw"}, skipped)
				config := n.Child("config")
				require.NotNil(t, config)
				require.Len(t, config.Children, 1)
				require.Equal(t, "name", config.Children[0].Name)
			},
		},
		{
			name: "missing type falls back on structure",
			raw: `{
				"properties": {
					"hasProps": {"properties": {"x": {"type": "string"}}},
					"hasItems": {"items": {"type": "integer"}},
					"bare": {}
				}
			}`,
			assertFn: func(t *testing.T, n *Node, skipped []string) {
				require.Equal(t, KindObject, n.Child("hasProps").Kind)
				require.Equal(t, KindArray, n.Child("hasItems").Kind)
				require.Equal(t, KindInteger, n.Child("hasItems").Items.Kind)
				require.Equal(t, KindString, n.Child("bare").Kind)
			},
		},
		{
			name: "type list takes the first supported entry",
			raw: `{
				"properties": {
					"port": {"type": ["integer", "string"]}
				}
			}`,
			assertFn: func(t *testing.T, n *Node, skipped []string) {
				require.Equal(t, KindInteger, n.Child("port").Kind)
			},
		},
		{
			name: "array without items gets string items",
			raw: `{
				"properties": {
					"hosts": {"type": "array"}
				}
			}`,
			assertFn: func(t *testing.T, n *Node, skipped []string) {
				hosts := n.Child("hosts")
				require.Equal(t, KindArray, hosts.Kind)
				require.Equal(t, KindString, hosts.Items.Kind)
			},
		},
		{
			name: "array with unsupported items renders elements as strings",
			raw: `{
				"properties": {
					"extras": {"type": "array", "items": {"type": "weird"}}
				}
			}`,
			assertFn: func(t *testing.T, n *Node, skipped []string) {
				extras := n.Child("extras")
				require.Equal(t, KindArray, extras.Kind)
				require.Equal(t, KindString, extras.Items.Kind)
			},
		},
		{
			name:    "malformed document errors",
			raw:     `{"properties": {`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, skipped, err := ParseDocument([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.assertFn(t, node, skipped)
		})
	}
}

func Test_NodeMarshalJSON_PreservesChildOrder(t *testing.T) {
	raw := `{
		"properties": {
			"zzz": {"type": "string"},
			"aaa": {"type": "string"}
		}
	}`

	node, _, err := ParseDocument([]byte(raw))
	require.NoError(t, err)

	data, err := node.MarshalJSON()
	require.NoError(t, err)

	// children serialize as an array, so zzz must come before aaa
	out := string(data)
	require.Less(t, strings.Index(out, `"name":"zzz"`), strings.Index(out, `"name":"aaa"`))
	require.NotEqual(t, -1, strings.Index(out, `"name":"zzz"`))
}
