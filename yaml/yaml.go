// Package yaml provides a YAML codec implementation.
package yaml

import (
	"github.com/zoobzio/fieldmap"
	"gopkg.in/yaml.v3"
)

// yamlCodec implements fieldmap.Codec for YAML.
type yamlCodec struct{}

// New returns a YAML codec.
func New() fieldmap.Codec {
	return &yamlCodec{}
}

// ContentType returns the MIME type for YAML.
func (c *yamlCodec) ContentType() string {
	return "application/yaml"
}

// Marshal encodes v as YAML. A fieldmap.Record becomes a mapping node whose
// keys follow the record's order.
func (c *yamlCodec) Marshal(v any) ([]byte, error) {
	if rec, ok := v.(fieldmap.Record); ok {
		node, err := recordNode(rec)
		if err != nil {
			return nil, err
		}
		return yaml.Marshal(node)
	}
	return yaml.Marshal(v)
}

// Unmarshal decodes YAML data into v.
func (c *yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

func recordNode(rec fieldmap.Record) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range rec {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Name}
		val := &yaml.Node{}
		if err := val.Encode(e.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}
