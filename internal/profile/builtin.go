package profile

import _ "embed"

//go:embed profiles/full-content.yaml
var fullContentYAML []byte

//go:embed profiles/moderate.yaml
var moderateYAML []byte

//go:embed profiles/metadata-only.yaml
var metadataOnlyYAML []byte

// builtinProfiles maps profile ids to their embedded YAML content. These
// three ids must always resolve, with or without a profile store.
var builtinProfiles = map[string][]byte{
	"full-content":  fullContentYAML,
	"moderate":      moderateYAML,
	"metadata-only": metadataOnlyYAML,
}
