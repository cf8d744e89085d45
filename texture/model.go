package texture

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type BlockStateMultipart struct {
	Apply json.RawMessage `json:"apply"`
	When  json.RawMessage `json:"when"`
}

type BlockStateVariant struct {
	Model string `json:"model"`
}

type BlockStateInfo struct {
	Variants  map[string]json.RawMessage `json:"variants"`
	Multipart []BlockStateMultipart      `json:"multipart"`
}

type ModelInfo struct {
	Parent   string            `json:"parent"`
	Textures map[string]string `json:"textures"`
}

// texture keys in the order a top-down color is picked from
var preferredTextures = []string{"top", "all", "texture", "end", "side", "cross", "particle"}

// maxParentDepth bounds model inheritance chains.
const maxParentDepth = 16

// stripNamespace turns "minecraft:block/stone" into "block/stone".
func stripNamespace(name string) string {
	if _, rest, ok := strings.Cut(name, ":"); ok {
		return rest
	}
	return name
}

// decodeVariants accepts either a single variant or a weighted list of them.
func decodeVariants(raw json.RawMessage) []BlockStateVariant {
	var variants []BlockStateVariant
	err := json.Unmarshal(raw, &variants)
	if err == nil {
		return variants
	}

	var v BlockStateVariant
	if err := json.Unmarshal(raw, &v); err == nil {
		return []BlockStateVariant{v}
	}
	return nil
}

// defaultModel returns the model of the block's default looking state: the
// property-less variant when there is one, otherwise the first variant by
// key, or the first multipart model.
func defaultModel(info BlockStateInfo) (string, error) {
	if len(info.Variants) > 0 {
		keys := make([]string, 0, len(info.Variants))
		for k := range info.Variants {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		key := keys[0]
		if _, ok := info.Variants[""]; ok {
			key = ""
		}

		variants := decodeVariants(info.Variants[key])
		if len(variants) == 0 || variants[0].Model == "" {
			return "", fmt.Errorf("variant %q has no model", key)
		}
		return variants[0].Model, nil
	}

	for _, part := range info.Multipart {
		variants := decodeVariants(part.Apply)
		if len(variants) > 0 && variants[0].Model != "" {
			return variants[0].Model, nil
		}
	}
	return "", fmt.Errorf("blockstate has no variants")
}

// resolveTextures loads a model and its parents, children overriding parents.
func (a *AssetLoader) resolveTextures(model string) (map[string]string, error) {
	textures := map[string]string{}
	for depth := 0; model != "" && depth < maxParentDepth; depth++ {
		name := stripNamespace(model)
		if strings.HasPrefix(name, "builtin/") {
			break
		}

		var info ModelInfo
		if err := a.LoadJSON(fmt.Sprintf("assets/minecraft/models/%s.json", name), &info); err != nil {
			if depth > 0 {
				break
			}
			return nil, err
		}

		for k, v := range info.Textures {
			if _, ok := textures[k]; !ok {
				textures[k] = v
			}
		}
		model = info.Parent
	}
	return textures, nil
}

// pickTexture chooses the texture seen from above and follows "#name"
// references to their final value.
func pickTexture(textures map[string]string) (string, error) {
	var name string
	for _, key := range preferredTextures {
		if v, ok := textures[key]; ok {
			name = v
			break
		}
	}
	if name == "" {
		keys := make([]string, 0, len(textures))
		for k := range textures {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			name = textures[keys[0]]
		}
	}

	for i := 0; strings.HasPrefix(name, "#") && i < maxParentDepth; i++ {
		name = textures[name[1:]]
	}
	if name == "" || strings.HasPrefix(name, "#") {
		return "", fmt.Errorf("no texture found")
	}
	return stripNamespace(name), nil
}

// BlockTexture returns the texture path (relative to assets/minecraft/textures)
// used to color a block.
func (a *AssetLoader) BlockTexture(block string) (string, error) {
	var info BlockStateInfo
	path := fmt.Sprintf("assets/minecraft/blockstates/%s.json", stripNamespace(block))
	if err := a.LoadJSON(path, &info); err != nil {
		return "", err
	}

	model, err := defaultModel(info)
	if err != nil {
		return "", fmt.Errorf("%s: %w", block, err)
	}

	textures, err := a.resolveTextures(model)
	if err != nil {
		return "", fmt.Errorf("%s: %w", block, err)
	}

	texture, err := pickTexture(textures)
	if err != nil {
		return "", fmt.Errorf("%s (%s): %w", block, model, err)
	}
	return texture, nil
}
