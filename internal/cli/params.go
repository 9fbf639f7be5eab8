package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/vpypenode/pkg/errors"
	"github.com/matzehuels/vpypenode/pkg/node"
)

// paramFlags collects raw node parameters from --preset and --set.
type paramFlags struct {
	sets   []string
	preset string
}

func (p *paramFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&p.sets, "set", nil, "set a node parameter (name=value, repeatable)")
	cmd.Flags().StringVar(&p.preset, "preset", "", "TOML file of node parameters")
}

// raw returns the parameters with --set values overriding the preset.
// Values stay loosely typed; the node schema coerces and checks them.
func (p *paramFlags) raw() (map[string]any, error) {
	out := map[string]any{}
	if p.preset != "" {
		preset, err := loadPreset(p.preset)
		if err != nil {
			return nil, err
		}
		for k, v := range preset {
			out[k] = v
		}
	}
	for _, kv := range p.sets {
		k, v, err := parseSet(kv)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// parseSet splits "name=value". The value may itself contain '='.
func parseSet(kv string) (string, string, error) {
	k, v, ok := strings.Cut(kv, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", "", errors.New(errors.ErrCodeInvalidParam, "--set %q: want name=value", kv)
	}
	return k, v, nil
}

// loadPreset reads a flat TOML table of parameter values:
//
//	merge_tolerance = 0.2
//	rotation = 0
//	linesort_enable = true
func loadPreset(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "preset %s", path)
		}
		return nil, fmt.Errorf("read preset: %w", err)
	}
	var out map[string]any
	md, err := toml.Decode(string(data), &out)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPreset, err, "preset %s", path)
	}
	for _, k := range md.Keys() {
		if len(k) > 1 {
			return nil, errors.New(errors.ErrCodeInvalidPreset, "preset %s: nested key %q, parameters must be top-level", path, k.String())
		}
	}
	return out, nil
}

// documentParam returns the name of the node's document input, if it has one.
func documentParam(n node.Node) (string, bool) {
	for _, p := range n.Schema() {
		if p.Type == node.TypeString && p.ForceInput {
			return p.Name, true
		}
	}
	return "", false
}

// nodeNames lists registered node names in sorted order.
func nodeNames(reg *node.Registry) []string {
	all := reg.All()
	names := make([]string, len(all))
	for i, n := range all {
		names[i] = n.Info().Name
	}
	return names
}
