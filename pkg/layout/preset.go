package layout

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/phylonet/pkg/errors"
)

type presetFile struct {
	Styles map[string]toml.Primitive `toml:"styles"`
}

// DecodeStyles reads named style presets from a TOML document of the form
//
//	[styles.dated]
//	log_scale = true
//	inline_recomb = false
//
// Keys missing from a preset keep their [DefaultStyle] value. Unknown keys
// and invalid values are INVALID_STYLE errors.
func DecodeStyles(r io.Reader) (map[string]Style, error) {
	var f presetFile
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStyle, err, "decode style presets")
	}

	styles := make(map[string]Style, len(f.Styles))
	for name, prim := range f.Styles {
		s := DefaultStyle()
		if err := md.PrimitiveDecode(prim, &s); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidStyle, err, "style %q", name)
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("style %q: %w", name, err)
		}
		styles[name] = s
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidStyle, "unknown style keys: %s", strings.Join(keys, ", "))
	}
	return styles, nil
}

// LoadStyleFile reads named style presets from the TOML file at path.
func LoadStyleFile(path string) (map[string]Style, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return DecodeStyles(f)
}
