package config

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/go-ini/ini"
)

// iniCodec teaches viper the INI format used by older config files.
// Keys of the unnamed section are top level, every other section becomes a
// nested map, so "[email] sender" is read as "email.sender" and
// "[storage.s3] region" as "storage.s3.region".
type iniCodec struct{}

func (iniCodec) Decode(b []byte, v map[string]any) error {
	// values are kept whole: "#" and ";" inside a value are not comments
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true, Insensitive: true}, b)
	if err != nil {
		return err
	}

	for _, section := range f.Sections() {
		dst := v
		if section.Name() != ini.DefaultSection {
			for _, name := range strings.Split(section.Name(), ".") {
				m, ok := dst[name].(map[string]any)
				if !ok {
					m = make(map[string]any)
					dst[name] = m
				}
				dst = m
			}
		}
		for _, key := range section.Keys() {
			dst[key.Name()] = key.String()
		}
	}

	return nil
}

func (iniCodec) Encode(v map[string]any) ([]byte, error) {
	f := ini.Empty()

	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		switch val := v[name].(type) {
		case map[string]any:
			section, err := f.NewSection(name)
			if err != nil {
				return nil, err
			}
			keys := make([]string, 0, len(val))
			for k := range val {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if _, err := section.NewKey(k, fmt.Sprint(val[k])); err != nil {
					return nil, err
				}
			}
		default:
			if _, err := f.Section(ini.DefaultSection).NewKey(name, fmt.Sprint(val)); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
