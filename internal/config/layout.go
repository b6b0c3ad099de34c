package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/couchcryptid/obstacle-data-etl/internal/domain"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxLayoutFileSize = 64 * 1024

// Layouts are the column contracts used for one run.
type Layouts struct {
	DOF domain.Layout
	APT domain.Layout
}

// DefaultLayouts returns the built-in DOF and APT contracts.
func DefaultLayouts() Layouts {
	return Layouts{DOF: domain.DOFLayout(), APT: domain.APTLayout()}
}

// layoutOverride is one dataset's section of the layout file:
//
//	dof:
//	  min_length: 100
//	  fields:
//	    agl: [83, 88]
type layoutOverride struct {
	MinLength int              `koanf:"min_length"`
	Fields    map[string][]int `koanf:"fields"`
}

type layoutFile struct {
	DOF layoutOverride `koanf:"dof"`
	APT layoutOverride `koanf:"apt"`
}

// LoadLayouts returns the default layouts with any overrides from the YAML
// file at path applied. An empty path returns the defaults.
func LoadLayouts(path string) (Layouts, error) {
	layouts := DefaultLayouts()
	if path == "" {
		return layouts, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Layouts{}, fmt.Errorf("LAYOUT_FILE: %w", err)
	}
	if info.Size() > maxLayoutFileSize {
		return Layouts{}, fmt.Errorf("LAYOUT_FILE: %s exceeds %d bytes", path, maxLayoutFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Layouts{}, fmt.Errorf("LAYOUT_FILE: %w", err)
	}
	return ParseLayouts(content)
}

// ParseLayouts applies YAML layout overrides to the defaults.
func ParseLayouts(content []byte) (Layouts, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return DefaultLayouts(), nil
	}
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return Layouts{}, fmt.Errorf("parse layout file: %w", err)
	}
	var lf layoutFile
	if err := k.Unmarshal("", &lf); err != nil {
		return Layouts{}, fmt.Errorf("decode layout file: %w", err)
	}

	layouts := DefaultLayouts()
	var err error
	if layouts.DOF, err = applyOverride(layouts.DOF, lf.DOF); err != nil {
		return Layouts{}, err
	}
	if layouts.APT, err = applyOverride(layouts.APT, lf.APT); err != nil {
		return Layouts{}, err
	}
	return layouts, nil
}

func applyOverride(base domain.Layout, o layoutOverride) (domain.Layout, error) {
	fields := make(map[string]domain.Field, len(o.Fields))
	for name, r := range o.Fields {
		if len(r) != 2 {
			return domain.Layout{}, fmt.Errorf("%s layout: field %s: want [start, end], got %v", base.Name, name, r)
		}
		fields[name] = domain.Field{Start: r[0], End: r[1]}
	}
	return base.WithOverrides(o.MinLength, fields)
}
