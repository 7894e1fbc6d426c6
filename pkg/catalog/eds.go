package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// LoadFile parses a static catalog description file and builds a
// Catalog from it, generalizing the teacher's EDS-file loader
// (pkg/od.Parse) from CANopen object-dictionary sections to
// category/carrier/terminal sections. The expected layout:
//
//	[category default]
//	slotted_aloha = true
//	default = true
//
//	[carrier 1]
//	category = default
//	symbol_rate = 1000000
//	modcods = QPSK_1_2:1.0, 8PSK_3_4:2.25
//
//	[terminal 3]
//	category = default
func LoadFile(path string) (*Catalog, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: load %s: %w", path, err)
	}
	return build(f)
}

func build(f *ini.File) (*Catalog, error) {
	categories := make(map[string]*Category)
	carriersByCategory := make(map[string][]*CarrierGroup)
	staticAssignment := make(map[uint8]string)
	defaultCategory := ""

	for _, section := range f.Sections() {
		name := section.Name()
		switch {
		case strings.HasPrefix(name, "category "):
			catName := strings.TrimSpace(strings.TrimPrefix(name, "category "))
			categories[catName] = NewCategory(catName, section.Key("slotted_aloha").MustBool(false), nil)
			if section.Key("default").MustBool(false) {
				defaultCategory = catName
			}

		case strings.HasPrefix(name, "carrier "):
			idStr := strings.TrimSpace(strings.TrimPrefix(name, "carrier "))
			id, err := strconv.ParseUint(idStr, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("catalog: bad carrier id %q: %w", idStr, err)
			}
			catName := section.Key("category").String()
			carrier := &CarrierGroup{
				ID:         uint16(id),
				SymbolRate: section.Key("symbol_rate").MustFloat64(0),
				Modcods:    parseModcods(section.Key("modcods").String()),
			}
			carriersByCategory[catName] = append(carriersByCategory[catName], carrier)

		case strings.HasPrefix(name, "terminal "):
			idStr := strings.TrimSpace(strings.TrimPrefix(name, "terminal "))
			id, err := strconv.ParseUint(idStr, 10, 8)
			if err != nil {
				return nil, fmt.Errorf("catalog: bad terminal id %q: %w", idStr, err)
			}
			staticAssignment[uint8(id)] = section.Key("category").String()
		}
	}

	for catName, carriers := range carriersByCategory {
		cat, ok := categories[catName]
		if !ok {
			return nil, fmt.Errorf("catalog: carrier references unknown category %q", catName)
		}
		cat.Carriers = carriers
	}

	return New(categories, staticAssignment, defaultCategory), nil
}

// parseModcods parses a "name:efficiency, name:efficiency" list into a
// Modcod slice, skipping malformed entries rather than failing the
// whole load — a single bad FMT line shouldn't take down the catalog.
func parseModcods(raw string) []Modcod {
	if raw == "" {
		return nil
	}
	var out []Modcod
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			continue
		}
		eff, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			continue
		}
		out = append(out, Modcod{Name: strings.TrimSpace(parts[0]), Efficiency: eff})
	}
	return out
}
