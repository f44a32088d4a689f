package api

import (
	"fmt"
	"strings"
)

// RockClass is a rock type the scanner can recognise.
type RockClass string

const (
	Basalt       RockClass = "Basalt"
	Conglomerate RockClass = "Conglomerate"
	Dolerite     RockClass = "Dolerite"
	Gneiss       RockClass = "Gneiss"
	Granite      RockClass = "Granite"
	Limestone    RockClass = "Limestone"
	Mudstone     RockClass = "Mudstone"
	Norite       RockClass = "Norite"
	Quartzite    RockClass = "Quartzite"
	Sandstone    RockClass = "Sandstone"
	Schist       RockClass = "Schist"
	Shale        RockClass = "Shale"
	Tuff         RockClass = "Tuff"
)

// Category is the geological family of a rock class.
type Category string

const (
	Igneous     Category = "igneous"
	Sedimentary Category = "sedimentary"
	Metamorphic Category = "metamorphic"
)

// RockInfo is the catalog entry of a rock class.
type RockInfo struct {
	Class     RockClass
	Category  Category
	CatalogID string // "R001".."R013", the id used by add-rock
}

// RockClasses lists the known classes in classifier order.
var RockClasses = []RockClass{
	Basalt, Conglomerate, Dolerite, Gneiss, Granite, Limestone, Mudstone,
	Norite, Quartzite, Sandstone, Schist, Shale, Tuff,
}

var rockCategories = map[RockClass]Category{
	Basalt:       Igneous,
	Conglomerate: Sedimentary,
	Dolerite:     Igneous,
	Gneiss:       Metamorphic,
	Granite:      Igneous,
	Limestone:    Sedimentary,
	Mudstone:     Sedimentary,
	Norite:       Igneous,
	Quartzite:    Metamorphic,
	Sandstone:    Sedimentary,
	Schist:       Metamorphic,
	Shale:        Sedimentary,
	Tuff:         Igneous,
}

var rockCatalog = buildCatalog()

func buildCatalog() map[string]RockInfo {
	catalog := make(map[string]RockInfo, len(RockClasses))
	for i, class := range RockClasses {
		catalog[strings.ToLower(string(class))] = RockInfo{
			Class:     class,
			Category:  rockCategories[class],
			CatalogID: fmt.Sprintf("R%03d", i+1),
		}
	}
	return catalog
}

// IsKnownClass reports whether label names a known rock class exactly.
func IsKnownClass(label string) bool {
	_, ok := rockCategories[RockClass(label)]
	return ok
}

// LookupRock finds the catalog entry for label, ignoring case and
// surrounding whitespace.
func LookupRock(label string) (RockInfo, bool) {
	info, ok := rockCatalog[strings.ToLower(strings.TrimSpace(label))]
	return info, ok
}

// LookupCatalogID finds the catalog entry with the given id, e.g. "R005".
func LookupCatalogID(id string) (RockInfo, bool) {
	for _, info := range rockCatalog {
		if strings.EqualFold(info.CatalogID, id) {
			return info, true
		}
	}
	return RockInfo{}, false
}
