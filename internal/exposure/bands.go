package exposure

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// BandTableVersionV1 identifies DefaultBandTable.
	BandTableVersionV1 = "exposure-bands/v1"

	bandTableVersionRequiredMessageConstant = "band table version must be provided"
	bandTableEmptyMessageConstant           = "band table must define at least one threshold"
	bandTableOrderTemplateConstant          = "band table thresholds must be strictly increasing: %d follows %d"
	bandTableRangeTemplateConstant          = "band table threshold %d is outside 0..100"
	bandTableCeilingRequiredMessageConstant = "band table ceiling band must be provided"
)

// Band is a qualitative exposure rating.
type Band string

// Bands of DefaultBandTable.
const (
	BandControlled  Band = "Controlled"
	BandEmerging    Band = "Emerging"
	BandMaterial    Band = "Material"
	BandSignificant Band = "Significant"
	BandCritical    Band = "Critical"
)

// Threshold maps every percentage up to and including UpperBound to Band.
type Threshold struct {
	UpperBound int
	Band       Band
}

// BandTable classifies exposure percentages. Thresholds are checked in order;
// percentages above the last threshold map to Ceiling.
type BandTable struct {
	Version    string
	Thresholds []Threshold
	Ceiling    Band
}

// DefaultBandTable is exposure-bands/v1:
// <=20 Controlled, <=40 Emerging, <=60 Material, <=80 Significant, otherwise Critical.
var DefaultBandTable = BandTable{
	Version: BandTableVersionV1,
	Thresholds: []Threshold{
		{UpperBound: 20, Band: BandControlled},
		{UpperBound: 40, Band: BandEmerging},
		{UpperBound: 60, Band: BandMaterial},
		{UpperBound: 80, Band: BandSignificant},
	},
	Ceiling: BandCritical,
}

// Validate checks that thresholds are strictly increasing and within 0..100.
func (table BandTable) Validate() error {
	if len(strings.TrimSpace(table.Version)) == 0 {
		return errors.New(bandTableVersionRequiredMessageConstant)
	}
	if len(table.Thresholds) == 0 {
		return errors.New(bandTableEmptyMessageConstant)
	}
	if len(strings.TrimSpace(string(table.Ceiling))) == 0 {
		return errors.New(bandTableCeilingRequiredMessageConstant)
	}
	previous := -1
	for _, threshold := range table.Thresholds {
		if threshold.UpperBound < 0 || threshold.UpperBound > 100 {
			return fmt.Errorf(bandTableRangeTemplateConstant, threshold.UpperBound)
		}
		if threshold.UpperBound <= previous {
			return fmt.Errorf(bandTableOrderTemplateConstant, threshold.UpperBound, previous)
		}
		previous = threshold.UpperBound
	}
	return nil
}

// Classify returns the band for a percentage.
func (table BandTable) Classify(percent int) Band {
	for _, threshold := range table.Thresholds {
		if percent <= threshold.UpperBound {
			return threshold.Band
		}
	}
	return table.Ceiling
}
