package config

// Profile holds a named set of analysis options for one kind of CRM export.
// Different systems export different schemas (a Salesforce lead dump and a
// HubSpot contact export rarely share column names), so keeping per-system
// settings in one config file avoids long flag invocations.
type Profile struct {
	// RequiredColumns lists columns every record must fill.
	RequiredColumns []string `yaml:"requiredColumns,omitempty"`

	// ColumnTypes maps column names to type names ("email", "phone",
	// "monetary", "date", "text").
	ColumnTypes map[string]string `yaml:"columnTypes,omitempty"`

	// IdentifyingColumns lists the columns whose values form the row
	// signature for duplicate detection.
	IdentifyingColumns []string `yaml:"identifyingColumns,omitempty"`

	// Threshold overrides the near-duplicate similarity threshold.
	// If zero, the global threshold is used.
	Threshold float64 `yaml:"threshold,omitempty"`

	// MaxRows overrides the row limit for this profile.
	// If zero, the global limit is used.
	MaxRows int `yaml:"maxRows,omitempty"`

	// MaxColumns overrides the column limit for this profile.
	// If zero, the global limit is used.
	MaxColumns int `yaml:"maxColumns,omitempty"`

	// MinTextLength overrides the short-text threshold for this profile.
	// If zero, the global threshold is used.
	MinTextLength int `yaml:"minTextLength,omitempty"`
}

// File represents the structure of the .crmscan configuration file.
type File struct {
	// Profiles maps profile names to their analysis configurations.
	// Keys are free-form names chosen by the user (e.g., "salesforce").
	Profiles map[string]Profile `yaml:"profiles,omitempty"`

	// Defaults contains default analysis configuration applied to all
	// profiles unless overridden in the named profile.
	Defaults Profile `yaml:"defaults,omitempty"`
}

// GetProfile returns the configuration for a named profile.
// It merges the named profile over the file's defaults. The result never
// aliases the file's maps, so callers may modify it freely.
func (cf *File) GetProfile(name string) Profile {
	// Start with defaults
	result := cf.Defaults

	// Override with the named profile if present
	if profile, ok := cf.Profiles[name]; ok {
		if len(profile.RequiredColumns) > 0 {
			result.RequiredColumns = profile.RequiredColumns
		}
		if len(profile.ColumnTypes) > 0 {
			merged := make(map[string]string, len(result.ColumnTypes)+len(profile.ColumnTypes))
			for k, v := range result.ColumnTypes {
				merged[k] = v
			}
			for k, v := range profile.ColumnTypes {
				merged[k] = v
			}
			result.ColumnTypes = merged
		}
		if len(profile.IdentifyingColumns) > 0 {
			result.IdentifyingColumns = profile.IdentifyingColumns
		}
		if profile.Threshold != 0 {
			result.Threshold = profile.Threshold
		}
		if profile.MaxRows != 0 {
			result.MaxRows = profile.MaxRows
		}
		if profile.MaxColumns != 0 {
			result.MaxColumns = profile.MaxColumns
		}
		if profile.MinTextLength != 0 {
			result.MinTextLength = profile.MinTextLength
		}
	}

	return result
}

// ApplyProfile overlays the profile's non-zero fields onto the config.
// CLI flags the user set explicitly should be re-applied afterwards so
// they win over the profile.
func (c *Config) ApplyProfile(p Profile) {
	if len(p.RequiredColumns) > 0 {
		c.RequiredColumns = p.RequiredColumns
	}
	if len(p.ColumnTypes) > 0 {
		c.ColumnTypes = p.ColumnTypes
	}
	if len(p.IdentifyingColumns) > 0 {
		c.IdentifyingColumns = p.IdentifyingColumns
	}
	if p.Threshold != 0 {
		c.Threshold = p.Threshold
	}
	if p.MaxRows != 0 {
		c.MaxRows = p.MaxRows
	}
	if p.MaxColumns != 0 {
		c.MaxColumns = p.MaxColumns
	}
	if p.MinTextLength != 0 {
		c.MinTextLength = p.MinTextLength
	}
}
