package models

// Lookup rows populate form dropdowns and the /config aggregation.

type Level struct {
	Code         string `db:"code" yaml:"code"`
	Name         string `db:"name" yaml:"name"`
	DisplayOrder int    `db:"display_order" yaml:"display_order"`
}

type Stream struct {
	Code         string `db:"code" yaml:"code"`
	Name         string `db:"name" yaml:"name"`
	LevelCode    string `db:"level_code" yaml:"level_code"`
	DisplayOrder int    `db:"display_order" yaml:"display_order"`
}

type Language struct {
	Code         string `db:"code" yaml:"code"`
	Name         string `db:"name" yaml:"name"`
	DisplayOrder int    `db:"display_order" yaml:"display_order"`
}

type Category struct {
	Code         string `db:"code" yaml:"code"`
	Name         string `db:"name" yaml:"name"`
	DisplayOrder int    `db:"display_order" yaml:"display_order"`
}

// Subject rows repeat the same code once per stream it belongs to.
type Subject struct {
	Code         string `db:"code" yaml:"code"`
	Name         string `db:"name" yaml:"name"`
	StreamCode   string `db:"stream_code" yaml:"stream_code"`
	LevelCode    string `db:"level_code" yaml:"level_code"`
	DisplayOrder int    `db:"display_order" yaml:"display_order"`
}

type Lookups struct {
	Levels     []Level    `yaml:"levels"`
	Streams    []Stream   `yaml:"streams"`
	Languages  []Language `yaml:"languages"`
	Categories []Category `yaml:"material_categories"`
	Subjects   []Subject  `yaml:"subjects"`
}

// AppConfig is the reshaped lookup payload served to the submit and filter forms.
type AppConfig struct {
	Levels             []string                       `json:"levels"`
	Streams            map[string][]string            `json:"streams"`
	Languages          []string                       `json:"languages"`
	MaterialCategories []string                       `json:"materialCategories"`
	Subjects           map[string][]string            `json:"subjects"`
	SubjectsByLevel    map[string][]string            `json:"subjectsByLevel"`
	SubjectStreams     map[string]map[string][]string `json:"subjectStreams"`
	SessionTypes       []SessionType                  `json:"sessionTypes"`
}
