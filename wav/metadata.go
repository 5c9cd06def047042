package wav

import "time"

// TechnicalInfo is the immutable technical snapshot of a WAV's fmt / data
// chunks — spec.md §3's FileRecord.technical.
type TechnicalInfo struct {
	SampleRate uint32
	BitDepth   uint16
	Channels   uint16
	FormatCode uint16
	FrameCount int64
	Duration   time.Duration
	ByteSize   int64
}

// ChunkMetadata is the neutral, chunk-level view of a WAV's descriptive
// metadata: the merged result of reading bext/iXML/LIST-INFO (on Open), or
// the fields a caller wants written back (on Rewrite). Field names mirror
// spec.md §3's FileRecord metadata fields one-to-one so the repository
// package can copy it directly onto a FileRecord without translation.
type ChunkMetadata struct {
	Category       string
	Subcategory    string
	CatID          string
	CategoryFull   string
	UserCategory   string
	FXName         string
	Description    string
	Keywords       string
	Notes          string
	Designer       string
	Library        string
	Project        string
	Microphone     string
	MicPerspective string
	RecMedium      string
	ReleaseDate    string
	Rating         string
	IsDesigned     string
	Manufacturer   string
	RecType        string
	CreatorID      string
	SourceID       string

	// CustomFields holds iXML <USER> tags outside the built-in set, keyed
	// by their exact raw tag name (spec §3's custom_fields).
	CustomFields map[string]string
}

// Clone returns a deep copy, so callers can safely mutate the result
// without aliasing CustomFields.
func (m ChunkMetadata) Clone() ChunkMetadata {
	out := m
	if m.CustomFields != nil {
		out.CustomFields = make(map[string]string, len(m.CustomFields))
		for k, v := range m.CustomFields {
			out.CustomFields[k] = v
		}
	}

	return out
}

// fieldSlot describes one row of the field mapping table in spec.md §6.1:
// the record field's home in the iXML <USER>/<ASWG> blocks and, where one
// exists, its BEXT or LIST-INFO fallback column.
type fieldSlot struct {
	Name      string
	UserTag   string
	ASWGTag   string
	BextField string // "description", "originator", or "" if unmapped
	InfoTag   [4]byte
	Get       func(*ChunkMetadata) string
	Set       func(*ChunkMetadata, string)
}

// fieldSlots is the single source of truth for the §6.1 mapping table,
// consumed by the iXML merge (all rows) and the LIST-INFO gap-fill (InfoTag
// rows). BextField records the BEXT column for reference only: the BEXT
// code in bext_chunk.go handles description and designer directly.
var fieldSlots = []fieldSlot{
	{
		Name: "category", UserTag: "CATEGORY", ASWGTag: "category", InfoTag: markerIGNR,
		Get: func(m *ChunkMetadata) string { return m.Category },
		Set: func(m *ChunkMetadata, v string) { m.Category = v },
	},
	{
		Name: "subcategory", UserTag: "SUBCATEGORY", ASWGTag: "subCategory",
		Get: func(m *ChunkMetadata) string { return m.Subcategory },
		Set: func(m *ChunkMetadata, v string) { m.Subcategory = v },
	},
	{
		Name: "cat_id", UserTag: "CATID", ASWGTag: "catId",
		Get: func(m *ChunkMetadata) string { return m.CatID },
		Set: func(m *ChunkMetadata, v string) { m.CatID = v },
	},
	{
		Name: "category_full", UserTag: "CATEGORYFULL",
		Get: func(m *ChunkMetadata) string { return m.CategoryFull },
		Set: func(m *ChunkMetadata, v string) { m.CategoryFull = v },
	},
	{
		Name: "fx_name", UserTag: "FXNAME", ASWGTag: "fxName", InfoTag: markerINAM,
		Get: func(m *ChunkMetadata) string { return m.FXName },
		Set: func(m *ChunkMetadata, v string) { m.FXName = v },
	},
	{
		Name: "description", UserTag: "DESCRIPTION", BextField: "description",
		Get: func(m *ChunkMetadata) string { return m.Description },
		Set: func(m *ChunkMetadata, v string) { m.Description = v },
	},
	{
		Name: "keywords", UserTag: "KEYWORDS", InfoTag: markerIKEY,
		Get: func(m *ChunkMetadata) string { return m.Keywords },
		Set: func(m *ChunkMetadata, v string) { m.Keywords = v },
	},
	{
		Name: "notes", UserTag: "NOTES", ASWGTag: "notes", InfoTag: markerICMT,
		Get: func(m *ChunkMetadata) string { return m.Notes },
		Set: func(m *ChunkMetadata, v string) { m.Notes = v },
	},
	{
		Name: "designer", UserTag: "DESIGNER", ASWGTag: "originator", BextField: "originator", InfoTag: markerIART,
		Get: func(m *ChunkMetadata) string { return m.Designer },
		Set: func(m *ChunkMetadata, v string) { m.Designer = v },
	},
	{
		Name: "library", UserTag: "LIBRARY", ASWGTag: "library", InfoTag: markerIPRD,
		Get: func(m *ChunkMetadata) string { return m.Library },
		Set: func(m *ChunkMetadata, v string) { m.Library = v },
	},
	{
		Name: "user_category", UserTag: "USERCATEGORY", ASWGTag: "userCategory",
		Get: func(m *ChunkMetadata) string { return m.UserCategory },
		Set: func(m *ChunkMetadata, v string) { m.UserCategory = v },
	},
	{
		Name: "microphone", UserTag: "MICROPHONE", ASWGTag: "micType",
		Get: func(m *ChunkMetadata) string { return m.Microphone },
		Set: func(m *ChunkMetadata, v string) { m.Microphone = v },
	},
	{
		Name: "mic_perspective", UserTag: "MICPERSPECTIVE",
		Get: func(m *ChunkMetadata) string { return m.MicPerspective },
		Set: func(m *ChunkMetadata, v string) { m.MicPerspective = v },
	},
	{
		Name: "rec_medium", UserTag: "RECMEDIUM",
		Get: func(m *ChunkMetadata) string { return m.RecMedium },
		Set: func(m *ChunkMetadata, v string) { m.RecMedium = v },
	},
	{
		Name: "release_date", UserTag: "RELEASEDATE",
		Get: func(m *ChunkMetadata) string { return m.ReleaseDate },
		Set: func(m *ChunkMetadata, v string) { m.ReleaseDate = v },
	},
	{
		Name: "rating", UserTag: "RATING",
		Get: func(m *ChunkMetadata) string { return m.Rating },
		Set: func(m *ChunkMetadata, v string) { m.Rating = v },
	},
	{
		Name: "manufacturer", UserTag: "MANUFACTURER", ASWGTag: "manufacturer",
		Get: func(m *ChunkMetadata) string { return m.Manufacturer },
		Set: func(m *ChunkMetadata, v string) { m.Manufacturer = v },
	},
	{
		Name: "rec_type", UserTag: "RECTYPE", ASWGTag: "recType",
		Get: func(m *ChunkMetadata) string { return m.RecType },
		Set: func(m *ChunkMetadata, v string) { m.RecType = v },
	},
	{
		Name: "creator_id", UserTag: "CREATORID", ASWGTag: "creatorId",
		Get: func(m *ChunkMetadata) string { return m.CreatorID },
		Set: func(m *ChunkMetadata, v string) { m.CreatorID = v },
	},
	{
		Name: "source_id", UserTag: "SOURCEID", ASWGTag: "sourceId",
		Get: func(m *ChunkMetadata) string { return m.SourceID },
		Set: func(m *ChunkMetadata, v string) { m.SourceID = v },
	},
	{
		Name: "is_designed", ASWGTag: "isDesigned",
		Get: func(m *ChunkMetadata) string { return m.IsDesigned },
		Set: func(m *ChunkMetadata, v string) { m.IsDesigned = v },
	},
	{
		Name: "project", ASWGTag: "project",
		Get: func(m *ChunkMetadata) string { return m.Project },
		Set: func(m *ChunkMetadata, v string) { m.Project = v },
	},
}
