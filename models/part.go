package models

// Part is one row of the ingested vendor catalog.
// The store is rebuilt wholesale on each conversion; LCSCPart is unique
// within a store but rows are never upserted incrementally.
type Part struct {
	ID             uint   `gorm:"primaryKey"`
	LCSCPart       string `gorm:"column:lcsc_part;uniqueIndex;not null"`
	FirstCategory  string
	SecondCategory string
	MfrPart        string
	Package        string
	SolderJoint    string
	Manufacturer   string
	LibraryType    string `gorm:"index"`
	Description    string
	DatasheetURL   string

	// RawPriceTiers preserves the vendor's tiered-price string for display.
	RawPriceTiers string

	// Stock is kept as the vendor's string encoding and compared via a
	// numeric cast in queries.
	Stock string

	// WorstUnitPrice is the highest per-unit price across tiers. It is the
	// unit price alone, never multiplied by MinOrderQty.
	WorstUnitPrice float64 `gorm:"index"`
	MinOrderQty    int

	// ImageFilename is filled at ingestion when image caching is forced,
	// or lazily at display time.
	ImageFilename string
}

func (p *Part) TableName() string {
	return "parts"
}

// LibraryTypeBasic marks the vendor's preferred availability tier. Basic
// parts are cheaper and better stocked and sort ahead of Extended ones.
const LibraryTypeBasic = "Basic"

// IsBasic reports whether the part is in the vendor's Basic library.
func (p *Part) IsBasic() bool {
	return p.LibraryType == LibraryTypeBasic
}
