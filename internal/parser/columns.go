package parser

// Column names of the bibliographic export, in file order.
const (
	ColBookID             = "book_id"
	ColBookID2            = "book_id2"
	ColBookNameStr        = "book_name_str"
	ColAuthorStr          = "author_str"
	ColPrice              = "price"
	ColCurrency           = "currency"
	ColPublisherID        = "publisher_id"
	ColPublisherName      = "publisher_name"
	ColPublishDate        = "publish_date"
	ColCNCategory         = "cn_category"
	ColLanguage           = "language"
	ColNPages             = "n_pages"
	ColPackage            = "package"
	ColPageSize           = "page_size"
	ColTopicStr           = "topic_str"
	ColTargetAudience     = "target_audience"
	ColTOC                = "toc"
	ColIntroduction       = "introduction"
	ColSummary            = "summary"
	ColAuthorIntroduction = "author_introduction"
	ColCategory0ID        = "category0_id"
	ColCategory0Name      = "category0_name"
	ColCategory1ID        = "category1_id"
	ColCategory1Name      = "category1_name"
	ColCategory2ID        = "category2_id"
	ColCategory2Name      = "category2_name"
	ColCategory3ID        = "category3_id"
	ColCategory3Name      = "category3_name"
	ColLong               = "long"
	ColWide               = "wide"
	ColHeight             = "height"
	ColWeight             = "weight"
)

// Header is the fixed column order of an input row.
var Header = []string{
	ColBookID, ColBookID2, ColBookNameStr, ColAuthorStr, ColPrice, ColCurrency,
	ColPublisherID, ColPublisherName, ColPublishDate, ColCNCategory, ColLanguage,
	ColNPages, ColPackage, ColPageSize, ColTopicStr, ColTargetAudience, ColTOC,
	ColIntroduction, ColSummary, ColAuthorIntroduction,
	ColCategory0ID, ColCategory0Name, ColCategory1ID, ColCategory1Name,
	ColCategory2ID, ColCategory2Name, ColCategory3ID, ColCategory3Name,
	ColLong, ColWide, ColHeight, ColWeight,
}

// Record is one raw input row keyed by column name. Missing columns read as "".
type Record map[string]string

func (r Record) Get(col string) string {
	return r[col]
}

// RecordFromRow zips a positional row with Header. Short rows leave trailing columns empty;
// extra cells are ignored.
func RecordFromRow(row []string) Record {
	rec := make(Record, len(Header))
	for i, col := range Header {
		if i < len(row) {
			rec[col] = row[i]
		} else {
			rec[col] = ""
		}
	}
	return rec
}
