package library

// Store keys. The article map and the id counter are stored separately so a
// hand-edited articles file never resets numbering.
const (
	keyCategories = "categories"
	keyArticles   = "articles"
	keyNextID     = "next_id"
)

// All is the pseudo category that matches every article in Filter and
// Counts.
const All = "all"

// OtherCategory receives the articles of a deleted category.
const OtherCategory = "อื่นๆ"

// DefaultCategories is the category list written on first run.
var DefaultCategories = []string{
	"ประมวลกฎหมายอาญา",
	"แพ่งและพาณิชย์",
	"กฎหมายวิธีพิจารณาความอาญา",
	"กฎหมายวิธีพิจารณาความแพ่ง",
	"รัฐธรรมนูญ",
	OtherCategory,
}

var shortNames = map[string]string{
	"ประมวลกฎหมายอาญา":          "อาญา",
	"แพ่งและพาณิชย์":            "แพ่ง",
	"กฎหมายวิธีพิจารณาความอาญา": "วิ.อาญา",
	"กฎหมายวิธีพิจารณาความแพ่ง": "วิ.แพ่ง",
	"รัฐธรรมนูญ":                "รธน.",
	OtherCategory:               OtherCategory,
}

// ShortName returns the label used on filter chips. Categories without a
// known abbreviation are returned unchanged.
func ShortName(category string) string {
	if s, ok := shortNames[category]; ok {
		return s
	}
	return category
}

// defaultArticles returns a fresh copy of the first-run articles and the id
// the next article will get.
func defaultArticles() (map[int]Article, int) {
	return map[int]Article{
		1: {
			ID:       1,
			Number:   "มาตรา 1",
			Category: "แพ่งและพาณิชย์",
			Content:  "กฎหมายนี้เรียกว่า ประมวลกฎหมายแพ่งและพาณิชย์",
		},
		2: {
			ID:       2,
			Number:   "มาตรา 276",
			Category: "ประมวลกฎหมายอาญา",
			Content:  "ผู้ใดฆ่าผู้อื่นต้องระวางโทษประหารชีวิต จำคุกตลอดชีวิต หรือจำคุกตั้งแต่สิบห้าปีถึงยี่สิบปี",
		},
		3: {
			ID:       3,
			Number:   "มาตรา 157",
			Category: "แพ่งและพาณิชย์",
			Content:  "บุคคลย่อมบรรลุนิติภาวะเมื่อมีอายุได้ยี่สิบปีบริบูรณ์",
		},
	}, 4
}
