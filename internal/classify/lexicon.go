package classify

import "regexp"

// Curated name list of well known Isan dishes. Matching is by substring, so
// short entries like "ลาบ" also cover "ลาบหมู" etc. Recall-biased on purpose:
// a query that merely mentions a dish name counts as a direct dish query.
var dishNames = []string{
	"ลาบ",
	"ลาบหมู",
	"ลาบเนื้อ",
	"ลาบปลา",
	"ลาบไก่",
	"ลาบเป็ด",
	"ส้มตำ",
	"ตำไทย",
	"ตำปูปลาร้า",
	"ตำซั่ว",
	"ตำไท",
	"ตำถั่ว",
	"ตำเขือ",
	"ต้มแซบ",
	"ต้มยำ",
	"แกงหน่อไม้",
	"อ่อม",
	"แกงอ่อม",
	"ซุปหน่อไม้",
	"ก้อย",
	"ก้อยเนื้อ",
	"ก้อยปลา",
	"ก้อยกุ้ง",
	"ก้อยหอย",
	"หมกหน่อไม้",
	"หมกปลา",
	"หมกไก่",
	"หมกเนื้อ",
	"ป่น",
	"ป่นปลา",
	"ป่นหอย",
	"ป่นแมงดา",
	"แจ่ว",
	"น้ำแจ่ว",
	"แจ่วบอง",
	"น้ำพริก",
	"แกงเห็ด",
	"ไข่มดแดง",
	"ปาปิก",
	"หมี่กะทิ",
	"ขนมจีนน้ำยา",
	"ข้าวหมาก",
	"ข้าวจี่",
}

// Keywords marking a message as food related: category words, flavor words
// and cooking verbs.
var foodKeywords = []string{
	"อาหาร",
	"เมนู",
	"สูตร",
	"วิธีทำ",
	"วัตถุดิบ",
	"ทำอาหาร",
	"กับข้าว",
	"อีสาน",
	"อาหารอีสาน",
	"รสชาติ",
	"อร่อย",
	"แซ่บ",
	"ลาบ",
	"ส้มตำ",
	"ต้มแซ่บ",
	"ปาปิก",
	"แกงอ่อม",
	"ผัด",
	"ต้ม",
	"แกง",
	"ยำ",
}

// Question shapes that only make sense against an established topic. None
// of these reference a dish name.
var genericQuestionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`ใส่.*ได้ไหม`),    // can I add X
	regexp.MustCompile(`ไม่ใส่.*ได้ไหม`), // can I leave X out
	regexp.MustCompile(`ต้องใส่.*ไหม`),   // do I have to add X
	regexp.MustCompile(`ใช้.*แทนได้ไหม`), // can I substitute X
	regexp.MustCompile(`ทำยังไง`),        // how is it made
	regexp.MustCompile(`เก็บได้.*วัน`),   // how long does it keep
	regexp.MustCompile(`กินกับอะไร`),     // what do I eat it with
	regexp.MustCompile(`รสชาติ`),         // how does it taste
	regexp.MustCompile(`ดีต่อสุขภาพไหม`), // is it healthy
	regexp.MustCompile(`อันตรายไหม`),     // is it dangerous
	regexp.MustCompile(`ทำไมคนชอบกิน`),   // why do people like it
	regexp.MustCompile(`ประโยชน์`),       // benefits
	regexp.MustCompile(`ข้อเสีย`),        // downsides
	regexp.MustCompile(`เตาไมโครเวฟ`),    // microwave safe
	regexp.MustCompile(`แคลอรี่`),        // calories
	regexp.MustCompile(`วิธีเลือก`),      // how to pick
	regexp.MustCompile(`เคล็ดลับ`),       // tips
	regexp.MustCompile(`ใช้เวลา`),        // how long does it take
	regexp.MustCompile(`ยากไหม`),         // is it hard
	regexp.MustCompile(`ควรทำ`),          // when should I make it
}

// DefaultRejectionPhrases are apology/refusal markers in provider output.
// A response containing any of them is treated as "no usable answer". The
// matcher is data driven; deployments may extend the list via config.
var DefaultRejectionPhrases = []string{
	"ขอโทษ",
	"ขอโทษนะ",
	"ฉันเป็นผู้เชี่ยวชาญด้านอาหารเท่านั้น",
	"ฉันเป็นผู้เชี่ยวชาญด้านอาหารอีสานเท่านั้น",
	"ไม่สามารถตอบคำถามได้",
	"ไม่เข้าใจคำถาม",
}

// DishNames returns the dish lexicon. Callers must not mutate it.
func DishNames() []string { return dishNames }
