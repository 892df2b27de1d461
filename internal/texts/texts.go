// Package texts holds the bot's user-facing Arabic messages.
package texts

import (
	"fmt"
	"strings"
)

var signature string

// SetSignature sets the footer appended by Sign. Call it before the bot starts.
func SetSignature(s string) {
	signature = s
}

// Sign appends the configured signature to a closing message.
func Sign(msg string) string {
	if signature == "" {
		return msg
	}
	return msg + "\n\n" + signature
}

// Shared replies.
const (
	Denied        = "⚠️ هذا الأمر متاح للمشرفين فقط!"
	GroupsOnly    = "⚠️ هذا الأمر يعمل في المجموعات فقط!"
	Busy          = "⏳ يرجى الانتظار حتى تكتمل العملية السابقة."
	RateLimited   = "⚠️ أنت ترسل الرسائل بسرعة كبيرة. يرجى التمهل قليلاً."
	Cancelled     = "✅ تم إلغاء العملية."
	InvalidChoice = "⚠️ رقم غير صالح. يرجى اختيار رقم من القائمة."
	MenuFooter    = "💡 أرسل رقم الخيار أو إلغاء للخروج."
	Expired       = "ℹ️ لا توجد عملية جارية. ابدأ من جديد بالأمر المناسب."
	Failure       = "⚠️ حدث خطأ غير متوقع."
	Timeout       = "⌛ انتهت مهلة العملية. يرجى المحاولة مرة أخرى."
	Unavailable   = "⚠️ الخدمة غير متاحة حالياً. يرجى المحاولة لاحقاً."
	InvalidOption = "⚠️ خيار غير صالح. يرجى إرسال 1 أو 2."
)

// KindLabel and KindPlural name catalog kinds by their string value.
var (
	KindLabel = map[string]string{
		"section":   "الشعبة",
		"class":     "الفصل",
		"group":     "الفوج",
		"professor": "الأستاذ",
		"subject":   "المادة",
	}
	KindPlural = map[string]string{
		"section":   "الشعب",
		"class":     "الفصول",
		"group":     "الأفواج",
		"professor": "الأساتذة",
		"subject":   "المواد",
	}
)

// Setup flow.
const (
	SetupMenu = "⚙️ إعداد النظام الشامل\n\n" +
		"هذه العملية ستقوم بإعداد شعبة دراسية جديدة بكل تفاصيلها.\n\n" +
		"1. عرض الشعب الموجودة حالياً\n" +
		"2. إضافة شعبة جديدة (يبدأ عملية الإعداد)\n\n" +
		MenuFooter
	SetupNoSections   = "ℹ️ لا توجد أي شعب مضافة حالياً."
	SetupAskSection   = "✅ حسنًا، لنبدأ بإضافة شعبة جديدة.\n\n📝 ما هو اسم الشعبة؟ (مثال: شعبة القانون)"
	SetupShortSection = "⚠️ اسم الشعبة قصير جداً. يرجى إدخال اسم صحيح."
	SetupShortClass   = "⚠️ اسم الفصل قصير جداً."
	SetupNoSubjects   = "⚠️ لم يتم إدخال أي مواد. يرجى إدخال أسماء المواد مفصولة بفاصلة."
	SetupBadGroups    = "⚠️ لم يتم إدخال الأفواج بالصيغة الصحيحة. يرجى استخدام الصيغة:\nاسم الفوج : اسم الأستاذ"
	SetupNotSaved     = "تم إلغاء العملية. لم يتم حفظ أي بيانات."
)

func SetupSectionList(names []string) string {
	return "📋 الشعب المسجلة حالياً:\n\n- " + strings.Join(names, "\n- ")
}

func SetupAskClass(section string) string {
	return fmt.Sprintf("👍 تم تحديد اسم الشعبة: %s\n\n🏫 الآن، ما هو اسم الفصل الأول؟ (مثال: S1 أو الفصل الأول)", section)
}

func SetupAskNextClass(n int) string {
	return fmt.Sprintf("🏫 ننتقل للفصل التالي. ما هو اسم الفصل رقم %d؟", n)
}

func SetupAskSubjects(class string) string {
	return fmt.Sprintf("📚 تم تحديد اسم الفصل: %s\n\nالآن، أدخل أسماء المواد لهذا الفصل، مفصولة بفاصلة (,)\nمثال: قانون جنائي, مسطرة مدنية, قانون تجاري", class)
}

func SetupAskGroups(n int) string {
	return fmt.Sprintf("👍 تم إضافة %d مواد.\n\nالآن، أدخل الأفواج والأساتذة لهذا الفصل بالصيغة التالية (كل فوج في سطر):\nاسم الفوج 1 : اسم الأستاذ 1\nاسم الفوج 2 : اسم الأستاذ 2", n)
}

func SetupAskMore(class string) string {
	return fmt.Sprintf("✅ تم إعداد الفصل \"%s\" بنجاح.\n\nهل تريد إضافة فصل آخر لهذه الشعبة؟\n1. نعم\n2. لا، اعرض الملخص", class)
}

// SetupGroupLine is one group of the setup summary.
type SetupGroupLine struct{ Group, Professor string }

// SetupClassSummary is one class of the setup summary.
type SetupClassSummary struct {
	Name     string
	Subjects []string
	Groups   []SetupGroupLine
}

func SetupSummary(section string, classes []SetupClassSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 اكتمل الإعداد! يرجى مراجعة البيانات:\n\nالشعبة: %s\n\n", section)
	for i, c := range classes {
		fmt.Fprintf(&b, "الفصل %d: %s\n  - المواد: %s\n  - الأفواج والأساتذة:\n", i+1, c.Name, strings.Join(c.Subjects, "، "))
		for _, g := range c.Groups {
			fmt.Fprintf(&b, "    • %s (الأستاذ: %s)\n", g.Group, g.Professor)
		}
		b.WriteString("\n")
	}
	b.WriteString("هل البيانات صحيحة؟\nأرسل \"نعم\" للحفظ أو \"إلغاء\" للتجاهل.")
	return b.String()
}

func SetupSaved(section string) string {
	return fmt.Sprintf("✅ تم حفظ الشعبة \"%s\" وكل تفاصيلها بنجاح!", section)
}

// Course management flow.
const (
	ManageMenu = "📚 إدارة المقررات الدراسية\n\nيرجى اختيار النوع الذي تريد إدارته:\n\n" +
		"1. إدارة الشعب\n2. إدارة الفصول\n3. إدارة الأفواج\n4. إدارة الأساتذة\n5. إدارة المواد\n\n" +
		MenuFooter
	ManageInvalidKind   = "⚠️ خيار غير صالح. يرجى إرسال رقم من 1 إلى 5."
	ManageInvalidAction = "⚠️ خيار غير صالح. يرجى إرسال رقم من 1 إلى 3."
	ManageEmptyName     = "⚠️ يرجى إدخال اسم صحيح."
	ManageNameExists    = "⚠️ هذا الاسم موجود مسبقاً. يرجى إدخال اسم آخر."
	ManageDeleteAborted = "✅ تم إلغاء عملية الحذف."
)

func ManagePickParent(kind string) string {
	return fmt.Sprintf("📋 اختر %s أولاً:", KindLabel[kind])
}

func ManageNoParents(kind string) string {
	return fmt.Sprintf("⚠️ لا توجد %s مضافة بعد.", KindPlural[kind])
}

func ManageActions(kind string, items []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🗂️ إدارة %s\n\n", KindPlural[kind])
	if len(items) == 0 {
		fmt.Fprintf(&b, "لا توجد %s حالياً.\n\n1. إضافة", KindPlural[kind])
	} else {
		for _, it := range items {
			fmt.Fprintf(&b, "- %s\n", it)
		}
		b.WriteString("\n1. إضافة\n2. تعديل\n3. حذف")
	}
	b.WriteString("\n\n" + MenuFooter)
	return b.String()
}

func ManageNothingTo(kind string) string {
	return fmt.Sprintf("⚠️ لا توجد %s للتعديل أو الحذف.", KindPlural[kind])
}

func ManageAskName(kind string) string {
	return fmt.Sprintf("📝 إضافة %s جديد\n\nيرجى إدخال الاسم:", KindLabel[kind])
}

func ManagePickEdit(kind string) string {
	return fmt.Sprintf("✏️ اختر %s الذي تريد تعديله:", KindLabel[kind])
}

func ManagePickDelete(kind string) string {
	return fmt.Sprintf("🗑️ اختر %s الذي تريد حذفه:", KindLabel[kind])
}

func ManageAskNewName(kind, old string) string {
	return fmt.Sprintf("📝 تعديل %s \"%s\"\n\nيرجى إدخال الاسم الجديد:", KindLabel[kind], old)
}

func ManageConfirmDelete(kind, name string) string {
	return fmt.Sprintf("⚠️ تأكيد حذف %s \"%s\"\n\nهذا الإجراء سيحذف جميع البيانات المرتبطة.\n\nيرجى كتابة \"تأكيد\" للمتابعة أو \"إلغاء\" للإلغاء:", KindLabel[kind], name)
}

func ManageAdded(kind, name string) string {
	return fmt.Sprintf("✅ تمت إضافة %s \"%s\" بنجاح!", KindLabel[kind], name)
}

func ManageRenamed(kind, old, name string) string {
	return fmt.Sprintf("✅ تم تعديل %s من \"%s\" إلى \"%s\" بنجاح!", KindLabel[kind], old, name)
}

func ManageDeleted(kind, name string) string {
	return fmt.Sprintf("✅ تم حذف %s \"%s\" وجميع البيانات المرتبطة به بنجاح!", KindLabel[kind], name)
}

// Lecture flows.
const (
	NoSections        = "⚠️ لا توجد شعب مضافة بعد. يرجى استخدام !إعداد أولاً."
	NoClasses         = "⚠️ لا توجد فصول مضافة لهذه الشعبة."
	NoSubjects        = "⚠️ لا توجد مواد مضافة لهذا الفصل."
	NoGroups          = "⚠️ لا توجد أفواج مضافة لهذا الفصل."
	NoProfessors      = "⚠️ لا يوجد أساتذة مضافون للنظام."
	PickSection       = "📚 يرجى اختيار الشعبة:"
	PickClass         = "🏫 اختر الفصل:"
	PickSubject       = "📖 اختر المادة:"
	PickGroup         = "👥 اختر الفوج:"
	PickProfessor     = "👨‍🏫 اختر الأستاذ:"
	LectureAskDetails = "📝 ما هو عنوان أو رقم هذه المحاضرة؟\n(مثال: المحاضرة الأولى، أو مقدمة في القانون)"
	LectureNoDetails  = "⚠️ يرجى إدخال عنوان أو رقم للمحاضرة."
	LectureAskFile    = "✅ ممتاز. الآن، يرجى إرسال ملف المحاضرة (PDF)."
	LectureNotPDF     = "⚠️ يرجى إرسال ملف بصيغة PDF."
	LectureUploading  = "🔄 جاري رفع المحاضرة..."
	LectureAdded      = "✅ تمت إضافة المحاضرة ورفعها بنجاح!"
	HostDisabled      = "⚠️ لا يمكن رفع الملف. إعدادات GitHub غير مكتملة. يرجى مراجعة المالك."
	LectureHere       = "✅ تفضل محاضرتك."
	LectureSentDM     = "📥 تم إرسال المحاضرة إليك في الخاص."
	LectureDMFailed   = "⚠️ تعذر إرسال الملف في الخاص. ابدأ محادثة مع البوت أولاً ثم أعد المحاولة."
)

func PickClassIn(section string) string {
	return fmt.Sprintf("🏫 اختر الفصل في شعبة \"%s\":", section)
}

func PickSubjectIn(class string) string {
	return fmt.Sprintf("📖 اختر المادة في الفصل \"%s\":", class)
}

func PickLectureOf(subject string) string {
	return fmt.Sprintf("📝 المحاضرات المتاحة لمادة \"%s\":", subject)
}

func NoLecturesFor(subject string) string {
	return fmt.Sprintf("⚠️ لا توجد محاضرات متاحة لمادة \"%s\".", subject)
}
