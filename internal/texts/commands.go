package texts

import (
	"fmt"
	"strings"
	"time"

	tghelpers "github.com/m3rciful/lecturebot/core/telegram/helpers"
)

const Help = "🤖 مساعدة بوت المحاضرات\n\n" +
	"مرحباً بك في بوت إدارة المحاضرات والمقررات الدراسية!\n\n" +
	"كيفية استخدام البوت:\n\n" +
	"1. للمشرفين:\n" +
	"   - استخدم أمر !إعداد لإعداد النظام للمرة الأولى.\n" +
	"   - استخدم أمر !اضافة_محاضرة لإضافة محاضرات جديدة.\n" +
	"   - استخدم أمر !إدارة_المقررات لإدارة الشعب والفصول والمواد.\n\n" +
	"2. للطلاب:\n" +
	"   - استخدم أمر !عرض_المحاضرات لعرض المحاضرات المتاحة وتحميلها.\n" +
	"   - استخدم أمر !بحث للبحث عن مادة.\n\n" +
	"3. للجميع:\n" +
	"   - استخدم أمر !سؤال لطرح سؤال على الذكاء الاصطناعي.\n" +
	"   - استخدم أمر !ترجمة لترجمة نص.\n" +
	"   - استخدم أمر !تلخيص لتلخيص نص.\n\n" +
	"ملاحظات:\n" +
	"- بعض الأوامر تتطلب صلاحيات مشرف.\n" +
	"- يمكنك إلغاء أي عملية عن طريق كتابة \"إلغاء\".\n" +
	"- إذا واجهت أي مشكلة، استخدم أمر !إبلاغ للإبلاغ عنها."

// CommandLine is one entry of the commands list.
type CommandLine struct {
	Name        string
	Alias       string
	Description string
	Role        string
	GroupOnly   bool
}

var roleNotes = map[string]string{
	"admin":     "للمشرفين فقط",
	"developer": "للمطورين فقط",
	"owner":     "للمالك فقط",
}

func CommandsList(lines []CommandLine) string {
	var b strings.Builder
	b.WriteString("📋 قائمة الأوامر المتاحة:\n\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "• !%s (/%s) - %s", l.Alias, l.Name, l.Description)
		var notes []string
		if n, ok := roleNotes[l.Role]; ok {
			notes = append(notes, n)
		}
		if l.GroupOnly {
			notes = append(notes, "في المجموعات")
		}
		if len(notes) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(notes, "، "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n💡 لإرسال ملاحظات أو اقتراحات، استخدم أمر !إبلاغ")
	return b.String()
}

// Search.
const SearchUsage = "⚠️ يرجى كتابة كلمة البحث. مثال: !بحث رياضيات"

// SearchHit is one line of the search results.
type SearchHit struct{ Subject, Section, Class string }

func SearchResults(term string, hits []SearchHit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 نتائج البحث عن \"%s\":\n\n", term)
	for i, h := range hits {
		fmt.Fprintf(&b, "%d. مادة: %s\n   الشعبة: %s\n   الفصل: %s\n\n", i+1, h.Subject, h.Section, h.Class)
	}
	b.WriteString("💡 لتحميل محاضرة من هذه النتائج، استخدم أمر !عرض_المحاضرات.")
	return b.String()
}

func SearchNoResults(term string) string {
	return fmt.Sprintf("⚠️ لم يتم العثور على نتائج لبحثك عن \"%s\".", term)
}

func SearchInline(section, class string) string {
	return fmt.Sprintf("%s - %s", section, class)
}

// Lecture list.
const (
	NoLecturesYet = "⚠️ لا توجد محاضرات مضافة بعد."
	Unknown       = "غير محدد"
)

func SectionNotFound(name string) string {
	return fmt.Sprintf("⚠️ لم يتم العثور على شعبة باسم \"%s\".", name)
}

// LectureLine is one lecture of the lecture list.
type LectureLine struct {
	Section, Class, Subject, Title, Professor string
	Date                                      time.Time
}

func LectureList(lines []LectureLine) string {
	var b strings.Builder
	b.WriteString("📋 قائمة المحاضرات\n\n")
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. %s - %s\n   المادة: %s\n   المحاضرة: %s\n   الأستاذ: %s\n   التاريخ: %s\n\n",
			i+1, orUnknown(l.Section), orUnknown(l.Class), orUnknown(l.Subject),
			orUnknown(l.Title), orUnknown(l.Professor), tghelpers.FormatDate(l.Date, nil))
	}
	return strings.TrimRight(b.String(), "\n")
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

// AI.
const (
	QuestionUsage  = "⚠️ يرجى كتابة سؤالك بعد الأمر. مثال: !سؤال ما هو الذكاء الاصطناعي؟"
	TranslateUsage = "⚠️ يرجى كتابة النص الذي تريد ترجمته. مثال: !ترجمة Hello world"
	SummarizeUsage = "⚠️ يرجى كتابة النص الذي تريد تلخيصه. مثال: !تلخيص نص طويل هنا..."
	AIDisabled     = "⚠️ لم يتم إعداد مفتاح API للذكاء الاصطناعي. يرجى التواصل مع المالك."
)

func Answer(s string) string      { return "🤖 الإجابة:\n\n" + s }
func Translation(s string) string { return "🌐 الترجمة:\n\n" + s }
func Summary(s string) string     { return "📝 الملخص:\n\n" + s }

// Report.
const (
	ReportUsage = "⚠️ يرجى كتابة المشكلة التي تريد الإبلاغ عنها. مثال: !إبلاغ لا يمكنني تحميل المحاضرات"
)

func ReportForOwner(id, user string, userID int64, text string, at time.Time) string {
	return fmt.Sprintf("🚩 تقرير جديد\n\nالمرجع: %s\nالمستخدم: %s (%d)\nالمشكلة: %s\nالتاريخ والوقت: %s",
		id, user, userID, text, at.Format("2006-01-02 15:04"))
}

func ReportSent(id string) string {
	return fmt.Sprintf("✅ تم إرسال تقريرك بنجاح. شكراً لك على مساعدتنا في تحسين البوت!\nرقم المرجع: %s", id)
}

// Permissions.
func Permissions(name string, id int64, owner, developer, admin bool) string {
	mark := func(v bool) string {
		if v {
			return "✅ نعم"
		}
		return "❌ لا"
	}
	return fmt.Sprintf("🔍 حالة صلاحياتك:\n\nالمستخدم: %s\nالمعرف: %d\n\n👑 المالك: %s\n🔧 المطور: %s\n👮 مشرف: %s",
		name, id, mark(owner), mark(developer), mark(admin))
}

// Developers.
const (
	DeveloperUsage   = "⚠️ يرجى الرد على رسالة المستخدم أو الإشارة إليه لإضافته كمطور. مثال: !اضافة_مطور @user"
	AlreadyDeveloper = "⚠️ هذا المستخدم مطور بالفعل."
	DeveloperWelcome = "🎉 تمت إضافتك كمطور في البوت!"
)

func DeveloperAdded(name string) string {
	return fmt.Sprintf("✅ تمت إضافة %s كمطور بنجاح.", name)
}

// Stats is the content of the stats command.
type Stats struct {
	Version       string
	Uptime        time.Duration
	Messages      uint64
	Commands      uint64
	Errors        uint64
	Groups        int
	Conversations int
	Developers    int
	Sections      int
	Classes       int
	Subjects      int
	Professors    int
	CourseGroups  int
	Lectures      int
}

func StatsReport(s Stats) string {
	days, hours, minutes := tghelpers.FormatUptime(s.Uptime)
	return fmt.Sprintf("📊 إحصائيات البوت\n\n"+
		"⏱️ وقت التشغيل: %d يوم, %d ساعة, %d دقيقة\n"+
		"📨 الرسائل المعالجة: %d\n"+
		"🔧 الأوامر المنفذة: %d\n"+
		"❌ الأخطاء: %d\n"+
		"👥 المجموعات: %d\n"+
		"💬 العمليات الجارية: %d\n"+
		"👑 المطورين: %d\n"+
		"📚 الشعب: %d\n"+
		"🏫 الفصول: %d\n"+
		"📖 المواد: %d\n"+
		"👨‍🏫 الأساتذة: %d\n"+
		"👥 الأفواج: %d\n"+
		"📄 المحاضرات: %d\n"+
		"🏷️ الإصدار: %s",
		days, hours, minutes, s.Messages, s.Commands, s.Errors, s.Groups, s.Conversations,
		s.Developers, s.Sections, s.Classes, s.Subjects, s.Professors, s.CourseGroups, s.Lectures, s.Version)
}

const Restarting = "🔄 جاري إعادة تشغيل البوت..."
