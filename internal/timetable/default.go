package timetable

// Course identifiers of the default school timetable.
const (
	CourseDCOA           = "dco-a"
	CourseDCOB           = "dco-b"
	CourseDCOC           = "dco-c"
	CourseDCOD           = "dco-d"
	CourseDCOE           = "dco-e"
	CourseEPCO           = "epco"
	CourseEnglish        = "anglais"
	CourseSport          = "sport"
	CourseTyping         = "dactylographie"
	CourseCatchUpHoliday = "rattrapage-conge"
)

// Default returns the school year 2025/26 timetable.
func Default() *Timetable {
	return &Timetable{
		Entries: []Entry{
			{ID: "mon-1", Weekday: 1, Start: "08:20", End: "09:55", CourseID: CourseDCOB},
			{ID: "mon-2", Weekday: 1, Start: "09:55", End: "12:00", CourseID: CourseEnglish},
			{ID: "mon-3", Weekday: 1, Start: "13:10", End: "14:40", CourseID: CourseDCOD},
			{ID: "mon-4", Weekday: 1, Start: "14:40", End: "16:00", CourseID: CourseCatchUpHoliday},

			{ID: "tue-1", Weekday: 2, Start: "08:20", End: "09:55", CourseID: CourseDCOA},
			{ID: "tue-2", Weekday: 2, Start: "09:55", End: "12:00", CourseID: CourseDCOB},
			{ID: "tue-3", Weekday: 2, Start: "13:10", End: "14:40", CourseID: CourseDCOE},
			{ID: "tue-4", Weekday: 2, Start: "14:40", End: "16:00", CourseID: CourseDCOC},

			{ID: "wed-1", Weekday: 3, Start: "08:20", End: "10:35", CourseID: CourseDCOC},
			{ID: "wed-2", Weekday: 3, Start: "10:35", End: "12:00", CourseID: CourseDCOE},
			{ID: "wed-3", Weekday: 3, Start: "13:10", End: "14:40", CourseID: CourseEnglish},
			{ID: "wed-4", Weekday: 3, Start: "14:40", End: "16:00", CourseID: CourseDCOD},

			{ID: "thu-1", Weekday: 4, Start: "08:20", End: "12:00", CourseID: CourseSport},
			{ID: "thu-2", Weekday: 4, Start: "13:10", End: "15:20", CourseID: CourseDCOE},
			{ID: "thu-3", Weekday: 4, Start: "15:20", End: "16:00", CourseID: CourseTyping},

			{ID: "fri-1", Weekday: 5, Start: "08:20", End: "12:00", CourseID: CourseEPCO},
			{ID: "fri-2", Weekday: 5, Start: "13:10", End: "16:00", CourseID: CourseDCOD},
		},
		Courses: map[string]Course{
			CourseDCOA:           {ID: CourseDCOA, Title: "DCO A", Color: "#E57373", Teacher: "M. Martin"},
			CourseDCOB:           {ID: CourseDCOB, Title: "DCO B", Color: "#F06292", Teacher: "Mme Dupont"},
			CourseDCOC:           {ID: CourseDCOC, Title: "DCO C", Color: "#BA68C8", Teacher: "M. Bernard"},
			CourseDCOD:           {ID: CourseDCOD, Title: "DCO D", Color: "#9575CD", Teacher: "Mme Leroy"},
			CourseDCOE:           {ID: CourseDCOE, Title: "DCO E", Color: "#64B5F6", Teacher: "M. Petit"},
			CourseEPCO:           {ID: CourseEPCO, Title: "EPCO", Color: "#4DB6AC", Teacher: "Mme Muller"},
			CourseEnglish:        {ID: CourseEnglish, Title: "Anglais", Color: "#7986CB", Teacher: "M. Stewart"},
			CourseSport:          {ID: CourseSport, Title: "Sport", Color: "#81C784", Teacher: "Coach"},
			CourseTyping:         {ID: CourseTyping, Title: "Dactylographie", Color: "#FFD54F", Teacher: "Mme Lopez"},
			CourseCatchUpHoliday: {ID: CourseCatchUpHoliday, Title: "Rattrapage / Congé", Color: "#90A4AE"},
		},
		Holidays: []DateRange{
			{Start: "2025-08-01", End: "2025-08-01"},
			{Start: "2025-10-13", End: "2025-10-24"},
			{Start: "2025-12-22", End: "2026-01-04"},
			{Start: "2026-02-09", End: "2026-02-20"},
			{Start: "2026-04-06", End: "2026-04-17"},
			{Start: "2026-07-06", End: "2026-08-16"},
		},
		Exams: []DateRange{
			{Start: "2025-12-15", End: "2025-12-19"},
			{Start: "2026-03-16", End: "2026-03-20"},
			{Start: "2026-06-15", End: "2026-06-19"},
		},
	}
}
