package service

import (
	"strings"

	"github.com/noah-isme/miit-portal/internal/models"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
)

// MsgCourseNotFound is returned for unknown catalog ids.
const MsgCourseNotFound = "Course not found"

var defaultCourses = []models.Course{
	{
		ID:       "c01",
		Title:    "Cyber security Basics & Online Security",
		Type:     "Certificate",
		Duration: "1 month",
		Subjects: []string{
			"Understanding common cybersecurity threats",
			"Basic principles of network security",
			"Online security practices & hands-on exercises",
		},
		Semesters: 0,
	},
	{
		ID:       "c02",
		Title:    "Data Analysis with Excel & Introduction to SQL",
		Type:     "Certificate",
		Duration: "1 month",
		Subjects: []string{
			"Excel functions & data manipulation",
			"Pivot tables & charts",
			"Introduction to SQL & basic database queries",
		},
		Semesters: 0,
	},
	{
		ID:       "c03",
		Title:    "Introduction to Programming with Python",
		Type:     "Certificate",
		Duration: "1 month",
		Subjects: []string{
			"Basics of Python syntax and data types",
			"Control flow and loops",
			"Functions and basic problem-solving exercises",
		},
		Semesters: 0,
	},
	{
		ID:       "c04",
		Title:    "Full Stack Web Development Bootcamp",
		Type:     "Diploma",
		Duration: "3 months",
		Subjects: []string{
			"Front-end and back-end web development",
			"HTML, CSS, JavaScript, Node.js, Express.js, and databases",
			"Build real-world projects to showcase your skills",
		},
		Semesters: 2,
	},
	{
		ID:       "c05",
		Title:    "Mobile App Development",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"iOS (Swift) or Android (Java/Kotlin) app development",
			"Building mobile applications from scratch",
			"Understanding the app deployment process",
		},
		Semesters: 0,
	},
	{
		ID:       "c06",
		Title:    "Digital Marketing Course",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Digital marketing strategies, SEO, social media marketing, and analytics",
			"Creating and managing online advertising campaigns",
			"Content marketing and email marketing",
		},
		Semesters: 0,
	},
	{
		ID:       "c07",
		Title:    "Cyber security Fundamentals",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Basics of cybersecurity and ethical hacking",
			"Network security, encryption, and vulnerability assessment",
			"Common cybersecurity threats and countermeasures",
		},
		Semesters: 0,
	},
	{
		ID:       "c08",
		Title:    "3D Modeling and Animation",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Introduction to 3D modeling software (Blender, Maya, 3ds Max)",
			"Basics of 3D animation and rendering",
			"Creating 3D models and animations",
		},
		Semesters: 0,
	},
	{
		ID:       "c09",
		Title:    "E-learning Design",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Design principles for e-learning courses",
			"Instructional design and user engagement in online education",
			"Designing e-learning modules",
		},
		Semesters: 0,
	},
	{
		ID:       "c10",
		Title:    "Motion Graphics",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Animation and motion graphics principles",
			"Software like Adobe After Effects or Cinema 4D",
			"Creating animated graphics and videos",
		},
		Semesters: 0,
	},
	{
		ID:       "c11",
		Title:    "Graphic Design",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Design principles, color theory, and typography",
			"Adobe Photoshop, Illustrator, and InDesign",
			"Portfolio-building projects",
		},
		Semesters: 0,
	},
	{
		ID:       "c12",
		Title:    "Intermediate Programming and Database Management",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Intermediate Programming Concepts",
			"Database Fundamentals",
			"Project Work",
		},
		Semesters: 0,
	},
	{
		ID:       "c13",
		Title:    "Tally",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Creating and Managing Company Data, Financial Accounting",
			"Inventory Management, Voucher Entry, Taxation, Bank Reconciliation",
			"Financial Statements, Multi-Currency Transactions, Data Backup and Restore",
		},
		Semesters: 0,
	},
	{
		ID:       "c14",
		Title:    "Advance Excel",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Data Analysis and Visualization",
			"Advanced Formulas and Functions",
			"Macros and Automation, Advanced Charting, Dashboards, and Reporting",
		},
		Semesters: 0,
	},
	{
		ID:       "c15",
		Title:    "Certificate in DTP",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Desktop Publishing, Graphic Design Basics, Typography, Page Layout Software",
			"Image Editing, Creating and Formatting Text, Working with Graphics",
			"Layout and Composition, Printing and Output, Project Work",
		},
		Semesters: 0,
	},
	{
		ID:       "c16",
		Title:    "Certificate in Data Entry Operator",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Data Entry Techniques and Keyboarding Skills",
			"Data Verification, Formatting, and Security",
			"Time Management, Quality Control, and Workplace Professionalism",
		},
		Semesters: 0,
	},
	{
		ID:       "c17",
		Title:    "Introduction Of Computer Fundamental",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Operating System Basics",
			"Notepad, WordPad, and Ms Paint",
			"Practical Assignments",
		},
		Semesters: 0,
	},
	{
		ID:       "c18",
		Title:    "Certificate In Office Application",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Computer Fundamentals",
			"Ms Word, Ms Excel, Ms PowerPoint",
		},
		Semesters: 0,
	},
	{
		ID:       "c19",
		Title:    "Certificate in BUSY",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Fundamentals of Accounting",
			"Busy with GST",
			"Internet Basics",
		},
		Semesters: 0,
	},
	{
		ID:       "c20",
		Title:    "Certificate in C Programming",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Foundations of C Programming",
			"Advanced C Programming",
			"Advanced Topics and Practical Applications",
		},
		Semesters: 0,
	},
	{
		ID:       "c21",
		Title:    "Certificate in Search Engine Optimization (SEO)",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Keyword Research, On-Page and Off-Page SEO, Technical SEO",
			"Link Building, Local SEO, Analytics, and Monitoring",
			"Mobile Optimization, Voice Search Optimization, E-A-T, SEO Audits",
		},
		Semesters: 0,
	},
	{
		ID:       "c22",
		Title:    "Certificate in Word Press Designing",
		Type:     "Certificate",
		Duration: "3 months",
		Subjects: []string{
			"Domain and Hosting Setup, Theme Installation",
			"Customization, Plugins, and Page Creation",
			"SEO Optimization, Mobile Responsiveness, Backup and Testing",
		},
		Semesters: 0,
	},
	{
		ID:       "c23",
		Title:    "Advanced Computer Skills Certificate Program",
		Type:     "Certificate",
		Duration: "6 months",
		Subjects: []string{
			"Foundations of Computing",
			"Programming and Software Development",
			"Web Development and Design",
			"Database Management",
			"Networking and Cybersecurity",
		},
		Semesters: 0,
	},
	{
		ID:       "c24",
		Title:    "Advanced Computer Skills Certificate Program",
		Type:     "Certificate",
		Duration: "6 months",
		Subjects: []string{
			"Foundations of Computing",
			"Programming and Software Development",
			"Web Development and Design",
			"Database Management",
			"Networking and Cybersecurity",
			"Emerging Technologies",
			"Project Management and Agile Methodologies",
			"Final Project and Capstone",
		},
		Semesters: 0,
	},
	{
		ID:       "c25",
		Title:    "Professional Diploma in Computer Applications",
		Type:     "Diploma",
		Duration: "6 months",
		Subjects: []string{
			"Introduction to Computing",
			"Programming Foundation",
		},
		Semesters: 2,
	},
}

// CatalogService serves the static course catalog.
type CatalogService struct {
	courses []models.Course
	byID    map[string]models.Course
}

// NewCatalogService constructs a CatalogService. A nil list loads the built-in catalog.
func NewCatalogService(courses []models.Course) *CatalogService {
	if courses == nil {
		courses = defaultCourses
	}
	byID := make(map[string]models.Course, len(courses))
	for _, course := range courses {
		byID[course.ID] = course
	}
	return &CatalogService{courses: courses, byID: byID}
}

// List returns every course in catalog order.
func (s *CatalogService) List() []models.Course {
	out := make([]models.Course, len(s.courses))
	copy(out, s.courses)
	return out
}

// Find returns the course with id.
func (s *CatalogService) Find(id string) (models.Course, bool) {
	course, ok := s.byID[strings.TrimSpace(id)]
	return course, ok
}

// Get returns the course with id or a not found error.
func (s *CatalogService) Get(id string) (*models.Course, error) {
	course, ok := s.Find(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, MsgCourseNotFound)
	}
	return &course, nil
}
