package models

import "time"

// StatusCounts maps a status value to the number of records holding it.
type StatusCounts map[string]int

// Total sums all counts.
func (s StatusCounts) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// DashboardStats summarises the super-admin overview.
type DashboardStats struct {
	TotalCenters       int `json:"totalCenters"`
	PendingCenters     int `json:"pendingCenters"`
	ApprovedCenters    int `json:"approvedCenters"`
	RejectedCenters    int `json:"rejectedCenters"`
	TotalStudents      int `json:"totalStudents"`
	ActiveStudents     int `json:"activeStudents"`
	InactiveStudents   int `json:"inactiveStudents"`
	TotalCertificates  int `json:"totalCertificates"`
	TotalCallbacks     int `json:"totalCallbacks"`
	PendingCallbacks   int `json:"pendingCallbacks"`
	CompletedCallbacks int `json:"completedCallbacks"`
	NewContactQueries  int `json:"newContactQueries"`
}

// SuperAdminDashboard is the payload of the super-admin home.
type SuperAdminDashboard struct {
	Stats           DashboardStats    `json:"stats"`
	RecentCenters   []Center          `json:"recentCenters"`
	RecentStudents  []Student         `json:"recentStudents"`
	RecentCallbacks []CallbackRequest `json:"recentCallbacks"`
	CentersByState  []StateCount      `json:"centersByState"`
}

// StudentDashboard is the payload of the student home.
type StudentDashboard struct {
	Student      Student       `json:"student"`
	Certificates []Certificate `json:"certificates"`
}

// CenterDashboard is the payload of the center home.
type CenterDashboard struct {
	Center        Center `json:"center"`
	TotalStudents int    `json:"totalStudents"`
}

// SystemMetrics is a lightweight snapshot of process counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	VerificationLookups      uint64    `json:"verificationLookups"`
	IdentifiersIssued        uint64    `json:"identifiersIssued"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
