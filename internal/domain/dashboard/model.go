// Package dashboard serves the aggregate counters behind the clinic and
// doctor home screens. Everything here is read-only.
package dashboard

// ClinicStats summarizes a clinic's day at a glance.
type ClinicStats struct {
	TotalPatients     int     `json:"totalPatients"`
	TodayAppointments int     `json:"todayAppointments"`
	PendingInvoices   int     `json:"pendingInvoices"`
	MonthlyRevenue    float64 `json:"monthlyRevenue"`
}

// DoctorStats summarizes one doctor's workload.
type DoctorStats struct {
	TodayAppointments int `json:"todayAppointments"`
	TotalPatients     int `json:"totalPatients"`
	ScheduledPending  int `json:"scheduledPending"`
	CompletedToday    int `json:"completedToday"`
}
