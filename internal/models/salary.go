package models

// SalaryRecord is one normalized salary row.
type SalaryRecord struct {
	Name     string
	Position string
	Season   int
	// Salary is in the source's documented unit; see the salary package.
	Salary float64
}
