package core

// NetWorthPoint is one day of a reconstructed net worth series.
type NetWorthPoint struct {
	Date     Date    `json:"date"`
	NetWorth float64 `json:"netWorth"`
}

// CategoryExpense is the expense total of one category, in major units.
type CategoryExpense struct {
	CategoryID    *int64  `json:"categoryId"`
	CategoryName  string  `json:"categoryName"`
	CategoryIcon  string  `json:"categoryIcon"`
	CategoryColor string  `json:"categoryColor"`
	Total         float64 `json:"total"`
}

type BudgetStatus string

const (
	BudgetOK       BudgetStatus = "ok"
	BudgetWarning  BudgetStatus = "warning"
	BudgetExceeded BudgetStatus = "exceeded"
)

type BudgetProgress struct {
	Budget      Budget       `json:"budget"`
	PeriodStart Date         `json:"periodStart"`
	PeriodEnd   Date         `json:"periodEnd"`
	Spent       float64      `json:"spent"`
	Remaining   float64      `json:"remaining"`
	Percentage  float64      `json:"percentage"`
	Status      BudgetStatus `json:"status"`
}

type GoalProgress struct {
	Goal       Goal    `json:"goal"`
	Percentage float64 `json:"percentage"`
	Remaining  float64 `json:"remaining"`
	DaysLeft   *int    `json:"daysLeft"`
	Overdue    bool    `json:"overdue"`
}

type AllocationSlice struct {
	Type       InvestmentType `json:"type"`
	Total      float64        `json:"total"`
	Percentage float64        `json:"percentage"`
}

type InvestmentSummary struct {
	TotalInvested float64           `json:"totalInvested"`
	TotalCurrent  float64           `json:"totalCurrent"`
	TotalReturn   float64           `json:"totalReturn"`
	ReturnPercent float64           `json:"returnPercent"`
	Allocation    []AllocationSlice `json:"allocation"`
}

type Overview struct {
	TotalBalance     float64       `json:"totalBalance"`
	TotalCreditLimit float64       `json:"totalCreditLimit"`
	RecentIncome     float64       `json:"recentIncome"`
	RecentExpenses   float64       `json:"recentExpenses"`
	AccountCount     int           `json:"accountCount"`
	CreditCardCount  int           `json:"creditCardCount"`
	Recent           []Transaction `json:"recentTransactions"`
}

type DueReminder struct {
	Reminder  Reminder `json:"reminder"`
	DaysUntil int      `json:"daysUntil"`
}
