package http

import "financas/internal/services"

func registerProcedures(r *Router, f *services.FinanceService, st *services.StatisticsService) {
	r.Query("accounts.list", noInput(f.ListAccounts))
	r.Mutation("accounts.create", withInput(f.CreateAccount))
	r.Mutation("accounts.update", withInput(f.UpdateAccount))
	r.Mutation("accounts.delete", deleteByID(f.DeleteAccount))

	r.Query("creditCards.list", noInput(f.ListCreditCards))
	r.Mutation("creditCards.create", withInput(f.CreateCreditCard))
	r.Mutation("creditCards.update", withInput(f.UpdateCreditCard))
	r.Mutation("creditCards.delete", deleteByID(f.DeleteCreditCard))

	r.Query("categories.list", noInput(f.ListCategories))
	r.Mutation("categories.create", withInput(f.CreateCategory))
	r.Mutation("categories.update", withInput(f.UpdateCategory))
	r.Mutation("categories.delete", deleteByID(f.DeleteCategory))

	r.Query("transactions.list", withInput(f.ListTransactions))
	r.Mutation("transactions.create", withInput(f.CreateTransaction))
	r.Mutation("transactions.update", withInput(f.UpdateTransaction))
	r.Mutation("transactions.delete", deleteByID(f.DeleteTransaction))

	r.Query("budgets.list", noInput(f.ListBudgets))
	r.Mutation("budgets.create", withInput(f.CreateBudget))
	r.Mutation("budgets.update", withInput(f.UpdateBudget))
	r.Mutation("budgets.delete", deleteByID(f.DeleteBudget))
	r.Query("budgets.progress", noInput(st.BudgetsProgress))

	r.Query("goals.list", noInput(f.ListGoals))
	r.Mutation("goals.create", withInput(f.CreateGoal))
	r.Mutation("goals.update", withInput(f.UpdateGoal))
	r.Mutation("goals.delete", deleteByID(f.DeleteGoal))
	r.Query("goals.progress", noInput(st.GoalsProgress))

	r.Query("investments.list", noInput(f.ListInvestments))
	r.Mutation("investments.create", withInput(f.CreateInvestment))
	r.Mutation("investments.update", withInput(f.UpdateInvestment))
	r.Mutation("investments.delete", deleteByID(f.DeleteInvestment))
	r.Query("investments.summary", noInput(st.InvestmentSummary))

	r.Query("reminders.list", noInput(f.ListReminders))
	r.Mutation("reminders.create", withInput(f.CreateReminder))
	r.Mutation("reminders.update", withInput(f.UpdateReminder))
	r.Mutation("reminders.delete", deleteByID(f.DeleteReminder))
	r.Query("reminders.due", noInput(st.DueReminders))

	r.Query("userSettings.get", noInput(f.GetSettings))
	r.Mutation("userSettings.update", withInput(f.UpdateSettings))
	r.Mutation("userSettings.deleteAccount", action(f.DeleteUserData))

	r.Query("statistics.expensesByCategory", withInput(st.ExpensesByCategory))
	r.Query("statistics.netWorthEvolution", withInput(st.NetWorthEvolution))
	r.Query("statistics.overview", noInput(st.Overview))
}
