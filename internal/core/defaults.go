package core

// DefaultCategories are shared by every user. The SQLite schema seeds the
// same rows in its initial migration.
func DefaultCategories() []Category {
	mk := func(name string, t TransactionType, icon, color string) Category {
		return Category{Name: name, Type: t, Icon: icon, Color: color, IsDefault: true}
	}
	return []Category{
		mk("Salário", Income, "💰", "#10b981"),
		mk("Freelance", Income, "💼", "#059669"),
		mk("Investimentos", Income, "📈", "#34d399"),
		mk("Outros", Income, "💵", "#6ee7b7"),
		mk("Alimentação", Expense, "🍔", "#ef4444"),
		mk("Transporte", Expense, "🚗", "#f97316"),
		mk("Moradia", Expense, "🏠", "#eab308"),
		mk("Saúde", Expense, "🏥", "#06b6d4"),
		mk("Educação", Expense, "📚", "#8b5cf6"),
		mk("Lazer", Expense, "🎮", "#ec4899"),
		mk("Compras", Expense, "🛍️", "#f43f5e"),
		mk("Contas", Expense, "📄", "#64748b"),
		mk("Outros", Expense, "💸", "#94a3b8"),
	}
}
