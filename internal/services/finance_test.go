package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/memory"
	"financas/internal/ports"
)

type publishedEvent struct {
	action ports.TransactionAction
	id     int64
}

type fakePublisher struct {
	mu     sync.Mutex
	err    error
	events []publishedEvent
}

func (f *fakePublisher) PublishTransactionEvent(_ context.Context, action ports.TransactionAction, t core.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{action, t.ID})
	return nil
}

type fakeInvalidator struct {
	users []int64
}

func (f *fakeInvalidator) InvalidateUser(userID int64) {
	f.users = append(f.users, userID)
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %s: %v", s, err)
	}
	return v
}

func newFinance(t *testing.T, opts ...FinanceOption) (*FinanceService, *memory.Store) {
	t.Helper()
	store := memory.New()
	return NewFinanceService(store, applog.Discard(), opts...), store
}

func TestCreateAccountDefaults(t *testing.T) {
	svc, _ := newFinance(t)
	ctx := context.Background()

	a, err := svc.CreateAccount(ctx, 1, decode[AccountInput](t, `{"name":"Nubank","balance":"1234.565","currency":"brl"}`))
	if err != nil {
		t.Fatal(err)
	}
	if a.Balance.Cents != 123457 {
		t.Errorf("balance = %d, want 123457", a.Balance.Cents)
	}
	if a.Currency != "BRL" || a.Type != core.Checking || !a.IncludeInTotal || !a.IsActive {
		t.Errorf("defaults not applied: %+v", a)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	svc, _ := newFinance(t)
	tests := []struct {
		name  string
		input string
	}{
		{"missing name", `{"balance":10}`},
		{"bad type", `{"name":"x","type":"loan"}`},
		{"bad currency", `{"name":"x","currency":"reais"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateAccount(context.Background(), 1, decode[AccountInput](t, tc.input))
			if !errors.Is(err, core.ErrInvalidArgument) {
				t.Fatalf("expected invalid argument, got %v", err)
			}
		})
	}
}

func TestOwnershipIsolation(t *testing.T) {
	svc, _ := newFinance(t)
	ctx := context.Background()

	a, err := svc.CreateAccount(ctx, 1, decode[AccountInput](t, `{"name":"Mine"}`))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdateAccount(ctx, 2, UpdateAccountInput{ID: a.ID}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("other user update: got %v", err)
	}
	if err := svc.DeleteAccount(ctx, 2, a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("other user delete: got %v", err)
	}
	list, _ := svc.ListAccounts(ctx, 2)
	if len(list) != 0 {
		t.Fatalf("user 2 sees %d accounts", len(list))
	}
}

func TestUpdateAccountPatch(t *testing.T) {
	svc, _ := newFinance(t)
	ctx := context.Background()

	a, _ := svc.CreateAccount(ctx, 1, decode[AccountInput](t, `{"name":"Old","balance":50}`))
	in := decode[UpdateAccountInput](t, `{"id":0,"name":"New"}`)
	in.ID = a.ID

	got, err := svc.UpdateAccount(ctx, 1, in)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "New" || got.Balance.Cents != 5000 {
		t.Fatalf("patch should only touch name: %+v", got)
	}
}

func TestDefaultCategoriesReadOnly(t *testing.T) {
	svc, _ := newFinance(t)
	ctx := context.Background()

	cats, err := svc.ListCategories(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != len(core.DefaultCategories()) {
		t.Fatalf("got %d categories", len(cats))
	}
	def := cats[0]

	name := "Renamed"
	if _, err := svc.UpdateCategory(ctx, 1, UpdateCategoryInput{ID: def.ID, CategoryInput: CategoryInput{Name: &name}}); !errors.Is(err, core.ErrDefaultReadOnly) {
		t.Fatalf("update default: got %v", err)
	}
	if err := svc.DeleteCategory(ctx, 1, def.ID); !errors.Is(err, core.ErrDefaultReadOnly) {
		t.Fatalf("delete default: got %v", err)
	}

	own, err := svc.CreateCategory(ctx, 1, decode[CategoryInput](t, `{"name":"Pets","type":"expense"}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteCategory(ctx, 1, own.ID); err != nil {
		t.Fatalf("delete own category: %v", err)
	}
}

func TestTransactionLifecyclePublishes(t *testing.T) {
	pub := &fakePublisher{}
	inv := &fakeInvalidator{}
	svc, _ := newFinance(t, WithPublisher(pub), WithInvalidator(inv))
	ctx := context.Background()

	created, err := svc.CreateTransaction(ctx, 1, decode[TransactionInput](t,
		`{"type":"expense","amount":12.5,"description":"Mercado","date":"2024-06-10","categoryId":5}`))
	if err != nil {
		t.Fatal(err)
	}
	if created.Amount.Cents != 1250 || !created.IsPaid {
		t.Fatalf("unexpected transaction %+v", created)
	}

	in := decode[UpdateTransactionInput](t, `{"categoryId":null}`)
	in.ID = created.ID
	updated, err := svc.UpdateTransaction(ctx, 1, in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.CategoryID != nil {
		t.Fatal("explicit null should clear the category")
	}

	if err := svc.DeleteTransaction(ctx, 1, created.ID); err != nil {
		t.Fatal(err)
	}

	want := []publishedEvent{
		{ports.ActionCreated, created.ID},
		{ports.ActionUpdated, created.ID},
		{ports.ActionDeleted, created.ID},
	}
	if len(pub.events) != len(want) {
		t.Fatalf("events = %+v", pub.events)
	}
	for i := range want {
		if pub.events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, pub.events[i], want[i])
		}
	}
	if len(inv.users) != 3 {
		t.Errorf("expected 3 invalidations, got %v", inv.users)
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc, _ := newFinance(t, WithPublisher(pub))

	_, err := svc.CreateTransaction(context.Background(), 1, decode[TransactionInput](t,
		`{"type":"income","amount":100,"description":"Salário","date":"2024-06-01"}`))
	if err != nil {
		t.Fatalf("publish failure must not surface: %v", err)
	}
}

func TestTransactionForeignReferences(t *testing.T) {
	svc, _ := newFinance(t)
	ctx := context.Background()

	other, _ := svc.CreateAccount(ctx, 2, decode[AccountInput](t, `{"name":"Theirs"}`))
	in := decode[TransactionInput](t, `{"type":"expense","amount":1,"description":"x","date":"2024-06-01"}`)
	in.AccountID = Optional[int64]{Set: true, Value: &other.ID}

	if _, err := svc.CreateTransaction(ctx, 1, in); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for another user's account, got %v", err)
	}
}

func TestTransactionDateAnchoredInLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Skip("tzdata not available")
	}
	svc, _ := newFinance(t, WithLocation(loc))

	tx, err := svc.CreateTransaction(context.Background(), 1, decode[TransactionInput](t,
		`{"type":"expense","amount":1,"description":"x","date":"2024-06-10"}`))
	if err != nil {
		t.Fatal(err)
	}
	if got := core.DateOf(tx.Date, loc).String(); got != "2024-06-10" {
		t.Fatalf("date drifted to %s", got)
	}
}

func TestListTransactionsDefaults(t *testing.T) {
	svc, _ := newFinance(t)
	ctx := context.Background()

	for i := 0; i < DefaultTransactionLimit+5; i++ {
		if _, err := svc.CreateTransaction(ctx, 1, decode[TransactionInput](t,
			`{"type":"income","amount":1,"description":"x","date":"2024-06-01"}`)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.ListTransactions(ctx, 1, ListTransactionsInput{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != DefaultTransactionLimit {
		t.Fatalf("got %d, want default limit %d", len(got), DefaultTransactionLimit)
	}

	if _, err := svc.ListTransactions(ctx, 1, ListTransactionsInput{Type: "gift"}); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("expected invalid type error, got %v", err)
	}
}

func TestSettingsCreatedOnFirstRead(t *testing.T) {
	svc, _ := newFinance(t)
	ctx := context.Background()

	s, err := svc.GetSettings(ctx, 7)
	if err != nil {
		t.Fatal(err)
	}
	if s.Currency != "BRL" || s.Theme != core.ThemeLight || s.Language != "pt-BR" {
		t.Fatalf("unexpected defaults %+v", s)
	}

	updated, err := svc.UpdateSettings(ctx, 7, decode[SettingsInput](t, `{"theme":"dark","currency":"usd"}`))
	if err != nil {
		t.Fatal(err)
	}
	if updated.Theme != core.ThemeDark || updated.Currency != "USD" || updated.DateFormat != "DD/MM/YYYY" {
		t.Fatalf("unexpected settings %+v", updated)
	}

	if _, err := svc.UpdateSettings(ctx, 7, decode[SettingsInput](t, `{"theme":"neon"}`)); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("expected invalid theme, got %v", err)
	}
}

func TestCreateBudgetAndGoalDefaults(t *testing.T) {
	svc, _ := newFinance(t)
	ctx := context.Background()

	b, err := svc.CreateBudget(ctx, 1, decode[BudgetInput](t, `{"name":"Mercado","amount":800}`))
	if err != nil {
		t.Fatal(err)
	}
	if b.Period != core.Monthly || b.AlertThreshold != 80 || !b.IsActive {
		t.Fatalf("budget defaults not applied: %+v", b)
	}

	if _, err := svc.CreateBudget(ctx, 1, decode[BudgetInput](t, `{"name":"Viagem","amount":800,"period":"custom"}`)); !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("custom budget without dates: got %v", err)
	}

	g, err := svc.CreateGoal(ctx, 1, decode[GoalInput](t, `{"name":"Reserva","targetAmount":"10000"}`))
	if err != nil {
		t.Fatal(err)
	}
	if g.CurrentAmount.Cents != 0 || g.TargetAmount.Cents != 1000000 {
		t.Fatalf("goal amounts %+v", g)
	}
}

func TestCreateInvestmentCurrentDefaultsToInitial(t *testing.T) {
	svc, _ := newFinance(t)
	i, err := svc.CreateInvestment(context.Background(), 1, decode[InvestmentInput](t,
		`{"name":"Tesouro","type":"fixed_income","initialAmount":1000,"purchaseDate":"2024-01-02"}`))
	if err != nil {
		t.Fatal(err)
	}
	if i.CurrentAmount.Cents != 100000 {
		t.Fatalf("current amount = %d", i.CurrentAmount.Cents)
	}
}

func TestDeleteUserDataKeepsOtherUsers(t *testing.T) {
	svc, _ := newFinance(t)
	ctx := context.Background()

	svc.CreateAccount(ctx, 1, decode[AccountInput](t, `{"name":"A"}`))
	svc.CreateAccount(ctx, 2, decode[AccountInput](t, `{"name":"B"}`))
	svc.CreateReminder(ctx, 1, decode[ReminderInput](t, `{"title":"IPVA","dueDate":"2024-07-01"}`))

	if err := svc.DeleteUserData(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if a, _ := svc.ListAccounts(ctx, 1); len(a) != 0 {
		t.Fatalf("user 1 still has %d accounts", len(a))
	}
	if r, _ := svc.ListReminders(ctx, 1); len(r) != 0 {
		t.Fatalf("user 1 still has %d reminders", len(r))
	}
	if b, _ := svc.ListAccounts(ctx, 2); len(b) != 1 {
		t.Fatal("user 2 data must survive")
	}
	if c, _ := svc.ListCategories(ctx, 1); len(c) != len(core.DefaultCategories()) {
		t.Fatal("default categories must survive")
	}
}
